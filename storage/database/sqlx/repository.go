package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/storage/database"
)

// repository holds what every sqlx repository needs: the pool and a statement builder
// using the placeholder format of its engine.
type repository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func newRepository(db *sqlx.DB) repository {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db.DriverName() == database.EnginePostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return repository{db: db, sb: sb}
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.db
}

func orderBy(ordering []core.DBOrdering, fallback ...string) []string {
	if len(ordering) == 0 {
		return fallback
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return clauses
}

// wrapErr wraps err with msg. Failures of a closed pool are turned into shutdown errors.
func wrapErr(err error, msg string) error {
	if database.IsClosed(err) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
