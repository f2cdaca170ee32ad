package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/progress"
)

// toggleSuffix flips an existing record in place. The conflict target is the
// UNIQUE (user_id, course_id) constraint, so there is never more than one record.
const toggleSuffix = "ON CONFLICT (user_id, course_id) DO UPDATE SET " +
	"completed = 1 - course_progress.completed, completed_at = excluded.completed_at"

type progressRepository struct {
	repository
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{repository: newRepository(db)}
}

func (repo progressRepository) ToggleProgress(ctx context.Context, userID, courseID int, at time.Time) (progress.Progress, error) {
	query, args, err := repo.sb.Insert("course_progress").
		Columns("user_id", "course_id", "completed", "completed_at").
		Values(userID, courseID, 1, at.UTC()).
		Suffix(toggleSuffix).
		ToSql()
	if err != nil {
		return progress.Progress{}, wrapErr(err, "building query")
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return progress.Progress{}, wrapErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return progress.Progress{}, wrapErr(err, "upserting progress")
	}
	prg, _, err := repo.getProgress(ctx, userID, courseID, tx)
	if err != nil {
		return progress.Progress{}, err
	}
	if err = tx.Commit(); err != nil {
		return progress.Progress{}, wrapErr(err, "committing progress")
	}
	return prg, nil
}

func (repo progressRepository) GetProgress(ctx context.Context, userID, courseID int) (progress.Progress, bool, error) {
	return repo.getProgress(ctx, userID, courseID)
}

func (repo progressRepository) getProgress(ctx context.Context, userID, courseID int, exec ...core.DBExecutor) (progress.Progress, bool, error) {
	query, args, err := repo.sb.Select("id", "user_id", "course_id", "completed", "completed_at").
		From("course_progress").
		Where(sq.Eq{"user_id": userID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return progress.Progress{}, false, wrapErr(err, "building query")
	}

	var prg progress.Progress
	if err = repo.getExec(exec).GetContext(ctx, &prg, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return progress.Progress{}, false, nil
		}
		return progress.Progress{}, false, wrapErr(err, "selecting progress")
	}
	return prg, true, nil
}
