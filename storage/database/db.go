package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/fs"
)

const (
	EngineSQLite   = "sqlite3"
	EnginePostgres = "postgres"
)

func dsn(dbName string, conf *core.Config) (string, error) {
	switch conf.Database.Engine {
	case EngineSQLite:
		q := make(url.Values)
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", "5000")
		q.Set("_journal_mode", "WAL")
		q.Set("_txlock", "immediate")
		return "file:" + conf.Database.Path + "?" + q.Encode(), nil
	case EnginePostgres:
		sslMode := "require"
		if conf.Database.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Database.Engine,
			User:     url.UserPassword(conf.Database.User, conf.Database.Password),
			Host:     conf.Database.Address(),
			Path:     dbName,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

func open(dbName string, conf *core.Config) (*sqlx.DB, error) {
	source, err := dsn(dbName, conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Database.Engine, source)
	if err != nil {
		return nil, err
	}
	if conf.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	}
	return db, nil
}

// Open opens the application database and waits for it to be reachable.
// Connections are taken from the pool per statement and released right after.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist creates the postgres database named in conf. sqlite files are created on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != EnginePostgres {
		return nil
	}

	db, err := open("postgres", conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	var exists bool
	if err = db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name); err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// SetUpGoose points goose at the embedded migrations of db's engine and returns their directory.
func SetUpGoose(db *sqlx.DB, logger *zap.Logger) (string, error) {
	goose.SetBaseFS(appfs.FS)
	goose.SetLogger(zap.NewStdLog(logger))
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return "", errors.Wrap(err, "setting goose dialect")
	}
	return appfs.MigrationsDir(db.DriverName()), nil
}

// Migrate applies every pending migration. Applied versions are recorded in goose_db_version,
// so running it again is a no-op.
func Migrate(db *sqlx.DB, logger *zap.Logger) error {
	dir, err := SetUpGoose(db, logger)
	if err != nil {
		return err
	}
	if err = goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// IsUniqueViolationOf reports whether err is a unique constraint failure on table.column.
// Postgres constraints are matched by their default name, <table>_<column>_key.
func IsUniqueViolationOf(err error, table, column string) bool {
	if !IsUniqueViolation(err) {
		return false
	}
	switch e := errors.Cause(err).(type) {
	case sqlite3.Error:
		// UNIQUE constraint failed: users.email
		return strings.HasSuffix(e.Error(), " "+table+"."+column) || strings.Contains(e.Error(), " "+table+"."+column+",")
	case *pq.Error:
		return e.Constraint == table+"_"+column+"_key"
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint failure of either engine.
func IsUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	case *pq.Error:
		return e.Code == "23505"
	}
	return false
}

// IsClosed reports whether err comes from using a closed pool.
// database/sql does not export that error, hence the message match.
func IsClosed(err error) bool {
	return err != nil && errors.Cause(err).Error() == "sql: database is closed"
}
