package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap/zaptest"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/user"
	logsvc "github.com/tkalearning/lms/services/logger"
	"github.com/tkalearning/lms/storage/database"
)

// NewConfig returns the configuration used by tests.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		AppName:          "TKA Learning",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "TKA Learning <noreply@localhost>",
		Server: core.ServerConfig{
			Port:                      "8000",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Database: core.DatabaseConfig{
			Engine:       database.EngineSQLite,
			Path:         filepath.Join(t.TempDir(), "lms_test.db"),
			MaxOpenConns: 4,
		},
	}
}

// NewLogger returns a logger writing to the test output, with rollbar disabled.
func NewLogger(t *testing.T, conf *core.Config) *logsvc.ZapLogger {
	t.Helper()
	logger := logsvc.NewZapLogger(zaptest.NewLogger(t), conf)
	logger.Enable(false)
	return logger
}

// PrepareDB opens a fresh, migrated sqlite database that is closed when the test ends.
func PrepareDB(t *testing.T, conf ...*core.Config) *sqlx.DB {
	t.Helper()

	var c *core.Config
	if len(conf) > 0 {
		c = conf[0]
	} else {
		c = NewConfig(t)
	}

	db, err := database.Open(c)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, email, pwd string, isAdmin bool) user.User {
	t.Helper()
	usr := user.User{
		Username:  uname,
		Email:     null.NewString(email, email != ""),
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if pwd == "" {
		pwd = "Sup3r-Secret!"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, title, category string, videoURL ...string) course.Course {
	t.Helper()
	if category == "" {
		category = course.DefaultCategory
	}
	crs := course.Course{
		Title:       title,
		Description: "All about " + title + ".",
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}
	if len(videoURL) > 0 {
		crs.VideoURL = null.StringFrom(videoURL[0])
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}
