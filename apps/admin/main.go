package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/user"
	"github.com/tkalearning/lms/services/logger"
	"github.com/tkalearning/lms/storage/database"
	"github.com/tkalearning/lms/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	zl = zl.Named("ADMIN")
	defer func() { _ = zl.Sync() }()

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		zl.Fatal("creating database", zap.Error(err))
	}
	db, err := database.Open(conf)
	if err != nil {
		zl.Fatal("opening database", zap.Error(err))
	}

	// start CLI
	cli := commandLine{
		db:      db,
		zl:      zl,
		usrSvc:  user.NewService(sqlxrepos.NewUserRepository(db), nil),
		crsRepo: sqlxrepos.NewCourseRepository(db),
		out:     os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			zl.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
