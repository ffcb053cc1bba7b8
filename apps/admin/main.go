package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/trezcool/studymatch/apps/container"
	"github.com/trezcool/studymatch/core"
	logsvc "github.com/trezcool/studymatch/services/logger"
	"github.com/trezcool/studymatch/storage/database"
)

const dbOpenTimeout = 30 * time.Second

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("admin.NewZapLogger(): %v", err)
	}
	defer zl.Sync()

	c, err := container.New(conf, zl)
	if err != nil {
		zl.Fatal("building container", err)
	}

	// start CLI
	cli := commandLine{
		services: c.Services,
		openDB: func() (*sql.DB, error) {
			ctx, cancel := context.WithTimeout(context.Background(), dbOpenTimeout)
			defer cancel()
			db, err := database.Open(ctx, conf)
			if err != nil {
				return nil, err
			}
			return db.DB, nil
		},
	}
	err = cli.run(os.Args)
	if cErr := c.Close(); cErr != nil {
		zl.Error("closing connections", cErr)
	}
	if err != nil {
		if err != errHelp {
			zl.Error("command failed", err)
		}
		os.Exit(1)
	}
}
