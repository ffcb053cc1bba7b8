package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/robfig/cron"

	echoapi "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/apps/container"
	"github.com/trezcool/studymatch/core"
	logsvc "github.com/trezcool/studymatch/services/logger"
)

const (
	reminderSchedule = "@every 15m"
	reminderWindow   = 24 * time.Hour
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("main.NewZapLogger(): %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	c, err := container.New(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("building container: %v", err), err)
	}
	defer func() {
		if err = c.Close(); err != nil {
			logger.Error("closing connections", err)
		}
	}()

	svcs, err := c.Services()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up services: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Session Reminders

	scheduler := cron.New()
	err = scheduler.AddFunc(reminderSchedule, func() {
		n, err := svcs.Sessions.SendReminders(context.Background(), core.NowFunc(), reminderWindow)
		if err != nil {
			logger.Error("sending session reminders", err)
			return
		}
		if n > 0 {
			logger.Info("session reminders sent", "sessions", n)
		}
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling reminders: %v", err), err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      svcs.Validate,
			Users:         svcs.Users,
			Subjects:      svcs.Subjects,
			Sessions:      svcs.Sessions,
			Reviews:       svcs.Reviews,
			Matches:       svcs.Matches,
			Messages:      svcs.Messages,
			Notifications: svcs.Notifications,
			Ledger:        svcs.Ledger,
			Redis:         svcs.Redis,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
