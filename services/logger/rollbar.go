package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/studymatch/core"
)

// RollbarLogger reports to rollbar and mirrors every entry to zap.
type RollbarLogger struct {
	zap *ZapLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *ZapLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zap: zl}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close waits for the queued rollbar items to be sent and flushes zap.
func (l *RollbarLogger) Close() {
	rollbar.Wait()
	l.zap.Sync()
}

// prepare converts the args into rollbar's: message, error & extras. It also sets the person, if any.
func (l *RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	e := parseArgs(args)
	if e.usr != nil {
		rollbar.SetPerson(e.usr.ID, e.usr.Name, e.usr.Email)
	} else {
		rollbar.ClearPerson()
	}

	rArgs := make([]interface{}, 0, 3)
	rArgs = append(rArgs, msg)
	if e.err != nil {
		rArgs = append(rArgs, e.err)
	}
	if len(e.fields) > 0 {
		rArgs = append(rArgs, e.fields)
	}
	return rArgs
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.zap.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.zap.Info(msg, args...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.zap.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.zap.Error(msg, args...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.zap.Fatal(msg, args...)
}
