package logsvc

import (
	"go.uber.org/zap"

	"github.com/trezcool/studymatch/core"
)

// ZapLogger is a core.Logger writing structured logs with zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a development logger in debug mode and a JSON production logger otherwise.
func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.InitialFields = map[string]interface{}{"app": conf.AppName, "build": conf.Build}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, parseArgs(args).keysAndValues()...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, parseArgs(args).keysAndValues()...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, parseArgs(args).keysAndValues()...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.sugar.Errorw(msg, parseArgs(args).keysAndValues()...)
}

func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.sugar.Fatalw(msg, parseArgs(args).keysAndValues()...)
}
