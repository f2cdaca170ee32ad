package logsvc

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/tkalearning/lms/core"
)

// NewZap builds the process logger: human readable in debug mode, JSON otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction(zap.Fields(
		zap.String("app", conf.AppName),
		zap.String("env", conf.Env),
		zap.String("build", conf.Build),
	))
}

// ZapLogger logs through zap and mirrors every entry to rollbar when enabled.
type ZapLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(zl *zap.Logger, conf *core.Config) *ZapLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &ZapLogger{zl: zl.WithOptions(zap.AddCallerSkip(1))}
}

func (l *ZapLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare splits args into zap fields and rollbar args.
// expected args: error, map[string]interface{}, core.AuthContext
func (l *ZapLogger) prepare(msg string, args []interface{}) ([]zap.Field, []interface{}) {
	var authSet bool
	fields := make([]zap.Field, 0, len(args))
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)

	for _, arg := range args {
		switch a := arg.(type) {
		case core.AuthContext:
			if !authSet && a.IsAuthenticated() { // only set one person
				rollbar.SetPerson(strconv.Itoa(a.UserID), a.Username, "")
				fields = append(fields, zap.Int("user_id", a.UserID), zap.String("username", a.Username))
				authSet = true
			}
		case error:
			fields = append(fields, zap.Error(a))
			rbArgs = append(rbArgs, a)
		case map[string]interface{}:
			for k, v := range a {
				fields = append(fields, zap.Any(k, v))
			}
			rbArgs = append(rbArgs, a)
		default:
			fields = append(fields, zap.Any("arg", a))
		}
	}
	if !authSet {
		rollbar.ClearPerson()
	}
	return fields, rbArgs
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	fields, rbArgs := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.zl.Debug(msg, fields...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	fields, rbArgs := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.zl.Info(msg, fields...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	fields, rbArgs := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.zl.Warn(msg, fields...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	fields, rbArgs := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.zl.Error(msg, fields...)
}

func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	fields, rbArgs := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.zl.Fatal(msg, fields...)
}

// Sync flushes buffered entries of both backends.
func (l *ZapLogger) Sync() {
	rollbar.Wait()
	_ = l.zl.Sync()
}
