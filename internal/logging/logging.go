// Package logging builds the process-wide *zap.Logger. Loggers are passed to constructors;
// nothing here is global.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger for production and a console logger otherwise. env is APP_ENV;
// level is one of debug, info, warn, error (anything else means info).
func New(env, level, service string) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	l, err := zcfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	if service != "" {
		l = l.With(zap.String("service", service))
	}
	return l, nil
}

// ParseLevel maps a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Op is the operation field attached to every log line of a service method.
func Op(name string) zap.Field { return zap.String("op", name) }

// UserID is the user id field.
func UserID(id string) zap.Field { return zap.String("user_id", id) }

// SessionID is the session id field.
func SessionID(id string) zap.Field { return zap.String("session_id", id) }

// ClientIP is the caller address field.
func ClientIP(ip string) zap.Field { return zap.String("client_ip", ip) }
