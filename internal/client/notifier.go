package client

import "go.uber.org/zap"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows short messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	log := n.Log
	if log == nil {
		log = zap.L()
	}
	switch level {
	case LevelWarning:
		log.Warn(message)
	case LevelError:
		log.Error(message)
	default:
		log.Info(message, zap.String("level", string(level)))
	}
}
