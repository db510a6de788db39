package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/cacheaside"
)

var _ cacheaside.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every entry with component=cacheaside.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "cacheaside")}
}

func (l LogrusLogger) Debug(msg string, f cacheaside.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f cacheaside.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f cacheaside.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f cacheaside.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
