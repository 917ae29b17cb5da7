package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/gitacache"
)

var _ gitacache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New returns an adapter that tags every entry with component=<component>.
func New(l *logrus.Logger, component string) LogrusLogger {
	e := logrus.NewEntry(l)
	if component != "" {
		e = e.WithField("component", component)
	}
	return LogrusLogger{E: e}
}

func (l LogrusLogger) Debug(msg string, f gitacache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f gitacache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f gitacache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f gitacache.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f gitacache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
