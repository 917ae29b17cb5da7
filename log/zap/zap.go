package zap

import (
	"sort"

	"github.com/unkn0wn-root/gitacache"
	"go.uber.org/zap"
)

var _ gitacache.Logger = ZapLogger{}

// ZapLogger adapts a *zap.Logger. Fields are emitted in key order.
type ZapLogger struct{ L *zap.Logger }

// New returns an adapter logging under the named component, e.g. "cache".
func New(l *zap.Logger, component string) ZapLogger {
	if component != "" {
		l = l.Named(component)
	}
	return ZapLogger{L: l}
}

func (z ZapLogger) Debug(msg string, f gitacache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f gitacache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f gitacache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f gitacache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f gitacache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
