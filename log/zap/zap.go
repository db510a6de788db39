// Package zap adapts a *zap.Logger to cacheaside.Logger.
package zap

import (
	"go.uber.org/zap"
	"moul.io/zapfilter"

	"github.com/unkn0wn-root/cacheaside"
)

var _ cacheaside.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "cacheaside" so filters can target it.
func New(l *zap.Logger) ZapLogger {
	return ZapLogger{L: l.Named("cacheaside")}
}

// NewFiltered wraps l with zapfilter rules, e.g. "warn+:cacheaside" or
// "debug:cacheaside info+:*". An empty rules string keeps everything.
func NewFiltered(l *zap.Logger, rules string) (ZapLogger, error) {
	if rules == "" {
		return New(l), nil
	}
	f, err := zapfilter.ParseRules(rules)
	if err != nil {
		return ZapLogger{}, err
	}
	filtered := zap.New(zapfilter.NewFilteringCore(l.Core(), f))
	return New(filtered), nil
}

func (z ZapLogger) Debug(msg string, f cacheaside.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f cacheaside.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f cacheaside.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f cacheaside.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f cacheaside.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
