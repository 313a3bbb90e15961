package logger

import (
	"go.uber.org/zap"
)

// GocronLogger adapts zap to the gocron scheduler logger. gocron passes
// key/value pairs after the message, which the sugared logger understands.
type GocronLogger struct {
	s *zap.SugaredLogger
}

// NewGocronLogger wraps l for gocron. A nil l falls back to the global logger.
func NewGocronLogger(l *zap.Logger) *GocronLogger {
	if l == nil {
		l = L()
	}
	return &GocronLogger{s: l.Named("gocron").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (g *GocronLogger) Debug(msg string, args ...any) { g.s.Debugw(msg, args...) }
func (g *GocronLogger) Info(msg string, args ...any)  { g.s.Infow(msg, args...) }
func (g *GocronLogger) Warn(msg string, args ...any)  { g.s.Warnw(msg, args...) }
func (g *GocronLogger) Error(msg string, args ...any) { g.s.Errorw(msg, args...) }
