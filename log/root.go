// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger which resolves the root logger on every call, so package level
// loggers declared before SetDefault still follow the configured handler.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() Logger {
	return Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.resolve().Log(level, msg, ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.resolve().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.resolve().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.resolve().Crit(msg, ctx...) }

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler {
	return Root().Handler()
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Trace(msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Debug(msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Info(msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Warn(msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Error(msg, ctx...)
}
