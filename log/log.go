// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled, structured logging built on log/slog.
// Package-level loggers are created with WithContext and share one root
// handler whose verbosity can be adjusted at runtime.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the leveled key/value logger used across the codebase.
type Logger interface {
	// With returns a new Logger that has the given context attached.
	With(ctx ...any) Logger

	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Debug(msg string, ctx ...any) { l.write(slog.LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(slog.LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(slog.LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(slog.LevelError, msg, ctx) }

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

var (
	root    atomic.Value
	rootLvl = new(slog.LevelVar)
)

func init() {
	root.Store(&logger{slog.New(LogfmtHandlerWithLevel(os.Stderr, rootLvl))})
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(*logger)
}

// WithContext returns a logger derived from the root logger with the given
// context attached. Typical use: log.WithContext("pkg", "staking").
func WithContext(ctx ...any) Logger {
	return Root().With(ctx...)
}

// SetRootHandler replaces the root logger's handler.
func SetRootHandler(h slog.Handler) {
	root.Store(&logger{slog.New(h)})
}

// SetLevel adjusts the verbosity of the default handlers at runtime.
func SetLevel(level slog.Level) {
	rootLvl.Set(level)
}

// LogfmtHandlerWithLevel returns a logfmt-style handler filtered by the
// given level var.
func LogfmtHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: level})
}

// JSONHandlerWithLevel returns a JSON handler filtered by the given level var.
func JSONHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: level})
}

// Discard sends all root logger output to nowhere.
func Discard() {
	SetRootHandler(DiscardHandler())
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (h *discardHandler) WithGroup(_ string) slog.Handler               { return &discardHandler{} }
func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return &discardHandler{} }
