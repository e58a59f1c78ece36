/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the slog logger shared by animview. Console output is a
// compact one-line format; JSON goes to stderr or a rotated file. Records
// logged with a context also carry the scene and frame stored in it.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"animview/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. FromEnv reads them from
// AV_LOG_LEVEL, AV_LOG_FORMAT, AV_LOG_FILE and AV_LOG_SOURCE.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string // rotated JSON log, empty disables

	// Rotation limits for File; zero picks 10 MB and 3 backups.
	MaxSizeMB  int
	MaxBackups int
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Init replaces the application logger and slog.Default.
func Init(opts Options) {
	slog.SetDefault(setDefault(New(os.Stderr, opts)))
}

func setDefault(l *slog.Logger) *slog.Logger {
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
	return l
}

// New builds a logger writing console or JSON records to w, plus the rotated
// file when opts.File is set.
func New(w io.Writer, opts Options) *slog.Logger {
	lvl := parseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(w, hopts)
	} else {
		console = &prettyTextHandler{opts: prettyOpts{Level: lvl, AddSource: opts.AddSource}, w: w}
	}
	h := withEnricher(console)

	if file := strings.TrimSpace(opts.File); file != "" {
		rot := &lj.Logger{Filename: file, MaxSize: orDefault(opts.MaxSizeMB, 10), MaxBackups: orDefault(opts.MaxBackups, 3), MaxAge: 28, Compress: true}
		h = multiHandler(h, withEnricher(slog.NewJSONHandler(rot, hopts)))
	}

	return slog.New(h).With(
		slog.String("app", "animview"),
		slog.String("ver", version.String()),
	)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("AV_LOG_LEVEL", "info"),
		Format:    getenv("AV_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("AV_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("AV_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// Discard returns a logger that drops every record. Components accept it in
// place of nil so call sites never need a nil check.
func Discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type ctxKey int

const (
	sceneKey ctxKey = iota
	frameKey
)

// ContextWithScene tags records logged with ctx by the scene file path.
func ContextWithScene(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sceneKey, path)
}

// ContextWithFrame tags records logged with ctx by a frame id.
func ContextWithFrame(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, frameKey, id)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func multiHandler(handlers ...slog.Handler) slog.Handler { return &multi{hs: handlers} }

type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}

// enrich copies the scene and frame tags out of the context onto the record.
func withEnricher(h slog.Handler) slog.Handler { return &enrich{next: h} }

type enrich struct{ next slog.Handler }

func (e *enrich) Enabled(ctx context.Context, level slog.Level) bool {
	return e.next.Enabled(ctx, level)
}

func (e *enrich) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if s, ok := ctx.Value(sceneKey).(string); ok {
			r.AddAttrs(slog.String("scene", s))
		}
		if f, ok := ctx.Value(frameKey).(string); ok {
			r.AddAttrs(slog.String("frame", f))
		}
	}
	return e.next.Handle(ctx, r)
}

func (e *enrich) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrich{next: e.next.WithAttrs(attrs)}
}
func (e *enrich) WithGroup(name string) slog.Handler { return &enrich{next: e.next.WithGroup(name)} }

// prettyTextHandler prints "15:04:05.000 LVL msg key=val ...". Attributes
// added after WithGroup are prefixed with the dotted group path.
type prettyTextHandler struct {
	opts   prettyOpts
	w      io.Writer
	mu     *sync.Mutex
	prefix string
	attrs  string // preformatted " k=v" pairs
}

type prettyOpts struct {
	Level     slog.Leveler
	AddSource bool
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}
	return level >= floor
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	b := &strings.Builder{}
	b.Grow(256)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelString(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(b, h.prefix, a)
		return true
	})
	if h.opts.AddSource {
		if r.PC != 0 {
			f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
			b.WriteString(" src=")
			b.WriteString(f.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Line))
		}
	}
	b.WriteByte('\n')

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyTextHandler) clone() *prettyTextHandler {
	c := *h
	if c.mu == nil {
		c.mu = &sync.Mutex{}
	}
	return &c
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	b := &strings.Builder{}
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(b, h.prefix, a)
	}
	c.attrs = b.String()
	return c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, p, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(attrValueString(a.Value))
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	default:
		return l.String()
	}
}

func attrValueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"\t\n") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return v.String()
	}
}
