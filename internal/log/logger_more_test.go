/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("AV_LOG_LEVEL", "warn")
	t.Setenv("AV_LOG_FORMAT", "json")
	t.Setenv("AV_LOG_SOURCE", "true")
	t.Setenv("AV_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestPrettyTextHandler_Behavior(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn, AddSource: true}, w: &buf}

	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	// k is bound before the group, n after it
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")})
	h2 = h2.WithGroup("grp")

	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true))
	if err := h2.Handle(nil, r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, " k=v") {
		t.Fatalf("output missing expected content: %q", out)
	}
	if !strings.Contains(out, "grp.n=42") {
		t.Fatalf("grouped attr missing or malformed: %q", out)
	}

	if !strings.Contains(out, "ERR") {
		t.Fatalf("expected ERR level tag in output: %q", out)
	}
	if !strings.Contains(out, "pi=3.14") {
		t.Fatalf("expected trimmed float: %q", out)
	}
}

func TestNewTagsRecordsFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "debug", Format: "json"})
	ctx := ContextWithFrame(ContextWithScene(context.Background(), "walk.json"), "f-1")
	l.InfoContext(ctx, "stored thumbnail", slog.Int("bytes", 12))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if m["scene"] != "walk.json" || m["frame"] != "f-1" {
		t.Fatalf("context tags missing: %v", m)
	}
	if m["app"] != "animview" {
		t.Fatalf("app attr = %v", m["app"])
	}

	buf.Reset()
	l.Info("no context")
	if strings.Contains(buf.String(), `"scene"`) {
		t.Fatalf("scene tag without context: %s", buf.String())
	}
}

func TestPrettyTextHandler_QuotesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "info"})
	l.Info("saved", slog.String("path", "my scene.json"), slog.Group("size", slog.Int("w", 640), slog.Int("h", 480)))
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `path="my scene.json"`) {
		t.Fatalf("path not quoted: %q", out)
	}
	if !strings.Contains(out, "size.w=640 size.h=480") {
		t.Fatalf("group not flattened: %q", out)
	}
	if strings.Contains(out, "hidden") || strings.Count(out, "\n") != 1 {
		t.Fatalf("debug record leaked at info level: %q", out)
	}
}
