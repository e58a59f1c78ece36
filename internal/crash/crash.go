/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics at the CLI and UI boundary into a logged error,
// a crash report file and an optional autosave.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "animview/internal/log"
	"animview/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target describes what was being worked on when the panic happened. All
// fields are optional.
type Target struct {
	// ReportDir receives the crash report; the temp dir is used when empty.
	ReportDir string
	// Scene is the scene file that was open.
	Scene string
	// Autosave writes the in-memory project somewhere safe and returns the
	// path it wrote.
	Autosave func() (string, error)
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave.
//
// Usage: defer crash.Recover(target)
func Recover(t *Target) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(t, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if t != nil && t.Autosave != nil {
			if path, err := t.Autosave(); err != nil {
				l.Error("autosave after crash failed", slog.Any("err", err))
			} else {
				l.Info("autosave after crash written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if t != nil && t.ReportDir != "" {
		dir = t.ReportDir
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "animview Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil && t.Scene != "" {
		_, _ = fmt.Fprintf(&buf, "Scene: %s\n", t.Scene)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
