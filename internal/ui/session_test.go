/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"animview/internal/config"
	"animview/internal/project"
	"animview/internal/vector"
	"animview/internal/view"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(project.New("demo", 400, 300), "", config.Defaults())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Resize(400, 300); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	return s
}

func TestSessionPaintsContainerSize(t *testing.T) {
	s := newTestSession(t)
	b := s.Image().Bounds()
	if b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("image = %v, want 400x300", b)
	}
	if err := s.Resize(200, 100); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if b := s.Image().Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("image after resize = %v", b)
	}
}

func TestSessionInputBeforeRender(t *testing.T) {
	s, err := NewSession(project.New("demo", 10, 10), "", config.Defaults())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()
	if err := s.Tap(vector.Pt{}); !errors.Is(err, ErrNotRendered) {
		t.Fatalf("Tap err = %v, want ErrNotRendered", err)
	}
}

func TestSessionDrawRectangle(t *testing.T) {
	s := newTestSession(t)
	var got []view.Event
	s.OnEvent = func(ev view.Event) { got = append(got, ev) }
	if err := s.SelectTool("rectangle"); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	if s.ActiveTool() != "rectangle" {
		t.Fatalf("active tool = %s", s.ActiveTool())
	}
	for _, p := range []vector.Pt{{X: 10, Y: 10}, {X: 30, Y: 20}, {X: 50, Y: 40}} {
		if err := s.Drag(p); err != nil {
			t.Fatalf("Drag: %v", err)
		}
	}
	if err := s.DragEnd(); err != nil {
		t.Fatalf("DragEnd: %v", err)
	}
	f := s.Project().ActiveFrame().(*project.Frame)
	shapes := f.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	if b := shapes[0].Bounds(); b != (vector.Rect{X: 10, Y: 10, W: 40, H: 30}) {
		t.Fatalf("bounds = %+v", b)
	}
	if len(got) != 1 || got[0].Action != "rectangle" {
		t.Fatalf("events = %+v", got)
	}
}

func TestSessionPanDragCommitsPan(t *testing.T) {
	s := newTestSession(t)
	if err := s.SelectTool("pan"); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	_ = s.Drag(vector.Pt{X: 100, Y: 100})
	if err := s.Drag(vector.Pt{X: 110, Y: 100}); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	_ = s.DragEnd()
	if got := s.Project().Pan(); got != (vector.Pt{X: 10, Y: 0}) {
		t.Fatalf("pan = %+v, want (10, 0)", got)
	}
}

func TestSessionReselectThenDragMovesShape(t *testing.T) {
	s := newTestSession(t)
	r := vector.NewRect(vector.Rect{X: 20, Y: 20, W: 100, H: 100}, vector.SolidFill(vector.Black), vector.Stroke{})
	s.Project().ActiveFrame().(*project.Frame).AddShape(r)
	if err := s.SelectTool("cursor"); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c := s.View().Canvas()
	at := c.ProjectToView(vector.Pt{X: 70, Y: 70})
	// the second tap lands on the bounds overlay drawn by the first
	for i := 0; i < 2; i++ {
		if err := s.Tap(at); err != nil {
			t.Fatalf("Tap %d: %v", i, err)
		}
	}
	z := c.Zoom()
	for _, p := range []vector.Pt{at, {X: at.X + 40, Y: at.Y}} {
		if err := s.Drag(p); err != nil {
			t.Fatalf("Drag: %v", err)
		}
	}
	_ = s.DragEnd()
	if got, want := r.Bounds().X, 20+40/z; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("shape x = %v, want %v", got, want)
	}
}

func TestSessionEyedropperPicksStageColor(t *testing.T) {
	s := newTestSession(t)
	var picked []view.Event
	s.OnEvent = func(ev view.Event) {
		if ev.Name == view.EventEyedropperPickedColor {
			picked = append(picked, ev)
		}
	}
	if err := s.SelectTool("eyedropper"); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	if err := s.Tap(vector.Pt{X: 200, Y: 150}); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if len(picked) != 1 || picked[0].Source.Color != vector.White {
		t.Fatalf("picked = %+v", picked)
	}
}

func TestSessionScrollZooms(t *testing.T) {
	s := newTestSession(t)
	if err := s.Scroll(10); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if z := s.Project().Zoom(); z <= 1 {
		t.Fatalf("zoom = %v, want > 1", z)
	}
}

func TestOpenSessionSaveAndAutosave(t *testing.T) {
	s, err := OpenSession(filepath.Join("..", "project", "testdata", "walk.json"), config.Defaults())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer s.Close()
	if s.Title() != "walk.json > leg" {
		t.Fatalf("title = %q", s.Title())
	}
	if err := s.Focus(""); err != nil {
		t.Fatalf("Focus root: %v", err)
	}
	if s.Title() != "walk.json" {
		t.Fatalf("title at root = %q", s.Title())
	}

	dir := t.TempDir()
	if err := s.SaveAs(filepath.Join(dir, "walk.json")); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	path, err := s.Autosave()
	if err != nil {
		t.Fatalf("Autosave: %v", err)
	}
	if path != filepath.Join(dir, "walk.autosave.json") {
		t.Fatalf("autosave path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("autosave missing: %v", err)
	}
	if _, err := project.LoadSceneFile(path); err != nil {
		t.Fatalf("autosave does not load: %v", err)
	}
}

func TestSessionExport(t *testing.T) {
	s := newTestSession(t)
	out := filepath.Join(t.TempDir(), "frame.png")
	if err := s.Export(out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("export missing: %v", err)
	}
	if err := s.Save(); err == nil {
		t.Fatalf("Save without a path should fail")
	}
}
