//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"animview/internal/config"
	"animview/internal/project"
)

func TestProjectCanvas_Defaults(t *testing.T) {
	pc := NewProjectCanvas()
	sz := pc.PreferredSize()
	if sz.Width != 800 || sz.Height != 600 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
}

func TestProjectCanvas_LayoutResizesSession(t *testing.T) {
	test.NewApp()
	s, err := NewSession(project.New("demo", 400, 300), "", config.Defaults())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()
	pc := NewProjectCanvas()
	pc.SetSession(s)
	r, ok := pc.CreateRenderer().(*projectCanvasRenderer)
	if !ok {
		t.Fatalf("expected projectCanvasRenderer, got %T", pc.CreateRenderer())
	}
	r.Layout(fyne.NewSize(320, 200))
	b := s.Image().Bounds()
	if b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("raster = %v, want 320x200", b)
	}
	if r.img.Image == nil {
		t.Fatalf("image not attached")
	}
}
