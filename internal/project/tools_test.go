/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import (
	"errors"
	"testing"

	alog "animview/internal/log"
	"animview/internal/vector"
	"animview/internal/view"
)

func renderedView(t *testing.T, p *Project) *view.ProjectView {
	t.Helper()
	v := view.New(p, view.WithContainer(view.NewFixedContainer(400, 300)), view.WithLogger(alog.Discard()))
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return v
}

func TestShapeToolDrawsIntoActiveFrame(t *testing.T) {
	p := New("demo", 400, 300)
	if err := p.SetActiveTool("rectangle"); err != nil {
		t.Fatal(err)
	}
	v := renderedView(t, p)
	events, cancel := v.Subscribe(4)
	defer cancel()

	tool := p.Tool("rectangle").(*ShapeTool)
	if !tool.Active() {
		t.Fatalf("rectangle tool should be active")
	}
	if err := tool.Draw(v.Canvas(), vector.Pt{X: 10, Y: 10}, vector.Pt{X: 50, Y: 40}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	ev := <-events
	if ev.Name != view.EventCanvasModified || ev.Action != "rectangle" {
		t.Fatalf("event = %+v", ev)
	}
	f := p.activeFrame()
	if len(f.Shapes()) != 1 {
		t.Fatalf("shapes = %d, want 1", len(f.Shapes()))
	}
	if got := f.Shapes()[0].Bounds(); got != (vector.Rect{X: 10, Y: 10, W: 40, H: 30}) {
		t.Fatalf("bounds = %+v", got)
	}

	if err := v.Render(); err != nil {
		t.Fatal(err)
	}
	if len(f.Shapes()) != 1 {
		t.Fatalf("shape lost after re-render")
	}
}

func TestDrawingToolDisabledOnLockedLayer(t *testing.T) {
	p := New("demo", 400, 300)
	_ = p.SetActiveTool("ellipse")
	p.RootClip().ClipTimeline().ActiveLayer().Locked = true
	v := renderedView(t, p)

	if got := v.Tools().Active().Name(); got != view.ToolNone {
		t.Fatalf("active tool = %s, want none", got)
	}
	tool := p.Tool("ellipse").(*ShapeTool)
	err := tool.Draw(v.Canvas(), vector.Pt{}, vector.Pt{X: 5, Y: 5})
	if !errors.Is(err, ErrToolInactive) {
		t.Fatalf("err = %v, want ErrToolInactive", err)
	}
	if v.Canvas().ActiveLayer() != nil {
		t.Fatalf("locked layer must not be the active canvas layer")
	}
}

func TestCursorSelectsAndMoves(t *testing.T) {
	p := New("demo", 400, 300)
	r := vector.NewRect(vector.Rect{X: 10, Y: 10, W: 20, H: 20}, vector.SolidFill(vector.Black), vector.Stroke{})
	p.activeFrame().AddShape(r)
	v := renderedView(t, p)

	cur := p.Tool("cursor").(*CursorTool)
	hit, err := cur.Click(v.Canvas().HitTest, vector.Pt{X: 20, Y: 20})
	if err != nil || !hit {
		t.Fatalf("Click = %v, %v", hit, err)
	}
	if missed, _ := cur.Click(v.Canvas().HitTest, vector.Pt{X: 300, Y: 200}); missed {
		t.Fatalf("click on empty canvas must not hit")
	}
	if _, err := cur.Click(v.Canvas().HitTest, vector.Pt{X: 20, Y: 20}); err != nil {
		t.Fatal(err)
	}
	if err := cur.Move(vector.Pt{X: 5, Y: 0}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := r.Bounds().X; got != 15 {
		t.Fatalf("x = %v, want 15", got)
	}
}

func TestCursorClickIgnoresSelectionOverlay(t *testing.T) {
	p := New("demo", 400, 300)
	r := vector.NewRect(vector.Rect{X: 10, Y: 10, W: 20, H: 20}, vector.SolidFill(vector.Black), vector.Stroke{})
	p.activeFrame().AddShape(r)
	v := renderedView(t, p)
	cur := p.Tool("cursor").(*CursorTool)

	for i := 0; i < 2; i++ {
		if hit, err := cur.Click(v.Canvas().HitTest, vector.Pt{X: 20, Y: 20}); err != nil || !hit {
			t.Fatalf("click %d = %v, %v", i, hit, err)
		}
		// redraws the bounds overlay over the shape
		if err := v.DispatchToolEvents(); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	if got := p.selection.shapes; len(got) != 1 || got[0] != vector.Shape(r) {
		t.Fatalf("selection = %v, want the rect", got)
	}
	if !p.selection.Layer().Contains(v.Canvas().HitTest(vector.Pt{X: 20, Y: 20})) {
		t.Fatalf("overlay is not on top after the second click")
	}
}

func TestPanAndZoomToolsCommitToModel(t *testing.T) {
	p := New("demo", 400, 300)
	_ = p.SetActiveTool("pan")
	v := renderedView(t, p)

	pan := p.Tool("pan").(*PanTool)
	if err := pan.Drag(v.Canvas(), 10, 0); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatal(err)
	}
	if got := p.Pan(); got != (vector.Pt{X: 10, Y: 0}) {
		t.Fatalf("model pan = %+v, want (10, 0)", got)
	}

	_ = p.SetActiveTool("zoom")
	if err := v.Render(); err != nil {
		t.Fatal(err)
	}
	zt := p.Tool("zoom").(*ZoomTool)
	if err := zt.ZoomBy(v.Canvas(), 2, vector.Pt{X: 200, Y: 150}); err != nil {
		t.Fatalf("ZoomBy: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatal(err)
	}
	if p.Zoom() != 2 {
		t.Fatalf("model zoom = %v, want 2", p.Zoom())
	}
	if err := zt.ZoomBy(v.Canvas(), 0, vector.Pt{}); err == nil {
		t.Fatalf("zero factor must fail")
	}
}

func TestEyedropperEmitsColor(t *testing.T) {
	p := New("demo", 400, 300)
	_ = p.SetActiveTool("eyedropper")
	v := renderedView(t, p)
	events, cancel := v.Subscribe(1)
	defer cancel()

	red := vector.MustParseColor("#ff0000")
	if err := p.Tool("eyedropper").(*EyedropperTool).Pick(red, vector.Pt{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatal(err)
	}
	ev := <-events
	if ev.Name != view.EventEyedropperPickedColor || ev.Source.Color != red {
		t.Fatalf("event = %+v", ev)
	}
}

func TestInteractToolWhilePlaying(t *testing.T) {
	p := New("demo", 400, 300)
	p.SetPlaying(true)
	v := renderedView(t, p)
	if got := v.Tools().Active().Name(); got != view.ToolInteract {
		t.Fatalf("active = %s, want interact", got)
	}
}
