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
	"fmt"

	"animview/internal/vector"
	"animview/internal/view"
)

// ErrToolInactive is returned when input reaches a tool that is not active.
var ErrToolInactive = errors.New("tool is not active")

// Surface is the part of the canvas tools manipulate. *view.Canvas
// implements it.
type Surface interface {
	Zoom() float64
	SetZoom(z float64)
	Center() vector.Pt
	SetCenter(p vector.Pt)
	ActiveLayer() *vector.Group
	ViewToProject(p vector.Pt) vector.Pt
}

// BaseTool implements view.Tool; concrete tools embed it.
type BaseTool struct {
	name    string
	drawing bool
	sink    view.EventSink
	active  bool
}

func (t *BaseTool) Name() string               { return t.name }
func (t *BaseTool) IsDrawingTool() bool        { return t.drawing }
func (t *BaseTool) Attach(sink view.EventSink) { t.sink = sink }
func (t *BaseTool) Activate()                  { t.active = true }
func (t *BaseTool) Deactivate()                { t.active = false }
func (t *BaseTool) Active() bool               { return t.active }

func (t *BaseTool) emit(ev view.ToolEvent) error {
	if !t.active {
		return fmt.Errorf("%s: %w", t.name, ErrToolInactive)
	}
	return t.sink.Emit(ev)
}

// NoneTool ignores input. It is active whenever nothing can be edited.
type NoneTool struct{ BaseTool }

// InteractTool forwards input to running clips while the project plays.
type InteractTool struct{ BaseTool }

// CursorTool selects items on the canvas.
type CursorTool struct {
	BaseTool
	selection *Selection
}

// Click selects the top-most shape under the canvas pixel p. It reports
// whether anything was hit.
func (t *CursorTool) Click(hit func(vector.Pt) vector.Node, p vector.Pt) (bool, error) {
	if !t.active {
		return false, fmt.Errorf("%s: %w", t.name, ErrToolInactive)
	}
	// the bounds overlay sits on top of the selected shape; hit through it
	overlay := t.selection.Layer()
	locked := overlay.Locked
	overlay.Locked = true
	n := hit(p)
	overlay.Locked = locked
	t.selection.Clear()
	sh, ok := n.(vector.Shape)
	if !ok {
		return false, nil
	}
	t.selection.SelectShape(sh)
	return true, t.emit(view.ToolEvent{Kind: view.CanvasModified, Action: "select"})
}

// Move drags the selection by d project units.
func (t *CursorTool) Move(d vector.Pt) error {
	if t.selection.Len() == 0 {
		return nil
	}
	t.selection.Transform(vector.Translate(d.X, d.Y))
	return t.emit(view.ToolEvent{Kind: view.CanvasModified, Action: "move"})
}

// ZoomTool zooms around a canvas point.
type ZoomTool struct{ BaseTool }

// ZoomBy multiplies the canvas zoom by factor and keeps the project point
// under canvas pixel at in place. Clamping happens in the view.
func (t *ZoomTool) ZoomBy(s Surface, factor float64, at vector.Pt) error {
	if factor <= 0 {
		return fmt.Errorf("zoom factor %g must be positive", factor)
	}
	before := s.ViewToProject(at)
	s.SetZoom(s.Zoom() * factor)
	after := s.ViewToProject(at)
	s.SetCenter(s.Center().Add(before.Sub(after)))
	return t.emit(view.ToolEvent{Kind: view.ViewTransformed, Point: before})
}

// PanTool drags the viewport.
type PanTool struct{ BaseTool }

// Drag moves the viewport by a canvas-pixel delta.
func (t *PanTool) Drag(s Surface, dx, dy float64) error {
	z := s.Zoom()
	if z == 0 {
		z = 1
	}
	s.SetCenter(s.Center().Sub(vector.Pt{X: dx / z, Y: dy / z}))
	return t.emit(view.ToolEvent{Kind: view.ViewTransformed})
}

// EyedropperTool reports a sampled color.
type EyedropperTool struct{ BaseTool }

func (t *EyedropperTool) Pick(c vector.Color, at vector.Pt) error {
	return t.emit(view.ToolEvent{Kind: view.ColorPicked, Color: c, Point: at})
}

// ShapeTool draws rectangles or ellipses into the active layer.
type ShapeTool struct {
	BaseTool
	Fill   vector.Fill
	Stroke vector.Stroke
}

// ErrNoActiveLayer is returned by drawing tools when no layer is editable.
var ErrNoActiveLayer = errors.New("no editable layer")

// Draw adds a shape spanning the canvas pixels from and to.
func (t *ShapeTool) Draw(s Surface, from, to vector.Pt) error {
	if !t.active {
		return fmt.Errorf("%s: %w", t.name, ErrToolInactive)
	}
	layer := s.ActiveLayer()
	if layer == nil {
		return fmt.Errorf("%s: %w", t.name, ErrNoActiveLayer)
	}
	r := vector.RectFromPoints(s.ViewToProject(from), s.ViewToProject(to))
	var sh vector.Shape
	if t.name == "ellipse" {
		sh = vector.NewEllipse(r, t.Fill, t.Stroke)
	} else {
		sh = vector.NewRect(r, t.Fill, t.Stroke)
	}
	layer.Add(sh)
	return t.emit(view.ToolEvent{Kind: view.CanvasModified, Action: t.name})
}

// DefaultTools returns the editor's tool set in toolbar order.
func DefaultTools(sel *Selection) []view.Tool {
	fill := vector.SolidFill(vector.MustParseColor("#FFC35A"))
	stroke := vector.SolidStroke(vector.Black, 1)
	return []view.Tool{
		&NoneTool{BaseTool{name: view.ToolNone}},
		&InteractTool{BaseTool{name: view.ToolInteract}},
		&CursorTool{BaseTool: BaseTool{name: "cursor"}, selection: sel},
		&ZoomTool{BaseTool{name: "zoom"}},
		&PanTool{BaseTool{name: "pan"}},
		&EyedropperTool{BaseTool{name: "eyedropper"}},
		&ShapeTool{BaseTool: BaseTool{name: "rectangle", drawing: true}, Fill: fill, Stroke: stroke},
		&ShapeTool{BaseTool: BaseTool{name: "ellipse", drawing: true}, Fill: fill, Stroke: stroke},
	}
}
