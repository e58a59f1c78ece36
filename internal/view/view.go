/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"errors"
	"fmt"
	"log/slog"

	alog "animview/internal/log"
	"animview/internal/vector"
)

// DefaultCanvasBGColor is the editor chrome color used when the caller has not
// chosen one.
var DefaultCanvasBGColor = vector.MustParseColor("rgb(187, 187, 187)")

// ErrReentrantRender is returned when Render is called while a render pass is
// already running.
var ErrReentrantRender = errors.New("render called during render")

// State tracks the view's lifecycle across render calls.
type State int

const (
	// StateUninitialized: no canvas yet.
	StateUninitialized State = iota
	// StateBuilt: canvas and layers exist, tools are not wired.
	StateBuilt
	// StateReady: tools wired, steady-state rendering.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBuilt:
		return "built"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Painter turns a rendered canvas into pixels or a document. It is the
// explicit rendering context of a view; without one Render only builds the
// layer stack.
type Painter interface {
	Paint(c *Canvas) error
}

// Option configures a ProjectView.
type Option func(*ProjectView)

// WithPainter paints the canvas at the end of every Render.
func WithPainter(p Painter) Option { return func(v *ProjectView) { v.painter = p } }

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *ProjectView) {
		if l != nil {
			v.log = l
		}
	}
}

// WithDevicePixelRatio sets the ratio used for image-sequence black bars.
func WithDevicePixelRatio(r float64) Option {
	return func(v *ProjectView) {
		if r > 0 {
			v.devicePixelRatio = r
		}
	}
}

// WithContainer mounts the canvas into c on the first render.
func WithContainer(c Container) Option { return func(v *ProjectView) { v.container = c } }

// ProjectView renders a project model onto its canvas. It is single threaded:
// every method must be called from the goroutine that owns the view.
type ProjectView struct {
	model            Model
	log              *slog.Logger
	state            TransformState
	container        Container
	canvasBG         *vector.Color
	canvas           *Canvas
	painter          Painter
	devicePixelRatio float64
	phase            State
	rendering        bool
	tools            *ToolBridge
	events           broadcaster
}

// New creates a view over model. Nothing is drawn until the first Render.
func New(model Model, opts ...Option) *ProjectView {
	v := &ProjectView{
		model:            model,
		log:              alog.WithComponent("view"),
		state:            NewTransformState(),
		devicePixelRatio: 1,
	}
	for _, o := range opts {
		o(v)
	}
	v.tools = newToolBridge(v, v.log.With(slog.String("sub", "tools")))
	v.events.log = v.log
	return v
}

func (v *ProjectView) Model() Model       { return v.model }
func (v *ProjectView) State() State       { return v.phase }
func (v *ProjectView) Tools() *ToolBridge { return v.tools }

// Canvas returns the drawing surface, or nil before the first render.
func (v *ProjectView) Canvas() *Canvas { return v.canvas }

// CanvasDimensions is the canvas view size in pixels; zero before the first
// render.
func (v *ProjectView) CanvasDimensions() vector.Size {
	if v.canvas == nil {
		return vector.Size{}
	}
	return v.canvas.ViewSize()
}

func (v *ProjectView) Zoom() float64     { return v.state.Zoom() }
func (v *ProjectView) SetZoom(z float64) { v.state.SetZoom(z) }

// Pan is the viewport offset from the project center at root focus, or from
// the clip origin when editing a clip. Once a canvas exists it is read back
// from the canvas so tool-driven moves are visible.
func (v *ProjectView) Pan() vector.Pt {
	root := v.model.Focus().IsRoot()
	if v.canvas == nil {
		return PanFromCenter(v.state.Offset().Neg(), root, v.projectSize())
	}
	return PanFromCenter(v.canvas.Center(), root, v.projectSize())
}

// SetPan stores p unclamped. It takes effect on the next render.
func (v *ProjectView) SetPan(p vector.Pt) {
	v.state.SetPan(p, v.model.Focus().IsRoot(), v.projectSize())
	if v.canvas != nil {
		v.canvas.SetCenter(v.state.Offset().Neg())
	}
}

func (v *ProjectView) FitMode() FitMode { return v.state.FitMode() }

// SetFitMode changes how the project scales to its container. Invalid modes
// are logged and leave the current mode in place. Call Resize or Render for
// the change to show.
func (v *ProjectView) SetFitMode(m string) error {
	if err := v.state.SetFitMode(m); err != nil {
		v.log.Error("rejecting fit mode", slog.String("fit_mode", m), slog.String("kept", string(v.state.FitMode())), slog.Any("err", err))
		return err
	}
	return nil
}

func (v *ProjectView) CanvasContainer() Container     { return v.container }
func (v *ProjectView) SetCanvasContainer(c Container) { v.container = c }

// CanvasBGColor returns the caller-chosen chrome color and whether one is set.
func (v *ProjectView) CanvasBGColor() (vector.Color, bool) {
	if v.canvasBG == nil {
		return vector.Color{}, false
	}
	return *v.canvasBG, true
}

func (v *ProjectView) SetCanvasBGColor(c vector.Color) { v.canvasBG = &c }

// ClearCanvasBGColor falls back to DefaultCanvasBGColor.
func (v *ProjectView) ClearCanvasBGColor() { v.canvasBG = nil }

// Subscribe returns a channel receiving view events and a cancel func that
// closes it. Delivery never blocks; events are dropped for full buffers.
func (v *ProjectView) Subscribe(buffer int) (<-chan Event, func()) {
	return v.events.subscribe(buffer)
}

// DispatchToolEvents handles queued tool events. Hosts call it after input
// handling, never from inside Render.
func (v *ProjectView) DispatchToolEvents() error { return v.tools.dispatch() }

func (v *ProjectView) projectSize() vector.Size {
	return vector.Size{W: v.model.Width(), H: v.model.Height()}
}

// Render syncs zoom and pan from the model, builds the canvas on first use,
// mounts it, resizes it to the container and redraws every layer.
func (v *ProjectView) Render() error {
	if v.rendering {
		v.log.Error("render is not reentrant", slog.String("state", v.phase.String()))
		return ErrReentrantRender
	}
	v.rendering = true
	defer func() { v.rendering = false }()

	v.state.SetZoom(v.model.Zoom())
	v.state.SetPan(v.model.Pan(), v.model.Focus().IsRoot(), v.projectSize())

	v.buildCanvas()
	v.displayCanvasInContainer()
	v.Resize()
	v.drawPass()
	v.updateCanvasBGColor()

	return v.PaintCanvas()
}

// PaintCanvas hands the rendered canvas to the configured painter. Without a
// painter or before the first render it does nothing.
func (v *ProjectView) PaintCanvas() error {
	if v.painter == nil || v.canvas == nil {
		return nil
	}
	if err := v.painter.Paint(v.canvas); err != nil {
		return fmt.Errorf("paint canvas: %w", err)
	}
	return nil
}

// Prerender renders the view and then every frame once so their drawables
// are built.
func (v *ProjectView) Prerender() error {
	if err := v.Render(); err != nil {
		return err
	}
	frames := v.model.AllFrames()
	for _, f := range frames {
		f.Render()
	}
	v.log.Debug("prerendered frames", slog.Int("frames", len(frames)))
	return nil
}

// Resize sets the canvas view size to the container bounds. Without a
// container or canvas it does nothing.
func (v *ProjectView) Resize() {
	if v.container == nil || v.canvas == nil {
		return
	}
	v.canvas.SetViewSize(v.container.Bounds())
}

// ApplyChanges writes canvas edits of the selection and the focused
// timeline's active frames back into the model.
func (v *ProjectView) ApplyChanges() {
	v.model.Selection().ApplyChanges()
	for _, f := range v.model.Focus().Timeline().ActiveFrames() {
		f.ApplyChanges()
	}
}

// CalculateFitZoom is the zoom at which the whole project fits the canvas.
// Degenerate project sizes are logged and yield 1.
func (v *ProjectView) CalculateFitZoom() float64 {
	size := v.CanvasDimensions()
	z, err := FitZoom(size.W, size.H, v.model.Width(), v.model.Height())
	if err != nil {
		v.log.Warn("fit zoom undefined, using 1", slog.Any("err", err))
	}
	return z
}

// ScrollToZoom zooms the canvas by a wheel step unless the project is
// published.
func (v *ProjectView) ScrollToZoom(e WheelEvent) error {
	if v.model.IsPublished() || v.canvas == nil {
		return nil
	}
	v.canvas.SetZoom(wheelZoom(v.canvas.Zoom(), e))
	return v.applyZoomAndPanChangesFromCanvas()
}

func (v *ProjectView) buildCanvas() {
	if v.canvas != nil {
		return
	}
	v.canvas = newCanvas()
	v.phase = StateBuilt
	v.log.Debug("canvas built")
}

func (v *ProjectView) displayCanvasInContainer() {
	if v.container == nil {
		return
	}
	if v.container.Mounted() != v.canvas {
		v.container.Mount(v.canvas)
		v.Resize()
	}
}

func (v *ProjectView) updateCanvasBGColor() {
	focus := v.model.Focus()
	if focus.IsRoot() || v.settingBool(v.model.ToolSettings(), SettingOutsideClipShowBorder, false) {
		if v.canvasBG != nil {
			v.canvas.background = *v.canvasBG
		} else {
			v.canvas.background = DefaultCanvasBGColor
		}
		return
	}
	v.canvas.background = v.model.BackgroundColor()
}

// selectTool applies the tool decision table.
func (v *ProjectView) selectTool() {
	active := v.model.ActiveTool()
	switch {
	case v.model.Playing():
		v.tools.Activate(v.model.Tool(ToolInteract))
	case !v.model.CanDraw() && active != nil && active.IsDrawingTool():
		v.tools.Activate(v.model.Tool(ToolNone))
	default:
		v.tools.Activate(active)
	}
}

// drawPass repopulates the layer stack. Order, bottom to top: background,
// outer, frame layers, selection, GUI, black bars.
func (v *ProjectView) drawPass() {
	layers := v.canvas.layers
	layers.BeginFrame()

	if !v.tools.wired {
		v.tools.wire()
		v.phase = StateReady
	}
	v.selectTool()

	switch v.state.FitMode() {
	case FitFill:
		v.canvas.SetZoom(v.model.Zoom() * v.CalculateFitZoom())
	default:
		v.canvas.SetZoom(v.model.Zoom())
	}
	v.canvas.SetCenter(v.state.Offset().Neg())
	v.canvas.rotation = v.model.Rotation()

	v.projectScene(layers)
	layers.Push(LayerBackground)
	layers.Push(LayerOuter)

	tl := v.model.Focus().Timeline()
	tl.Render()
	var activeUUID string
	if f := v.model.ActiveFrame(); f != nil {
		activeUUID = f.UUID()
	}
	for _, fl := range tl.FrameLayers() {
		layers.PushFrameLayer(fl, activeUUID)
	}

	sel := v.model.Selection()
	sel.Render()
	layers.PushGroup(sel.Layer())

	if v.model.ShowClipBorders() && !v.model.Playing() && !v.model.IsPublished() {
		layers.Add(LayerGUI, v.clipBorders()...)
		layers.Push(LayerGUI)
	}
	if v.model.IsPublished() && v.model.RenderBlackBars() {
		layers.Add(LayerBorders, v.blackBars())
		layers.Push(LayerBorders)
	}
}

// applyZoomAndPanChangesFromCanvas clamps the canvas viewport after a user
// interaction, commits it to the model and renders again. In fill mode the
// model keeps the zoom relative to the fit zoom.
func (v *ProjectView) applyZoomAndPanChangesFromCanvas() error {
	v.canvas.SetZoom(ClampZoom(v.canvas.Zoom()))

	pan := ClampPan(v.Pan())
	v.model.SetPan(pan)

	zoom := v.canvas.Zoom()
	if v.state.FitMode() == FitFill {
		zoom = ClampZoom(zoom / v.CalculateFitZoom())
	}
	v.state.SetZoom(zoom)
	v.model.SetZoom(zoom)

	return v.Render()
}
