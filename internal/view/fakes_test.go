/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "animview/internal/vector"

type fakeClip struct {
	uuid     string
	root     bool
	xf       Transformation
	parent   *fakeClip
	tl       *fakeTimeline
	group    *vector.Group
	selected bool
	border   vector.Node
}

func (c *fakeClip) UUID() string                   { return c.uuid }
func (c *fakeClip) IsRoot() bool                   { return c.root }
func (c *fakeClip) Transformation() Transformation { return c.xf }
func (c *fakeClip) Timeline() Timeline             { return c.tl }
func (c *fakeClip) Group() *vector.Group           { return c.group }
func (c *fakeClip) Border() vector.Node            { return c.border }
func (c *fakeClip) IsSelected() bool               { return c.selected }
func (c *fakeClip) ParentClip() Clip {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

type fakeLayerSpec struct {
	kind   LayerKind
	frame  string
	locked bool
	group  *vector.Group
}

type fakeTimeline struct {
	specs   []*fakeLayerSpec
	frames  []Frame
	renders int
}

func (t *fakeTimeline) Render() {
	t.renders++
	for _, s := range t.specs {
		s.group.Locked = s.locked
	}
}

func (t *fakeTimeline) FrameLayers() []FrameLayer {
	out := make([]FrameLayer, len(t.specs))
	for i, s := range t.specs {
		out[i] = FrameLayer{Group: s.group, Kind: s.kind, FrameUUID: s.frame}
	}
	return out
}

func (t *fakeTimeline) ActiveFrames() []Frame { return t.frames }

type fakeFrame struct {
	uuid    string
	renders int
	applied int
	clips   []Clip
	hidden  bool
}

func (f *fakeFrame) UUID() string            { return f.uuid }
func (f *fakeFrame) Render()                 { f.renders++ }
func (f *fakeFrame) ApplyChanges()           { f.applied++ }
func (f *fakeFrame) Clips() []Clip           { return f.clips }
func (f *fakeFrame) ParentLayerHidden() bool { return f.hidden }

type fakeSelection struct {
	layer   *vector.Group
	renders int
	applied int
}

func (s *fakeSelection) Render()              { s.renders++ }
func (s *fakeSelection) Layer() *vector.Group { return s.layer }
func (s *fakeSelection) ApplyChanges()        { s.applied++ }

type fakeSettings map[string]any

func (s fakeSettings) GetSetting(name string) any { return s[name] }

type fakeTool struct {
	name        string
	drawing     bool
	sink        EventSink
	attached    int
	active      bool
	activations int
}

func (t *fakeTool) Name() string          { return t.name }
func (t *fakeTool) IsDrawingTool() bool   { return t.drawing }
func (t *fakeTool) Attach(sink EventSink) { t.sink = sink; t.attached++ }
func (t *fakeTool) Activate()             { t.active = true; t.activations++ }
func (t *fakeTool) Deactivate()           { t.active = false }

type fakeModel struct {
	w, h            float64
	zoom            float64
	pan             vector.Pt
	rotation        float64
	bg              vector.Color
	focus, root     *fakeClip
	tools           []*fakeTool
	activeTool      string
	settings        fakeSettings
	selection       *fakeSelection
	published       bool
	playing         bool
	showClipBorders bool
	blackBars       bool
	publishedMode   string
	activeFrames    []Frame
	activeFrame     *fakeFrame
	canDraw         bool
	allFrames       []Frame
}

func (m *fakeModel) Width() float64                { return m.w }
func (m *fakeModel) Height() float64               { return m.h }
func (m *fakeModel) Zoom() float64                 { return m.zoom }
func (m *fakeModel) SetZoom(z float64)             { m.zoom = z }
func (m *fakeModel) Pan() vector.Pt                { return m.pan }
func (m *fakeModel) SetPan(p vector.Pt)            { m.pan = p }
func (m *fakeModel) Rotation() float64             { return m.rotation }
func (m *fakeModel) BackgroundColor() vector.Color { return m.bg }
func (m *fakeModel) Focus() Clip                   { return m.focus }
func (m *fakeModel) Root() Clip                    { return m.root }
func (m *fakeModel) ToolSettings() Settings        { return m.settings }
func (m *fakeModel) Selection() Selection          { return m.selection }
func (m *fakeModel) IsPublished() bool             { return m.published }
func (m *fakeModel) Playing() bool                 { return m.playing }
func (m *fakeModel) ShowClipBorders() bool         { return m.showClipBorders }
func (m *fakeModel) RenderBlackBars() bool         { return m.blackBars }
func (m *fakeModel) PublishedMode() string         { return m.publishedMode }
func (m *fakeModel) ActiveFrames() []Frame         { return m.activeFrames }
func (m *fakeModel) CanDraw() bool                 { return m.canDraw }
func (m *fakeModel) AllFrames() []Frame            { return m.allFrames }

func (m *fakeModel) ActiveFrame() Frame {
	if m.activeFrame == nil {
		return nil
	}
	return m.activeFrame
}

func (m *fakeModel) Tools() []Tool {
	out := make([]Tool, len(m.tools))
	for i, t := range m.tools {
		out[i] = t
	}
	return out
}

func (m *fakeModel) Tool(name string) Tool {
	if t := m.fakeTool(name); t != nil {
		return t
	}
	return nil
}

func (m *fakeModel) fakeTool(name string) *fakeTool {
	for _, t := range m.tools {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (m *fakeModel) ActiveTool() Tool { return m.Tool(m.activeTool) }

// newFakeModel builds a w x h project at root focus with one editable frame
// layer whose frame is active, and the tools none, interact, cursor, zoom and
// brush.
func newFakeModel(w, h float64) *fakeModel {
	frame := &fakeFrame{uuid: "frame-1"}
	content := vector.NewGroup(vector.NewRect(vector.R(10, 10, 20, 20), vector.SolidFill(vector.Black), vector.Stroke{}))
	tl := &fakeTimeline{
		specs:  []*fakeLayerSpec{{kind: KindPaths, frame: frame.uuid, group: content}},
		frames: []Frame{frame},
	}
	root := &fakeClip{uuid: "root", root: true, tl: tl, xf: Transformation{ScaleX: 1, ScaleY: 1}}
	return &fakeModel{
		w: w, h: h,
		zoom:       1,
		bg:         vector.White,
		focus:      root,
		root:       root,
		activeTool: "cursor",
		tools: []*fakeTool{
			{name: ToolNone},
			{name: ToolInteract},
			{name: "cursor"},
			{name: "zoom"},
			{name: "brush", drawing: true},
		},
		settings: fakeSettings{
			SettingOutsideClipStyle:           "standard",
			SettingOutsideClipShowBorder:      false,
			SettingOutsideClipStandardOpacity: 0.5,
		},
		selection:    &fakeSelection{layer: vector.NewGroup()},
		activeFrames: []Frame{frame},
		activeFrame:  frame,
		canDraw:      true,
		allFrames:    []Frame{frame},
	}
}

// nest adds a clip with transformation xf inside parent and returns it. The
// clip's group wraps its own timeline layer and is placed on the parent's
// first frame layer, so deeper clips are descendants of their ancestors'
// groups.
func nest(parent *fakeClip, uuid string, xf Transformation) *fakeClip {
	frame := &fakeFrame{uuid: uuid + "-frame"}
	inner := vector.NewGroup()
	group := vector.NewGroup(vector.NewRect(vector.R(0, 0, 5, 5), vector.SolidFill(vector.Black), vector.Stroke{}), inner)
	group.SetTransform(vector.Translate(xf.X, xf.Y))
	if len(parent.tl.specs) > 0 {
		parent.tl.specs[0].group.Add(group)
	}
	return &fakeClip{
		uuid:   uuid,
		xf:     xf,
		parent: parent,
		group:  group,
		tl: &fakeTimeline{
			specs:  []*fakeLayerSpec{{kind: KindClipsAndPaths, frame: frame.uuid, group: inner}},
			frames: []Frame{frame},
		},
	}
}

// recordingPainter counts paints and can run a hook during Paint.
type recordingPainter struct {
	paints int
	hook   func(c *Canvas) error
}

func (p *recordingPainter) Paint(c *Canvas) error {
	p.paints++
	if p.hook != nil {
		return p.hook(c)
	}
	return nil
}
