/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package view renders an animation project onto a canvas and keeps the
// viewport (zoom, pan, fit mode) in sync with the project model. It consumes
// the project only through the interfaces declared in this file.
package view

import "animview/internal/vector"

// Transformation places a clip relative to its parent clip. Rotation is in
// degrees.
type Transformation struct {
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
}

// Clip is a node of the clip hierarchy. ParentClip is a non-owning back
// reference and is nil for the root.
type Clip interface {
	UUID() string
	IsRoot() bool
	Transformation() Transformation
	ParentClip() Clip
	Timeline() Timeline
	// Group is the clip's rendered content as produced by the most recent
	// render of the timeline that contains it.
	Group() *vector.Group
	// Border is the GUI outline drawn around an unselected clip.
	Border() vector.Node
	IsSelected() bool
}

// LayerKind classifies frame-content layers.
type LayerKind string

const (
	KindPaths         LayerKind = "paths"
	KindClips         LayerKind = "clips"
	KindClipsAndPaths LayerKind = "clipsandpaths"
)

// FrameLayer is one drawable layer produced by a timeline render. Group.Locked
// carries the timeline's own lock state on entry to the compositor.
type FrameLayer struct {
	Group     *vector.Group
	Kind      LayerKind
	FrameUUID string
}

// Editable reports whether tools may draw directly into the layer.
func (l FrameLayer) Editable() bool {
	return l.Kind == KindPaths || l.Kind == KindClipsAndPaths
}

type Timeline interface {
	// Render rebuilds FrameLayers for the current playhead.
	Render()
	FrameLayers() []FrameLayer
	ActiveFrames() []Frame
}

type Frame interface {
	UUID() string
	Render()
	// ApplyChanges writes edits made on the canvas back into the frame.
	ApplyChanges()
	Clips() []Clip
	ParentLayerHidden() bool
}

type Selection interface {
	Render()
	Layer() *vector.Group
	ApplyChanges()
}

// Settings exposes editor tool settings by name. Unknown names yield nil.
type Settings interface {
	GetSetting(name string) any
}

// Tool is an input tool. Attach hands the tool the sink it reports into; the
// view calls it once per tool for its whole lifetime.
type Tool interface {
	Name() string
	IsDrawingTool() bool
	Attach(sink EventSink)
	Activate()
	Deactivate()
}

// Model is the subset of the project the view reads and writes.
type Model interface {
	Width() float64
	Height() float64
	Zoom() float64
	SetZoom(z float64)
	Pan() vector.Pt
	SetPan(p vector.Pt)
	Rotation() float64
	BackgroundColor() vector.Color

	Focus() Clip
	Root() Clip

	Tools() []Tool
	Tool(name string) Tool
	ActiveTool() Tool
	ToolSettings() Settings
	Selection() Selection

	IsPublished() bool
	Playing() bool
	ShowClipBorders() bool
	RenderBlackBars() bool
	PublishedMode() string

	ActiveFrames() []Frame
	// ActiveFrame is the frame drawing tools edit, or nil.
	ActiveFrame() Frame
	CanDraw() bool
	AllFrames() []Frame
}

// Setting names read by the view.
const (
	SettingOutsideClipStyle           = "outsideClipStyle"
	SettingOutsideClipShowBorder      = "outsideClipShowBorder"
	SettingOutsideClipStandardOpacity = "outsideClipStandardOpacity"
)

// Tool names the view activates on its own.
const (
	ToolNone     = "none"
	ToolInteract = "interact"
)

// PublishedModeImageSequence scales black bars by the device pixel ratio.
const PublishedModeImageSequence = "imageSequence"
