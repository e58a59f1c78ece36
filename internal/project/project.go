/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package project is an in-memory animation project: a clip tree with
// timelines, layers and frames, a selection, tools and tool settings. It
// implements view.Model.
package project

import (
	"fmt"
	"log/slog"

	alog "animview/internal/log"
	"animview/internal/vector"
	"animview/internal/view"
)

// Project is the editor's document state.
type Project struct {
	Name            string
	width, height   float64
	zoom            float64
	pan             vector.Pt
	rotation        float64
	background      vector.Color
	root            *Clip
	focus           *Clip
	tools           []view.Tool
	activeTool      string
	settings        *ToolSettings
	selection       *Selection
	published       bool
	playing         bool
	showClipBorders bool
	renderBlackBars bool
	publishedMode   string
	log             *slog.Logger
}

// New creates a w x h project with a white background, focused on its root.
func New(name string, w, h float64) *Project {
	root := NewClip("root")
	sel := NewSelection()
	return &Project{
		Name:            name,
		width:           w,
		height:          h,
		zoom:            1,
		background:      vector.White,
		root:            root,
		focus:           root,
		tools:           DefaultTools(sel),
		activeTool:      "cursor",
		settings:        NewToolSettings(),
		selection:       sel,
		showClipBorders: true,
		renderBlackBars: true,
		log:             alog.WithComponent("project"),
	}
}

func (p *Project) Width() float64                { return p.width }
func (p *Project) Height() float64               { return p.height }
func (p *Project) Zoom() float64                 { return p.zoom }
func (p *Project) SetZoom(z float64)             { p.zoom = z }
func (p *Project) Pan() vector.Pt                { return p.pan }
func (p *Project) SetPan(v vector.Pt)            { p.pan = v }
func (p *Project) Rotation() float64             { return p.rotation }
func (p *Project) SetRotation(deg float64)       { p.rotation = deg }
func (p *Project) BackgroundColor() vector.Color { return p.background }
func (p *Project) SetBackgroundColor(c vector.Color) {
	p.background = c
}

func (p *Project) Focus() view.Clip { return p.focus }
func (p *Project) Root() view.Clip  { return p.root }

// RootClip and FocusClip return the concrete clips.
func (p *Project) RootClip() *Clip  { return p.root }
func (p *Project) FocusClip() *Clip { return p.focus }

// SetFocus enters c for editing and clears the selection. c must belong to
// this project.
func (p *Project) SetFocus(c *Clip) error {
	if c == nil {
		return fmt.Errorf("set focus: nil clip")
	}
	if !p.owns(c) {
		return fmt.Errorf("set focus: clip %s is not part of project %q", c.UUID(), p.Name)
	}
	p.selection.Clear()
	p.focus = c
	p.log.Debug("focus changed", slog.String("clip", c.Name), slog.String("uuid", c.UUID()))
	return nil
}

func (p *Project) owns(c *Clip) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur == p.root {
			return true
		}
	}
	return false
}

// FindClip looks a clip up by UUID or name, depth first from the root.
func (p *Project) FindClip(key string) *Clip {
	var walk func(c *Clip) *Clip
	walk = func(c *Clip) *Clip {
		if c.id == key || c.Name == key {
			return c
		}
		for _, f := range c.timeline.frames() {
			for _, child := range f.clips {
				if hit := walk(child); hit != nil {
					return hit
				}
			}
		}
		return nil
	}
	return walk(p.root)
}

func (p *Project) Tools() []view.Tool { return append([]view.Tool(nil), p.tools...) }

// Tool returns the tool called name, or nil.
func (p *Project) Tool(name string) view.Tool {
	for _, t := range p.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

func (p *Project) ActiveTool() view.Tool { return p.Tool(p.activeTool) }

// SetActiveTool selects the tool the view activates when editing is possible.
func (p *Project) SetActiveTool(name string) error {
	if p.Tool(name) == nil {
		return fmt.Errorf("unknown tool %q", name)
	}
	p.activeTool = name
	return nil
}

func (p *Project) ToolSettings() view.Settings  { return p.settings }
func (p *Project) Settings() *ToolSettings      { return p.settings }
func (p *Project) Selection() view.Selection    { return p.selection }
func (p *Project) ProjectSelection() *Selection { return p.selection }
func (p *Project) IsPublished() bool            { return p.published }
func (p *Project) SetPublished(b bool)          { p.published = b }
func (p *Project) Playing() bool                { return p.playing }
func (p *Project) SetPlaying(b bool)            { p.playing = b }
func (p *Project) ShowClipBorders() bool        { return p.showClipBorders }
func (p *Project) SetShowClipBorders(b bool)    { p.showClipBorders = b }
func (p *Project) RenderBlackBars() bool        { return p.renderBlackBars }
func (p *Project) SetRenderBlackBars(b bool)    { p.renderBlackBars = b }
func (p *Project) PublishedMode() string        { return p.publishedMode }
func (p *Project) SetPublishedMode(mode string) { p.publishedMode = mode }

// ActiveFrames are the frames under the playhead of the focused timeline.
func (p *Project) ActiveFrames() []view.Frame { return p.focus.timeline.ActiveFrames() }

// activeFrame is the frame of the focused timeline's active layer under the
// playhead.
func (p *Project) activeFrame() *Frame {
	l := p.focus.timeline.ActiveLayer()
	if l == nil {
		return nil
	}
	return l.FrameAt(p.focus.timeline.playhead)
}

func (p *Project) ActiveFrame() view.Frame {
	if f := p.activeFrame(); f != nil {
		return f
	}
	return nil
}

// CanDraw reports whether drawing tools have a frame to edit: an active frame
// on a visible, unlocked layer.
func (p *Project) CanDraw() bool {
	f := p.activeFrame()
	return f != nil && !f.layer.Locked && !f.layer.Hidden
}

// AllFrames lists every frame in the project, nested clips included.
func (p *Project) AllFrames() []view.Frame {
	frames := p.root.timeline.frames()
	out := make([]view.Frame, len(frames))
	for i, f := range frames {
		out[i] = f
	}
	return out
}
