/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import (
	"math"

	"github.com/google/uuid"

	"animview/internal/vector"
	"animview/internal/view"
)

// ClipBorderColor outlines unselected clips in the editor GUI layer.
var ClipBorderColor = vector.MustParseColor("#00ADEF")

// Clip is a nested, independently transformable sub-scene.
type Clip struct {
	id       string
	Name     string
	xf       view.Transformation
	parent   *Clip
	timeline *Timeline
	group    *vector.Group
	selected bool
}

// NewClip creates a clip with an identity transformation and an empty
// timeline holding one layer with one frame.
func NewClip(name string) *Clip {
	c := &Clip{id: uuid.NewString(), Name: name, xf: view.Transformation{ScaleX: 1, ScaleY: 1}}
	c.timeline = NewTimeline(c)
	return c
}

func (c *Clip) UUID() string                        { return c.id }
func (c *Clip) IsRoot() bool                        { return c.parent == nil }
func (c *Clip) Transformation() view.Transformation { return c.xf }
func (c *Clip) IsSelected() bool                    { return c.selected }
func (c *Clip) Timeline() view.Timeline             { return c.timeline }
func (c *Clip) Group() *vector.Group                { return c.group }

// ClipTimeline is Timeline with the concrete type.
func (c *Clip) ClipTimeline() *Timeline { return c.timeline }

func (c *Clip) SetTransformation(t view.Transformation) { c.xf = t }

// ParentClip returns nil for the root.
func (c *Clip) ParentClip() view.Clip {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

// Matrix maps the clip's local space into its parent's space.
func (c *Clip) Matrix() vector.Affine2D {
	return vector.Translate(c.xf.X, c.xf.Y).
		Mul(vector.RotateDeg(c.xf.Rotation)).
		Mul(vector.Scale(c.xf.ScaleX, c.xf.ScaleY))
}

// setMatrix decomposes m into translation, rotation and scale. Shear is
// folded into the vertical scale.
func (c *Clip) setMatrix(m vector.Affine2D) {
	sx := math.Hypot(m.A, m.B)
	if sx == 0 {
		return
	}
	c.xf = view.Transformation{
		X:        m.E,
		Y:        m.F,
		Rotation: math.Atan2(m.B, m.A) * 180 / math.Pi,
		ScaleX:   sx,
		ScaleY:   m.Det() / sx,
	}
}

// render rebuilds the clip's group from its own timeline.
func (c *Clip) render() *vector.Group {
	c.timeline.Render()
	g := vector.NewGroup()
	g.Name = "clip:" + c.id
	g.SetTransform(c.Matrix())
	for _, fl := range c.timeline.frameLayers {
		g.Add(fl.Group)
	}
	c.group = g
	return g
}

// Border is the rectangle around the clip's rendered bounds.
func (c *Clip) Border() vector.Node {
	if c.group == nil {
		return nil
	}
	b := c.group.Bounds()
	return vector.NewRect(b, vector.Fill{}, vector.SolidStroke(ClipBorderColor, 1))
}

// Timeline holds layers of frames. Layers are ordered bottom to top.
type Timeline struct {
	clip        *Clip
	Layers      []*Layer
	playhead    int
	activeLayer int
	frameLayers []view.FrameLayer
}

func NewTimeline(c *Clip) *Timeline {
	t := &Timeline{clip: c, playhead: 1}
	t.AddLayer(NewLayer("Layer 1")).AddFrame(NewFrame(1, 1))
	return t
}

// AddLayer puts l on top and returns it.
func (t *Timeline) AddLayer(l *Layer) *Layer {
	l.timeline = t
	t.Layers = append(t.Layers, l)
	return l
}

// Playhead is 1-based.
func (t *Timeline) Playhead() int { return t.playhead }

func (t *Timeline) SetPlayhead(p int) {
	if p < 1 {
		p = 1
	}
	t.playhead = p
}

// ActiveLayer is the layer drawing tools target, or nil.
func (t *Timeline) ActiveLayer() *Layer {
	if t.activeLayer < 0 || t.activeLayer >= len(t.Layers) {
		return nil
	}
	return t.Layers[t.activeLayer]
}

func (t *Timeline) SetActiveLayer(i int) { t.activeLayer = i }

// ActiveFrames are the frames under the playhead on every layer.
func (t *Timeline) ActiveFrames() []view.Frame {
	var out []view.Frame
	for _, l := range t.Layers {
		if f := l.FrameAt(t.playhead); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Render rebuilds the frame layers of every visible layer: for each frame a
// clips layer followed by a paths layer, both locked when the layer is.
func (t *Timeline) Render() {
	t.frameLayers = t.frameLayers[:0]
	for _, l := range t.Layers {
		if l.Hidden {
			continue
		}
		f := l.FrameAt(t.playhead)
		if f == nil {
			continue
		}
		f.Render()
		f.clipsGroup.Locked = l.Locked
		f.pathsGroup.Locked = l.Locked
		t.frameLayers = append(t.frameLayers,
			view.FrameLayer{Group: f.clipsGroup, Kind: view.KindClips, FrameUUID: f.id},
			view.FrameLayer{Group: f.pathsGroup, Kind: view.KindPaths, FrameUUID: f.id},
		)
	}
}

func (t *Timeline) FrameLayers() []view.FrameLayer {
	out := make([]view.FrameLayer, len(t.frameLayers))
	copy(out, t.frameLayers)
	return out
}

// frames lists every frame of the timeline and of nested clips.
func (t *Timeline) frames() []*Frame {
	var out []*Frame
	for _, l := range t.Layers {
		for _, f := range l.Frames {
			out = append(out, f)
			for _, c := range f.clips {
				out = append(out, c.timeline.frames()...)
			}
		}
	}
	return out
}

type Layer struct {
	id       string
	Name     string
	Locked   bool
	Hidden   bool
	Frames   []*Frame
	timeline *Timeline
}

func NewLayer(name string) *Layer { return &Layer{id: uuid.NewString(), Name: name} }

func (l *Layer) UUID() string { return l.id }

// AddFrame appends f to the layer and returns it.
func (l *Layer) AddFrame(f *Frame) *Frame {
	f.layer = l
	l.Frames = append(l.Frames, f)
	return f
}

// FrameAt returns the frame spanning playhead p, or nil.
func (l *Layer) FrameAt(p int) *Frame {
	for _, f := range l.Frames {
		if p >= f.Start && p <= f.End {
			return f
		}
	}
	return nil
}

// Frame is a span of the timeline with vector content and child clips.
type Frame struct {
	id         string
	Start, End int
	shapes     []vector.Shape
	clips      []*Clip
	layer      *Layer
	pathsGroup *vector.Group
	clipsGroup *vector.Group
	renders    int
}

func NewFrame(start, end int) *Frame {
	if end < start {
		end = start
	}
	return &Frame{id: uuid.NewString(), Start: start, End: end, pathsGroup: vector.NewGroup(), clipsGroup: vector.NewGroup()}
}

func (f *Frame) UUID() string { return f.id }

// AddShape appends drawn content to the frame and to its rendered paths.
func (f *Frame) AddShape(s vector.Shape) {
	f.shapes = append(f.shapes, s)
	f.pathsGroup.Add(s)
}

func (f *Frame) Shapes() []vector.Shape { return append([]vector.Shape(nil), f.shapes...) }

// AddClip nests c inside this frame.
func (f *Frame) AddClip(c *Clip) {
	if f.layer != nil && f.layer.timeline != nil {
		c.parent = f.layer.timeline.clip
	}
	f.clips = append(f.clips, c)
}

func (f *Frame) Clips() []view.Clip {
	out := make([]view.Clip, len(f.clips))
	for i, c := range f.clips {
		out[i] = c
	}
	return out
}

func (f *Frame) ParentLayerHidden() bool { return f.layer != nil && f.layer.Hidden }

// Groups returns the frame's rendered clips and paths groups, bottom to top.
func (f *Frame) Groups() []*vector.Group { return []*vector.Group{f.clipsGroup, f.pathsGroup} }

// Renders counts Render calls.
func (f *Frame) Renders() int { return f.renders }

// Render rebuilds the paths and clips groups from the frame's content.
func (f *Frame) Render() {
	f.renders++
	f.pathsGroup = vector.NewGroup()
	f.pathsGroup.Name = "paths:" + f.id
	for _, s := range f.shapes {
		f.pathsGroup.Add(s)
	}
	f.clipsGroup = vector.NewGroup()
	f.clipsGroup.Name = "clips:" + f.id
	for _, c := range f.clips {
		f.clipsGroup.Add(c.render())
	}
}

// ApplyChanges takes the canvas state of the paths group as the frame's
// content and copies clip group transforms back into clip transformations.
// Frames that were never rendered have nothing to take back.
func (f *Frame) ApplyChanges() {
	if f.renders == 0 {
		return
	}
	var shapes []vector.Shape
	for _, n := range f.pathsGroup.Children {
		if s, ok := n.(vector.Shape); ok {
			shapes = append(shapes, s)
		}
	}
	f.shapes = shapes
	for _, c := range f.clips {
		if c.group != nil {
			c.setMatrix(c.group.Transform())
		}
	}
}
