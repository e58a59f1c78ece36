/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "animview/internal/vector"

// LayerID indexes the persistent layers owned by the view.
type LayerID int

const (
	LayerBackground LayerID = iota
	LayerOuter
	LayerBorders
	LayerGUI
	layerCount
)

var layerNames = [layerCount]string{
	LayerBackground: "project_bg",
	LayerOuter:      "project_outer",
	LayerBorders:    "project_borders",
	LayerGUI:        "project_gui",
}

func (id LayerID) String() string {
	if id < 0 || id >= layerCount {
		return "unknown"
	}
	return layerNames[id]
}

// Compositor owns the persistent layers and the per-frame stacking order.
// Persistent layers live in a fixed arena and are never reallocated, so
// handles taken from Layer stay valid for the lifetime of the view.
type Compositor struct {
	arena  [layerCount]*vector.Group
	stack  []*vector.Group
	active *vector.Group
}

func NewCompositor() *Compositor {
	c := &Compositor{}
	for id := range c.arena {
		g := vector.NewGroup()
		g.Name = LayerID(id).String()
		g.Locked = true
		c.arena[id] = g
	}
	return c
}

// Layer returns the persistent layer for id.
func (c *Compositor) Layer(id LayerID) *vector.Group { return c.arena[id] }

// BeginFrame empties the stack and resets every persistent layer to an
// empty, locked, opaque, untransformed state.
func (c *Compositor) BeginFrame() {
	c.stack = c.stack[:0]
	c.active = nil
	for _, g := range c.arena {
		g.Clear()
		g.SetTransform(vector.Identity)
		g.Locked = true
		g.Opacity = 1
		g.Visible = true
	}
}

// Add appends drawables to a persistent layer.
func (c *Compositor) Add(id LayerID, nodes ...vector.Node) { c.arena[id].Add(nodes...) }

// Push places a persistent layer on top of the stack.
func (c *Compositor) Push(id LayerID) { c.stack = append(c.stack, c.arena[id]) }

// PushGroup places an externally owned layer, such as the selection layer,
// on top of the stack without touching its lock state.
func (c *Compositor) PushGroup(g *vector.Group) {
	if g == nil {
		return
	}
	c.stack = append(c.stack, g)
}

// PushFrameLayer stacks a frame-content layer. The layer stays unlocked only
// when it is editable, not locked by its timeline, and belongs to
// activeFrame; it then becomes the active layer. All others are locked.
func (c *Compositor) PushFrameLayer(l FrameLayer, activeFrame string) {
	if l.Group == nil {
		return
	}
	if activeFrame != "" && !l.Group.Locked && l.Editable() && l.FrameUUID == activeFrame {
		c.active = l.Group
	} else {
		l.Group.Locked = true
	}
	c.stack = append(c.stack, l.Group)
}

// Stack returns the layers bottom to top.
func (c *Compositor) Stack() []*vector.Group {
	out := make([]*vector.Group, len(c.stack))
	copy(out, c.stack)
	return out
}

// Active is the frame layer tools draw into, or nil.
func (c *Compositor) Active() *vector.Group { return c.active }

// HitTest returns the top-most node under p (project space) on an unlocked,
// visible layer.
func (c *Compositor) HitTest(p vector.Pt) vector.Node {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if n := c.stack[i].HitNode(p); n != nil {
			return n
		}
	}
	return nil
}
