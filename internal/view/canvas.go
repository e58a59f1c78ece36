/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "animview/internal/vector"

// WheelEvent is a mouse wheel notification in the browser wheel convention:
// DeltaY is in lines and DeltaFactor converts lines to pixels.
type WheelEvent struct {
	DeltaY      float64
	DeltaFactor float64
}

// Canvas is the drawing surface owned by a ProjectView. It holds the viewport
// (view size, zoom, center, rotation), the container background color and the
// layer stack of the last render.
type Canvas struct {
	viewSize   vector.Size
	zoom       float64
	center     vector.Pt
	rotation   float64
	background vector.Color
	layers     *Compositor
	onWheel    func(WheelEvent) error
}

func newCanvas() *Canvas {
	return &Canvas{zoom: 1, layers: NewCompositor()}
}

func (c *Canvas) ViewSize() vector.Size     { return c.viewSize }
func (c *Canvas) SetViewSize(s vector.Size) { c.viewSize = s }
func (c *Canvas) Zoom() float64             { return c.zoom }
func (c *Canvas) SetZoom(z float64)         { c.zoom = z }
func (c *Canvas) Center() vector.Pt         { return c.center }
func (c *Canvas) SetCenter(p vector.Pt)     { c.center = p }
func (c *Canvas) Rotation() float64         { return c.rotation }
func (c *Canvas) Background() vector.Color  { return c.background }

// Layers returns the rendered layer stack bottom to top.
func (c *Canvas) Layers() []*vector.Group { return c.layers.Stack() }

// ActiveLayer is the unlocked frame layer drawing tools target, or nil.
func (c *Canvas) ActiveLayer() *vector.Group { return c.layers.Active() }

// ViewMatrix maps project coordinates to canvas pixels. The canvas center
// lands in the middle of the view.
func (c *Canvas) ViewMatrix() vector.Affine2D {
	return vector.Translate(c.viewSize.W/2, c.viewSize.H/2).
		Mul(vector.Scale(c.zoom, c.zoom)).
		Mul(vector.RotateDeg(c.rotation)).
		Mul(vector.Translate(-c.center.X, -c.center.Y))
}

func (c *Canvas) ProjectToView(p vector.Pt) vector.Pt { return c.ViewMatrix().Apply(p) }

// ViewToProject maps a canvas pixel back into project space. A zero zoom
// leaves the point unchanged.
func (c *Canvas) ViewToProject(p vector.Pt) vector.Pt {
	inv, ok := c.ViewMatrix().Invert()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// HitTest returns the top-most unlocked node under the canvas pixel p.
func (c *Canvas) HitTest(p vector.Pt) vector.Node {
	return c.layers.HitTest(c.ViewToProject(p))
}

// HandleWheel forwards a wheel event to the hook installed by the view.
// Before the view has wired its tools the event is ignored.
func (c *Canvas) HandleWheel(e WheelEvent) error {
	if c.onWheel == nil {
		return nil
	}
	return c.onWheel(e)
}
