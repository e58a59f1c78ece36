/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Node is a scene-graph item that can be rendered by different backends.
// Bounds and Hit work in the coordinate space of the node's parent, i.e. after
// the node's own transform has been applied.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Hit(p Pt) bool
}

// Shape is a leaf node with paint and an outline in local coordinates.
type Shape interface {
	Node
	Fill() Fill
	Stroke() Stroke
	SetFill(Fill)
	SetStroke(Stroke)
	Outline() Path
}

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }
func (b *baseNode) SetFill(f Fill)          { b.fill = f }
func (b *baseNode) SetStroke(s Stroke)      { b.stroke = s }

// local maps a parent-space point into the node's own space.
func (b *baseNode) local(p Pt) (Pt, bool) {
	inv, ok := b.xf.Invert()
	if !ok {
		return Pt{}, false
	}
	return inv.Apply(p), true
}

// halfStroke is the hit tolerance added around stroked outlines.
func (b *baseNode) halfStroke() float64 {
	if !b.stroke.Enabled {
		return 0
	}
	return b.stroke.Width / 2
}

// RectNode draws an axis-aligned rectangle before transform.
type RectNode struct {
	baseNode
	rect Rect
}

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r}
}

func (n *RectNode) Rect() Rect     { return n.rect }
func (n *RectNode) SetRect(r Rect) { n.rect = r }
func (n *RectNode) Outline() Path  { return RectPath(n.rect) }
func (n *RectNode) Bounds() Rect   { return TransformBounds(n.rect, n.xf) }
func (n *RectNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok {
		return false
	}
	hs := n.halfStroke()
	return n.rect.Inset(-hs, -hs).Contains(q)
}

// EllipseNode represents an ellipse inside rect.
type EllipseNode struct {
	baseNode
	rect Rect
}

func NewEllipse(r Rect, f Fill, s Stroke) *EllipseNode {
	return &EllipseNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r}
}

func (n *EllipseNode) Rect() Rect    { return n.rect }
func (n *EllipseNode) Outline() Path { return EllipsePath(n.rect) }
func (n *EllipseNode) Bounds() Rect  { return TransformBounds(n.rect, n.xf) }

func (n *EllipseNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok {
		return false
	}
	// point-in-ellipse: ((x-cx)/rx)^2 + ((y-cy)/ry)^2 <= 1
	c := n.rect.Center()
	rx := n.rect.W/2 + n.halfStroke()
	ry := n.rect.H/2 + n.halfStroke()
	if rx == 0 || ry == 0 {
		return false
	}
	dx := (q.X - c.X) / rx
	dy := (q.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// LineNode is a single stroked segment. Fill is ignored.
type LineNode struct {
	baseNode
	from, to Pt
}

func NewLine(from, to Pt, s Stroke) *LineNode {
	return &LineNode{baseNode: baseNode{xf: Identity, stroke: s}, from: from, to: to}
}

func (n *LineNode) Ends() (Pt, Pt) { return n.from, n.to }

func (n *LineNode) Outline() Path {
	var p Path
	p.MoveTo(n.from.X, n.from.Y)
	p.LineTo(n.to.X, n.to.Y)
	return p
}

func (n *LineNode) Bounds() Rect {
	return TransformBounds(RectFromPoints(n.from, n.to), n.xf)
}

func (n *LineNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok {
		return false
	}
	tol := math.Max(n.halfStroke(), 0.5)
	return segmentDistance(q, n.from, n.to) <= tol
}

func segmentDistance(p, a, b Pt) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*d.X), p.Y-(a.Y+t*d.Y))
}

// PathNode references a path geometry.
type PathNode struct {
	baseNode
	path Path
	bbox Rect // cached approx bounds
}

func NewPath(p Path, f Fill, s Stroke) *PathNode {
	return &PathNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, path: p, bbox: p.Bounds()}
}

func (n *PathNode) Outline() Path { return n.path }
func (n *PathNode) Bounds() Rect  { return TransformBounds(n.bbox, n.xf) }

// Hit tests filled paths with their fill rule and falls back to the stroke
// tolerance band around the flattened outline.
func (n *PathNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok {
		return false
	}
	hs := n.halfStroke()
	if !n.bbox.Inset(-hs, -hs).Contains(q) {
		return false
	}
	polys := n.path.Flatten(8)
	if n.fill.Enabled && insidePolygons(q, polys, n.fill.Rule) {
		return true
	}
	if hs > 0 {
		for _, poly := range polys {
			for i := 1; i < len(poly); i++ {
				if segmentDistance(q, poly[i-1], poly[i]) <= hs {
					return true
				}
			}
		}
	}
	return false
}

func insidePolygons(p Pt, polys [][]Pt, rule FillRule) bool {
	winding, crossings := 0, 0
	for _, poly := range polys {
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			if (a.Y <= p.Y) != (b.Y <= p.Y) {
				x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
				if x > p.X {
					crossings++
					if b.Y > a.Y {
						winding++
					} else {
						winding--
					}
				}
			}
		}
	}
	if rule == EvenOdd {
		return crossings%2 == 1
	}
	return winding != 0
}

// Group is a container for child nodes with its own transform, opacity and
// lock state. Locked groups are skipped by interactive hit-testing.
type Group struct {
	xf       Affine2D
	Name     string
	Opacity  float64
	Visible  bool
	Locked   bool
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{xf: Identity, Opacity: 1, Visible: true}
	g.Children = append(g.Children, children...)
	return g
}

func (g *Group) Transform() Affine2D     { return g.xf }
func (g *Group) SetTransform(m Affine2D) { g.xf = m }

// Add appends children on top of the existing ones.
func (g *Group) Add(children ...Node) { g.Children = append(g.Children, children...) }

// Clear drops all children and keeps transform, opacity and lock state.
func (g *Group) Clear() { g.Children = nil }

func (g *Group) Len() int { return len(g.Children) }

// Remove detaches n from this group or any nested group.
// It reports whether n was found.
func (g *Group) Remove(n Node) bool {
	for i, c := range g.Children {
		if c == n {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			return true
		}
		if sub, ok := c.(*Group); ok && sub.Remove(n) {
			return true
		}
	}
	return false
}

// Contains reports whether n is g or a descendant of g.
func (g *Group) Contains(n Node) bool {
	if Node(g) == n {
		return true
	}
	for _, c := range g.Children {
		if c == n {
			return true
		}
		if sub, ok := c.(*Group); ok && sub.Contains(n) {
			return true
		}
	}
	return false
}

func (g *Group) Bounds() Rect {
	var b Rect
	first := true
	for _, c := range g.Children {
		cb := c.Bounds()
		if first {
			b = cb
			first = false
		} else {
			b = b.Union(cb)
		}
	}
	if first {
		return Rect{}
	}
	return TransformBounds(b, g.xf)
}

func (g *Group) Hit(p Pt) bool { return g.HitNode(p) != nil }

// HitNode returns the top-most leaf under p, or nil. Invisible and locked
// groups are never hit.
func (g *Group) HitNode(p Pt) Node {
	if !g.Visible || g.Locked {
		return nil
	}
	inv, ok := g.xf.Invert()
	if !ok {
		return nil
	}
	q := inv.Apply(p)
	for i := len(g.Children) - 1; i >= 0; i-- { // top-most first
		c := g.Children[i]
		if sub, ok := c.(*Group); ok {
			if hit := sub.HitNode(q); hit != nil {
				return hit
			}
			continue
		}
		if c.Hit(q) {
			return c
		}
	}
	return nil
}
