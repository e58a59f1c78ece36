/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and shapes.

import "math"

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// RectPath is the closed outline of r.
func RectPath(r Rect) Path {
	var p Path
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.X+r.W, r.Y)
	p.LineTo(r.X+r.W, r.Y+r.H)
	p.LineTo(r.X, r.Y+r.H)
	p.Close()
	return p
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// EllipsePath approximates the ellipse inscribed in r with four cubics.
func EllipsePath(r Rect) Path {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	rx, ry := r.W/2, r.H/2
	ox, oy := rx*kappa, ry*kappa
	var p Path
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
	return p
}

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		n := PathCmd{Op: c.Op}
		for j := 0; j+1 < len(c.Data); j += 2 {
			if j/2 >= pointsIn(c.Op) {
				break
			}
			q := m.Apply(Pt{c.Data[j], c.Data[j+1]})
			n.Data[j], n.Data[j+1] = q.X, q.Y
		}
		out.Cmds[i] = n
	}
	return out
}

func pointsIn(op PathOp) int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	default:
		return 0
	}
}

// Flatten converts the path into polylines, subdividing curves into segs
// straight pieces each. Closed subpaths repeat their first point at the end.
func (p Path) Flatten(segs int) [][]Pt {
	if segs < 1 {
		segs = 1
	}
	var out [][]Pt
	var cur []Pt
	var last, start Pt
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			flush()
			last = Pt{c.Data[0], c.Data[1]}
			start = last
			cur = []Pt{last}
		case LineTo:
			last = Pt{c.Data[0], c.Data[1]}
			cur = append(cur, last)
		case QuadTo:
			p0, p1, p2 := last, Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}
			for i := 1; i <= segs; i++ {
				t := float64(i) / float64(segs)
				u := 1 - t
				cur = append(cur, Pt{
					X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
					Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
				})
			}
			last = p2
		case CubicTo:
			p0, p1, p2, p3 := last, Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}, Pt{c.Data[4], c.Data[5]}
			for i := 1; i <= segs; i++ {
				t := float64(i) / float64(segs)
				u := 1 - t
				cur = append(cur, Pt{
					X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
					Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
				})
			}
			last = p3
		case Close:
			if len(cur) > 0 {
				cur = append(cur, start)
			}
			last = start
		}
	}
	flush()
	return out
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points. This is sufficient for
// selection rectangles and clip borders.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range p.Cmds {
		for i := 0; i < pointsIn(c.Op); i++ {
			x, y := c.Data[2*i], c.Data[2*i+1]
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
