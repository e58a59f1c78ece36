/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry and transforms in project units.
// Rotations are expressed in degrees at the API surface (editor convention) and
// converted to radians only when building matrices.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Add returns p+q.
func (p Pt) Add(q Pt) Pt { return Pt{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Pt) Sub(q Pt) Pt { return Pt{p.X - q.X, p.Y - q.Y} }

// Neg returns -p.
func (p Pt) Neg() Pt { return Pt{-p.X, -p.Y} }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Empty reports whether either side is zero or negative.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints builds the rectangle spanned by two corners in any order.
func RectFromPoints(a, b Pt) Rect {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Corners returns the four corners clockwise from the min corner.
func (r Rect) Corners() [4]Pt {
	return [4]Pt{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
}

// TransformBounds returns the axis-aligned bounds of r after applying m.
func TransformBounds(r Rect, m Affine2D) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range r.Corners() {
		p := m.Apply(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n: the result applies n first, then m.
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Prepend returns a transform that applies m first and then k.
func (m Affine2D) Prepend(k Affine2D) Affine2D { return k.Mul(m) }

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Det returns the determinant of the linear part.
func (m Affine2D) Det() float64 { return m.A*m.D - m.B*m.C }

// ScaleFactor is the geometric mean scale of the linear part, used to map
// stroke widths through a transform.
func (m Affine2D) ScaleFactor() float64 { return math.Sqrt(math.Abs(m.Det())) }

// Invert computes the inverse of m. Singular matrices yield Identity and false.
func (m Affine2D) Invert() (Affine2D, bool) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity, false
	}
	invDet := 1 / det
	return Affine2D{
		A: m.D * invDet,
		B: -m.B * invDet,
		C: -m.C * invDet,
		D: m.A * invDet,
		E: (m.C*m.F - m.D*m.E) * invDet,
		F: (m.B*m.E - m.A*m.F) * invDet,
	}, true
}

// Near reports whether every coefficient of m and n differs by at most eps.
func (m Affine2D) Near(n Affine2D, eps float64) bool {
	return math.Abs(m.A-n.A) <= eps && math.Abs(m.B-n.B) <= eps &&
		math.Abs(m.C-n.C) <= eps && math.Abs(m.D-n.D) <= eps &&
		math.Abs(m.E-n.E) <= eps && math.Abs(m.F-n.F) <= eps
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// RotateDeg rotates about the origin by deg degrees.
func RotateDeg(deg float64) Affine2D { return Rotate(deg * math.Pi / 180) }

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
