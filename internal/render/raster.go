/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"

	xvector "golang.org/x/image/vector"

	alog "animview/internal/log"
	"animview/internal/vector"
	"animview/internal/view"
)

// flattenSegs is the number of line pieces per curve when stroking.
const flattenSegs = 8

// Raster paints the canvas into an RGBA image. Fills use the non-zero rule;
// x/image/vector has no even-odd mode.
type Raster struct {
	// Scale multiplies the canvas size, e.g. the device pixel ratio.
	Scale float64
	img   *image.RGBA
	log   *slog.Logger
}

func NewRaster(scale float64) *Raster {
	return &Raster{Scale: scale, log: alog.WithComponent("render")}
}

func (r *Raster) scale() float64 {
	if r.Scale <= 0 {
		return 1
	}
	return r.Scale
}

// Paint implements view.Painter.
func (r *Raster) Paint(c *view.Canvas) error {
	size, err := canvasSize(c)
	if err != nil {
		return err
	}
	s := r.scale()
	w, h := int(math.Ceil(size.W*s)), int(math.Ceil(size.H*s))
	r.img = newImage(w, h, c.Background())
	items := collect(c.Layers(), vector.Scale(s, s).Mul(c.ViewMatrix()))
	for _, it := range items {
		rasterize(r.img, it)
	}
	r.log.Debug("raster painted", slog.Int("width", w), slog.Int("height", h), slog.Int("shapes", len(items)))
	return nil
}

// Image returns the last painted image, or nil.
func (r *Raster) Image() *image.RGBA { return r.img }

// At samples the painted pixel under a canvas point.
func (r *Raster) At(p vector.Pt) (vector.Color, bool) {
	if r.img == nil {
		return vector.Color{}, false
	}
	s := r.scale()
	pt := image.Pt(int(math.Floor(p.X*s)), int(math.Floor(p.Y*s)))
	if !pt.In(r.img.Bounds()) {
		return vector.Color{}, false
	}
	c := color.NRGBAModel.Convert(r.img.At(pt.X, pt.Y)).(color.NRGBA)
	return vector.Color{R: c.R, G: c.G, B: c.B, A: c.A}, true
}

// Encode writes the image as PNG.
func (r *Raster) Encode(w io.Writer) error {
	if r.img == nil {
		return ErrNotPainted
	}
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Thumbnail rasterizes layers given in project space so that a project of
// size proj fits into maxSide pixels, and returns PNG bytes.
func Thumbnail(layers []*vector.Group, proj vector.Size, maxSide int, bg vector.Color) ([]byte, error) {
	if proj.Empty() {
		return nil, fmt.Errorf("%w: project %gx%g", ErrEmptyCanvas, proj.W, proj.H)
	}
	if maxSide <= 0 {
		return nil, fmt.Errorf("thumbnail size %d must be positive", maxSide)
	}
	s := float64(maxSide) / math.Max(proj.W, proj.H)
	w := max(1, int(math.Round(proj.W*s)))
	h := max(1, int(math.Round(proj.H*s)))
	img := newImage(w, h, bg)
	for _, it := range collect(layers, vector.Scale(s, s)) {
		rasterize(img, it)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func newImage(w, h int, bg vector.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(nrgba(bg)), image.Point{}, draw.Src)
	return img
}

func nrgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func rasterize(dst *image.RGBA, it item) {
	b := dst.Bounds()
	outline := it.shape.Outline().Transform(it.m)
	if f := it.shape.Fill(); f.Enabled && f.Color.A > 0 {
		z := xvector.NewRasterizer(b.Dx(), b.Dy())
		tracePath(z, outline)
		z.Draw(dst, b, image.NewUniform(nrgba(f.Color.WithOpacity(it.opacity))), image.Point{})
	}
	if s := it.shape.Stroke(); s.Enabled && s.Width > 0 && s.Color.A > 0 {
		w := s.Width * it.m.ScaleFactor()
		z := xvector.NewRasterizer(b.Dx(), b.Dy())
		for _, poly := range outline.Flatten(flattenSegs) {
			strokePolyline(z, poly, w)
		}
		z.Draw(dst, b, image.NewUniform(nrgba(s.Color.WithOpacity(it.opacity))), image.Point{})
	}
}

func f32(v float64) float32 { return float32(v) }

// tracePath feeds p to z, closing every subpath.
func tracePath(z *xvector.Rasterizer, p vector.Path) {
	open := false
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(f32(d[0]), f32(d[1]))
			open = true
		case vector.LineTo:
			z.LineTo(f32(d[0]), f32(d[1]))
		case vector.QuadTo:
			z.QuadTo(f32(d[0]), f32(d[1]), f32(d[2]), f32(d[3]))
		case vector.CubicTo:
			z.CubeTo(f32(d[0]), f32(d[1]), f32(d[2]), f32(d[3]), f32(d[4]), f32(d[5]))
		case vector.Close:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
}

// strokePolyline adds one quad per segment. Segments are extended by half
// the width at both ends so joins have no gaps. All quads share the same
// winding so overlaps do not cancel.
func strokePolyline(z *xvector.Rasterizer, poly []vector.Pt, w float64) {
	hw := w / 2
	for i := 1; i < len(poly); i++ {
		a, b := poly[i-1], poly[i]
		d := b.Sub(a)
		l := math.Hypot(d.X, d.Y)
		if l == 0 {
			continue
		}
		u := vector.Pt{X: d.X / l * hw, Y: d.Y / l * hw}
		n := vector.Pt{X: -u.Y, Y: u.X}
		a, b = a.Sub(u), b.Add(u)
		p0, p1, p2, p3 := a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)
		z.MoveTo(f32(p0.X), f32(p0.Y))
		z.LineTo(f32(p1.X), f32(p1.Y))
		z.LineTo(f32(p2.X), f32(p2.Y))
		z.LineTo(f32(p3.X), f32(p3.Y))
		z.ClosePath()
	}
}
