/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	alog "animview/internal/log"
	"animview/internal/vector"
	"animview/internal/version"
	"animview/internal/view"
)

// PDF paints the canvas onto a single page whose size in points equals the
// canvas size in pixels. Curves stay curves.
type PDF struct {
	Title string
	doc   *gofpdf.Fpdf
	log   *slog.Logger
}

func NewPDF(title string) *PDF { return &PDF{Title: title, log: alog.WithComponent("render")} }

// Paint implements view.Painter.
func (p *PDF) Paint(c *view.Canvas) error {
	size, err := canvasSize(c)
	if err != nil {
		return err
	}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.W, Ht: size.H},
	})
	doc.SetTitle(p.Title, true)
	doc.SetAuthor("animview", false)
	doc.SetCreator("animview "+version.String(), false)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	bg := c.Background()
	setFillColor(doc, bg)
	doc.SetAlpha(alpha(bg, 1), "Normal")
	doc.Rect(0, 0, size.W, size.H, "F")

	items := collect(c.Layers(), c.ViewMatrix())
	for _, it := range items {
		drawItem(doc, it)
	}
	doc.SetAlpha(1, "Normal")
	if doc.Err() {
		return fmt.Errorf("build pdf: %w", doc.Error())
	}
	p.doc = doc
	p.log.Debug("pdf painted", slog.Int("shapes", len(items)))
	return nil
}

// Encode writes the document. A painted document can be encoded once.
func (p *PDF) Encode(w io.Writer) error {
	if p.doc == nil {
		return ErrNotPainted
	}
	doc := p.doc
	p.doc = nil
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

var (
	capStyles  = map[vector.LineCap]string{vector.CapButt: "butt", vector.CapRound: "round", vector.CapSquare: "square"}
	joinStyles = map[vector.LineJoin]string{vector.JoinMiter: "miter", vector.JoinRound: "round", vector.JoinBevel: "bevel"}
)

func setFillColor(doc *gofpdf.Fpdf, c vector.Color) {
	doc.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setDrawColor(doc *gofpdf.Fpdf, c vector.Color) {
	doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func drawItem(doc *gofpdf.Fpdf, it item) {
	outline := it.shape.Outline().Transform(it.m)
	if f := it.shape.Fill(); f.Enabled && f.Color.A > 0 {
		setFillColor(doc, f.Color)
		doc.SetAlpha(alpha(f.Color, it.opacity), "Normal")
		tracePDF(doc, outline)
		if f.Rule == vector.EvenOdd {
			doc.DrawPath("f*")
		} else {
			doc.DrawPath("F")
		}
	}
	if s := it.shape.Stroke(); s.Enabled && s.Width > 0 && s.Color.A > 0 {
		setDrawColor(doc, s.Color)
		doc.SetAlpha(alpha(s.Color, it.opacity), "Normal")
		doc.SetLineWidth(s.Width * it.m.ScaleFactor())
		doc.SetLineCapStyle(capStyles[s.Cap])
		doc.SetLineJoinStyle(joinStyles[s.Join])
		tracePDF(doc, outline)
		doc.DrawPath("D")
	}
}

func tracePDF(doc *gofpdf.Fpdf, p vector.Path) {
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			doc.MoveTo(d[0], d[1])
		case vector.LineTo:
			doc.LineTo(d[0], d[1])
		case vector.QuadTo:
			doc.CurveTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			doc.CurveBezierCubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			doc.ClosePath()
		}
	}
}
