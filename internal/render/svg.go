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
	"io"
	"log/slog"
	"strconv"
	"strings"

	alog "animview/internal/log"
	"animview/internal/vector"
	"animview/internal/view"
)

// SVG paints the canvas as an SVG document in canvas pixels. Each compositor
// layer becomes a group tagged with its name.
type SVG struct {
	buf    bytes.Buffer
	filled bool
	log    *slog.Logger
}

func NewSVG() *SVG { return &SVG{log: alog.WithComponent("render")} }

// Paint implements view.Painter.
func (s *SVG) Paint(c *view.Canvas) error {
	size, err := canvasSize(c)
	if err != nil {
		return err
	}
	s.buf.Reset()
	s.filled = false
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&s.buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", size.W, size.H, size.W, size.H)
	bg := c.Background()
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\" fill-opacity=\"%g\"/>\n", size.W, size.H, bg.Hex(), alpha(bg, 1))

	shapes := 0
	vm := c.ViewMatrix()
	for i, l := range c.Layers() {
		wf("  <g data-layer=\"%s\">\n", escAttr(layerName(l, i)))
		for _, it := range collect([]*vector.Group{l}, vm) {
			wf("    %s\n", shapeElement(it))
			shapes++
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	s.filled = true
	s.log.Debug("svg painted", slog.Int("shapes", shapes), slog.Int("bytes", s.buf.Len()))
	return nil
}

// Bytes returns the last painted document.
func (s *SVG) Bytes() []byte { return s.buf.Bytes() }

func (s *SVG) Encode(w io.Writer) error {
	if !s.filled {
		return ErrNotPainted
	}
	if _, err := w.Write(s.buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func alpha(c vector.Color, opacity float64) float64 {
	return vector.FloatRound(float64(c.A)/255*opacity, 3)
}

func shapeElement(it item) string {
	var b strings.Builder
	b.WriteString("<path d=\"")
	b.WriteString(pathData(it.shape.Outline().Transform(it.m)))
	b.WriteString("\"")
	if f := it.shape.Fill(); f.Enabled {
		fmt.Fprintf(&b, " fill=\"%s\" fill-opacity=\"%g\"", f.Color.Hex(), alpha(f.Color, it.opacity))
		if f.Rule == vector.EvenOdd {
			b.WriteString(" fill-rule=\"evenodd\"")
		}
	} else {
		b.WriteString(" fill=\"none\"")
	}
	if st := it.shape.Stroke(); st.Enabled && st.Width > 0 {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-opacity=\"%g\" stroke-width=\"%g\"",
			st.Color.Hex(), alpha(st.Color, it.opacity), vector.FloatRound(st.Width*it.m.ScaleFactor(), 3))
		switch st.Cap {
		case vector.CapRound:
			b.WriteString(" stroke-linecap=\"round\"")
		case vector.CapSquare:
			b.WriteString(" stroke-linecap=\"square\"")
		}
		switch st.Join {
		case vector.JoinRound:
			b.WriteString(" stroke-linejoin=\"round\"")
		case vector.JoinBevel:
			b.WriteString(" stroke-linejoin=\"bevel\"")
		}
	}
	b.WriteString("/>")
	return b.String()
}

func num(v float64) string { return strconv.FormatFloat(vector.FloatRound(v, 3), 'g', -1, 64) }

// pathData formats p as an SVG path "d" attribute.
func pathData(p vector.Path) string {
	var b strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			b.WriteString("M" + num(d[0]) + " " + num(d[1]))
		case vector.LineTo:
			b.WriteString("L" + num(d[0]) + " " + num(d[1]))
		case vector.QuadTo:
			b.WriteString("Q" + num(d[0]) + " " + num(d[1]) + " " + num(d[2]) + " " + num(d[3]))
		case vector.CubicTo:
			b.WriteString("C" + num(d[0]) + " " + num(d[1]) + " " + num(d[2]) + " " + num(d[3]) + " " + num(d[4]) + " " + num(d[5]))
		case vector.Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func escAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;", "\n", " ", "\r", "")
	return r.Replace(s)
}
