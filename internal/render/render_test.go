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
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	alog "animview/internal/log"
	"animview/internal/project"
	"animview/internal/vector"
	"animview/internal/view"
)

var red = vector.Color{R: 255, A: 255}

// renderedCanvas renders a 100x80 project with a red square at (10,10) into
// a 200x160 canvas, so project (0,0) sits at canvas (50,40).
func renderedCanvas(t *testing.T) (*view.Canvas, *project.Project) {
	t.Helper()
	p := project.New("test", 100, 80)
	f := p.ActiveFrame().(*project.Frame)
	f.AddShape(vector.NewRect(vector.R(10, 10, 20, 20), vector.SolidFill(red), vector.Stroke{}))
	v := view.New(p, view.WithContainer(view.NewFixedContainer(200, 160)), view.WithLogger(alog.Discard()))
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return v.Canvas(), p
}

func TestRasterPaintsLayers(t *testing.T) {
	c, _ := renderedCanvas(t)
	r := NewRaster(1)
	if err := r.Paint(c); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if b := r.Image().Bounds(); b.Dx() != 200 || b.Dy() != 160 {
		t.Fatalf("image size = %v", b)
	}
	checks := []struct {
		name string
		at   vector.Pt
		want vector.Color
	}{
		{"square", vector.Pt{X: 70, Y: 60}, red},
		{"stage", vector.Pt{X: 55, Y: 45}, vector.White},
		{"outside stage", vector.Pt{X: 5, Y: 5}, view.DefaultCanvasBGColor},
	}
	for _, tc := range checks {
		got, ok := r.At(tc.at)
		if !ok || got != tc.want {
			t.Fatalf("%s: pixel at %v = %v, want %v", tc.name, tc.at, got, tc.want)
		}
	}
	if _, ok := r.At(vector.Pt{X: 500, Y: 5}); ok {
		t.Fatalf("sample outside the image must fail")
	}
}

func TestRasterScaleAndEncode(t *testing.T) {
	c, _ := renderedCanvas(t)
	r := NewRaster(2)
	if err := r.Encode(&bytes.Buffer{}); !errors.Is(err, ErrNotPainted) {
		t.Fatalf("Encode before Paint = %v", err)
	}
	if err := r.Paint(c); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 320 {
		t.Fatalf("scaled size = %v", img.Bounds())
	}
	if got, _ := r.At(vector.Pt{X: 70, Y: 60}); got != red {
		t.Fatalf("scaled sample = %v", got)
	}
}

func TestStrokeIsRasterized(t *testing.T) {
	p := project.New("line", 100, 100)
	p.ActiveFrame().(*project.Frame).AddShape(vector.NewLine(vector.Pt{X: 0, Y: 50}, vector.Pt{X: 100, Y: 50}, vector.SolidStroke(vector.Black, 4)))
	v := view.New(p, view.WithContainer(view.NewFixedContainer(100, 100)), view.WithLogger(alog.Discard()))
	r := NewRaster(1)
	if err := v.Render(); err != nil {
		t.Fatal(err)
	}
	if err := r.Paint(v.Canvas()); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.At(vector.Pt{X: 50, Y: 50}); got != vector.Black {
		t.Fatalf("stroke pixel = %v", got)
	}
	if got, _ := r.At(vector.Pt{X: 50, Y: 40}); got != vector.White {
		t.Fatalf("pixel beside stroke = %v", got)
	}
}

func TestSVGOutput(t *testing.T) {
	c, _ := renderedCanvas(t)
	s := NewSVG()
	if err := s.Paint(c); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	doc := string(s.Bytes())
	for _, want := range []string{
		`viewBox="0 0 200 160"`,
		`data-layer="project_bg"`,
		`fill="#ff0000"`,
		`d="M60 50 L80 50 L80 70 L60 70 Z"`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("svg missing %q:\n%s", want, doc)
		}
	}
	if strings.Index(doc, "project_bg") > strings.Index(doc, "#ff0000") {
		t.Fatalf("background layer must come before frame content")
	}
}

func TestPDFOutput(t *testing.T) {
	c, _ := renderedCanvas(t)
	out := filepath.Join(t.TempDir(), "nested", "view.pdf")
	o, err := ForPath(out, "test")
	if err != nil {
		t.Fatalf("ForPath: %v", err)
	}
	if _, ok := o.(*PDF); !ok {
		t.Fatalf("ForPath(.pdf) = %T", o)
	}
	if err := o.Paint(c); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if err := SaveFile(o, out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:min(8, len(data))])
	}
}

func TestForPathRejectsUnknown(t *testing.T) {
	if _, err := ForPath("out.gif", ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
	if o, err := ForPath("OUT.PNG", ""); err != nil || o == nil {
		t.Fatalf("png: %v", err)
	}
}

func TestPaintRequiresSizedCanvas(t *testing.T) {
	for _, o := range []Output{NewRaster(1), NewSVG(), NewPDF("")} {
		if err := o.Paint(nil); !errors.Is(err, ErrEmptyCanvas) {
			t.Fatalf("%T: err = %v", o, err)
		}
	}
}

func TestThumbnail(t *testing.T) {
	_, p := renderedCanvas(t)
	f := p.ActiveFrame().(*project.Frame)
	data, err := Thumbnail(f.Groups(), vector.Size{W: 100, H: 80}, 50, vector.White)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 40 {
		t.Fatalf("thumbnail size = %v", img.Bounds())
	}
	if _, err := Thumbnail(nil, vector.Size{}, 50, vector.White); !errors.Is(err, ErrEmptyCanvas) {
		t.Fatalf("empty project: %v", err)
	}
}
