/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints a built view canvas into PNG, SVG or PDF output.
// Every backend implements view.Painter so it can be handed to view.New with
// view.WithPainter, or called directly after a render.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"animview/internal/vector"
	"animview/internal/view"
)

var (
	ErrEmptyCanvas       = errors.New("canvas has no size")
	ErrNotPainted        = errors.New("nothing painted yet")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Output is a painter whose result can be encoded.
type Output interface {
	view.Painter
	Encode(w io.Writer) error
}

// ForPath picks the backend from the file extension of path.
func ForPath(path, title string) (Output, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return NewRaster(1), nil
	case ".svg":
		return NewSVG(), nil
	case ".pdf":
		return NewPDF(title), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// SaveFile encodes o into path, creating parent directories.
func SaveFile(o Output, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := o.Encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// item is a leaf shape with its device transform and effective opacity.
type item struct {
	shape   vector.Shape
	m       vector.Affine2D
	opacity float64
}

// collect flattens layers into paint order. m maps layer space to device
// space.
func collect(layers []*vector.Group, m vector.Affine2D) []item {
	var items []item
	for _, l := range layers {
		vector.Walk(l, m, func(s vector.Shape, sm vector.Affine2D, o float64) {
			items = append(items, item{shape: s, m: sm, opacity: o})
		})
	}
	return items
}

func canvasSize(c *view.Canvas) (vector.Size, error) {
	if c == nil {
		return vector.Size{}, fmt.Errorf("%w: no canvas", ErrEmptyCanvas)
	}
	size := c.ViewSize()
	if size.Empty() {
		return vector.Size{}, fmt.Errorf("%w: %gx%g", ErrEmptyCanvas, size.W, size.H)
	}
	return size, nil
}

func layerName(g *vector.Group, i int) string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("layer-%d", i)
}
