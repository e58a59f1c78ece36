/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import "animview/internal/vector"

// SelectionColor strokes the selection bounds.
var SelectionColor = vector.MustParseColor("#00ADEF")

// Selection tracks selected shapes and clips and draws their bounds in its
// own overlay layer. The overlay is never locked so transform handles stay
// interactive.
type Selection struct {
	shapes []vector.Shape
	clips  []*Clip
	layer  *vector.Group
	// pending is a transform applied through the overlay and not yet written
	// to the selected items.
	pending vector.Affine2D
}

func NewSelection() *Selection {
	l := vector.NewGroup()
	l.Name = "selection"
	return &Selection{layer: l, pending: vector.Identity}
}

func (s *Selection) Layer() *vector.Group { return s.layer }

// SelectShape adds sh to the selection.
func (s *Selection) SelectShape(sh vector.Shape) { s.shapes = append(s.shapes, sh) }

// SelectClip adds c to the selection and marks it selected.
func (s *Selection) SelectClip(c *Clip) {
	c.selected = true
	s.clips = append(s.clips, c)
}

// Clear deselects everything.
func (s *Selection) Clear() {
	for _, c := range s.clips {
		c.selected = false
	}
	s.shapes, s.clips = nil, nil
	s.pending = vector.Identity
}

func (s *Selection) Len() int { return len(s.shapes) + len(s.clips) }

// Transform queues m (in parent space) for the selected items; it is written
// back by ApplyChanges.
func (s *Selection) Transform(m vector.Affine2D) { s.pending = s.pending.Prepend(m) }

// Bounds is the union of the selected items' bounds.
func (s *Selection) Bounds() (vector.Rect, bool) {
	var b vector.Rect
	first := true
	add := func(r vector.Rect) {
		if first {
			b, first = r, false
			return
		}
		b = b.Union(r)
	}
	for _, sh := range s.shapes {
		add(sh.Bounds())
	}
	for _, c := range s.clips {
		if c.group != nil {
			add(c.group.Bounds())
		}
	}
	if first {
		return vector.Rect{}, false
	}
	return vector.TransformBounds(b, s.pending), true
}

// Render redraws the bounds overlay.
func (s *Selection) Render() {
	s.layer.Clear()
	s.layer.Locked = false
	b, ok := s.Bounds()
	if !ok {
		return
	}
	s.layer.Add(vector.NewRect(b, vector.Fill{}, vector.SolidStroke(SelectionColor, 1)))
}

// ApplyChanges writes the pending overlay transform into the selected shapes
// and clips.
func (s *Selection) ApplyChanges() {
	if s.pending == vector.Identity {
		return
	}
	for _, sh := range s.shapes {
		sh.SetTransform(s.pending.Mul(sh.Transform()))
	}
	for _, c := range s.clips {
		c.setMatrix(s.pending.Mul(c.Matrix()))
		if c.group != nil {
			c.group.SetTransform(c.Matrix())
		}
	}
	s.pending = vector.Identity
}
