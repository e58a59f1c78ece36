/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "animview/internal/vector"

// Black bar geometry. The bars extend to ±borderExtent and overlap the stage
// edge by strokeOffset so adjoining rectangles leave no seams.
const (
	borderExtent = 10000.0
	strokeOffset = 0.5
)

// blackBars builds the letterbox rectangles that hide content outside the
// stage in published output. The group follows the model's zoom and pan so the
// bars stay in place under a moving camera.
func (v *ProjectView) blackBars() *vector.Group {
	bottom, right := v.model.Height(), v.model.Width()
	if v.model.PublishedMode() == PublishedModeImageSequence {
		bottom *= v.devicePixelRatio
		right *= v.devicePixelRatio
	}
	bar := func(from, to vector.Pt, strokeW float64) *vector.RectNode {
		s := vector.Stroke{Color: vector.Black, Width: strokeW, Enabled: strokeW > 0}
		return vector.NewRect(vector.RectFromPoints(from, to), vector.SolidFill(vector.Black), s)
	}
	g := vector.NewGroup(
		// top
		bar(vector.Pt{X: -borderExtent, Y: -borderExtent}, vector.Pt{X: borderExtent, Y: strokeOffset}, 0),
		// bottom
		bar(vector.Pt{X: -borderExtent, Y: bottom - strokeOffset}, vector.Pt{X: borderExtent, Y: borderExtent}, 0),
		// left
		bar(vector.Pt{X: -borderExtent, Y: -strokeOffset}, vector.Pt{X: -strokeOffset, Y: bottom + strokeOffset}, 1),
		// right
		bar(vector.Pt{X: right + strokeOffset, Y: -strokeOffset}, vector.Pt{X: borderExtent, Y: borderExtent}, 1),
	)
	g.Name = "black_bars"
	pan, zoom := v.model.Pan(), v.model.Zoom()
	g.SetTransform(vector.Translate(-pan.X, -pan.Y).Mul(vector.Scale(zoom, zoom)))
	return g
}

// clipBorders outlines every unselected clip on active frames of visible
// layers.
func (v *ProjectView) clipBorders() []vector.Node {
	var out []vector.Node
	for _, f := range v.model.ActiveFrames() {
		if f.ParentLayerHidden() {
			continue
		}
		for _, c := range f.Clips() {
			if c.IsSelected() {
				continue
			}
			if b := c.Border(); b != nil {
				out = append(out, b)
			}
		}
	}
	return out
}
