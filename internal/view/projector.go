/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"errors"
	"fmt"
	"log/slog"

	"animview/internal/vector"
)

// Origin crosshair drawn at the local origin of a focused clip.
const (
	CrosshairSize      = 100.0
	CrosshairThickness = 1.0
)

var CrosshairColor = vector.MustParseColor("#CCCCCC")

// maxClipDepth bounds the focus-to-root walk.
const maxClipDepth = 1024

var ErrClipCycle = errors.New("clip ancestor chain does not reach root")

// AncestorTransforms collects the transformations from focus up to, but not
// including, the root and returns them outermost first.
func AncestorTransforms(focus Clip) ([]Transformation, error) {
	var ts []Transformation
	c := focus
	for depth := 0; c != nil && !c.IsRoot(); depth++ {
		if depth >= maxClipDepth {
			return nil, fmt.Errorf("%w: deeper than %d", ErrClipCycle, maxClipDepth)
		}
		ts = append(ts, c.Transformation())
		c = c.ParentClip()
	}
	if c == nil {
		return nil, fmt.Errorf("%w: parent chain ended without root", ErrClipCycle)
	}
	for i, j := 0, len(ts)-1; i < j; i, j = i+1, j-1 {
		ts[i], ts[j] = ts[j], ts[i]
	}
	return ts, nil
}

// InverseAncestorMatrix undoes ts (outermost first) so that root-space
// content lands in the innermost clip's local space. For every ancestor the
// inverse translation, rotation and scale are applied after everything
// before them. Scale steps with a zero factor cannot be undone and are
// skipped; skipped counts them.
func InverseAncestorMatrix(ts []Transformation) (m vector.Affine2D, skipped int) {
	m = vector.Identity
	for _, t := range ts {
		m = m.Prepend(vector.Translate(-t.X, -t.Y))
		m = m.Prepend(vector.RotateDeg(-t.Rotation))
		if t.ScaleX == 0 || t.ScaleY == 0 {
			skipped++
			continue
		}
		m = m.Prepend(vector.Scale(1/t.ScaleX, 1/t.ScaleY))
	}
	return m, skipped
}

// stage is the project background rectangle.
func stage(m Model) *vector.RectNode {
	return vector.NewRect(vector.R(0, 0, m.Width(), m.Height()), vector.SolidFill(m.BackgroundColor()), vector.Stroke{})
}

// originCrosshair keeps a constant on-screen thickness by dividing by zoom.
func originCrosshair(zoom float64) *vector.Group {
	if zoom <= 0 {
		zoom = 1
	}
	s := vector.SolidStroke(CrosshairColor, CrosshairThickness/zoom)
	g := vector.NewGroup(
		vector.NewLine(vector.Pt{X: 0, Y: -CrosshairSize}, vector.Pt{X: 0, Y: CrosshairSize}, s),
		vector.NewLine(vector.Pt{X: -CrosshairSize, Y: 0}, vector.Pt{X: CrosshairSize, Y: 0}, s),
	)
	g.Name = "origin_crosshair"
	return g
}

// projectScene fills the background and outer layers for the current focus.
func (v *ProjectView) projectScene(layers *Compositor) {
	focus := v.model.Focus()
	if focus.IsRoot() {
		layers.Add(LayerBackground, stage(v.model))
		return
	}
	layers.Add(LayerBackground, originCrosshair(v.canvas.Zoom()))

	settings := v.model.ToolSettings()
	if v.settingString(settings, SettingOutsideClipStyle, "standard") == "none" {
		return
	}
	if v.settingBool(settings, SettingOutsideClipShowBorder, false) {
		layers.Add(LayerOuter, stage(v.model))
	}

	objects := vector.NewGroup()
	objects.Name = "outside_clip_objects"
	layers.Add(LayerOuter, objects)

	root := v.model.Root().Timeline()
	root.Render()
	own := focus.Group()
	for _, fl := range root.FrameLayers() {
		if fl.Group == nil {
			continue
		}
		if own != nil {
			fl.Group.Remove(own)
		}
		objects.Add(fl.Group)
	}

	ts, err := AncestorTransforms(focus)
	if err != nil {
		v.log.Error("cannot project outside-clip content", slog.String("clip", focus.UUID()), slog.Any("err", err))
		layers.Layer(LayerOuter).Clear()
		return
	}
	m, skipped := InverseAncestorMatrix(ts)
	if skipped > 0 {
		v.log.Warn("ancestor with zero scale, scale step skipped", slog.String("clip", focus.UUID()), slog.Int("skipped", skipped))
	}
	layers.Layer(LayerOuter).SetTransform(m)
	objects.Opacity = v.settingFloat(settings, SettingOutsideClipStandardOpacity, 0.35)
}

func (v *ProjectView) settingString(s Settings, name, def string) string {
	if s == nil {
		return def
	}
	switch val := s.GetSetting(name).(type) {
	case string:
		return val
	case nil:
		return def
	default:
		v.log.Warn("setting has unexpected type", slog.String("setting", name), slog.String("type", fmt.Sprintf("%T", val)))
		return def
	}
}

func (v *ProjectView) settingBool(s Settings, name string, def bool) bool {
	if s == nil {
		return def
	}
	switch val := s.GetSetting(name).(type) {
	case bool:
		return val
	case nil:
		return def
	default:
		v.log.Warn("setting has unexpected type", slog.String("setting", name), slog.String("type", fmt.Sprintf("%T", val)))
		return def
	}
}

func (v *ProjectView) settingFloat(s Settings, name string, def float64) float64 {
	if s == nil {
		return def
	}
	switch val := s.GetSetting(name).(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case nil:
		return def
	default:
		v.log.Warn("setting has unexpected type", slog.String("setting", name), slog.String("type", fmt.Sprintf("%T", val)))
		return def
	}
}
