/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"animview/internal/vector"
)

// Scene captures the project in its on-disk form. Transformed shapes are
// baked into their coordinates; anything other than a translation turns
// rectangles and ellipses into closed paths.
func (p *Project) Scene() Scene {
	sb, bb := p.showClipBorders, p.renderBlackBars
	sc := Scene{
		Name:            p.Name,
		Width:           p.width,
		Height:          p.height,
		BackgroundColor: p.background.Hex(),
		Zoom:            p.zoom,
		Pan:             &ScenePoint{X: p.pan.X, Y: p.pan.Y},
		Rotation:        p.rotation,
		ActiveTool:      p.activeTool,
		Published:       p.published,
		PublishedMode:   p.publishedMode,
		ShowClipBorders: &sb,
		RenderBlackBars: &bb,
		Settings:        make(map[string]any, len(p.settings.values)),
		Root:            sceneTimeline(p.root.timeline),
	}
	if p.background.A < 255 {
		sc.BackgroundColor = p.background.CSS()
	}
	if !p.focus.IsRoot() {
		sc.Focus = p.focus.id
	}
	for name, v := range p.settings.values {
		if c, ok := v.(vector.Color); ok {
			v = c.CSS()
		}
		sc.Settings[name] = v
	}
	return sc
}

// SaveSceneFile writes the project as indented JSON, replacing path
// atomically through a temp file in the same directory.
func (p *Project) SaveSceneFile(path string) error {
	data, err := json.MarshalIndent(p.Scene(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scene dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".scene-*.json")
	if err != nil {
		return fmt.Errorf("create temp scene: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write scene: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp scene: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace scene: %w", err)
	}
	p.log.Info("scene saved", slog.String("path", path))
	return nil
}

func sceneTimeline(t *Timeline) SceneTimeline {
	st := SceneTimeline{Playhead: t.playhead, ActiveLayer: t.activeLayer, Layers: make([]SceneLayer, 0, len(t.Layers))}
	for _, l := range t.Layers {
		sl := SceneLayer{ID: l.id, Name: l.Name, Locked: l.Locked, Hidden: l.Hidden}
		for _, f := range l.Frames {
			sl.Frames = append(sl.Frames, sceneFrame(f))
		}
		st.Layers = append(st.Layers, sl)
	}
	return st
}

func sceneFrame(f *Frame) SceneFrame {
	sf := SceneFrame{ID: f.id, Start: f.Start, End: f.End}
	for _, s := range f.shapes {
		sf.Shapes = append(sf.Shapes, sceneShapes(s)...)
	}
	for _, c := range f.clips {
		xf := c.xf
		sf.Clips = append(sf.Clips, SceneClip{
			ID:   c.id,
			Name: c.Name,
			Transformation: &SceneTransform{
				X: xf.X, Y: xf.Y, Rotation: xf.Rotation,
				ScaleX: &xf.ScaleX, ScaleY: &xf.ScaleY,
			},
			Timeline: sceneTimeline(c.timeline),
		})
	}
	return sf
}

// Revision fingerprints the frame's saved form, nested clips included. It
// changes whenever an edit would change the frame's scene output.
func (f *Frame) Revision() string {
	data, err := json.Marshal(sceneFrame(f))
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:12])
}

// sceneShapes converts s to one scene shape per subpath.
func sceneShapes(s vector.Shape) []SceneShape {
	base := SceneShape{}
	if f := s.Fill(); f.Enabled {
		base.Fill = colorString(f.Color)
		base.EvenOdd = f.Rule == vector.EvenOdd
	}
	if st := s.Stroke(); st.Enabled {
		base.Stroke = colorString(st.Color)
		base.StrokeWidth = st.Width
	}
	m := s.Transform()
	translation := m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1
	switch n := s.(type) {
	case *vector.RectNode:
		if translation {
			return []SceneShape{boxShape(base, "rect", n.Rect(), m)}
		}
	case *vector.EllipseNode:
		if translation {
			return []SceneShape{boxShape(base, "ellipse", n.Rect(), m)}
		}
	case *vector.LineNode:
		a, b := n.Ends()
		a, b = m.Apply(a), m.Apply(b)
		base.Type = "line"
		base.Fill, base.EvenOdd = "", false
		base.Points = []ScenePoint{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}}
		return []SceneShape{base}
	}
	var out []SceneShape
	for _, poly := range s.Outline().Transform(m).Flatten(8) {
		sh := base
		sh.Type = "path"
		closed := len(poly) > 2 && poly[0] == poly[len(poly)-1]
		if closed {
			poly = poly[:len(poly)-1]
		}
		sh.Closed = closed
		sh.Points = make([]ScenePoint, len(poly))
		for i, q := range poly {
			sh.Points[i] = ScenePoint{X: q.X, Y: q.Y}
		}
		out = append(out, sh)
	}
	return out
}

func boxShape(base SceneShape, typ string, r vector.Rect, m vector.Affine2D) SceneShape {
	base.Type = typ
	base.X, base.Y = r.X+m.E, r.Y+m.F
	base.Width, base.Height = r.W, r.H
	return base
}

func colorString(c vector.Color) string {
	if c.A == 255 {
		return c.Hex()
	}
	return c.CSS()
}
