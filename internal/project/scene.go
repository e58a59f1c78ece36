/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

// Scene files describe a project as JSON. They are validated against the
// embedded schema before they are decoded.

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"animview/internal/vector"
	"animview/internal/view"
)

//go:embed scene.schema.json
var sceneSchema []byte

// ErrInvalidScene wraps schema violations and inconsistent scene content.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the on-disk form of a project.
type Scene struct {
	Name            string         `json:"name,omitempty"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	Zoom            float64        `json:"zoom,omitempty"`
	Pan             *ScenePoint    `json:"pan,omitempty"`
	Rotation        float64        `json:"rotation,omitempty"`
	Focus           string         `json:"focus,omitempty"` // clip name or id
	ActiveTool      string         `json:"activeTool,omitempty"`
	Published       bool           `json:"published,omitempty"`
	PublishedMode   string         `json:"publishedMode,omitempty"`
	ShowClipBorders *bool          `json:"showClipBorders,omitempty"`
	RenderBlackBars *bool          `json:"renderBlackBars,omitempty"`
	Settings        map[string]any `json:"settings,omitempty"`
	Root            SceneTimeline  `json:"root"`
}

type ScenePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SceneTimeline struct {
	Playhead    int          `json:"playhead,omitempty"`
	ActiveLayer int          `json:"activeLayer,omitempty"`
	Layers      []SceneLayer `json:"layers"`
}

type SceneLayer struct {
	ID     string       `json:"id,omitempty"`
	Name   string       `json:"name,omitempty"`
	Locked bool         `json:"locked,omitempty"`
	Hidden bool         `json:"hidden,omitempty"`
	Frames []SceneFrame `json:"frames,omitempty"`
}

type SceneFrame struct {
	ID     string       `json:"id,omitempty"`
	Start  int          `json:"start"`
	End    int          `json:"end,omitempty"`
	Shapes []SceneShape `json:"shapes,omitempty"`
	Clips  []SceneClip  `json:"clips,omitempty"`
}

type SceneClip struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Transformation *SceneTransform `json:"transformation,omitempty"`
	Timeline       SceneTimeline   `json:"timeline"`
}

// SceneTransform defaults missing scales to 1.
type SceneTransform struct {
	X        float64  `json:"x,omitempty"`
	Y        float64  `json:"y,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`
	ScaleX   *float64 `json:"scaleX,omitempty"`
	ScaleY   *float64 `json:"scaleY,omitempty"`
}

func (st SceneTransform) transformation() view.Transformation {
	t := view.Transformation{X: st.X, Y: st.Y, Rotation: st.Rotation, ScaleX: 1, ScaleY: 1}
	if st.ScaleX != nil {
		t.ScaleX = *st.ScaleX
	}
	if st.ScaleY != nil {
		t.ScaleY = *st.ScaleY
	}
	return t
}

// SceneShape covers rectangles and ellipses (x, y, width, height), lines
// (two points) and polylines (points, optionally closed).
type SceneShape struct {
	Type        string       `json:"type"`
	X           float64      `json:"x,omitempty"`
	Y           float64      `json:"y,omitempty"`
	Width       float64      `json:"width,omitempty"`
	Height      float64      `json:"height,omitempty"`
	Points      []ScenePoint `json:"points,omitempty"`
	Closed      bool         `json:"closed,omitempty"`
	EvenOdd     bool         `json:"evenOdd,omitempty"`
	Fill        string       `json:"fill,omitempty"`
	Stroke      string       `json:"stroke,omitempty"`
	StrokeWidth float64      `json:"strokeWidth,omitempty"`
}

// ValidateScene checks raw scene JSON against the schema.
func ValidateScene(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(sceneSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidScene, strings.Join(msgs, "; "))
	}
	return nil
}

// LoadOption adjusts a project while it is built from a scene, before the
// scene's own values are applied.
type LoadOption func(*Project) error

// WithSettingsDefaults lets the caller seed tool settings, e.g. from user
// preferences. Settings stored in the scene still win.
func WithSettingsDefaults(fn func(*ToolSettings) error) LoadOption {
	return func(p *Project) error { return fn(p.settings) }
}

// LoadScene validates and decodes a scene and builds a project from it.
func LoadScene(r io.Reader, opts ...LoadOption) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	if err := ValidateScene(data); err != nil {
		return nil, err
	}
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return sc.Build(opts...)
}

// LoadSceneFile is LoadScene for a file path.
func LoadSceneFile(path string, opts ...LoadOption) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()
	p, err := LoadScene(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Build turns the decoded scene into a project.
func (sc Scene) Build(opts ...LoadOption) (*Project, error) {
	p := New(sc.Name, sc.Width, sc.Height)
	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}
	if sc.BackgroundColor != "" {
		c, err := vector.ParseColor(sc.BackgroundColor)
		if err != nil {
			return nil, fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
		}
		p.background = c
	}
	if sc.Zoom > 0 {
		p.zoom = sc.Zoom
	}
	if sc.Pan != nil {
		p.pan = vector.Pt{X: sc.Pan.X, Y: sc.Pan.Y}
	}
	p.rotation = sc.Rotation
	p.published = sc.Published
	p.publishedMode = sc.PublishedMode
	if sc.ShowClipBorders != nil {
		p.showClipBorders = *sc.ShowClipBorders
	}
	if sc.RenderBlackBars != nil {
		p.renderBlackBars = *sc.RenderBlackBars
	}
	for name, v := range sc.Settings {
		if err := p.settings.SetSetting(name, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
		}
	}
	if err := buildTimeline(p.root.timeline, sc.Root); err != nil {
		return nil, err
	}
	if sc.Focus != "" {
		c := p.FindClip(sc.Focus)
		if c == nil {
			return nil, fmt.Errorf("%w: focus clip %q not found", ErrInvalidScene, sc.Focus)
		}
		p.focus = c
	}
	if sc.ActiveTool != "" {
		if err := p.SetActiveTool(sc.ActiveTool); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
		}
	}
	return p, nil
}

func buildTimeline(t *Timeline, st SceneTimeline) error {
	t.Layers = nil
	for _, sl := range st.Layers {
		l := NewLayer(sl.Name)
		if sl.ID != "" {
			l.id = sl.ID
		}
		l.Locked, l.Hidden = sl.Locked, sl.Hidden
		t.AddLayer(l)
		for _, sf := range sl.Frames {
			end := sf.End
			if end == 0 {
				end = sf.Start
			}
			f := l.AddFrame(NewFrame(sf.Start, end))
			if sf.ID != "" {
				f.id = sf.ID
			}
			for i, ss := range sf.Shapes {
				sh, err := ss.shape()
				if err != nil {
					return fmt.Errorf("%w: layer %q frame %d shape %d: %v", ErrInvalidScene, l.Name, f.Start, i, err)
				}
				f.AddShape(sh)
			}
			for _, scl := range sf.Clips {
				c := NewClip(scl.Name)
				if scl.ID != "" {
					c.id = scl.ID
				}
				if scl.Transformation != nil {
					c.xf = scl.Transformation.transformation()
				}
				f.AddClip(c)
				if err := buildTimeline(c.timeline, scl.Timeline); err != nil {
					return err
				}
			}
		}
	}
	if st.Playhead > 0 {
		t.playhead = st.Playhead
	}
	t.activeLayer = st.ActiveLayer
	return nil
}

func (ss SceneShape) shape() (vector.Shape, error) {
	var fill vector.Fill
	if ss.Fill != "" {
		c, err := vector.ParseColor(ss.Fill)
		if err != nil {
			return nil, err
		}
		fill = vector.SolidFill(c)
		if ss.EvenOdd {
			fill.Rule = vector.EvenOdd
		}
	}
	var stroke vector.Stroke
	if ss.Stroke != "" {
		c, err := vector.ParseColor(ss.Stroke)
		if err != nil {
			return nil, err
		}
		w := ss.StrokeWidth
		if w == 0 {
			w = 1
		}
		stroke = vector.SolidStroke(c, w)
	}
	r := vector.Rect{X: ss.X, Y: ss.Y, W: ss.Width, H: ss.Height}
	switch ss.Type {
	case "rect":
		return vector.NewRect(r, fill, stroke), nil
	case "ellipse":
		return vector.NewEllipse(r, fill, stroke), nil
	case "line":
		if len(ss.Points) != 2 {
			return nil, fmt.Errorf("line needs 2 points, got %d", len(ss.Points))
		}
		a, b := ss.Points[0], ss.Points[1]
		return vector.NewLine(vector.Pt{X: a.X, Y: a.Y}, vector.Pt{X: b.X, Y: b.Y}, stroke), nil
	case "path":
		if len(ss.Points) < 2 {
			return nil, fmt.Errorf("path needs at least 2 points, got %d", len(ss.Points))
		}
		var path vector.Path
		path.MoveTo(ss.Points[0].X, ss.Points[0].Y)
		for _, q := range ss.Points[1:] {
			path.LineTo(q.X, q.Y)
		}
		if ss.Closed {
			path.Close()
		}
		return vector.NewPath(path, fill, stroke), nil
	}
	return nil, fmt.Errorf("unknown shape type %q", ss.Type)
}
