/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"animview/internal/config"
	applog "animview/internal/log"
	"animview/internal/project"
	"animview/internal/render"
	"animview/internal/vector"
	"animview/internal/view"
)

// ErrNotRendered is returned for input that arrives before the first render.
var ErrNotRendered = errors.New("canvas not rendered yet")

// Session is the editor state behind a window: one project, its view mounted
// in a resizable container and the raster the window shows. It holds no
// toolkit types so it can be driven headless.
type Session struct {
	Path      string
	proj      *project.Project
	view      *view.ProjectView
	container *view.FixedContainer
	raster    *render.Raster
	log       *slog.Logger

	dragging  bool
	dragStart vector.Pt
	dragLast  vector.Pt

	// OnEvent receives view events after tool input was dispatched.
	OnEvent func(view.Event)
	events  <-chan view.Event
	cancel  func()
}

// OpenSession loads the scene at path. An empty path starts an untitled
// 1280x720 project.
func OpenSession(path string, cfg config.AppConfig) (*Session, error) {
	seed := project.WithSettingsDefaults(cfg.Editor.ApplyTo)
	if strings.TrimSpace(path) == "" {
		p := project.New("untitled", 1280, 720)
		if err := cfg.Editor.ApplyTo(p.Settings()); err != nil {
			return nil, err
		}
		p.SetShowClipBorders(cfg.Editor.ShowClipBorders)
		return NewSession(p, "", cfg)
	}
	p, err := project.LoadSceneFile(path, seed)
	if err != nil {
		return nil, err
	}
	return NewSession(p, path, cfg)
}

// NewSession wires p to a view painting into a raster at the configured
// device pixel ratio.
func NewSession(p *project.Project, path string, cfg config.AppConfig) (*Session, error) {
	s := &Session{
		Path:      path,
		proj:      p,
		container: view.NewFixedContainer(800, 600),
		raster:    render.NewRaster(cfg.View.DevicePixelRatio),
		log:       applog.WithComponent("ui"),
	}
	s.view = view.New(p,
		view.WithContainer(s.container),
		view.WithPainter(s.raster),
		view.WithDevicePixelRatio(cfg.View.DevicePixelRatio),
	)
	if err := cfg.View.ConfigureView(s.view); err != nil {
		return nil, fmt.Errorf("configure view: %w", err)
	}
	s.events, s.cancel = s.view.Subscribe(64)
	return s, nil
}

func (s *Session) Project() *project.Project { return s.proj }
func (s *Session) View() *view.ProjectView   { return s.view }

// Image is the last painted frame.
func (s *Session) Image() image.Image {
	if img := s.raster.Image(); img != nil {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

// Title names the window after the project and its focused clip.
func (s *Session) Title() string {
	title := s.proj.Name
	if s.Path != "" {
		title = filepath.Base(s.Path)
	}
	if f := s.proj.FocusClip(); f != nil && !f.IsRoot() {
		title += " > " + f.Name
	}
	return title
}

// Resize matches the container to the widget size and redraws.
func (s *Session) Resize(w, h float64) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	s.container.Size = vector.Size{W: w, H: h}
	return s.Redraw()
}

// Redraw renders the view into the raster.
func (s *Session) Redraw() error { return s.view.Render() }

// SelectTool makes name the project's active tool and redraws so the view
// can apply its activation rules.
func (s *Session) SelectTool(name string) error {
	if err := s.proj.SetActiveTool(name); err != nil {
		return err
	}
	return s.Redraw()
}

// ActiveTool is the tool currently receiving input, which differs from the
// project's choice while playing or when nothing can be drawn.
func (s *Session) ActiveTool() string {
	if t := s.view.Tools().Active(); t != nil {
		return t.Name()
	}
	return view.ToolNone
}

// Tap handles a click at canvas pixel at.
func (s *Session) Tap(at vector.Pt) error {
	c := s.view.Canvas()
	if c == nil {
		return ErrNotRendered
	}
	var err error
	switch t := s.view.Tools().Active().(type) {
	case *project.CursorTool:
		_, err = t.Click(c.HitTest, at)
	case *project.ZoomTool:
		err = t.ZoomBy(c, 2, at)
	case *project.EyedropperTool:
		col, ok := s.raster.At(at)
		if !ok {
			return nil
		}
		err = t.Pick(col, c.ViewToProject(at))
	default:
		return nil
	}
	return s.dispatch(err)
}

// Drag handles one step of a pointer drag from the previous position to at.
func (s *Session) Drag(at vector.Pt) error {
	c := s.view.Canvas()
	if c == nil {
		return ErrNotRendered
	}
	if !s.dragging {
		s.dragging = true
		s.dragStart, s.dragLast = at, at
		return nil
	}
	from := s.dragLast
	s.dragLast = at
	var err error
	switch t := s.view.Tools().Active().(type) {
	case *project.PanTool:
		err = t.Drag(c, at.X-from.X, at.Y-from.Y)
	case *project.CursorTool:
		err = t.Move(c.ViewToProject(at).Sub(c.ViewToProject(from)))
	default:
		return nil
	}
	return s.dispatch(err)
}

// DragEnd finishes a drag. Drawing tools add their shape here.
func (s *Session) DragEnd() error {
	if !s.dragging {
		return nil
	}
	s.dragging = false
	c := s.view.Canvas()
	t, ok := s.view.Tools().Active().(*project.ShapeTool)
	if !ok || c == nil || s.dragStart == s.dragLast {
		return nil
	}
	return s.dispatch(t.Draw(c, s.dragStart, s.dragLast))
}

// scrollDeltaFactor converts fyne scroll units to wheel pixels.
const scrollDeltaFactor = 10

// Scroll zooms by a wheel step in fyne's convention: positive dy scrolls up.
func (s *Session) Scroll(dy float64) error {
	c := s.view.Canvas()
	if c == nil {
		return ErrNotRendered
	}
	return c.HandleWheel(view.WheelEvent{DeltaY: dy, DeltaFactor: scrollDeltaFactor})
}

// dispatch drains tool events, redraws and forwards view events.
func (s *Session) dispatch(toolErr error) error {
	err := errors.Join(toolErr, s.view.DispatchToolEvents(), s.Redraw())
	for {
		select {
		case ev := <-s.events:
			if s.OnEvent != nil {
				s.OnEvent(ev)
			}
		default:
			return err
		}
	}
}

// Focus enters the clip named key, or the root when key is empty.
func (s *Session) Focus(key string) error {
	c := s.proj.RootClip()
	if key != "" {
		if c = s.proj.FindClip(key); c == nil {
			return fmt.Errorf("clip %q not found", key)
		}
	}
	if err := s.proj.SetFocus(c); err != nil {
		return err
	}
	return s.Redraw()
}

// Save writes the scene back to its path.
func (s *Session) Save() error {
	if s.Path == "" {
		return errors.New("project has no file yet")
	}
	return s.proj.SaveSceneFile(s.Path)
}

// SaveAs writes the scene to path and keeps it as the session path.
func (s *Session) SaveAs(path string) error {
	if err := s.proj.SaveSceneFile(path); err != nil {
		return err
	}
	s.Path = path
	return nil
}

// Autosave writes a sibling copy of the scene for crash recovery and returns
// its path.
func (s *Session) Autosave() (string, error) {
	path := filepath.Join(os.TempDir(), "animview-autosave.json")
	if s.Path != "" {
		path = strings.TrimSuffix(s.Path, filepath.Ext(s.Path)) + ".autosave.json"
	}
	if err := s.proj.SaveSceneFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// Export writes the current canvas to a png, svg or pdf file.
func (s *Session) Export(path string) error {
	out, err := render.ForPath(path, s.proj.Name)
	if err != nil {
		return err
	}
	if err := out.Paint(s.view.Canvas()); err != nil {
		return err
	}
	if err := render.SaveFile(out, path); err != nil {
		return err
	}
	s.log.Info("exported canvas", slog.String("path", path))
	return nil
}

// Close releases the event subscription.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
