//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"animview/internal/config"
	"animview/internal/crash"
	applog "animview/internal/log"
	"animview/internal/project"
	"animview/internal/vector"
	"animview/internal/version"
	"animview/internal/view"
)

// Run starts the Fyne desktop window around a project view. Pass an optional
// scene file to open immediately.
func Run(scenePath string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	var sess *Session
	target := &crash.Target{Autosave: func() (string, error) {
		if sess == nil {
			return "", fmt.Errorf("no project open")
		}
		return sess.Autosave()
	}}
	defer crash.Recover(target)

	fyneApp := app.NewWithID("animview")
	w := fyneApp.NewWindow("AnimView")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	pc := NewProjectCanvas()
	pc.OnError = func(err error) {
		l.Error("canvas input failed", slog.Any("err", err))
		status.SetText(err.Error())
	}

	toolSelect := widget.NewSelect(nil, nil)
	clipSelect := widget.NewSelect(nil, nil)

	use := func(s *Session) {
		if sess != nil {
			sess.Close()
		}
		sess = s
		target.Scene = s.Path
		s.OnEvent = func(ev view.Event) {
			switch ev.Name {
			case view.EventEyedropperPickedColor:
				status.SetText("Picked " + ev.Source.Color.CSS())
			default:
				status.SetText(strings.TrimSpace(ev.Name + " " + ev.Action))
			}
		}
		pc.SetSession(s)
		w.SetTitle("AnimView - " + s.Title())

		names := make([]string, 0, len(s.Project().Tools()))
		for _, t := range s.Project().Tools() {
			if t.Name() == view.ToolNone || t.Name() == view.ToolInteract {
				continue
			}
			names = append(names, t.Name())
		}
		toolSelect.Options = names
		toolSelect.SetSelected(s.Project().ActiveTool().Name())

		clips := []string{"(root)"}
		collectClipNames(s.Project().RootClip(), &clips)
		clipSelect.Options = clips
		if f := s.Project().FocusClip(); f != nil && !f.IsRoot() {
			clipSelect.SetSelected(f.Name)
		} else {
			clipSelect.SetSelected("(root)")
		}
	}

	open := func(path string) {
		s, err := OpenSession(path, cfg)
		if err != nil {
			l.Error("open scene failed", slog.String("path", path), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		use(s)
		if path != "" {
			addRecentScene(prefs, path)
			status.SetText("Opened " + path)
		}
	}

	toolSelect.OnChanged = func(name string) {
		if sess == nil || name == "" {
			return
		}
		if err := sess.SelectTool(name); err != nil {
			dialog.ShowError(err, w)
			return
		}
		pc.Refresh()
	}
	clipSelect.OnChanged = func(name string) {
		if sess == nil || name == "" {
			return
		}
		key := name
		if name == "(root)" {
			key = ""
		}
		if err := sess.Focus(key); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.SetTitle("AnimView - " + sess.Title())
		pc.Refresh()
	}

	publishedCheck := widget.NewCheck("Published", func(v bool) {
		if sess == nil {
			return
		}
		sess.Project().SetPublished(v)
		_ = sess.Redraw()
		pc.Refresh()
	})
	fillCheck := widget.NewCheck("Fill", func(v bool) {
		if sess == nil {
			return
		}
		mode := string(view.FitCenter)
		if v {
			mode = string(view.FitFill)
		}
		if err := sess.View().SetFitMode(mode); err == nil {
			_ = sess.Redraw()
			pc.Refresh()
		}
	})
	fillCheck.SetChecked(cfg.View.FitMode == string(view.FitFill))

	openItem := fyne.NewMenuItem("Open…", func() {
		d := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			_ = ur.Close()
			open(path)
		}, w)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	})
	var recentItems []*fyne.MenuItem
	for _, p := range loadRecentScenes(prefs) {
		path := p
		recentItems = append(recentItems, fyne.NewMenuItem(filepath.Base(path), func() { open(path) }))
	}
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = fyne.NewMenu("", recentItems...)
	recentItem.Disabled = len(recentItems) == 0

	saveAs := func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := sess.SaveAs(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			target.Scene = path
			addRecentScene(prefs, path)
			w.SetTitle("AnimView - " + sess.Title())
			status.SetText("Saved " + path)
		}, w)
		d.SetFileName("scene.json")
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	}
	saveItem := fyne.NewMenuItem("Save", func() {
		if sess == nil {
			return
		}
		if sess.Path == "" {
			saveAs()
			return
		}
		if err := sess.Save(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + sess.Path)
	})
	saveAsItem := fyne.NewMenuItem("Save As…", func() {
		if sess != nil {
			saveAs()
		}
	})
	fileMenu := fyne.NewMenu("File", openItem, recentItem, fyne.NewMenuItemSeparator(), saveItem, saveAsItem)

	exportItem := func(ext string) *fyne.MenuItem {
		return fyne.NewMenuItem("Export "+strings.ToUpper(strings.TrimPrefix(ext, "."))+"…", func() {
			if sess == nil {
				return
			}
			d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				outPath := uc.URI().Path()
				_ = uc.Close()
				if err := sess.Export(outPath); err != nil {
					dialog.ShowError(err, w)
					return
				}
				dialog.ShowInformation("Export", "Exported to "+outPath, w)
			}, w)
			d.SetFileName("frame" + ext)
			d.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
			d.Show()
		})
	}
	exportMenu := fyne.NewMenu("Export", exportItem(".png"), exportItem(".svg"), exportItem(".pdf"))

	aboutItem := fyne.NewMenuItem("About AnimView", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("AnimView\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("Installation Environment", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, exportMenu, fyne.NewMenu("About", aboutItem)))

	top := container.NewHBox(widget.NewLabel("Tool"), toolSelect, widget.NewLabel("Clip"), clipSelect, publishedCheck, fillCheck)
	w.SetContent(container.NewBorder(top, status, nil, nil, pc))

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if sess != nil {
			sess.Close()
		}
		w.Close()
	})

	open(scenePath)
	w.ShowAndRun()
	return nil
}

func collectClipNames(c *project.Clip, out *[]string) {
	for _, l := range c.ClipTimeline().Layers {
		for _, f := range l.Frames {
			for _, vc := range f.Clips() {
				child := vc.(*project.Clip)
				*out = append(*out, child.Name)
				collectClipNames(child, out)
			}
		}
	}
}

// ProjectCanvas shows the session's raster and forwards pointer input to it.
type ProjectCanvas struct {
	widget.BaseWidget
	sess    *Session
	OnError func(error)
}

func NewProjectCanvas() *ProjectCanvas {
	pc := &ProjectCanvas{}
	pc.ExtendBaseWidget(pc)
	return pc
}

// SetSession swaps the displayed project.
func (p *ProjectCanvas) SetSession(s *Session) {
	p.sess = s
	p.Refresh()
}

func (p *ProjectCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	return &projectCanvasRenderer{pc: p, bg: bg, img: img, objects: []fyne.CanvasObject{bg, img}}
}

// PreferredSize sets a decent default size for the widget.
func (p *ProjectCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

func (p *ProjectCanvas) report(err error) {
	if err == nil {
		return
	}
	if p.OnError != nil {
		p.OnError(err)
	}
}

func (p *ProjectCanvas) Tapped(e *fyne.PointEvent) {
	if p.sess == nil {
		return
	}
	p.report(p.sess.Tap(toPt(e.Position)))
	p.Refresh()
}

func (p *ProjectCanvas) Dragged(e *fyne.DragEvent) {
	if p.sess == nil {
		return
	}
	p.report(p.sess.Drag(toPt(e.Position)))
	p.Refresh()
}

func (p *ProjectCanvas) DragEnd() {
	if p.sess == nil {
		return
	}
	p.report(p.sess.DragEnd())
	p.Refresh()
}

func (p *ProjectCanvas) Scrolled(e *fyne.ScrollEvent) {
	if p.sess == nil {
		return
	}
	p.report(p.sess.Scroll(float64(e.Scrolled.DY)))
	p.Refresh()
}

func toPt(pos fyne.Position) vector.Pt { return vector.Pt{X: float64(pos.X), Y: float64(pos.Y)} }

type projectCanvasRenderer struct {
	pc      *ProjectCanvas
	bg      *canvas.Rectangle
	img     *canvas.Image
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *projectCanvasRenderer) Destroy()                     {}
func (r *projectCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *projectCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 240) }
func (r *projectCanvasRenderer) Refresh() {
	r.Layout(r.pc.Size())
	canvas.Refresh(r.pc)
}

// Layout resizes the session's container to the widget and shows the fresh
// raster.
func (r *projectCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.img.Resize(size)
	s := r.pc.sess
	if s == nil {
		return
	}
	if size != r.size {
		r.size = size
		r.pc.report(s.Resize(float64(size.Width), float64(size.Height)))
	}
	r.img.Image = s.Image()
	r.img.Refresh()
}

// Recent scene persistence helpers
const recentPrefsKey = "recent.scenes"
const recentMax = 10

func loadRecentScenes(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func addRecentScene(p fyne.Preferences, path string) {
	abs, _ := filepath.Abs(path)
	rec := loadRecentScenes(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	b, _ := json.Marshal(out)
	p.SetString(recentPrefsKey, string(b))
}
