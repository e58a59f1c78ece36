/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"animview/internal/config"
	applog "animview/internal/log"
	"animview/internal/previews"
	"animview/internal/project"
	"animview/internal/render"
	"animview/internal/ui"
	"animview/internal/view"
)

// loadScene reads a scene file with the user's editor preferences as setting
// defaults.
func loadScene(path string, cfg config.AppConfig) (*project.Project, error) {
	return project.LoadSceneFile(path, project.WithSettingsDefaults(cfg.Editor.ApplyTo))
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file; the extension picks png, svg or pdf
	width     float64 // container width, 0 for the project width
	height    float64 // container height, 0 for the project height
	fit       string  // center or fill, empty for the configured mode
	zoom      float64
	focus     string // clip name or id
	published bool
	blackBars bool
	scale     float64 // raster scale, 0 for the configured device pixel ratio
	playhead  int

	setZoom, setPublished, setBlackBars bool
}

func newRenderCmd(cfg config.AppConfig) *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <scene.json>",
		Short: "Render the project view of a scene to PNG, SVG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				return fmt.Errorf("--output is required")
			}
			opts.setZoom = cmd.Flags().Changed("zoom")
			opts.setPublished = cmd.Flags().Changed("published")
			opts.setBlackBars = cmd.Flags().Changed("black-bars")
			return runRender(applog.ContextWithScene(cmd.Context(), args[0]), cmd.OutOrStdout(), args[0], opts, cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.png, .svg or .pdf)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "container width (default: project width)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "container height (default: project height)")
	cmd.Flags().StringVar(&opts.fit, "fit", "", "fit mode: center or fill (default from config)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 1, "project zoom")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "focus clip name or id (default: scene focus)")
	cmd.Flags().BoolVar(&opts.published, "published", false, "render as a published project")
	cmd.Flags().BoolVar(&opts.blackBars, "black-bars", true, "draw black bars around a published project")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "raster scale (default: device pixel ratio)")
	cmd.Flags().IntVar(&opts.playhead, "playhead", 0, "playhead of the focused timeline (default: scene value)")
	return cmd
}

func runRender(ctx context.Context, w io.Writer, scenePath string, opts renderOpts, cfg config.AppConfig) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "render")
	p, err := loadScene(scenePath, cfg)
	if err != nil {
		return err
	}
	if opts.focus != "" {
		c := p.FindClip(opts.focus)
		if c == nil {
			return fmt.Errorf("focus clip %q not found", opts.focus)
		}
		if err := p.SetFocus(c); err != nil {
			return err
		}
	}
	if opts.playhead > 0 {
		p.FocusClip().ClipTimeline().SetPlayhead(opts.playhead)
	}
	if opts.setZoom {
		p.SetZoom(opts.zoom)
	}
	if opts.setPublished {
		p.SetPublished(opts.published)
	}
	if opts.setBlackBars {
		p.SetRenderBlackBars(opts.blackBars)
	}

	out, err := render.ForPath(opts.output, p.Name)
	if err != nil {
		return err
	}
	if r, ok := out.(*render.Raster); ok {
		r.Scale = cfg.View.DevicePixelRatio
		if opts.scale > 0 {
			r.Scale = opts.scale
		}
	}
	width, height := opts.width, opts.height
	if width <= 0 {
		width = p.Width()
	}
	if height <= 0 {
		height = p.Height()
	}
	v := view.New(p,
		view.WithContainer(view.NewFixedContainer(width, height)),
		view.WithPainter(out),
		view.WithDevicePixelRatio(cfg.View.DevicePixelRatio),
	)
	if err := cfg.View.ConfigureView(v); err != nil {
		return err
	}
	if opts.fit != "" {
		if err := v.SetFitMode(opts.fit); err != nil {
			return err
		}
	}
	if err := v.Render(); err != nil {
		return err
	}
	if err := render.SaveFile(out, opts.output); err != nil {
		return err
	}
	l.InfoContext(ctx, "rendered", slog.String("output", opts.output), slog.String("focus", p.FocusClip().Name))
	_, err = fmt.Fprintf(w, "Wrote %s (%gx%g, zoom %g)\n", opts.output, width, height, v.Canvas().Zoom())
	return err
}

func newPrerenderCmd(cfg config.AppConfig) *cobra.Command {
	var (
		dir      string
		size     int
		maxBytes int64
	)
	cmd := &cobra.Command{
		Use:   "prerender <scene.json>",
		Short: "Render every frame once and cache a thumbnail per frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				d, err := previewsDir(cfg)
				if err != nil {
					return err
				}
				dir = d
			}
			p, err := loadScene(args[0], cfg)
			if err != nil {
				return err
			}
			v := view.New(p, view.WithContainer(view.NewFixedContainer(p.Width(), p.Height())))
			if err := v.Prerender(); err != nil {
				return err
			}
			ctx := applog.ContextWithScene(cmd.Context(), args[0])
			s, err := previews.Open(ctx, dir, maxBytes)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			st, err := previews.StoreFrames(ctx, s, p, size)
			if err != nil {
				return err
			}
			total, err := s.TotalBytes(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored %d frame previews (%d rendered) in %s (%d bytes cached)\n", st.Frames, st.Generated, s.Path(), total)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "cache", cfg.Previews.Dir, "previews cache directory (default: user cache dir)")
	cmd.Flags().IntVar(&size, "size", cfg.Previews.ThumbSize, "longest thumbnail side in pixels")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", cfg.Previews.MaxBytes, "cache size cap, 0 disables eviction")
	return cmd
}

// previewsDir is the configured cache dir or ~/.cache/animview/previews.
func previewsDir(cfg config.AppConfig) (string, error) {
	if cfg.Previews.Dir != "" {
		return cfg.Previews.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "animview", "previews"), nil
}

func newInspectCmd(cfg config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <scene.json>",
		Short: "Print the clip tree, layers and frames of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadScene(args[0], cfg)
			if err != nil {
				return err
			}
			return printProject(cmd.OutOrStdout(), p)
		},
	}
}

func printProject(w io.Writer, p *project.Project) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %gx%g  background %s\n", p.Name, p.Width(), p.Height(), p.BackgroundColor().Hex())
	fmt.Fprintf(&b, "focus: %s  tool: %s  frames: %d\n", p.FocusClip().Name, p.ActiveTool().Name(), len(p.AllFrames()))
	printClip(&b, p.RootClip(), p.FocusClip(), 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func printClip(b *strings.Builder, c, focus *project.Clip, depth int) {
	indent := strings.Repeat("  ", depth)
	mark := ""
	if c == focus {
		mark = " *"
	}
	xf := c.Transformation()
	fmt.Fprintf(b, "%sclip %s%s  (x %g, y %g, rot %g, scale %gx%g)\n", indent, c.Name, mark, xf.X, xf.Y, xf.Rotation, xf.ScaleX, xf.ScaleY)
	tl := c.ClipTimeline()
	for _, l := range tl.Layers {
		flags := ""
		if l.Locked {
			flags += " locked"
		}
		if l.Hidden {
			flags += " hidden"
		}
		fmt.Fprintf(b, "%s  layer %s%s\n", indent, l.Name, flags)
		for _, f := range l.Frames {
			fmt.Fprintf(b, "%s    frame %d-%d  shapes %d\n", indent, f.Start, f.End, len(f.Shapes()))
			for _, vc := range f.Clips() {
				printClip(b, vc.(*project.Clip), focus, depth+3)
			}
		}
	}
}

func newConfigCmd(cfg config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				applog.WithComponent("cli").Warn("config has invalid values", slog.Any("err", err))
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	})
	return cmd
}

func newUICmd(cfg config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "ui [scene.json]",
		Short: "Launch the desktop view (build with -tags fyne for the full UI)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var scene string
			if len(args) == 1 {
				scene = args[0]
			}
			return ui.Run(scene, cfg)
		},
	}
}
