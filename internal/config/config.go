/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	alog "animview/internal/log"
	"animview/internal/project"
	"animview/internal/vector"
	"animview/internal/view"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type ViewConfig struct {
	FitMode          string  `yaml:"fit_mode"`        // "center" | "fill"
	CanvasBGColor    string  `yaml:"canvas_bg_color"` // empty uses the view default
	DevicePixelRatio float64 `yaml:"device_pixel_ratio"`
}

type EditorConfig struct {
	OutsideClipStyle           string  `yaml:"outside_clip_style"`
	OutsideClipStandardOpacity float64 `yaml:"outside_clip_standard_opacity"`
	OutsideClipShowBorder      bool    `yaml:"outside_clip_show_border"`
	ShowClipBorders            bool    `yaml:"show_clip_borders"`
}

type PreviewsConfig struct {
	Dir       string `yaml:"dir"`
	MaxBytes  int64  `yaml:"max_bytes"`
	ThumbSize int    `yaml:"thumb_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`

	// Rotation of File; zero keeps the logger defaults.
	MaxSizeMB  int `yaml:"max_size_mb,omitempty"`
	MaxBackups int `yaml:"max_backups,omitempty"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	View          ViewConfig     `yaml:"view"`
	Editor        EditorConfig   `yaml:"editor"`
	Previews      PreviewsConfig `yaml:"previews"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		View:          ViewConfig{FitMode: "center", DevicePixelRatio: 1},
		Editor:        EditorConfig{OutsideClipStyle: "standard", OutsideClipStandardOpacity: 0.35, ShowClipBorders: true},
		Previews:      PreviewsConfig{MaxBytes: 256 * 1024 * 1024, ThumbSize: 128},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath       = "AV_CONFIG"
	EnvFitMode          = "AV_FIT_MODE"
	EnvCanvasBGColor    = "AV_CANVAS_BG_COLOR"
	EnvDevicePixelRatio = "AV_DEVICE_PIXEL_RATIO"
	EnvOutsideClipStyle = "AV_OUTSIDE_CLIP_STYLE"
	EnvPreviewsDir      = "AV_PREVIEWS_DIR"
	EnvPreviewsMaxBytes = "AV_PREVIEWS_MAX_BYTES"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "AV_LOG_LEVEL"
	EnvLogFormat = "AV_LOG_FORMAT"
	EnvLogSource = "AV_LOG_SOURCE"
	EnvLogFile   = "AV_LOG_FILE"
)

// ConfigPath returns the per-user config file path. AV_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "AnimView")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "AnimView")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "animview")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but the defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// view
	if v := strings.ToLower(strings.TrimSpace(src.View.FitMode)); v != "" {
		dst.View.FitMode = v
	}
	if v := strings.TrimSpace(src.View.CanvasBGColor); v != "" {
		dst.View.CanvasBGColor = v
	}
	if src.View.DevicePixelRatio > 0 {
		dst.View.DevicePixelRatio = src.View.DevicePixelRatio
	}
	// editor; booleans are copied directly so user preferences persist
	if v := strings.TrimSpace(src.Editor.OutsideClipStyle); v != "" {
		dst.Editor.OutsideClipStyle = v
	}
	if src.Editor.OutsideClipStandardOpacity != 0 {
		dst.Editor.OutsideClipStandardOpacity = src.Editor.OutsideClipStandardOpacity
	}
	dst.Editor.OutsideClipShowBorder = src.Editor.OutsideClipShowBorder
	dst.Editor.ShowClipBorders = src.Editor.ShowClipBorders
	// previews
	if v := strings.TrimSpace(src.Previews.Dir); v != "" {
		dst.Previews.Dir = v
	}
	if src.Previews.MaxBytes != 0 {
		dst.Previews.MaxBytes = src.Previews.MaxBytes
	}
	if src.Previews.ThumbSize > 0 {
		dst.Previews.ThumbSize = src.Previews.ThumbSize
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFitMode)); v != "" {
		cfg.View.FitMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasBGColor)); v != "" {
		cfg.View.CanvasBGColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDevicePixelRatio)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.View.DevicePixelRatio = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutsideClipStyle)); v != "" {
		cfg.Editor.OutsideClipStyle = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewsDir)); v != "" {
		cfg.Previews.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewsMaxBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Previews.MaxBytes = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"view.fit_mode":             EnvFitMode,
	"view.canvas_bg_color":      EnvCanvasBGColor,
	"view.device_pixel_ratio":   EnvDevicePixelRatio,
	"editor.outside_clip_style": EnvOutsideClipStyle,
	"previews.dir":              EnvPreviewsDir,
	"previews.max_bytes":        EnvPreviewsMaxBytes,
	"logging.level":             EnvLogLevel,
	"logging.format":            EnvLogFormat,
	"logging.source":            EnvLogSource,
	"logging.file":              EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envByKey[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Validate reports every setting that the view or editor would reject.
func (c AppConfig) Validate() error {
	var errs []error
	if _, err := view.ParseFitMode(c.View.FitMode); err != nil {
		errs = append(errs, fmt.Errorf("view.fit_mode: %w", err))
	}
	if _, _, err := c.View.BGColor(); err != nil {
		errs = append(errs, fmt.Errorf("view.canvas_bg_color: %w", err))
	}
	if c.View.DevicePixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("view.device_pixel_ratio: %g must be positive", c.View.DevicePixelRatio))
	}
	if err := c.Editor.ApplyTo(project.NewToolSettings()); err != nil {
		errs = append(errs, fmt.Errorf("editor: %w", err))
	}
	if c.Previews.ThumbSize <= 0 {
		errs = append(errs, fmt.Errorf("previews.thumb_size: %d must be positive", c.Previews.ThumbSize))
	}
	return errors.Join(errs...)
}

// BGColor parses the canvas background override. ok is false when unset.
func (v ViewConfig) BGColor() (c vector.Color, ok bool, err error) {
	if strings.TrimSpace(v.CanvasBGColor) == "" {
		return vector.Color{}, false, nil
	}
	c, err = vector.ParseColor(v.CanvasBGColor)
	if err != nil {
		return vector.Color{}, false, err
	}
	return c, true, nil
}

// ApplyTo copies the editor preferences into tool settings.
func (e EditorConfig) ApplyTo(s *project.ToolSettings) error {
	if err := s.SetSetting(view.SettingOutsideClipStyle, e.OutsideClipStyle); err != nil {
		return err
	}
	if err := s.SetSetting(view.SettingOutsideClipStandardOpacity, e.OutsideClipStandardOpacity); err != nil {
		return err
	}
	return s.SetSetting(view.SettingOutsideClipShowBorder, e.OutsideClipShowBorder)
}

// LogOptions converts the logging section for log.Init.
func (l LoggingConfig) LogOptions() alog.Options {
	return alog.Options{
		Level:      l.Level,
		Format:     l.Format,
		AddSource:  l.Source,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
	}
}

// ConfigureView applies the view section: fit mode and canvas background.
func (v ViewConfig) ConfigureView(pv *view.ProjectView) error {
	if v.FitMode != "" {
		if err := pv.SetFitMode(v.FitMode); err != nil {
			return err
		}
	}
	c, ok, err := v.BGColor()
	if err != nil {
		return err
	}
	if ok {
		pv.SetCanvasBGColor(c)
	}
	return nil
}
