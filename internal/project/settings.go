/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"animview/internal/vector"
	"animview/internal/view"
)

var (
	ErrUnknownSetting = errors.New("unknown tool setting")
	ErrInvalidSetting = errors.New("invalid tool setting value")
)

// SettingType is the kind of value a tool setting holds.
type SettingType int

const (
	SettingBool SettingType = iota
	SettingNumber
	SettingSelect
	SettingColor
)

// Restrictions describe the accepted values of a setting. Min, Max and Step
// apply to numbers; Options to selects.
type Restrictions struct {
	Type    SettingType
	Min     float64
	Max     float64
	Step    float64
	Options []string
}

type settingDef struct {
	def          any
	restrictions Restrictions
}

var settingDefs = map[string]settingDef{
	view.SettingOutsideClipStyle: {
		def:          "standard",
		restrictions: Restrictions{Type: SettingSelect, Options: []string{"none", "standard"}},
	},
	view.SettingOutsideClipStandardOpacity: {
		def:          0.35,
		restrictions: Restrictions{Type: SettingNumber, Min: 0, Max: 1, Step: 0.01},
	},
	view.SettingOutsideClipShowBorder: {
		def:          false,
		restrictions: Restrictions{Type: SettingBool},
	},
	"onionSkinStyle": {
		def:          "standard",
		restrictions: Restrictions{Type: SettingSelect, Options: []string{"standard", "outlines", "tint"}},
	},
	"backwardOnionSkinTint": {
		def:          vector.MustParseColor("rgba(255, 0, 0, 1)"),
		restrictions: Restrictions{Type: SettingColor},
	},
	"forwardOnionSkinTint": {
		def:          vector.MustParseColor("rgba(0, 0, 255, 1)"),
		restrictions: Restrictions{Type: SettingColor},
	},
}

// ToolSettings holds validated editor settings.
type ToolSettings struct {
	values map[string]any
}

func NewToolSettings() *ToolSettings {
	s := &ToolSettings{values: make(map[string]any, len(settingDefs))}
	for name, d := range settingDefs {
		s.values[name] = d.def
	}
	return s
}

// SettingNames lists every known setting, sorted.
func SettingNames() []string {
	names := make([]string, 0, len(settingDefs))
	for n := range settingDefs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetSetting returns the value of name, or nil when unknown.
func (s *ToolSettings) GetSetting(name string) any { return s.values[name] }

// Restrictions returns the constraints of name.
func (s *ToolSettings) Restrictions(name string) (Restrictions, error) {
	d, ok := settingDefs[name]
	if !ok {
		return Restrictions{}, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return d.restrictions, nil
}

// SetSetting validates v against the setting's restrictions. Numbers are
// snapped to the step. Colors may be given as vector.Color or a CSS string.
func (s *ToolSettings) SetSetting(name string, v any) error {
	d, ok := settingDefs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	r := d.restrictions
	switch r.Type {
	case SettingBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrInvalidSetting, name, v)
		}
		s.values[name] = b
	case SettingNumber:
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		default:
			return fmt.Errorf("%w: %s wants number, got %T", ErrInvalidSetting, name, v)
		}
		if math.IsNaN(f) || f < r.Min || f > r.Max {
			return fmt.Errorf("%w: %s=%g outside [%g, %g]", ErrInvalidSetting, name, f, r.Min, r.Max)
		}
		if r.Step > 0 {
			f = r.Min + math.Round((f-r.Min)/r.Step)*r.Step
			f = vector.FloatRound(f, 6)
		}
		s.values[name] = f
	case SettingSelect:
		str, ok := v.(string)
		if !ok || !slices.Contains(r.Options, str) {
			return fmt.Errorf("%w: %s=%v not in %v", ErrInvalidSetting, name, v, r.Options)
		}
		s.values[name] = str
	case SettingColor:
		switch c := v.(type) {
		case vector.Color:
			s.values[name] = c
		case string:
			col, err := vector.ParseColor(c)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, name, err)
			}
			s.values[name] = col
		default:
			return fmt.Errorf("%w: %s wants color, got %T", ErrInvalidSetting, name, v)
		}
	}
	return nil
}
