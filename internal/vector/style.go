/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ParseColor understands the CSS forms used by editor settings and project
// files: "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and "rgba(r, g, b, a)"
// where a is 0..1.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#") && len(s) == 9:
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{r, g, b, uint8(a)}, nil
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{r, g, b, 255}, nil
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseRGBFunc(s)
	}
	switch s {
	case "black":
		return Black, nil
	case "white":
		return White, nil
	case "transparent":
		return Transparent, nil
	}
	return Color{}, fmt.Errorf("parse color %q: unsupported format", s)
}

// MustParseColor is ParseColor for constants; it panics on malformed input.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseRGBFunc(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Color{}, fmt.Errorf("parse color %q: unbalanced parentheses", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("parse color %q: want 3 or 4 components", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		ch[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	a := uint8(255)
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		a = uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return Color{ch[0], ch[1], ch[2], a}, nil
}

// Hex formats the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// CSS formats the color as rgba(r, g, b, a).
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, FloatRound(float64(c.A)/255, 3))
}

// WithOpacity scales the alpha channel by o (0..1).
func (c Color) WithOpacity(o float64) Color {
	o = math.Max(0, math.Min(1, o))
	c.A = uint8(math.Round(float64(c.A) * o))
	return c
}

type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

type Fill struct {
	Color   Color
	Rule    FillRule
	Enabled bool
}

// SolidFill is an enabled non-zero fill of color c.
func SolidFill(c Color) Fill { return Fill{Color: c, Enabled: true} }

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

type Stroke struct {
	Color    Color
	Width    float64
	Cap      LineCap
	Join     LineJoin
	MiterLim float64
	Enabled  bool
}

// SolidStroke is an enabled stroke of color c and width w.
func SolidStroke(c Color, w float64) Stroke { return Stroke{Color: c, Width: w, Enabled: true} }
