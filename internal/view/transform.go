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
	"math"
	"strings"

	"animview/internal/vector"
)

// Viewport limits. User driven zoom and pan are clamped to these; programmatic
// setters store values unchanged.
const (
	ZoomMin  = 0.1
	ZoomMax  = 10.0
	PanLimit = 10000.0
)

// FitMode decides how the project is scaled into the container.
type FitMode string

const (
	FitCenter FitMode = "center"
	FitFill   FitMode = "fill"
)

// ValidFitModes lists the accepted fit modes in display order.
var ValidFitModes = []FitMode{FitCenter, FitFill}

var (
	ErrInvalidFitMode     = errors.New("invalid fit mode")
	ErrDegenerateGeometry = errors.New("degenerate project geometry")
)

// ParseFitMode validates s against ValidFitModes.
func ParseFitMode(s string) (FitMode, error) {
	for _, m := range ValidFitModes {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, len(ValidFitModes))
	for i, m := range ValidFitModes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrInvalidFitMode, s, strings.Join(names, ","))
}

// TransformState is the view's local copy of zoom, pan and fit mode.
// pan is stored as an offset of the canvas center, so at root focus it is
// already shifted by half the project size.
type TransformState struct {
	zoom    float64
	pan     vector.Pt
	fitMode FitMode
}

// NewTransformState starts at zoom 1, no pan, centered fit.
func NewTransformState() TransformState {
	return TransformState{zoom: 1, fitMode: FitCenter}
}

// Zoom and SetZoom hold the canvas zoom; callers clamp before storing.
func (s *TransformState) Zoom() float64     { return s.zoom }
func (s *TransformState) SetZoom(z float64) { s.zoom = z }

func (s *TransformState) FitMode() FitMode { return s.fitMode }

// Offset is the stored pan, already shifted at root focus.
func (s *TransformState) Offset() vector.Pt { return s.pan }

// SetPan stores p. At root focus the project center becomes the origin, so
// half of size is subtracted.
func (s *TransformState) SetPan(p vector.Pt, rootFocus bool, size vector.Size) {
	if rootFocus {
		p = p.Sub(vector.Pt{X: size.W / 2, Y: size.H / 2})
	}
	s.pan = p
}

// PanFromCenter converts a canvas center back into a user-facing pan.
func PanFromCenter(center vector.Pt, rootFocus bool, size vector.Size) vector.Pt {
	p := center.Neg()
	if rootFocus {
		p = p.Add(vector.Pt{X: size.W / 2, Y: size.H / 2})
	}
	return p
}

// SetFitMode keeps the previous mode when m is not valid.
func (s *TransformState) SetFitMode(m string) error {
	fm, err := ParseFitMode(m)
	if err != nil {
		return err
	}
	s.fitMode = fm
	return nil
}

// FitZoom returns the largest zoom at which a project of projW x projH fits a
// view of viewW x viewH. Degenerate project sizes yield 1 and
// ErrDegenerateGeometry.
func FitZoom(viewW, viewH, projW, projH float64) (float64, error) {
	if projW <= 0 || projH <= 0 {
		return 1, fmt.Errorf("%w: project size %gx%g", ErrDegenerateGeometry, projW, projH)
	}
	z := math.Min(viewW/projW, viewH/projH)
	if math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		return 1, fmt.Errorf("%w: fit ratio %g for view %gx%g", ErrDegenerateGeometry, z, viewW, viewH)
	}
	return z, nil
}

// ClampZoom limits z to [ZoomMin, ZoomMax].
func ClampZoom(z float64) float64 { return math.Max(ZoomMin, math.Min(ZoomMax, z)) }

// ClampPan limits both components of p to [-PanLimit, PanLimit].
func ClampPan(p vector.Pt) vector.Pt {
	return vector.Pt{
		X: math.Max(-PanLimit, math.Min(PanLimit, p.X)),
		Y: math.Max(-PanLimit, math.Min(PanLimit, p.Y)),
	}
}
