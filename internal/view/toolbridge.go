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
	"math"
)

// toolEventBuffer bounds the number of undrained tool events.
const toolEventBuffer = 256

// wheelZoomFactor converts wheel pixels into zoom steps.
const wheelZoomFactor = 0.001

// ToolBridge connects the project's tools to the view. Tools report through
// a single typed channel which the host drains with DispatchToolEvents.
type ToolBridge struct {
	view   *ProjectView
	events chan ToolEvent
	wired  bool
	active Tool
	log    *slog.Logger
}

func newToolBridge(v *ProjectView, l *slog.Logger) *ToolBridge {
	return &ToolBridge{view: v, events: make(chan ToolEvent, toolEventBuffer), log: l}
}

// wire attaches every tool once and hooks scroll-to-zoom into the canvas.
func (b *ToolBridge) wire() {
	if b.wired {
		return
	}
	b.wired = true
	b.view.canvas.onWheel = b.view.ScrollToZoom
	for _, t := range b.view.model.Tools() {
		t.Attach(EventSink{tool: t.Name(), ch: b.events})
	}
	b.Activate(b.view.model.Tool(ToolNone))
	b.log.Debug("tools wired", slog.Int("tools", len(b.view.model.Tools())))
}

// Activate makes t the only active tool. A nil tool deactivates the current
// one.
func (b *ToolBridge) Activate(t Tool) {
	if t == b.active {
		return
	}
	if b.active != nil {
		b.active.Deactivate()
	}
	b.active = t
	if t != nil {
		t.Activate()
	}
}

// Active returns the tool that currently receives input.
func (b *ToolBridge) Active() Tool { return b.active }

// Pending reports how many tool events wait to be dispatched.
func (b *ToolBridge) Pending() int { return len(b.events) }

// dispatch drains queued events in FIFO order. Handler errors do not stop the
// drain; they are joined into the result.
func (b *ToolBridge) dispatch() error {
	var errs []error
	for {
		select {
		case ev := <-b.events:
			if err := b.handle(ev); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

func (b *ToolBridge) handle(ev ToolEvent) error {
	v := b.view
	switch ev.Kind {
	case CanvasModified:
		v.ApplyChanges()
		v.events.fire(Event{Name: EventCanvasModified, Source: ev, Action: ev.Action})
	case ViewTransformed:
		err := v.applyZoomAndPanChangesFromCanvas()
		v.events.fire(Event{Name: EventCanvasModified, Source: ev, Action: "viewTransform-" + ev.Tool})
		if err != nil {
			return fmt.Errorf("view transform from %q: %w", ev.Tool, err)
		}
	case ColorPicked:
		v.events.fire(Event{Name: EventEyedropperPickedColor, Source: ev})
	default:
		b.log.Warn("unknown tool event", slog.String("kind", ev.Kind.String()), slog.String("tool", ev.Tool))
	}
	return nil
}

// wheelZoom returns the canvas zoom after a wheel step. The lower bound
// matches ZoomMin; the upper bound is applied by the commit path.
func wheelZoom(current float64, e WheelEvent) float64 {
	return math.Max(ZoomMin, current+e.DeltaY*e.DeltaFactor*wheelZoomFactor)
}
