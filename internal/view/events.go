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
	"sync"

	"animview/internal/vector"
)

// ToolEventKind enumerates what a tool can report back to the view.
type ToolEventKind int

const (
	// CanvasModified: the tool changed scene content on the canvas.
	CanvasModified ToolEventKind = iota
	// ViewTransformed: the tool moved the canvas viewport (zoom or pan).
	ViewTransformed
	// ColorPicked: the eyedropper sampled a color.
	ColorPicked
)

func (k ToolEventKind) String() string {
	switch k {
	case CanvasModified:
		return "canvasModified"
	case ViewTransformed:
		return "canvasViewTransformed"
	case ColorPicked:
		return "eyedropperPickedColor"
	default:
		return fmt.Sprintf("ToolEventKind(%d)", int(k))
	}
}

// ToolEvent is a notification produced by a tool.
type ToolEvent struct {
	Kind ToolEventKind
	// Tool is the name of the emitting tool; EventSink fills it in.
	Tool string
	// Action names the edit for CanvasModified, e.g. "fillbucket".
	Action string
	// Color is set for ColorPicked.
	Color vector.Color
	// Point is the project-space location of the input that caused the event.
	Point vector.Pt
}

// ErrEventQueueFull is returned by EventSink.Emit when the host has not
// drained pending tool events.
var ErrEventQueueFull = errors.New("tool event queue full")

// EventSink is the producer side of the tool event channel. Each tool gets
// its own sink so events are tagged with the tool name.
type EventSink struct {
	tool string
	ch   chan<- ToolEvent
}

// Emit queues ev without blocking.
func (s EventSink) Emit(ev ToolEvent) error {
	if s.ch == nil {
		return fmt.Errorf("emit %s from %q: sink not attached", ev.Kind, s.tool)
	}
	ev.Tool = s.tool
	select {
	case s.ch <- ev:
		return nil
	default:
		return fmt.Errorf("emit %s from %q: %w", ev.Kind, s.tool, ErrEventQueueFull)
	}
}

// Outbound event names.
const (
	EventCanvasModified        = "canvasModified"
	EventEyedropperPickedColor = "eyedropperPickedColor"
)

// Event is fired by the view to its subscribers.
type Event struct {
	Name   string
	Source ToolEvent
	// Action is set for canvasModified: the tool action, or
	// "viewTransform-<tool>" for viewport changes.
	Action string
}

type subscriber struct {
	id int
	ch chan Event
}

// broadcaster fans events out to subscribers without ever blocking the view.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
	log    *slog.Logger
}

func (b *broadcaster) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := subscriber{id: b.nextID, ch: make(chan Event, buffer)}
	b.subs = append(b.subs, s)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, cur := range b.subs {
				if cur.id == s.id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					close(cur.ch)
					return
				}
			}
		})
	}
	return s.ch, cancel
}

func (b *broadcaster) fire(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			b.log.Warn("dropping event for slow subscriber", slog.String("event", ev.Name), slog.Int("subscriber", s.id))
		}
	}
}
