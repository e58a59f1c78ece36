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
	"testing"

	"animview/internal/vector"
)

func TestToolEvents_CanvasModifiedAppliesChanges(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	events, cancel := v.Subscribe(4)
	defer cancel()
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	brush := m.fakeTool("brush")
	if err := brush.sink.Emit(ToolEvent{Kind: CanvasModified, Action: "brush"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if v.Tools().Pending() != 1 {
		t.Fatalf("v.Tools().Pending() = %v, want 1", v.Tools().Pending())
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("DispatchToolEvents: %v", err)
	}
	if v.Tools().Pending() != 0 {
		t.Fatalf("v.Tools().Pending() = %v, want 0", v.Tools().Pending())
	}

	if m.selection.applied != 1 {
		t.Fatalf("m.selection.applied = %v, want 1", m.selection.applied)
	}
	if m.root.tl.frames[0].(*fakeFrame).applied != 1 {
		t.Fatalf("m.root.tl.frames[0].(*fakeFrame).applied = %v, want 1", m.root.tl.frames[0].(*fakeFrame).applied)
	}

	ev := <-events
	if ev.Name != EventCanvasModified {
		t.Fatalf("ev.Name = %v, want %v", ev.Name, EventCanvasModified)
	}
	if ev.Action != "brush" {
		t.Fatalf("ev.Action = %q, want brush", ev.Action)
	}
	if ev.Source.Tool != "brush" {
		t.Fatalf("ev.Source.Tool = %q, want brush", ev.Source.Tool)
	}
}

func TestToolEvents_ViewTransformTagsAction(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	events, cancel := v.Subscribe(4)
	defer cancel()
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	v.Canvas().SetZoom(3)
	if err := m.fakeTool("zoom").sink.Emit(ToolEvent{Kind: ViewTransformed}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("DispatchToolEvents: %v", err)
	}

	ev := <-events
	if ev.Name != EventCanvasModified {
		t.Fatalf("ev.Name = %v, want %v", ev.Name, EventCanvasModified)
	}
	if ev.Action != "viewTransform-zoom" {
		t.Fatalf("ev.Action = %q, want viewTransform-zoom", ev.Action)
	}
	if m.zoom != 3.0 {
		t.Fatalf("m.zoom = %v, want 3.0", m.zoom)
	}
}

func TestToolEvents_ColorPicked(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	events, cancel := v.Subscribe(1)
	defer cancel()
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	red := vector.Color{R: 255, A: 255}
	if err := m.fakeTool("cursor").sink.Emit(ToolEvent{Kind: ColorPicked, Color: red}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("DispatchToolEvents: %v", err)
	}

	ev := <-events
	if ev.Name != EventEyedropperPickedColor {
		t.Fatalf("ev.Name = %v, want %v", ev.Name, EventEyedropperPickedColor)
	}
	if ev.Source.Color != red {
		t.Fatalf("ev.Source.Color = %v, want %v", ev.Source.Color, red)
	}
	if m.selection.applied != 0 {
		t.Fatalf("color picks do not touch the scene: m.selection.applied = %v, want 0", m.selection.applied)
	}
}

func TestToolEvents_FIFOAndQueueFull(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	events, cancel := v.Subscribe(toolEventBuffer + 1)
	defer cancel()
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	sink := m.fakeTool("cursor").sink
	for i := 0; i < toolEventBuffer; i++ {
		if err := sink.Emit(ToolEvent{Kind: ColorPicked, Color: vector.Color{R: uint8(i)}}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := sink.Emit(ToolEvent{Kind: ColorPicked}); !errors.Is(err, ErrEventQueueFull) {
		t.Fatalf("Emit on a full queue = %v, want ErrEventQueueFull", err)
	}

	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("DispatchToolEvents: %v", err)
	}
	for i := 0; i < toolEventBuffer; i++ {
		ev := <-events
		if ev.Source.Color.R != uint8(i) {
			t.Fatalf("ev.Source.Color.R = %v, want %v", ev.Source.Color.R, uint8(i))
		}
	}
}

func TestEventSink_Unattached(t *testing.T) {
	var s EventSink
	if s.Emit(ToolEvent{Kind: CanvasModified}) == nil {
		t.Fatalf("Emit returned no error")
	}
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	slow, cancelSlow := v.Subscribe(1)
	fast, cancelFast := v.Subscribe(8)
	defer cancelFast()
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	sink := m.fakeTool("cursor").sink
	for i := 0; i < 3; i++ {
		if err := sink.Emit(ToolEvent{Kind: ColorPicked}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := v.DispatchToolEvents(); err != nil {
		t.Fatalf("DispatchToolEvents: %v", err)
	}
	if len(slow) != 1 {
		t.Fatalf("len(slow) = %d, want 1", len(slow))
	}
	if len(fast) != 3 {
		t.Fatalf("len(fast) = %d, want 3", len(fast))
	}

	cancelSlow()
	cancelSlow()
	_, open := <-slow
	if !open {
		t.Fatalf("buffered event is not readable after cancel")
	}
	_, open = <-slow
	if open {
		t.Fatalf("cancelled subscription is still open")
	}
}

func TestToolBridge_ActivateSwitchesExclusively(t *testing.T) {
	m := newFakeModel(400, 300)
	v, _ := newTestView(t, m)
	if err := v.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	cursor, brush := m.fakeTool("cursor"), m.fakeTool("brush")
	v.Tools().Activate(brush)
	if !brush.active {
		t.Fatalf("brush not active after Activate")
	}
	if cursor.active {
		t.Fatalf("cursor still active after switching to brush")
	}

	before := brush.activations
	v.Tools().Activate(brush)
	if brush.activations != before {
		t.Fatalf("re-activating the active tool: activations = %d, want %d", brush.activations, before)
	}

	v.Tools().Activate(nil)
	if brush.active {
		t.Fatalf("brush still active after Activate(nil)")
	}
	if v.Tools().Active() != nil {
		t.Fatalf("active tool = %v, want nil", v.Tools().Active())
	}
}
