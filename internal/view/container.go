/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "animview/internal/vector"

// Container hosts a canvas. The view borrows it: the container decides its own
// size and the view only mounts its canvas into it.
type Container interface {
	Bounds() vector.Size
	Mounted() *Canvas
	Mount(c *Canvas)
}

// FixedContainer is a headless container with a settable size, used by the
// CLI renderer and tests.
type FixedContainer struct {
	Size   vector.Size
	canvas *Canvas
	mounts int
}

func NewFixedContainer(w, h float64) *FixedContainer {
	return &FixedContainer{Size: vector.Size{W: w, H: h}}
}

func (f *FixedContainer) Bounds() vector.Size { return f.Size }
func (f *FixedContainer) Mounted() *Canvas    { return f.canvas }
func (f *FixedContainer) Mount(c *Canvas) {
	f.canvas = c
	f.mounts++
}

// Mounts counts how often a canvas was mounted.
func (f *FixedContainer) Mounts() int { return f.mounts }
