/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// VisitFunc receives a leaf shape with its accumulated device transform and
// the product of all ancestor group opacities.
type VisitFunc func(s Shape, m Affine2D, opacity float64)

// Walk visits every visible leaf below n in paint order (bottom to top).
// base is the transform of n's parent space into device space.
func Walk(n Node, base Affine2D, fn VisitFunc) {
	walk(n, base, 1, fn)
}

func walk(n Node, base Affine2D, opacity float64, fn VisitFunc) {
	m := base.Mul(n.Transform())
	switch v := n.(type) {
	case *Group:
		if !v.Visible || v.Opacity <= 0 {
			return
		}
		o := opacity * v.Opacity
		for _, c := range v.Children {
			walk(c, m, o, fn)
		}
	case Shape:
		fn(v, m, opacity)
	}
}
