/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestParseColorForms(t *testing.T) {
	cases := map[string]Color{
		"#CCCCCC":               {204, 204, 204, 255},
		"#fff":                  {255, 255, 255, 255},
		"#00000080":             {0, 0, 0, 128},
		"rgb(187, 187, 187)":    {187, 187, 187, 255},
		"rgba(10, 20, 30, 0.5)": {10, 20, 30, 128},
		"transparent":           Transparent,
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParseColorRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "rgb(1,2)", "hsl(1, 2, 3)", "rgb(a, b, c)"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestColorFormatting(t *testing.T) {
	c := Color{187, 187, 187, 255}
	if c.Hex() != "#bbbbbb" {
		t.Fatalf("unexpected hex %q", c.Hex())
	}
	if c.WithOpacity(0.5).A != 128 {
		t.Fatalf("unexpected opacity scaling")
	}
	if White.CSS() != "rgba(255, 255, 255, 1)" {
		t.Fatalf("unexpected css %q", White.CSS())
	}
}
