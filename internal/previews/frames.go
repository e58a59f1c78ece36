/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package previews

import (
	"context"
	"fmt"
	"log/slog"

	alog "animview/internal/log"
	"animview/internal/project"
	"animview/internal/render"
	"animview/internal/vector"
)

// Stats counts the frames StoreFrames visited and the thumbnails it had to
// render because the cache had none for the frame's current revision.
type Stats struct {
	Frames    int
	Generated int
}

// StoreFrames makes sure every frame of p has a thumbnail in s, maxSide
// pixels on the long edge. Frames must have been rendered, e.g. by
// view.ProjectView.Prerender. Unchanged frames keep their cached thumbnail.
func StoreFrames(ctx context.Context, s *Store, p *project.Project, maxSide int) (Stats, error) {
	size := vector.Size{W: p.Width(), H: p.Height()}
	bg := p.BackgroundColor()
	var st Stats
	for _, vf := range p.AllFrames() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		f, ok := vf.(*project.Frame)
		if !ok {
			continue
		}
		fctx := alog.ContextWithFrame(ctx, f.UUID())
		k := Key{FrameID: f.UUID(), Kind: KindThumb, W: maxSide, H: maxSide, Rev: f.Revision() + "/" + bg.CSS()}
		_, err := s.GetOrCreate(fctx, k, func(context.Context) ([]byte, error) {
			data, err := render.Thumbnail(f.Groups(), size, maxSide, bg)
			if err != nil {
				return nil, fmt.Errorf("thumbnail frame %s: %w", f.UUID(), err)
			}
			st.Generated++
			s.log.DebugContext(fctx, "rendered thumbnail", slog.Int("bytes", len(data)))
			return data, nil
		})
		if err != nil {
			return st, err
		}
		st.Frames++
	}
	s.log.InfoContext(ctx, "stored frame previews", slog.Int("frames", st.Frames), slog.Int("generated", st.Generated), slog.String("project", p.Name))
	return st, nil
}
