// Copyright 2025 the codemod-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"context"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/codemod-go/codemod/pkg/patch"
	"github.com/codemod-go/codemod/pkg/position"
)

// ErrEmptyCorpus is returned when percentile resolution finds no patches at
// all, so no position can represent any fraction of the workload.
var ErrEmptyCorpus = errors.New("no patches found in hierarchy")

// ComputePercentile returns the position that is percentage% of the way
// through the full task described by this query. It materializes the entire
// unwindowed patch list eagerly (a full-repository scan); the cost is paid
// once and memoized. Percentages are clamped so that anything at or past
// 100% resolves to the last patch and anything below zero to the first.
func (q *Query) ComputePercentile(ctx context.Context, percentage int) (position.Position, error) {
	all, err := q.AllPatches(ctx, false)
	if err != nil {
		return position.Position{}, err
	}
	if len(all) == 0 {
		return position.Position{}, errors.WithStack(ErrEmptyCorpus)
	}
	idx := len(all) * percentage / 100
	if idx >= len(all) {
		idx = len(all) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return all[idx].StartPosition(), nil
}

// AllPatches computes the complete ordered patch list for this query,
// ignoring the start/end window. The list is memoized; pass recompute to
// rebuild it after the filter, root, or tree has changed, since it is never
// invalidated automatically.
//
// Files are scanned in parallel, but results are stitched back together in
// walk order, so the list matches what a sequential generation over a
// static tree would yield.
func (q *Query) AllPatches(ctx context.Context, recompute bool) ([]*patch.Patch, error) {
	if q.allPatchesSet && !recompute {
		return q.allPatches, nil
	}

	zerolog.Ctx(ctx).Info().Msg("computing full change list")

	paths, err := walkDirectory(q.rootDirectory)
	if err != nil {
		return nil, err
	}

	var visited []string
	for _, path := range paths {
		if q.shouldVisit(path) {
			visited = append(visited, path)
		}
	}

	perFile := make([][]*patch.Patch, len(visited))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range visited {
		g.Go(func() error {
			lines, err := q.fileReader(path)
			if err != nil {
				return nil
			}
			for p, err := range q.suggestor.Suggest(lines) {
				if err != nil {
					return err
				}
				if p.IsReplacement() && slices.Equal(p.NewLines, sliceRange(lines, p.StartLineNumber, p.EndLineNumber)) {
					continue
				}
				p.Path = path
				perFile[i] = append(perFile[i], p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*patch.Patch
	for _, patches := range perFile {
		all = append(all, patches...)
	}
	q.allPatches = all
	q.allPatchesSet = true
	return all, nil
}
