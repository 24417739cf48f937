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

// Package query orchestrates an ordered, resumable traversal of a file
// hierarchy, driving a suggestor over each qualifying file and yielding a
// single globally-ordered patch stream.
package query

import (
	"context"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/patch"
	"github.com/codemod-go/codemod/pkg/pathfilter"
	"github.com/codemod-go/codemod/pkg/position"
	"github.com/codemod-go/codemod/pkg/suggest"
)

// FileReader loads the current content of a file as a list of lines, each
// keeping its terminator. The query calls it before scanning a file and
// again after every yielded patch, so an injected reader is the explicit
// collaborator through which consumer edits become visible mid-traversal.
type FileReader func(path string) ([]string, error)

// Query pairs a suggestor with constraints on which files, and which part
// of the hierarchy, should be fed to it.
//
// A query is not safe for concurrent use; the patch stream is a
// single-consumer pull-based sequence.
type Query struct {
	suggestor        suggest.Suggestor
	rootDirectory    string
	pathFilter       *pathfilter.Filter
	incExtensionless bool
	fileReader       FileReader

	start *endpoint
	end   *endpoint

	// Memoized unwindowed patch list, used only to resolve percentage
	// endpoints. Invalidated only by an explicit recompute.
	allPatches    []*patch.Patch
	allPatchesSet bool
}

// endpoint is a window boundary: either a raw "path:line" / "NN%" string
// awaiting resolution, or an already-resolved position. Resolution is
// memoized here so a percentage is computed once per query.
type endpoint struct {
	raw      string
	resolved *position.Position
}

// Option configures a Query.
type Option func(*Query)

// WithStart sets the window start from a "path:line" or "NN%" string.
func WithStart(s string) Option {
	return func(q *Query) {
		if s != "" {
			q.start = &endpoint{raw: s}
		}
	}
}

// WithEnd sets the window end from a "path:line" or "NN%" string. The end
// position marks the first line not to include.
func WithEnd(s string) Option {
	return func(q *Query) {
		if s != "" {
			q.end = &endpoint{raw: s}
		}
	}
}

// WithStartAt sets the window start from an already-concrete position.
func WithStartAt(pos position.Position) Option {
	return func(q *Query) {
		q.start = &endpoint{resolved: &pos}
	}
}

// WithEndAt sets the window end from an already-concrete position.
func WithEndAt(pos position.Position) Option {
	return func(q *Query) {
		q.end = &endpoint{resolved: &pos}
	}
}

// WithRoot sets the directory whose descendant files are explored.
func WithRoot(root string) Option {
	return func(q *Query) {
		q.rootDirectory = root
	}
}

// WithPathFilter sets the path filter deciding which files are visited.
func WithPathFilter(f *pathfilter.Filter) Option {
	return func(q *Query) {
		q.pathFilter = f
	}
}

// WithExtensionless includes files without an extension even when they do
// not pass the path filter.
func WithExtensionless(include bool) Option {
	return func(q *Query) {
		q.incExtensionless = include
	}
}

// WithFileReader replaces the on-disk file reader, mostly for tests.
func WithFileReader(r FileReader) Option {
	return func(q *Query) {
		q.fileReader = r
	}
}

// New builds a query over the given suggestor. Defaults: root ".", the
// historical default path filter, reading files from disk.
func New(suggestor suggest.Suggestor, opts ...Option) *Query {
	q := &Query{
		suggestor:     suggestor,
		rootDirectory: ".",
		pathFilter:    pathfilter.Default(),
		fileReader:    ReadLines,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SetStart replaces the window start with a concrete position. The review
// loop uses this to resume from a bookmark.
func (q *Query) SetStart(pos position.Position) {
	q.start = &endpoint{resolved: &pos}
}

// StartPosition resolves the configured start into a concrete position, or
// nil when the query starts at the very beginning. Percentage endpoints
// trigger a full unwindowed scan on first resolution and are memoized.
func (q *Query) StartPosition(ctx context.Context) (*position.Position, error) {
	return q.resolveEndpoint(ctx, q.start)
}

// EndPosition resolves the configured end into a concrete position, or nil
// when the query runs to the very end.
func (q *Query) EndPosition(ctx context.Context) (*position.Position, error) {
	return q.resolveEndpoint(ctx, q.end)
}

func (q *Query) resolveEndpoint(ctx context.Context, e *endpoint) (*position.Position, error) {
	if e == nil {
		return nil, nil
	}
	if e.resolved != nil {
		return e.resolved, nil
	}
	if pct, ok := strings.CutSuffix(e.raw, "%"); ok {
		percentage, err := parsePercentage(pct)
		if err != nil {
			return nil, err
		}
		pos, err := q.ComputePercentile(ctx, percentage)
		if err != nil {
			return nil, err
		}
		e.resolved = &pos
		return e.resolved, nil
	}
	pos, err := position.Parse(e.raw)
	if err != nil {
		return nil, err
	}
	e.resolved = &pos
	return e.resolved, nil
}

// GeneratePatches lazily yields every patch matching the query, in
// path-lexicographic order and, within a file, in suggestor order. The
// sequence is deterministic for a static tree, which is what makes resuming
// at an exact position well-defined.
//
// After each yielded patch the file is re-read through the FileReader, so
// edits the consumer saves in response to a patch are reflected in
// subsequent matches in the same file.
func (q *Query) GeneratePatches(ctx context.Context) iter.Seq2[*patch.Patch, error] {
	return func(yield func(*patch.Patch, error) bool) {
		logger := zerolog.Ctx(ctx)

		startPos, err := q.StartPosition(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		endPos, err := q.EndPosition(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		paths, err := walkDirectory(q.rootDirectory)
		if err != nil {
			yield(nil, err)
			return
		}
		paths = sublist(paths, pathOf(startPos), pathOf(endPos))

		for _, path := range paths {
			if !q.shouldVisit(path) {
				continue
			}
			lines, err := q.fileReader(path)
			if err != nil {
				// Unreadable files (vanished symlinks, permissions,
				// undecodable content) are skipped, never fatal.
				logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable file")
				continue
			}
			if !q.scanFile(path, lines, startPos, endPos, yield) {
				return
			}
		}
	}
}

// scanFile drives the suggestor over one file, applying window cutoffs and
// no-op suppression, and re-reading the file after each yield. It returns
// false when the whole traversal should stop.
func (q *Query) scanFile(path string, lines []string, startPos, endPos *position.Position, yield func(*patch.Patch, error) bool) bool {
	// Patches starting before minLine have already been presented (or fall
	// before the window start) and are skipped.
	minLine := 0
	if startPos != nil && path == startPos.Path {
		minLine = startPos.LineNumber
	}

	for {
		restarted := false
		for p, err := range q.suggestor.Suggest(lines) {
			if err != nil {
				yield(nil, err)
				return false
			}
			if p.StartLineNumber < minLine {
				continue
			}
			if endPos != nil && path == endPos.Path && p.EndLineNumber >= endPos.LineNumber {
				// The end path is the last one visited, so reaching the end
				// line stops the entire traversal.
				return false
			}
			if p.IsReplacement() && slices.Equal(p.NewLines, sliceRange(lines, p.StartLineNumber, p.EndLineNumber)) {
				continue
			}

			p.Path = path
			if !yield(p, nil) {
				return false
			}

			// The consumer may have just saved an edit; observe it before
			// scanning further.
			fresh, err := q.fileReader(path)
			if err != nil {
				return true
			}
			if !slices.Equal(fresh, lines) {
				lines = fresh
				minLine = p.StartLineNumber + 1
				restarted = true
				break
			}
		}
		if !restarted {
			return true
		}
	}
}

// shouldVisit applies the looks-like-code gate and the path filter gate.
func (q *Query) shouldVisit(path string) bool {
	if !pathLooksLikeCode(path) {
		return false
	}
	if q.pathFilter.Matches(path) {
		return true
	}
	return q.incExtensionless && pathfilter.IsExtensionless(path)
}

// pathLooksLikeCode rejects dotfiles and dot-directories anywhere in the
// path, editor backups ending in "~", and ctags files.
func pathLooksLikeCode(path string) bool {
	if strings.HasSuffix(path, "~") ||
		strings.HasSuffix(path, "tags") ||
		strings.HasSuffix(path, "TAGS") {
		return false
	}
	for _, component := range strings.Split(path, string(os.PathSeparator)) {
		if len(component) > 1 && component[0] == '.' && component != ".." {
			return false
		}
	}
	return true
}

// sublist restricts paths to the contiguous run from the first occurrence
// of startPath (or the beginning, when empty) through the first occurrence
// of endPath inclusive (or the end, when empty).
func sublist(paths []string, startPath, endPath string) []string {
	var out []string
	started := startPath == ""
	for _, p := range paths {
		if !started && p == startPath {
			started = true
		}
		if started {
			out = append(out, p)
		}
		if endPath != "" && p == endPath {
			break
		}
	}
	return out
}

func pathOf(pos *position.Position) string {
	if pos == nil {
		return ""
	}
	return pos.Path
}

// sliceRange slices lines over [start, end), clamping out-of-bounds
// indices the way the range may legitimately drift after consumer edits.
func sliceRange(lines []string, start, end int) []string {
	if start > len(lines) {
		start = len(lines)
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil
	}
	return lines[start:end]
}

func parsePercentage(s string) (int, error) {
	percentage := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.Errorf("%w: %q", position.ErrFormat, s+"%")
		}
		percentage = percentage*10 + int(r-'0')
	}
	if s == "" {
		return 0, errors.Errorf("%w: %q", position.ErrFormat, "%")
	}
	return percentage, nil
}
