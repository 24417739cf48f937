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

// Package pathfilter decides which file paths a query should visit, based
// on an extension allow-list and an exclude-pattern list.
package pathfilter

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter accepts a path only if it matches at least one allowed extension
// and none of the exclude patterns. It holds no mutable state and is safe
// for concurrent use.
type Filter struct {
	extensions   []string
	excludePaths []string
}

// New builds a filter from an extension allow-list and an exclude list.
//
// Allow entries are matched against the path's extension (the part after
// the final dot of the last component) with shell-glob semantics, so
// entries like "m?" work. A path with no extension instead compares its
// full base name verbatim against each entry, which lets entries like
// "LICENSE" or "BUILD" match extensionless files.
//
// Exclude entries match when the path starts with the entry, starts with
// "./" plus the entry, or glob-matches the entry as a whole (supporting
// patterns like "*/node_modules/*").
func New(extensions, excludePaths []string) *Filter {
	return &Filter{extensions: extensions, excludePaths: excludePaths}
}

// Default returns the historical default filter over common web-stack
// source extensions.
func Default() *Filter {
	return New([]string{"php", "phpt", "js", "css", "rb", "erb"}, nil)
}

// Any returns a filter that accepts every extension.
func Any(excludePaths []string) *Filter {
	return New([]string{"*"}, excludePaths)
}

// Matches reports whether path passes the filter.
func (f *Filter) Matches(path string) bool {
	matched := false
	for _, ext := range f.extensions {
		if matchesExtension(path, ext) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, excluded := range f.excludePaths {
		if strings.HasPrefix(path, excluded) || strings.HasPrefix(path, "./"+excluded) {
			return false
		}
		if ok, err := doublestar.Match(widenExclude(excluded), path); err == nil && ok {
			return false
		}
	}
	return true
}

// widenExclude turns each bare "*" path segment into "**", so an exclude
// like "*/vendor/*" matches vendor directories at any depth rather than
// exactly one level down.
func widenExclude(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if seg == "*" {
			segments[i] = "**"
		}
	}
	return strings.Join(segments, "/")
}

// IsExtensionless reports whether the final path component has no
// extension. Dotfiles like ".profile" count as extensionless.
func IsExtensionless(path string) bool {
	return extensionOf(path) == ""
}

// matchesExtension reports whether path has the given extension, or, for
// extensionless paths, whether the base name equals the entry verbatim.
func matchesExtension(path, extension string) bool {
	ext := extensionOf(path)
	if ext == "" {
		return filepath.Base(path) == extension
	}
	ok, err := doublestar.Match(extension, ext)
	return err == nil && ok
}

// extensionOf returns the extension without its leading dot, or "" when
// there is none. A leading dot alone (".profile") is a name, not an
// extension.
func extensionOf(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return ""
	}
	return base[idx+1:]
}
