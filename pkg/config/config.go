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

// Package config loads the optional run configuration file that seeds the
// CLI's defaults for a repository.
package config

import (
	"context"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// Config holds per-repository defaults for a review run. Flags given on the
// command line override these values.
type Config struct {
	RootDirectory        string   // directory whose descendants are explored
	Extensions           []string // extension allow-list, glob entries ok
	ExcludePaths         []string // paths/globs never visited
	IncludeExtensionless bool     // also visit files without an extension
	Editor               string   // editor command for manual intervention
	DefaultNo            bool     // default the accept prompt to "no"
}

// Validate fills defaults and normalizes paths.
func (cfg *Config) Validate() error {
	if cfg.RootDirectory == "" {
		cfg.RootDirectory = "."
	}
	cfg.RootDirectory = filepath.Clean(cfg.RootDirectory)
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{"*"}
	}
	return nil
}

// Parser parses one configuration file format.
type Parser interface {
	// Parse decodes the config from raw bytes.
	Parse(ctx context.Context, data []byte) (*Config, error)

	// CanParse reports whether this parser handles the given file.
	CanParse(filename string) bool
}

var parsers []Parser

// Register adds a parser to the registry. Called from format init funcs.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// Load reads and parses the configuration file at path. A missing file is
// not an error: the zero config, with defaults filled, is returned, so a
// run with no config file behaves identically to one with an empty file.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	for _, p := range parsers {
		if !p.CanParse(path) {
			continue
		}
		cfg, err := p.Parse(ctx, data)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, errors.Errorf("no parser for config file %q", path)
}
