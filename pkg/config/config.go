// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/batch"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/fileprocessor"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// hasExt reports whether filename ends in one of exts, ignoring case.
func hasExt(filename string, exts ...string) bool {
	ext := filepath.Ext(strings.TrimSpace(filename))
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// strictDecoder is what the YAML and JSON parsers decode with; both reject
// unknown fields.
type strictDecoder interface {
	Decode(v any) error
}

func decodeConfig(format string, dec strictDecoder) (*Config, error) {
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing %s: %w", format, err)
	}
	return &cfg, nil
}

// Default values filled in by Validate.
const (
	DefaultStrategy = "uncompressed"
)

// 📁 BatchArgs configures folder runs
type BatchArgs struct {
	Threads     int      `json:"threads,omitempty" yaml:"threads,omitempty" hcl:"threads,optional"`
	Recursive   bool     `json:"recursive,omitempty" yaml:"recursive,omitempty" hcl:"recursive,optional"`
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	LogFile     string   `json:"log_file,omitempty" yaml:"log_file,omitempty" hcl:"log_file,optional"`
	MetricsFile string   `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" hcl:"metrics_file,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Command            string     `json:"command" yaml:"command" hcl:"command"`
	Strategy           string     `json:"strategy,omitempty" yaml:"strategy,omitempty" hcl:"strategy,optional"`
	CompressionOptions string     `json:"compression_options,omitempty" yaml:"compression_options,omitempty" hcl:"compression_options,optional"`
	Overwrite          bool       `json:"overwrite,omitempty" yaml:"overwrite,omitempty" hcl:"overwrite,optional"`
	IgnoreDuplicates   *bool      `json:"ignore_duplicate_subblocks,omitempty" yaml:"ignore_duplicate_subblocks,omitempty" hcl:"ignore_duplicate_subblocks,optional"`
	Batch              *BatchArgs `json:"batch,omitempty" yaml:"batch,omitempty" hcl:"batch,block"`

	command  transcode.Command
	strategy transcode.Strategy
	options  codec.Options
}

// 🎯 Load reads and validates the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 📖 Read parses a config file without validating it, so callers can apply
// overrides first.
func Read(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Command == "" {
		return errors.Errorf("command is required")
	}

	// Set defaults
	if cfg.Strategy == "" {
		cfg.Strategy = DefaultStrategy
	}
	if cfg.CompressionOptions == "" {
		cfg.CompressionOptions = codec.DefaultOptionsString
	}
	if cfg.IgnoreDuplicates == nil {
		ignore := true
		cfg.IgnoreDuplicates = &ignore
	}

	var err error
	if cfg.command, err = transcode.ParseCommand(cfg.Command); err != nil {
		return errors.Errorf("command: %w", err)
	}
	if cfg.strategy, err = transcode.ParseStrategy(cfg.Strategy); err != nil {
		return errors.Errorf("strategy: %w", err)
	}
	if cfg.options, err = codec.ParseOptions(cfg.CompressionOptions); err != nil {
		return errors.Errorf("compression_options: %w", err)
	}

	if cfg.Batch != nil {
		if cfg.Batch.Threads < 0 {
			return errors.Errorf("batch.threads must not be negative")
		}
		if cfg.Batch.Threads == 0 {
			cfg.Batch.Threads = runtime.NumCPU()
		}
		if cfg.Batch.LogFile != "" {
			cfg.Batch.LogFile = filepath.Clean(cfg.Batch.LogFile)
		}
		if cfg.Batch.MetricsFile != "" {
			cfg.Batch.MetricsFile = filepath.Clean(cfg.Batch.MetricsFile)
		}
	}

	return nil
}

// ⚙️ Processor builds the file processor described by a validated config
func (cfg *Config) Processor() *fileprocessor.Processor {
	return &fileprocessor.Processor{
		Command:              cfg.command,
		Strategy:             cfg.strategy,
		Options:              cfg.options,
		Overwrite:            cfg.Overwrite,
		AllowDuplicateBlocks: cfg.IgnoreDuplicates != nil && *cfg.IgnoreDuplicates,
	}
}

// 📁 FolderCompressor builds the folder runner described by a validated config
func (cfg *Config) FolderCompressor() *batch.FolderCompressor {
	fc := &batch.FolderCompressor{
		Processor: cfg.Processor(),
		Threads:   runtime.NumCPU(),
	}
	if cfg.Batch != nil {
		fc.Threads = cfg.Batch.Threads
		fc.Recursive = cfg.Batch.Recursive
		fc.Exclude = cfg.Batch.Exclude
	}
	return fc
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	s := fmt.Sprintf("%s strategy=%s options=%s", cfg.Command, cfg.Strategy, cfg.CompressionOptions)
	if cfg.Overwrite {
		s += " overwrite"
	}
	return strings.TrimSpace(s)
}
