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

package opts

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/czicompress/pkg/config"
	"github.com/walteh/czicompress/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// Flag names shared by the root command and its subcommands.
const (
	FlagConfig             = "config"
	FlagCommand            = "command"
	FlagStrategy           = "strategy"
	FlagCompressionOptions = "compression_options"
	FlagOverwrite          = "overwrite"
	FlagIgnoreDuplicates   = "ignore_duplicate_subblocks"
	FlagThreads            = "threads"
	FlagRecursive          = "recursive"
	FlagExclude            = "exclude"
	FlagLogFile            = "log-file"
	FlagMetricsFile        = "metrics-file"
)

// 🎯 RootOpts holds the dependencies shared by every command
type RootOpts struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Interactive bool // stdout is a terminal
	ConfigFile  string
	Debug       bool
	Logger      *log.Logger
}

// 📚 LoadConfig reads the optional config file, applies the flags the user
// set on cmd and validates the result. Flags win over file values.
func (o *RootOpts) LoadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.Read(ctx, o.ConfigFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed(FlagCommand) {
		if cfg.Command, err = flags.GetString(FlagCommand); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if flags.Changed(FlagStrategy) {
		if cfg.Strategy, err = flags.GetString(FlagStrategy); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if flags.Changed(FlagCompressionOptions) {
		if cfg.CompressionOptions, err = flags.GetString(FlagCompressionOptions); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if flags.Changed(FlagOverwrite) {
		if cfg.Overwrite, err = flags.GetBool(FlagOverwrite); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if flags.Changed(FlagIgnoreDuplicates) {
		ignore, err := flags.GetBool(FlagIgnoreDuplicates)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		cfg.IgnoreDuplicates = &ignore
	}

	if err := applyBatchFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyBatchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Lookup(FlagThreads) == nil {
		return nil
	}
	if cfg.Batch == nil {
		cfg.Batch = &config.BatchArgs{}
	}

	var err error
	if flags.Changed(FlagThreads) {
		if cfg.Batch.Threads, err = flags.GetInt(FlagThreads); err != nil {
			return errors.WithStack(err)
		}
	}
	if flags.Changed(FlagRecursive) {
		if cfg.Batch.Recursive, err = flags.GetBool(FlagRecursive); err != nil {
			return errors.WithStack(err)
		}
	}
	if flags.Changed(FlagExclude) {
		if cfg.Batch.Exclude, err = flags.GetStringSlice(FlagExclude); err != nil {
			return errors.WithStack(err)
		}
	}
	if flags.Changed(FlagLogFile) {
		if cfg.Batch.LogFile, err = flags.GetString(FlagLogFile); err != nil {
			return errors.WithStack(err)
		}
	}
	if flags.Changed(FlagMetricsFile) {
		if cfg.Batch.MetricsFile, err = flags.GetString(FlagMetricsFile); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
