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

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/czicompress/cmd/czicompress/commands"
	"github.com/walteh/czicompress/cmd/czicompress/opts"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/config"
	"github.com/walteh/czicompress/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var errUsage = errors.Base("invalid usage")

const rootLong = `Copies the content of a CZI file into another CZI file changing the compression
of the image data.

With the 'compress' command, uncompressed image data is converted to
zstd-compressed image data. This can reduce the file size substantially.
With the 'decompress' command, compressed image data is converted to
uncompressed data.

For the 'compress' command, a compression strategy can be chosen with the
'--strategy' option. It controls which subblocks of the source file are
compressed. The source may already contain compressed data, possibly with a
lossy scheme, and compressing that with lossless zstd would almost certainly
increase the file size. Therefore the "uncompressed" strategy compresses only
uncompressed subblocks. The "uncompressed_and_zstd" strategy also recompresses
zstd subblocks, and "all" compresses every subblock regardless of its current
compression.

Some compression schemes that can occur in a CZI file cannot be decoded by this
tool. Such data is copied verbatim to the destination file, regardless of the
command and strategy chosen.`

// newRootCmd creates the root command, which transcodes a single file
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:           "czicompress",
		Short:         "Change the compression of the image data in CZI files",
		Long:          rootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, o)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunFile(cmd, o, input, output)
		},
	}

	addRootFlags(cmd, o)
	cmd.Flags().StringVarP(&input, "input", "i", "", "the source CZI file to be processed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "the destination CZI file to be written")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Errorf("%w: %v", errUsage, err)
	})

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.ConfigFile, opts.FlagConfig, "", "config file path (.yaml, .json or .hcl)")
	pf.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")

	pf.StringP(opts.FlagCommand, "c", "", "'compress' to convert to a zstd-compressed CZI, 'decompress' to convert to a CZI containing only uncompressed data")
	pf.StringP(opts.FlagStrategy, "s", config.DefaultStrategy, "which subblocks are compressed: 'all', 'uncompressed' or 'uncompressed_and_zstd'")
	pf.StringP(opts.FlagCompressionOptions, "t", codec.DefaultOptionsString, "compression parameters")
	pf.BoolP(opts.FlagOverwrite, "w", false, "if the output file exists, try to overwrite it")
	pf.Bool(opts.FlagIgnoreDuplicates, true, "ignore duplicate subblocks in the source document instead of failing")
}

// setupLogging configures zerolog based on flags
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) {
	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: o.Stderr}).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
	o.Logger = log.New(o.Stdout, level)
}
