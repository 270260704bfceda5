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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/czicompress/cmd/czicompress/opts"
	"github.com/walteh/czicompress/pkg/batch"
	"github.com/walteh/czicompress/pkg/log"
	"github.com/walteh/czicompress/pkg/metrics"
	"gitlab.com/tozd/go/errors"
)

// NewBatchCmd creates the batch command
func NewBatchCmd(o *opts.RootOpts) *cobra.Command {
	var inputDir, outputDir string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Transcode every file in a folder",
		Long: `Batch processes all CZI files of a folder in parallel.
It will:
1. Find the files to process (optionally recursing into subfolders)
2. Transcode each of them into the same relative path below the output folder
3. Print one line per file and a summary
4. Optionally write a CSV log and a Prometheus metrics file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.LoadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			fc := cfg.FolderCompressor()
			o.Logger.StartBatch(ctx, log.BatchOperation{
				InputDir:  inputDir,
				OutputDir: outputDir,
				Command:   fc.Processor.Command.String(),
				Threads:   fc.Threads,
			})

			summary, err := fc.Run(ctx, inputDir, outputDir, o.Logger)
			if err != nil {
				return errors.Errorf("running batch: %w", err)
			}
			o.Logger.EndBatch(ctx, summary.Statistics)

			if cfg.Batch.LogFile != "" {
				if err := batch.WriteLog(cfg.Batch.LogFile, summary.Results); err != nil {
					return err
				}
			}
			if cfg.Batch.MetricsFile != "" {
				if err := metrics.WriteTextfile(cfg.Batch.MetricsFile); err != nil {
					return err
				}
			}

			if ctx.Err() != nil || summary.Statistics.FilesCancelled > 0 {
				return errors.WithStack(ErrCancelled)
			}
			if n := summary.Statistics.FilesFailed; n > 0 {
				return errors.Errorf("%d of %d files failed", n, summary.Statistics.FilesTotal())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "folder with the source CZI files")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "folder the destination files are written to")
	cmd.Flags().Int(opts.FlagThreads, 0, "number of files processed in parallel (default: number of CPUs)")
	cmd.Flags().Bool(opts.FlagRecursive, false, "include subfolders")
	cmd.Flags().StringSlice(opts.FlagExclude, nil, "glob patterns of files to skip, relative to the input folder")
	cmd.Flags().String(opts.FlagLogFile, "", "write a CSV log of all processed files")
	cmd.Flags().String(opts.FlagMetricsFile, "", "write Prometheus metrics in text format when done")
	_ = cmd.MarkFlagRequired("input-dir")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}
