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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/czicompress/cmd/czicompress/opts"
	"github.com/walteh/czicompress/pkg/status"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
)

// ErrCancelled is returned when a run was interrupted before it finished.
var ErrCancelled = errors.Base("operation cancelled")

// 🔄 RunFile transcodes a single file with the settings from cmd. Progress is
// drawn only when stdout is a terminal.
func RunFile(cmd *cobra.Command, o *opts.RootOpts, input, output string) error {
	ctx := cmd.Context()

	cfg, err := o.LoadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	var bar *status.Progress
	if o.Interactive {
		bar = status.NewProgress(o.Stdout, true)
	}
	progress := func(ev transcode.ProgressEvent) bool {
		if ctx.Err() != nil {
			return false
		}
		if bar != nil {
			bar.Update(ev)
		}
		return true
	}

	res, err := cfg.Processor().ProcessFile(ctx, input, output, progress)
	if bar != nil {
		if serr := bar.Stop(); serr != nil && err == nil {
			err = serr
		}
	}
	if err != nil {
		return err
	}
	if !res.Completed {
		return errors.WithStack(ErrCancelled)
	}

	ratio := 0.0
	if res.InputSize > 0 {
		ratio = float64(res.OutputSize) / float64(res.InputSize)
	}
	formatter := status.NewDefaultFileFormatter()
	fmt.Fprintln(o.Stdout, formatter.FormatFileResult(res.Output, status.StatusCompleted, ratio))
	o.Logger.Infof("%d compressed, %d decompressed, %d copied verbatim",
		res.Statistics.Compressed, res.Statistics.Decompressed, res.Statistics.CopiedVerbatim)
	return nil
}
