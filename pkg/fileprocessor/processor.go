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

// Package fileprocessor transcodes one container file into another.
package fileprocessor

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/container"
	"github.com/walteh/czicompress/pkg/operation"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
)

// ErrSamePath is returned when input and output resolve to the same file.
var ErrSamePath = errors.Base("input and output are the same file")

// 🗂️ Processor holds the settings shared by every file it processes.
type Processor struct {
	Command  transcode.Command
	Strategy transcode.Strategy
	Options  codec.Options
	// Overwrite replaces an existing output file instead of failing
	Overwrite bool
	// AllowDuplicateBlocks is passed to the container writer
	AllowDuplicateBlocks bool
	// Codec overrides the default codec
	Codec codec.Capability
}

// Result describes one processed file.
type Result struct {
	Input      string
	Output     string
	Statistics transcode.Statistics
	Completed  bool
	InputSize  int64
	OutputSize int64
	Duration   time.Duration
}

// Status returns "completed" or "cancelled".
func (r *Result) Status() string {
	if r.Completed {
		return "completed"
	}
	return "cancelled"
}

// 🏃 ProcessFile transcodes in to out. On error or cancellation the partial
// output is removed and Result.Completed is false.
func (p *Processor) ProcessFile(ctx context.Context, in, out string, progress transcode.ProgressFunc) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("input", in).Str("output", out).Logger()
	start := time.Now()
	res := &Result{Input: in, Output: out}

	if err := checkPaths(in, out); err != nil {
		return res, err
	}

	// Open source
	src, err := container.OpenFile(in)
	if err != nil {
		return res, errors.Errorf("opening input: %w", err)
	}
	defer src.Close()
	res.InputSize = src.Size()

	// Create destination
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if p.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(out, flags, 0644)
	if err != nil {
		return res, errors.Errorf("creating output: %w", err)
	}

	keep := false
	defer func() {
		if keep {
			return
		}
		f.Close()
		if rerr := os.Remove(out); rerr != nil && !os.IsNotExist(rerr) {
			logger.Warn().Err(rerr).Msg("removing partial output")
		}
	}()

	bw := bufio.NewWriterSize(f, 1<<20)
	w, err := container.NewWriter(bw, container.WriterOptions{AllowDuplicateBlocks: p.AllowDuplicateBlocks})
	if err != nil {
		return res, errors.Errorf("creating output container: %w", err)
	}

	// Run the transcode
	op := operation.New()
	op.Configure(operation.Options{
		Source:      src,
		Destination: w,
		Command:     p.Command,
		Strategy:    p.Strategy,
		Compression: p.Options,
		Codec:       p.Codec,
	})
	ok, err := op.Run(logger.WithContext(ctx), progress)
	res.Statistics = op.Statistics()
	res.Duration = time.Since(start)
	if err != nil {
		return res, errors.Errorf("transcoding %s: %w", in, err)
	}
	if !ok {
		logger.Info().Msg("transcode cancelled, output removed")
		return res, nil
	}

	// Finish the file
	if err := w.Close(); err != nil {
		return res, errors.Errorf("closing output container: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return res, errors.Errorf("flushing output: %w", err)
	}
	if err := f.Close(); err != nil {
		return res, errors.Errorf("closing output: %w", err)
	}
	keep = true

	res.Completed = true
	res.OutputSize = int64(w.BytesWritten())
	res.Duration = time.Since(start)

	logger.Debug().
		Object("statistics", res.Statistics).
		Int64("input_size", res.InputSize).
		Int64("output_size", res.OutputSize).
		Dur("duration", res.Duration).
		Msg("file processed")

	return res, nil
}

func checkPaths(in, out string) error {
	absIn, err := filepath.Abs(in)
	if err != nil {
		return errors.Errorf("resolving input path: %w", err)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return errors.Errorf("resolving output path: %w", err)
	}
	if absIn == absOut {
		return errors.Errorf("%w: %s", ErrSamePath, in)
	}
	return nil
}
