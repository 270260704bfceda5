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

// Package batch transcodes every container file below a folder.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/fileprocessor"
	"github.com/walteh/czicompress/pkg/metrics"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultPattern matches container files in the input folder.
const DefaultPattern = "*.{czi,CZI}"

// File statuses used in results, logs and metrics.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// 👀 Observer is notified as files start and finish. Calls may come from
// several goroutines at once.
type Observer interface {
	FileStarted(ctx context.Context, input string)
	FileFinished(ctx context.Context, result FileResult)
}

// FileResult is the outcome of one file.
type FileResult struct {
	*fileprocessor.Result
	Status string
	Err    error
}

// Ratio returns output size over input size, or 0 when unknown.
func (r FileResult) Ratio() float64 {
	if r.Result == nil || r.InputSize == 0 || r.OutputSize == 0 {
		return 0
	}
	return float64(r.OutputSize) / float64(r.InputSize)
}

// AggregateStatistics sums the results of a batch.
type AggregateStatistics struct {
	FilesCompleted int
	FilesFailed    int
	FilesCancelled int
	InputBytes     int64
	OutputBytes    int64
	Blocks         transcode.Statistics
	Duration       time.Duration
}

// FilesTotal returns the number of files that were attempted.
func (a AggregateStatistics) FilesTotal() int {
	return a.FilesCompleted + a.FilesFailed + a.FilesCancelled
}

func (a *AggregateStatistics) add(r FileResult) {
	switch r.Status {
	case StatusCompleted:
		a.FilesCompleted++
	case StatusCancelled:
		a.FilesCancelled++
	default:
		a.FilesFailed++
	}
	if r.Result != nil {
		a.InputBytes += r.InputSize
		a.OutputBytes += r.OutputSize
		a.Blocks = a.Blocks.Add(r.Statistics)
	}
}

// Summary is what Run returns.
type Summary struct {
	Statistics AggregateStatistics
	Results    []FileResult
}

// 📁 FolderCompressor processes a folder of files with a bounded worker pool.
// Each file is transcoded by a single goroutine.
type FolderCompressor struct {
	Processor *fileprocessor.Processor
	// Threads is the maximum number of files processed at once
	Threads int
	// Recursive descends into sub folders; output mirrors the input layout
	Recursive bool
	// Pattern selects input files; DefaultPattern when empty
	Pattern string
	// Exclude skips input paths (relative, slash separated) matching any pattern
	Exclude []string
}

// Discover lists the relative paths of the input files, sorted.
func (fc *FolderCompressor) Discover(inputDir, outputDir string) ([]string, error) {
	pattern := fc.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if fc.Recursive {
		pattern = "**/" + pattern
	}

	matches, err := doublestar.Glob(os.DirFS(inputDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("globbing %s in %s: %w", pattern, inputDir, err)
	}

	// outputs written below the input folder must not be picked up again
	outRel, err := filepath.Rel(inputDir, outputDir)
	if err != nil || strings.HasPrefix(outRel, "..") || outRel == "." {
		outRel = ""
	}
	outRel = filepath.ToSlash(outRel)

	var files []string
	for _, m := range matches {
		if outRel != "" && strings.HasPrefix(m, outRel+"/") {
			continue
		}
		if fc.excluded(m) {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

func (fc *FolderCompressor) excluded(rel string) bool {
	for _, pattern := range fc.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// 🏃 Run processes every discovered file. Per-file failures are recorded in
// the summary and do not stop the batch. Cancelling ctx stops scheduling new
// files and cancels running ones at their next checkpoint.
func (fc *FolderCompressor) Run(ctx context.Context, inputDir, outputDir string, observer Observer) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if fc.Processor == nil {
		return nil, errors.New("processor is required")
	}

	files, err := fc.Discover(inputDir, outputDir)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("files", len(files)).Str("input_dir", inputDir).Str("output_dir", outputDir).Msg("starting batch")

	threads := fc.Threads
	if threads < 1 {
		threads = 1
	}

	var (
		mu      sync.Mutex
		results []FileResult
	)

	var g errgroup.Group
	g.SetLimit(threads)

	for _, rel := range files {
		if ctx.Err() != nil {
			logger.Debug().Msg("batch cancelled, not scheduling more files")
			break
		}

		rel := rel
		g.Go(func() error {
			res := fc.processOne(ctx, inputDir, outputDir, rel, observer)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Input < results[j].Input })

	summary := &Summary{Results: results}
	for _, r := range results {
		summary.Statistics.add(r)
	}
	summary.Statistics.Duration = time.Since(start)

	logger.Info().
		Int("completed", summary.Statistics.FilesCompleted).
		Int("failed", summary.Statistics.FilesFailed).
		Int("cancelled", summary.Statistics.FilesCancelled).
		Object("blocks", summary.Statistics.Blocks).
		Msg("batch finished")

	return summary, nil
}

func (fc *FolderCompressor) processOne(ctx context.Context, inputDir, outputDir, rel string, observer Observer) FileResult {
	in := filepath.Join(inputDir, filepath.FromSlash(rel))
	out := filepath.Join(outputDir, filepath.FromSlash(rel))

	if observer != nil {
		observer.FileStarted(ctx, in)
	}
	metrics.BatchFilesInFlight.Inc()
	defer metrics.BatchFilesInFlight.Dec()

	var (
		res *fileprocessor.Result
		err error
	)
	if err = os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		err = errors.Errorf("creating output folder: %w", err)
	} else {
		res, err = fc.Processor.ProcessFile(ctx, in, out, func(transcode.ProgressEvent) bool {
			return ctx.Err() == nil
		})
	}
	if res == nil {
		res = &fileprocessor.Result{Input: in, Output: out}
	}

	fr := FileResult{Result: res, Err: err}
	switch {
	case err != nil:
		fr.Status = StatusFailed
		zerolog.Ctx(ctx).Error().Err(err).Str("input", in).Msg("file failed")
	case !res.Completed:
		fr.Status = StatusCancelled
	default:
		fr.Status = StatusCompleted
	}

	metrics.ObserveFile(metrics.FileObservation{
		Command:    fc.Processor.Command,
		Status:     fr.Status,
		Duration:   res.Duration,
		InputSize:  res.InputSize,
		OutputSize: res.OutputSize,
		Statistics: res.Statistics,
	})

	if observer != nil {
		observer.FileFinished(ctx, fr)
	}
	return fr
}
