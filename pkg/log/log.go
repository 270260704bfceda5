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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/batch"
	"github.com/walteh/czicompress/pkg/status"
)

// 📦 BatchOperation describes a folder run for logging
type BatchOperation struct {
	InputDir  string // Folder files are read from
	OutputDir string // Folder outputs are written to
	Command   string // compress or decompress
	Threads   int    // Parallel files
}

// 🎯 Logger prints per-file results to the console and mirrors them to zerolog.
// It implements batch.Observer.
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *BatchOperation
	results   []batch.FileResult
}

var _ batch.Observer = (*Logger)(nil)

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) command() string {
	if l.currentOp == nil {
		return ""
	}
	return l.currentOp.Command
}

// 📝 StartBatch starts a folder run
func (l *Logger) StartBatch(ctx context.Context, op BatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.results = nil

	// Print batch header
	fmt.Fprintf(l.console, "[%s %s]\n",
		op.Command,
		color.New(color.FgCyan).Sprint(op.InputDir))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.OutputDir),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d threads", op.Threads))

	l.zlog.Info().
		Str("input_dir", op.InputDir).
		Str("output_dir", op.OutputDir).
		Str("command", op.Command).
		Int("threads", op.Threads).
		Msg("starting batch")
}

// FileStarted implements batch.Observer.
func (l *Logger) FileStarted(ctx context.Context, input string) {
	l.zlog.Debug().Str("input", input).Msg("file started")
}

// FileFinished implements batch.Observer.
func (l *Logger) FileFinished(ctx context.Context, result batch.FileResult) {
	l.LogFileResult(ctx, result)
}

// 📝 LogFileResult logs the outcome of one file
func (l *Logger) LogFileResult(ctx context.Context, result batch.FileResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append(l.results, result)

	name := result.Input
	if l.currentOp != nil {
		if rel, err := filepath.Rel(l.currentOp.InputDir, result.Input); err == nil {
			name = rel
		}
	}

	fmt.Fprintln(l.console, status.FormatFileLine(name, l.command(), status.ParseFileStatus(result.Status), result.Ratio()))
	if result.Err != nil {
		fmt.Fprintf(l.console, "      %s\n", color.New(color.FgRed).Sprint(result.Err.Error()))
	}

	ev := l.zlog.Info()
	if result.Err != nil {
		ev = l.zlog.Error().Err(result.Err)
	}
	ev.Str("input", result.Input).
		Str("status", result.Status).
		Float64("ratio", result.Ratio())
	if result.Result != nil {
		ev = ev.Object("statistics", result.Statistics)
	}
	ev.Msg("file processed")
}

// 📝 EndBatch prints the summary of the current batch
func (l *Logger) EndBatch(ctx context.Context, stats batch.AggregateStatistics) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	fmt.Fprintf(l.console, "%s %d completed, %d failed, %d cancelled %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		stats.FilesCompleted,
		stats.FilesFailed,
		stats.FilesCancelled,
		color.New(color.Faint).Sprintf("(%d → %d bytes)", stats.InputBytes, stats.OutputBytes))

	l.zlog.Info().
		Str("input_dir", l.currentOp.InputDir).
		Int("files", len(l.results)).
		Object("blocks", stats.Blocks).
		Dur("duration", stats.Duration).
		Msg("batch complete")

	l.currentOp = nil
	l.results = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("czicompress")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
