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

package status

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/czicompress/pkg/transcode"
)

func TestProgressRedrawsWithinPhase(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false)

	events := []transcode.ProgressEvent{
		{Phase: transcode.PhaseBlocks, Done: 1, Todo: 3},
		{Phase: transcode.PhaseBlocks, Done: 2, Todo: 3},
		{Phase: transcode.PhaseBlocks, Done: 3, Todo: 3},
		{Phase: transcode.PhaseAttachments, Done: 1, Todo: transcode.TodoUnknown},
		{Phase: transcode.PhaseMetadata, Done: 0, Todo: 1},
		{Phase: transcode.PhaseMetadata, Done: 1, Todo: 1},
	}
	for _, ev := range events {
		assert.True(t, p.Update(ev), "progress never cancels")
	}
	require.NoError(t, p.Stop())

	assert.Equal(t, "Blocks 3/3\nAttachments 1\nMetadata 1/1\n", buf.String(), "one line per phase")
}

func TestProgressStopWithoutEvents(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false)
	require.NoError(t, p.Stop())
	assert.Empty(t, buf.String())
}

func TestFormatFileResult(t *testing.T) {
	f := NewDefaultFileFormatter()

	tests := []struct {
		name   string
		status FileStatus
		ratio  float64
		want   string
	}{
		{name: "completed_with_ratio", status: StatusCompleted, ratio: 0.25, want: "✨ Processed a.czi (25.0% of input)"},
		{name: "completed_without_ratio", status: StatusCompleted, want: "✨ Processed a.czi"},
		{name: "cancelled", status: StatusCancelled, want: "⏹️  Cancelled a.czi"},
		{name: "failed", status: StatusFailed, want: "❌ Failed a.czi"},
		{name: "unknown", status: StatusUnknown, want: "❔ Unknown a.czi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatFileResult("a.czi", tt.status, tt.ratio))
		})
	}
}

func TestFormatError(t *testing.T) {
	f := NewDefaultFileFormatter()
	assert.Empty(t, f.FormatError(nil))
	assert.Equal(t, "❌ Error: boom", f.FormatError(errors.New("boom")))
}

func TestFormatFileLine(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	line := FormatFileLine("a.czi", "compress", StatusCompleted, 0.5)
	assert.Equal(t, "    ✓ a.czi                                    compress   completed    50.0%", line)

	line = FormatFileLine("b.czi", "decompress", StatusFailed, 0)
	assert.Equal(t, "    ✗ b.czi                                    decompress failed", line)
}

func TestFileStatusRoundTrip(t *testing.T) {
	for _, s := range []FileStatus{StatusCompleted, StatusCancelled, StatusFailed, StatusUnknown} {
		assert.Equal(t, s, ParseFileStatus(s.String()))
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "log.csv")

	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.NoFileExists(t, path+".tmp", "temp file should be renamed away")
}
