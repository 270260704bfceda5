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
	"fmt"

	"github.com/walteh/czicompress/pkg/transcode"
)

// FileFormatter defines the interface for formatting status messages
type FileFormatter interface {
	// FormatFileResult formats the outcome of one file
	FormatFileResult(path string, status FileStatus, ratio float64) string
	// FormatProgress formats a progress event
	FormatProgress(ev transcode.ProgressEvent) string
	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileResult formats a file outcome with emojis. The ratio is shown
// when known.
func (f *DefaultFileFormatter) FormatFileResult(path string, status FileStatus, ratio float64) string {
	switch status {
	case StatusCompleted:
		if ratio > 0 {
			return fmt.Sprintf("✨ Processed %s (%.1f%% of input)", path, ratio*100)
		}
		return fmt.Sprintf("✨ Processed %s", path)
	case StatusCancelled:
		return fmt.Sprintf("⏹️  Cancelled %s", path)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s", path)
	default:
		return fmt.Sprintf("❔ Unknown %s", path)
	}
}

// FormatProgress formats a progress event as "<Phase> done/todo", or
// "<Phase> done" when the total is unknown
func (f *DefaultFileFormatter) FormatProgress(ev transcode.ProgressEvent) string {
	return ev.String()
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
