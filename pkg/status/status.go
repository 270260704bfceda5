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
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus is the outcome of one processed file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusCompleted            // Output written and closed
	StatusCancelled            // Stopped at a checkpoint, output removed
	StatusFailed               // Fatal error, output removed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseFileStatus is the inverse of FileStatus.String.
func ParseFileStatus(s string) FileStatus {
	switch s {
	case "completed":
		return StatusCompleted
	case "cancelled":
		return StatusCancelled
	case "failed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// 💾 WriteFileAtomic writes content to a temp file next to path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := path + ".tmp"

	// Write to temp file
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
