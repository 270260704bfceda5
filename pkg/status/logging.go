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
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 40 // Base width for filename
	statusWidth  = 10 // Width for status text
	commandWidth = 10 // Width for command text
)

// 🎯 FormatFileLine formats a finished file as a colored table row
func FormatFileLine(path, command string, status FileStatus, ratio float64) string {
	// Determine prefix symbol
	var prefix string
	switch status {
	case StatusCompleted:
		prefix = color.GreenString("✓")
	case StatusCancelled:
		prefix = color.YellowString("⏹")
	case StatusFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	// Format parts with padding
	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	commandPart := fmt.Sprintf("%-*s", commandWidth, command)
	statusPart := fmt.Sprintf("%-*s", statusWidth, status)

	ratioPart := ""
	if ratio > 0 {
		ratioPart = color.HiBlackString("%6.1f%%", ratio*100)
	}

	// Build final string with indentation
	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		commandPart,
		statusPart,
		ratioPart,
	), " ")
}
