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

package fileprocessor

import "github.com/walteh/czicompress/pkg/transcode"

// Phase weights in percent. They add up to 100.
const (
	weightBlocks      = 95
	weightAttachments = 4
	weightMetadata    = 1
)

// Percent maps a progress event to an overall completion percentage. Phases
// are assumed to run in order; a phase with an unknown total counts as half done.
func Percent(ev transcode.ProgressEvent) int {
	fraction := 0.5
	if ev.HasTodo() && ev.Todo > 0 {
		fraction = float64(ev.Done) / float64(ev.Todo)
	}

	var total float64
	switch ev.Phase {
	case transcode.PhaseBlocks:
		total = weightBlocks * fraction
	case transcode.PhaseAttachments:
		total = weightBlocks + weightAttachments*fraction
	case transcode.PhaseMetadata:
		total = weightBlocks + weightAttachments + weightMetadata*fraction
	}
	return int(total)
}

// PercentProgress adapts a percentage callback to a transcode.ProgressFunc.
func PercentProgress(report func(percent int) bool) transcode.ProgressFunc {
	if report == nil {
		return nil
	}
	return func(ev transcode.ProgressEvent) bool {
		return report(Percent(ev))
	}
}
