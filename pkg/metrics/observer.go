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

package metrics

import (
	"time"

	"github.com/walteh/czicompress/pkg/transcode"
)

// FileObservation is what a finished (or failed) file contributes to metrics.
type FileObservation struct {
	Command    transcode.Command
	Status     string
	Duration   time.Duration
	InputSize  int64
	OutputSize int64
	Statistics transcode.Statistics
}

// 📈 ObserveFile records one processed file.
func ObserveFile(o FileObservation) {
	command := o.Command.String()

	FilesTotal.WithLabelValues(command, o.Status).Inc()
	FileDuration.WithLabelValues(command).Observe(o.Duration.Seconds())
	BytesTotal.WithLabelValues("in").Add(float64(o.InputSize))
	BytesTotal.WithLabelValues("out").Add(float64(o.OutputSize))

	BlocksTotal.WithLabelValues("copied").Add(float64(o.Statistics.CopiedVerbatim))
	BlocksTotal.WithLabelValues("compressed").Add(float64(o.Statistics.Compressed))
	BlocksTotal.WithLabelValues("decompressed").Add(float64(o.Statistics.Decompressed))
}
