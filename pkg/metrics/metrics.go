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

// Package metrics declares the Prometheus metrics recorded while transcoding.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gitlab.com/tozd/go/errors"
)

// File metrics
var (
	FilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "czicompress_files_total",
			Help: "Total number of processed files by command and outcome",
		},
		[]string{"command", "status"}, // status: "completed", "cancelled", "failed"
	)

	FileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "czicompress_file_duration_seconds",
			Help:    "Time spent transcoding one file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"command"},
	)

	BytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "czicompress_bytes_total",
			Help: "Total bytes read from inputs and written to outputs",
		},
		[]string{"direction"}, // "in", "out"
	)
)

// Block metrics
var (
	BlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "czicompress_blocks_total",
			Help: "Total number of blocks by outcome",
		},
		[]string{"outcome"}, // "copied", "compressed", "decompressed"
	)
)

// Batch metrics
var (
	BatchFilesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "czicompress_batch_files_in_flight",
			Help: "Number of files currently being transcoded by a batch run",
		},
	)
)

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
