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

package batch

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/walteh/czicompress/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var logHeader = []string{"input", "output", "status", "input_size", "output_size", "ratio", "copied", "compressed", "decompressed", "error"}

// EncodeLog renders the results as CSV, one row per file.
func EncodeLog(results []FileResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(logHeader); err != nil {
		return nil, errors.Errorf("writing log header: %w", err)
	}

	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		row := []string{
			r.Input,
			r.Output,
			r.Status,
			strconv.FormatInt(r.InputSize, 10),
			strconv.FormatInt(r.OutputSize, 10),
			strconv.FormatFloat(r.Ratio(), 'f', 4, 64),
			strconv.Itoa(r.Statistics.CopiedVerbatim),
			strconv.Itoa(r.Statistics.Compressed),
			strconv.Itoa(r.Statistics.Decompressed),
			errText,
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Errorf("writing log row for %s: %w", r.Input, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Errorf("flushing log: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteLog writes the CSV log to path, replacing it atomically.
func WriteLog(path string, results []FileResult) error {
	data, err := EncodeLog(results)
	if err != nil {
		return err
	}
	return status.WriteFileAtomic(path, data)
}
