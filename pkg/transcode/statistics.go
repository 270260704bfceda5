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

package transcode

import "github.com/rs/zerolog"

// 📊 Statistics counts the outcome of every processed block. The sum of the
// three counters is the number of blocks processed so far.
type Statistics struct {
	CopiedVerbatim int `json:"copied_verbatim"`
	Compressed     int `json:"compressed"`
	Decompressed   int `json:"decompressed"`
}

// Total returns the number of blocks processed.
func (s Statistics) Total() int {
	return s.CopiedVerbatim + s.Compressed + s.Decompressed
}

// Add returns the element-wise sum of s and o.
func (s Statistics) Add(o Statistics) Statistics {
	return Statistics{
		CopiedVerbatim: s.CopiedVerbatim + o.CopiedVerbatim,
		Compressed:     s.Compressed + o.Compressed,
		Decompressed:   s.Decompressed + o.Decompressed,
	}
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Statistics) MarshalZerologObject(e *zerolog.Event) {
	e.Int("copied_verbatim", s.CopiedVerbatim).
		Int("compressed", s.Compressed).
		Int("decompressed", s.Decompressed)
}

func (s *Statistics) record(outcome Action) {
	switch outcome {
	case ActionCompress:
		s.Compressed++
	case ActionDecompress:
		s.Decompressed++
	default:
		s.CopiedVerbatim++
	}
}

// majority reports whether count*2 >= total.
func majority(count, total int) bool {
	return count*2 >= total
}
