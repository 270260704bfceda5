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

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/czicompress/pkg/document"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Options
		wantErr bool
	}{
		{
			name:  "default",
			input: DefaultOptionsString,
			want:  DefaultOptions(),
		},
		{
			name:  "zstd0_level",
			input: "zstd0:ExplicitLevel=5",
			want:  Options{Mode: document.ModeZstd0, Level: 5},
		},
		{
			name:  "mode_only",
			input: "zstd1",
			want:  Options{Mode: document.ModeZstd1},
		},
		{
			name:  "case_and_spaces",
			input: " ZSTD1: explicitlevel = 2 ; preprocess=hilobyteunpack ",
			want:  Options{Mode: document.ModeZstd1, Level: 2, HiLoByteUnpack: true},
		},
		{name: "unknown_mode", input: "brotli:ExplicitLevel=1", wantErr: true},
		{name: "bad_level", input: "zstd0:ExplicitLevel=high", wantErr: true},
		{name: "bad_preprocess", input: "zstd1:PreProcess=Shuffle", wantErr: true},
		{name: "missing_value", input: "zstd1:ExplicitLevel", wantErr: true},
		{name: "unknown_key", input: "zstd1:Threads=4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptions(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsString(t *testing.T) {
	assert.Equal(t, DefaultOptionsString, DefaultOptions().String())

	parsed, err := ParseOptions(Options{Mode: document.ModeZstd0, Level: 7}.String())
	require.NoError(t, err)
	assert.Equal(t, Options{Mode: document.ModeZstd0, Level: 7}, parsed)
}
