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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/document"
	"github.com/walteh/czicompress/pkg/metadata"
	"github.com/walteh/czicompress/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func TestCompressDecide(t *testing.T) {
	modes := []document.CompressionMode{
		document.ModeUncompressed,
		document.ModeJpg,
		document.ModeLzw,
		document.ModeJpgXr,
		document.ModeZstd0,
		document.ModeZstd1,
		document.CompressionMode(42),
	}

	tests := []struct {
		strategy Strategy
		compress map[document.CompressionMode]bool
	}{
		{
			strategy: StrategyAll,
			compress: map[document.CompressionMode]bool{
				document.ModeUncompressed: true, document.ModeJpg: true, document.ModeLzw: true,
				document.ModeJpgXr: true, document.ModeZstd0: true, document.ModeZstd1: true, 42: true,
			},
		},
		{
			strategy: StrategyOnlyUncompressed,
			compress: map[document.CompressionMode]bool{document.ModeUncompressed: true},
		},
		{
			strategy: StrategyUncompressedAndLossless,
			compress: map[document.CompressionMode]bool{
				document.ModeUncompressed: true, document.ModeZstd0: true, document.ModeZstd1: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			p, err := NewCompressPolicy(tt.strategy, codec.DefaultOptions())
			require.NoError(t, err)

			for _, mode := range modes {
				want := ActionCopy
				if tt.compress[mode] {
					want = ActionCompress
				}
				assert.Equal(t, want, p.Decide(document.BlockInfo{Mode: mode}), "mode %s", mode)
			}
		})
	}
}

func TestDecompressDecide(t *testing.T) {
	p := NewDecompressPolicy()
	for _, mode := range []document.CompressionMode{document.ModeUncompressed, document.ModeZstd0, document.ModeLzw} {
		assert.Equal(t, ActionDecompress, p.Decide(document.BlockInfo{Mode: mode}))
	}
}

func TestMetadataThresholds(t *testing.T) {
	compress, err := NewCompressPolicy(StrategyAll, codec.DefaultOptions())
	require.NoError(t, err)
	decompress := NewDecompressPolicy()

	tests := []struct {
		name    string
		policy  Policy
		stats   Statistics
		rewrite bool
		value   string
	}{
		{name: "compress_all", policy: compress, stats: Statistics{Compressed: 4}, rewrite: true, value: metadata.LosslessValue},
		{name: "compress_exact_half", policy: compress, stats: Statistics{Compressed: 2, CopiedVerbatim: 2}, rewrite: true, value: metadata.LosslessValue},
		{name: "compress_below_half", policy: compress, stats: Statistics{Compressed: 1, CopiedVerbatim: 2}},
		{name: "compress_counts_decompressed", policy: compress, stats: Statistics{Compressed: 2, Decompressed: 3}},
		{name: "compress_empty", policy: compress, stats: Statistics{}, rewrite: true, value: metadata.LosslessValue},
		{name: "decompress_all", policy: decompress, stats: Statistics{Decompressed: 4}, rewrite: true, value: ""},
		{name: "decompress_exact_half", policy: decompress, stats: Statistics{Decompressed: 3, CopiedVerbatim: 3}, rewrite: true, value: ""},
		{name: "decompress_none", policy: decompress, stats: Statistics{CopiedVerbatim: 4}},
		{name: "decompress_empty", policy: decompress, stats: Statistics{}, rewrite: true, value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := document.Metadata(testutils.SampleMetadata)
			out, changed, err := tt.policy.RewriteMetadata(tt.stats, in)
			require.NoError(t, err)
			assert.Equal(t, tt.rewrite, changed)

			if !tt.rewrite {
				assert.Equal(t, in, out, "metadata should pass through")
				return
			}
			value, ok, err := metadata.GetNodeValue(out, metadata.CurrentCompressionParametersPath)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestRewriteMetadataMalformed(t *testing.T) {
	_, _, err := NewDecompressPolicy().RewriteMetadata(Statistics{Decompressed: 1}, document.Metadata("<ImageDocument a=>"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestNewCompressPolicyValidation(t *testing.T) {
	_, err := NewCompressPolicy(StrategyAll, codec.Options{Mode: document.ModeJpg})
	assert.ErrorIs(t, err, ErrUnsupportedCodec, "lossy targets are not supported")

	_, err = NewCompressPolicy(StrategyAll, codec.Options{Mode: document.ModeUncompressed})
	assert.ErrorIs(t, err, ErrUnsupportedCodec)

	_, err = NewCompressPolicy(StrategyInvalid, codec.DefaultOptions())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDecompressPolicyNeverCompresses(t *testing.T) {
	_, _, err := NewDecompressPolicy().Compress(codec.New(), testutils.Gradient(document.PixelTypeGray8, 2, 2, 0))
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(CommandCompress, StrategyAll, codec.DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &CompressPolicy{}, p)

	p, err = NewPolicy(CommandDecompress, StrategyInvalid, codec.Options{})
	require.NoError(t, err, "decompress ignores strategy and options")
	assert.IsType(t, &DecompressPolicy{}, p)

	p, err = NewPolicy(CommandInvalid, StrategyAll, codec.DefaultOptions())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestParseCommandAndStrategy(t *testing.T) {
	for _, c := range []Command{CommandCompress, CommandDecompress} {
		got, err := ParseCommand(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCommand("shrink")
	assert.ErrorIs(t, err, ErrConfiguration)

	for _, s := range []Strategy{StrategyAll, StrategyOnlyUncompressed, StrategyUncompressedAndLossless} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStrategy(" Uncompressed_And_Zstd ")
	require.NoError(t, err)
	assert.Equal(t, StrategyUncompressedAndLossless, got)

	_, err = ParseStrategy("some")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestErrorKinds(t *testing.T) {
	err := errors.Errorf("processing file: %w", newError(ErrOverflow, "check block", errors.New("too big")))

	assert.ErrorIs(t, err, ErrOverflow)
	assert.False(t, errors.Is(err, ErrIO))
	assert.Equal(t, ErrOverflow, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "check block: size overflow: too big")
}

func TestProgressEventString(t *testing.T) {
	assert.Equal(t, "Blocks 3/10", ProgressEvent{Phase: PhaseBlocks, Done: 3, Todo: 10}.String())
	assert.Equal(t, "Attachments 2", ProgressEvent{Phase: PhaseAttachments, Done: 2, Todo: TodoUnknown}.String())
}
