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
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/container"
	"github.com/walteh/czicompress/pkg/document"
	"github.com/walteh/czicompress/pkg/metadata"
	"github.com/walteh/czicompress/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func always(ProgressEvent) bool { return true }

func run(t *testing.T, src document.SourceReader, policy Policy) (*Engine, *container.Reader, bool) {
	t.Helper()

	sink := testutils.NewSink(t, container.WriterOptions{})
	engine := NewEngine(src, sink, policy, codec.New())
	ok, err := engine.Run(testContext(t), always)
	require.NoError(t, err, "run should succeed")
	return engine, sink.Reopen(t), ok
}

func compressPolicy(t *testing.T, strategy Strategy) Policy {
	t.Helper()
	p, err := NewCompressPolicy(strategy, codec.DefaultOptions())
	require.NoError(t, err)
	return p
}

func compressionParameters(t *testing.T, r *container.Reader) (string, bool) {
	t.Helper()
	md, err := r.ReadMetadata()
	require.NoError(t, err)
	value, ok, err := metadata.GetNodeValue(md, metadata.CurrentCompressionParametersPath)
	require.NoError(t, err)
	return value, ok
}

func TestScenarios(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks:   testutils.Blocks(4, document.ModeUncompressed, document.PixelTypeGray16, 8, 8),
		Metadata: testutils.SampleMetadata,
	}

	t.Run("a_compress_only_uncompressed", func(t *testing.T) {
		engine, out, ok := run(t, testutils.NewDocument(t, fixture), compressPolicy(t, StrategyOnlyUncompressed))
		require.True(t, ok)

		assert.Equal(t, Statistics{Compressed: 4}, engine.Statistics())
		value, _ := compressionParameters(t, out)
		assert.Equal(t, metadata.LosslessValue, value, "metadata field should be set")

		require.NoError(t, out.EnumerateBlocks(func(_ int, info document.BlockInfo) bool {
			assert.Equal(t, document.ModeZstd1, info.Mode)
			return true
		}))
	})

	t.Run("b_decompress_uncompressed", func(t *testing.T) {
		engine, out, ok := run(t, testutils.NewDocument(t, fixture), NewDecompressPolicy())
		require.True(t, ok)

		assert.Equal(t, Statistics{CopiedVerbatim: 4}, engine.Statistics())
		md, err := out.ReadMetadata()
		require.NoError(t, err)
		assert.Equal(t, testutils.SampleMetadata, string(md), "metadata should pass through unchanged")
	})

	t.Run("c_decompress_compressed_output", func(t *testing.T) {
		_, compressed, _ := run(t, testutils.NewDocument(t, fixture), compressPolicy(t, StrategyOnlyUncompressed))

		engine, out, ok := run(t, compressed, NewDecompressPolicy())
		require.True(t, ok)

		assert.Equal(t, Statistics{Decompressed: 4}, engine.Statistics())
		value, found := compressionParameters(t, out)
		assert.True(t, found)
		assert.Empty(t, value, "metadata field should be cleared")
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		pixelType document.PixelType
		options   codec.Options
	}{
		{name: "zstd1_hilo_gray16", pixelType: document.PixelTypeGray16, options: codec.DefaultOptions()},
		{name: "zstd0_bgr24", pixelType: document.PixelTypeBgr24, options: codec.Options{Mode: document.ModeZstd0, Level: 2}},
		{name: "zstd1_gray8", pixelType: document.PixelTypeGray8, options: codec.Options{Mode: document.ModeZstd1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := testutils.Blocks(3, document.ModeUncompressed, tt.pixelType, 13, 7)
			src := testutils.NewDocument(t, testutils.Fixture{Blocks: specs})

			policy, err := NewCompressPolicy(StrategyAll, tt.options)
			require.NoError(t, err)
			_, compressed, _ := run(t, src, policy)
			_, restored, _ := run(t, compressed, NewDecompressPolicy())

			require.Equal(t, len(specs), restored.BlockCount())
			for i, spec := range specs {
				block, err := restored.ReadBlock(i)
				require.NoError(t, err)
				assert.Equal(t, document.ModeUncompressed, block.Info.Mode)
				assert.Equal(t, spec.Pixels(), block.Data, "block %d pixels should be identical", i)
			}
		})
	}
}

func mixedFixture() testutils.Fixture {
	var blocks []testutils.BlockSpec
	modes := []document.CompressionMode{
		document.ModeUncompressed,
		document.ModeZstd0,
		document.ModeZstd1,
		document.ModeJpg,
		document.ModeLzw,
		document.ModeJpgXr,
		document.CompressionMode(99),
	}
	for i, mode := range modes {
		blocks = append(blocks, testutils.BlockSpec{
			C:         int32(i),
			Mode:      mode,
			PixelType: document.PixelTypeGray8,
			Width:     16,
			Height:    16,
			MIndex:    int32(i),
		})
	}
	return testutils.Fixture{
		Blocks:      blocks,
		Attachments: testutils.Attachments(2),
		Metadata:    testutils.SampleMetadata,
	}
}

func TestStatisticsSumInvariant(t *testing.T) {
	fixture := mixedFixture()

	tests := []struct {
		name   string
		policy func(t *testing.T) Policy
		want   Statistics
	}{
		{
			name:   "compress_all",
			policy: func(t *testing.T) Policy { return compressPolicy(t, StrategyAll) },
			want:   Statistics{Compressed: 4, CopiedVerbatim: 3},
		},
		{
			name:   "compress_only_uncompressed",
			policy: func(t *testing.T) Policy { return compressPolicy(t, StrategyOnlyUncompressed) },
			want:   Statistics{Compressed: 1, CopiedVerbatim: 6},
		},
		{
			name:   "compress_uncompressed_and_lossless",
			policy: func(t *testing.T) Policy { return compressPolicy(t, StrategyUncompressedAndLossless) },
			want:   Statistics{Compressed: 3, CopiedVerbatim: 4},
		},
		{
			name:   "decompress",
			policy: func(*testing.T) Policy { return NewDecompressPolicy() },
			want:   Statistics{Decompressed: 3, CopiedVerbatim: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, out, ok := run(t, testutils.NewDocument(t, fixture), tt.policy(t))
			require.True(t, ok)

			stats := engine.Statistics()
			assert.Equal(t, tt.want, stats)
			assert.Equal(t, len(fixture.Blocks), stats.Total(), "every block should be counted once")
			assert.Equal(t, len(fixture.Blocks), out.BlockCount(), "every block should be written")
			assert.Equal(t, len(fixture.Attachments), out.AttachmentCount(), "every attachment should be copied")
		})
	}
}

func TestOnlyUncompressedLeavesOtherBlocksUntouched(t *testing.T) {
	fixture := mixedFixture()
	src := testutils.NewDocument(t, fixture)
	_, out, _ := run(t, src, compressPolicy(t, StrategyOnlyUncompressed))

	for i := range fixture.Blocks {
		in, err := src.ReadBlock(i)
		require.NoError(t, err)
		got, err := out.ReadBlock(i)
		require.NoError(t, err)

		if in.Info.Mode == document.ModeUncompressed {
			assert.Equal(t, document.ModeZstd1, got.Info.Mode)
			continue
		}
		assert.Equal(t, in.Info.Mode, got.Info.Mode, "block %d mode should be preserved", i)
		assert.Equal(t, in.Data, got.Data, "block %d payload should be preserved", i)
	}
}

func TestAttachmentsCopiedVerbatim(t *testing.T) {
	fixture := mixedFixture()
	_, out, _ := run(t, testutils.NewDocument(t, fixture), NewDecompressPolicy())

	for i, want := range fixture.Attachments {
		got, err := out.ReadAttachment(i)
		require.NoError(t, err)
		assert.Equal(t, want.Info, got.Info)
		assert.Equal(t, want.Data, got.Data)
	}
}

func TestProgressSequence(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks:      testutils.Blocks(2, document.ModeUncompressed, document.PixelTypeGray8, 4, 4),
		Attachments: testutils.Attachments(2),
	}

	var events []ProgressEvent
	engine := NewEngine(testutils.NewDocument(t, fixture), testutils.NewSink(t, container.WriterOptions{}), compressPolicy(t, StrategyAll), codec.New())
	ok, err := engine.Run(testContext(t), func(ev ProgressEvent) bool {
		events = append(events, ev)
		return true
	})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []ProgressEvent{
		{Phase: PhaseBlocks, Done: 1, Todo: 2},
		{Phase: PhaseBlocks, Done: 2, Todo: 2},
		{Phase: PhaseAttachments, Done: 1, Todo: TodoUnknown},
		{Phase: PhaseAttachments, Done: 2, Todo: TodoUnknown},
		{Phase: PhaseMetadata, Done: 0, Todo: 1},
		{Phase: PhaseMetadata, Done: 1, Todo: 1},
	}, events)
}

func TestCancellationAtBlock(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks:      testutils.Blocks(5, document.ModeUncompressed, document.PixelTypeGray8, 4, 4),
		Attachments: testutils.Attachments(1),
		Metadata:    testutils.SampleMetadata,
	}

	for k := 1; k <= 5; k++ {
		sink := testutils.NewSink(t, container.WriterOptions{})
		engine := NewEngine(testutils.NewDocument(t, fixture), sink, compressPolicy(t, StrategyAll), codec.New())

		var seen []Phase
		ok, err := engine.Run(testContext(t), func(ev ProgressEvent) bool {
			seen = append(seen, ev.Phase)
			return !(ev.Phase == PhaseBlocks && ev.Done == k)
		})
		require.NoError(t, err, "cancellation is not an error")
		assert.False(t, ok, "run should report cancellation at block %d", k)
		assert.Len(t, seen, k, "no events after the cancelling one")

		out := sink.Reopen(t)
		assert.Equal(t, k, out.BlockCount(), "exactly %d blocks should be written", k)
		assert.Equal(t, 0, out.AttachmentCount(), "no attachments should be written")
		md, err := out.ReadMetadata()
		require.NoError(t, err)
		assert.Nil(t, md, "no metadata should be written")
		assert.Equal(t, k, engine.Statistics().Total())
	}
}

func TestCancellationCheckpoints(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks:      testutils.Blocks(1, document.ModeUncompressed, document.PixelTypeGray8, 4, 4),
		Attachments: testutils.Attachments(2),
		Metadata:    testutils.SampleMetadata,
	}

	tests := []struct {
		name            string
		stopAt          ProgressEvent
		wantAttachments int
		wantMetadata    bool
	}{
		{
			name:            "first_attachment",
			stopAt:          ProgressEvent{Phase: PhaseAttachments, Done: 1, Todo: TodoUnknown},
			wantAttachments: 1,
		},
		{
			name:            "before_metadata",
			stopAt:          ProgressEvent{Phase: PhaseMetadata, Done: 0, Todo: 1},
			wantAttachments: 2,
		},
		{
			name:            "after_metadata",
			stopAt:          ProgressEvent{Phase: PhaseMetadata, Done: 1, Todo: 1},
			wantAttachments: 2,
			wantMetadata:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := testutils.NewSink(t, container.WriterOptions{})
			engine := NewEngine(testutils.NewDocument(t, fixture), sink, NewDecompressPolicy(), codec.New())

			ok, err := engine.Run(testContext(t), func(ev ProgressEvent) bool { return ev != tt.stopAt })
			require.NoError(t, err)
			assert.False(t, ok, "cancellation is reported even at the last checkpoint")

			out := sink.Reopen(t)
			assert.Equal(t, tt.wantAttachments, out.AttachmentCount())
			md, err := out.ReadMetadata()
			require.NoError(t, err)
			if tt.wantMetadata {
				assert.NotEmpty(t, md)
			} else {
				assert.Nil(t, md)
			}
		})
	}
}

func TestUndecodableBlocksFallBackToCopy(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks: []testutils.BlockSpec{
			{C: 0, Mode: document.ModeLzw, PixelType: document.PixelTypeGray8, Width: 4, Height: 4},
			{C: 1, Mode: document.ModeJpgXr, PixelType: document.PixelTypeGray8, Width: 4, Height: 4},
			{C: 2, Mode: document.ModeJpg, PixelType: document.PixelTypeGray16, Width: 4, Height: 4},
			{C: 3, Mode: document.ModeJpg, PixelType: document.PixelTypeBgr48, Width: 4, Height: 4},
			{C: 4, Mode: document.ModeZstd0, PixelType: document.PixelTypeInvalid, Width: 4, Height: 4},
		},
		Metadata: testutils.SampleMetadata,
	}

	for _, policy := range []Policy{compressPolicy(t, StrategyAll), NewDecompressPolicy()} {
		src := testutils.NewDocument(t, fixture)
		engine, out, ok := run(t, src, policy)
		require.True(t, ok)
		assert.Equal(t, Statistics{CopiedVerbatim: len(fixture.Blocks)}, engine.Statistics())

		for i := range fixture.Blocks {
			want, err := src.ReadBlock(i)
			require.NoError(t, err)
			got, err := out.ReadBlock(i)
			require.NoError(t, err)
			assert.Equal(t, want.Info.Mode, got.Info.Mode, "block %d mode should be kept", i)
			assert.Equal(t, want.Data, got.Data, "block %d should be copied verbatim", i)
		}

		value, _ := compressionParameters(t, out)
		assert.Equal(t, "Lossy: 85", value, "metadata should not change when nothing was transformed")
	}
}

func TestEmptyDocumentRewritesMetadata(t *testing.T) {
	fixture := testutils.Fixture{Metadata: testutils.SampleMetadata}

	_, out, ok := run(t, testutils.NewDocument(t, fixture), compressPolicy(t, StrategyAll))
	require.True(t, ok)
	value, _ := compressionParameters(t, out)
	assert.Equal(t, metadata.LosslessValue, value, "0*2 >= 0 rewrites")
}

func TestOverflow(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		info   document.BlockInfo
	}{
		{
			name:   "physical_width_above_int32",
			policy: NewDecompressPolicy(),
			info: document.BlockInfo{
				PhysicalSize: document.Size{W: math.MaxUint32, H: 1},
				LogicalRect:  document.Rect{W: 1, H: 1},
				PixelType:    document.PixelTypeGray8,
			},
		},
		{
			name:   "negative_logical_size",
			policy: NewDecompressPolicy(),
			info: document.BlockInfo{
				PhysicalSize: document.Size{W: 1, H: 1},
				LogicalRect:  document.Rect{W: -1, H: 1},
				PixelType:    document.PixelTypeGray8,
			},
		},
		{
			name:   "bitmap_size_wraps",
			policy: NewDecompressPolicy(),
			info: document.BlockInfo{
				PhysicalSize: document.Size{W: math.MaxInt32, H: math.MaxInt32},
				LogicalRect:  document.Rect{W: math.MaxInt32, H: math.MaxInt32},
				PixelType:    document.PixelTypeBgr48,
				Mode:         document.ModeZstd0,
			},
		},
		{
			name:   "bitmap_size_above_uint32",
			policy: NewDecompressPolicy(),
			info: document.BlockInfo{
				PhysicalSize: document.Size{W: 3000000, H: 3000000},
				LogicalRect:  document.Rect{W: 3000000, H: 3000000},
				PixelType:    document.PixelTypeBgr48,
				Mode:         document.ModeZstd0,
			},
		},
		{
			name:   "compress_bitmap_size_above_uint32",
			policy: compressPolicy(t, StrategyAll),
			info: document.BlockInfo{
				PhysicalSize: document.Size{W: 70000, H: 70000},
				LogicalRect:  document.Rect{W: 70000, H: 70000},
				PixelType:    document.PixelTypeGray8,
				Mode:         document.ModeZstd1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &testutils.MockSourceReader{Infos: []document.BlockInfo{tt.info}}
			src.On("ReadBlock", 0).Return(&document.Block{Info: tt.info, Data: []byte{1, 2, 3, 4}}, nil)
			dst := &testutils.MockDestinationWriter{}

			ok, err := NewEngine(src, dst, tt.policy, codec.New()).Run(testContext(t), always)
			assert.False(t, ok)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOverflow)
			assert.Equal(t, ErrOverflow, KindOf(err))
			dst.AssertNotCalled(t, "AppendBlock", mock.Anything)
		})
	}
}

func withPayloadLimit(t *testing.T, limit uint64) {
	t.Helper()
	old := maxPayloadSize
	maxPayloadSize = limit
	t.Cleanup(func() { maxPayloadSize = old })
}

func overflowOp(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, ErrOverflow, KindOf(err))
	var terr *Error
	require.True(t, errors.As(err, &terr), "error should be a *Error")
	return terr.Op
}

func TestPayloadLimits(t *testing.T) {
	zeros := &codec.Bitmap{PixelType: document.PixelTypeGray8, Width: 64, Height: 64, Stride: 64, Pixels: make([]byte, 64*64)}
	packed, err := codec.New().Compress(zeros, codec.Options{Mode: document.ModeZstd0})
	require.NoError(t, err)
	require.Less(t, len(packed), 1024, "zeros should compress well")

	t.Run("decoded_block", func(t *testing.T) {
		withPayloadLimit(t, 1024)
		info := document.BlockInfo{
			PhysicalSize: document.Size{W: 64, H: 64},
			LogicalRect:  document.Rect{W: 64, H: 64},
			PixelType:    document.PixelTypeGray8,
			Mode:         document.ModeZstd0,
		}
		src := &testutils.MockSourceReader{Infos: []document.BlockInfo{info}}
		src.On("ReadBlock", 0).Return(&document.Block{Info: info, Data: packed}, nil)
		dst := &testutils.MockDestinationWriter{}

		ok, err := NewEngine(src, dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
		assert.False(t, ok)
		assert.Equal(t, "write block", overflowOp(t, err))
		dst.AssertNotCalled(t, "AppendBlock", mock.Anything)
	})

	t.Run("source_block_data", func(t *testing.T) {
		withPayloadLimit(t, 1024)
		fixture := testutils.Fixture{
			Blocks: testutils.Blocks(1, document.ModeUncompressed, document.PixelTypeGray8, 64, 32),
		}
		dst := &testutils.MockDestinationWriter{}

		_, err := NewEngine(testutils.NewDocument(t, fixture), dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
		assert.Equal(t, "check block", overflowOp(t, err))
		dst.AssertNotCalled(t, "AppendBlock", mock.Anything)
	})

	t.Run("attachment", func(t *testing.T) {
		withPayloadLimit(t, 1024)
		attachments := testutils.Attachments(1)
		attachments[0].Data = make([]byte, 2048)
		fixture := testutils.Fixture{Attachments: attachments}
		dst := &testutils.MockDestinationWriter{}

		_, err := NewEngine(testutils.NewDocument(t, fixture), dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
		assert.Equal(t, "write attachment", overflowOp(t, err))
		dst.AssertNotCalled(t, "AppendAttachment", mock.Anything)
	})

	t.Run("metadata", func(t *testing.T) {
		withPayloadLimit(t, uint64(len(testutils.SampleMetadata)/2))
		fixture := testutils.Fixture{Metadata: testutils.SampleMetadata}
		dst := &testutils.MockDestinationWriter{}

		_, err := NewEngine(testutils.NewDocument(t, fixture), dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
		assert.Equal(t, "write metadata", overflowOp(t, err))
		dst.AssertNotCalled(t, "WriteMetadata", mock.Anything)
	})
}

func TestWriteFailureIsIOError(t *testing.T) {
	fixture := testutils.Fixture{
		Blocks: testutils.Blocks(3, document.ModeUncompressed, document.PixelTypeGray8, 4, 4),
	}
	dst := &testutils.MockDestinationWriter{}
	dst.On("AppendBlock", mock.Anything).Return(nil).Once()
	dst.On("AppendBlock", mock.Anything).Return(errors.New("disk full")).Once()

	var events int
	ok, err := NewEngine(testutils.NewDocument(t, fixture), dst, compressPolicy(t, StrategyAll), codec.New()).
		Run(testContext(t), func(ProgressEvent) bool { events++; return true })

	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 1, events, "no progress for the failed block")
	dst.AssertNumberOfCalls(t, "AppendBlock", 2)
	dst.AssertNotCalled(t, "AppendAttachment", mock.Anything)
	dst.AssertNotCalled(t, "WriteMetadata", mock.Anything)
}

func TestReadFailureIsIOError(t *testing.T) {
	src := &testutils.MockSourceReader{}
	src.On("ReadMetadata").Return(nil, errors.New("truncated"))
	dst := &testutils.MockDestinationWriter{}

	ok, err := NewEngine(src, dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrIO)
	dst.AssertNotCalled(t, "WriteMetadata", mock.Anything)
}

func TestEngineRunsOnce(t *testing.T) {
	engine := NewEngine(testutils.NewDocument(t, testutils.Fixture{}), testutils.NewSink(t, container.WriterOptions{}), NewDecompressPolicy(), codec.New())

	_, err := engine.Run(testContext(t), nil)
	require.NoError(t, err, "nil progress means never cancel")

	_, err = engine.Run(testContext(t), nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEngineRequiresCollaborators(t *testing.T) {
	_, err := NewEngine(nil, nil, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestMIndexDroppedForScaledBlocks(t *testing.T) {
	src := &testutils.MockSourceReader{Infos: make([]document.BlockInfo, 1)}
	src.On("ReadBlock", 0).Return(&document.Block{
		Info: document.BlockInfo{
			LogicalRect:  document.Rect{W: 8, H: 8},
			PhysicalSize: document.Size{W: 4, H: 4},
			PixelType:    document.PixelTypeGray8,
			MIndex:       3,
			PyramidType:  document.PyramidSingleSub,
		},
		Data: make([]byte, 16),
	}, nil)
	src.On("ReadMetadata").Return(document.Metadata(nil), nil)

	dst := &testutils.MockDestinationWriter{}
	dst.On("AppendBlock", mock.MatchedBy(func(b *document.Block) bool {
		return b.Info.MIndex == document.MIndexInvalid
	})).Return(nil).Once()
	dst.On("WriteMetadata", mock.Anything).Return(nil).Once()

	ok, err := NewEngine(src, dst, NewDecompressPolicy(), codec.New()).Run(testContext(t), always)
	require.NoError(t, err)
	assert.True(t, ok)
	dst.AssertExpectations(t)
}

func TestDecisionFollowsBlockSegment(t *testing.T) {
	segment := document.BlockInfo{
		PhysicalSize: document.Size{W: 4, H: 4},
		LogicalRect:  document.Rect{W: 4, H: 4},
		PixelType:    document.PixelTypeGray8,
		Mode:         document.ModeUncompressed,
	}
	directory := segment
	directory.Mode = document.ModeZstd1

	src := &testutils.MockSourceReader{Infos: []document.BlockInfo{directory}}
	src.On("ReadBlock", 0).Return(&document.Block{Info: segment, Data: make([]byte, 16)}, nil)
	dst := &testutils.MockDestinationWriter{}
	dst.On("AppendBlock", mock.MatchedBy(func(b *document.Block) bool {
		return b.Info.Mode == document.ModeZstd1
	})).Return(nil)

	engine := NewEngine(src, dst, compressPolicy(t, StrategyOnlyUncompressed), codec.New())
	ok, err := engine.Run(testContext(t), func(ev ProgressEvent) bool { return ev.Phase != PhaseMetadata })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Statistics{Compressed: 1}, engine.Statistics())
	dst.AssertNumberOfCalls(t, "AppendBlock", 1)
}
