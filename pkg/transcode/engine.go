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
	"math/bits"

	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Engine copies a source document to a destination in three phases:
// blocks, attachments, metadata. It is the only writer of its Statistics and
// the only caller of the destination's write methods while Run executes.
//
// An Engine runs once and is not safe for concurrent use.
type Engine struct {
	src    document.SourceReader
	dst    document.DestinationWriter
	policy Policy
	codec  codec.Capability

	stats Statistics
	ran   bool
}

// maxPayloadSize is the largest block, attachment or metadata payload the
// container records; sizes are stored as uint32.
var maxPayloadSize uint64 = math.MaxUint32

// NewEngine returns an engine over borrowed source and destination handles.
func NewEngine(src document.SourceReader, dst document.DestinationWriter, policy Policy, c codec.Capability) *Engine {
	return &Engine{
		src:    src,
		dst:    dst,
		policy: policy,
		codec:  c,
	}
}

// Statistics returns the block counters accumulated so far.
func (e *Engine) Statistics() Statistics {
	return e.stats
}

// 🏃 Run executes the pipeline. It returns true when all three phases
// completed and false when progress asked to stop at a checkpoint. Fatal
// errors are returned as *Error; the destination is then incomplete.
func (e *Engine) Run(ctx context.Context, progress ProgressFunc) (bool, error) {
	if e.src == nil || e.dst == nil || e.policy == nil || e.codec == nil {
		return false, newError(ErrConfiguration, "run", errors.New("source, destination, policy and codec are required"))
	}
	if e.ran {
		return false, newError(ErrConfiguration, "run", errors.New("engine already ran"))
	}
	e.ran = true

	if progress == nil {
		progress = func(ProgressEvent) bool { return true }
	}

	logger := zerolog.Ctx(ctx)

	logger.Debug().Int("blocks", e.src.BlockCount()).Msg("copying blocks")
	ok, err := e.copyBlocks(ctx, progress)
	if err != nil || !ok {
		return false, err
	}

	logger.Debug().Msg("copying attachments")
	ok, err = e.copyAttachments(progress)
	if err != nil || !ok {
		return false, err
	}

	logger.Debug().Msg("copying metadata")
	ok, err = e.copyMetadata(ctx, progress)
	if err != nil {
		return false, err
	}

	logger.Info().Object("statistics", e.stats).Bool("completed", ok).Msg("transcode finished")
	return ok, nil
}

func (e *Engine) copyBlocks(ctx context.Context, progress ProgressFunc) (bool, error) {
	total := e.src.BlockCount()
	done := 0
	cancelled := false
	var runErr error

	err := e.src.EnumerateBlocks(func(index int, _ document.BlockInfo) bool {
		outcome, err := e.processBlock(ctx, index)
		if err != nil {
			runErr = err
			return false
		}
		e.stats.record(outcome)
		done++

		if !progress(ProgressEvent{Phase: PhaseBlocks, Done: done, Todo: total}) {
			cancelled = true
			return false
		}
		return true
	})
	if runErr != nil {
		return false, runErr
	}
	if err != nil {
		return false, newError(ErrIO, "enumerate blocks", err)
	}

	if cancelled {
		zerolog.Ctx(ctx).Debug().Int("done", done).Int("total", total).Msg("cancelled during blocks")
		return false, nil
	}
	return true, nil
}

// processBlock executes the policy's decision for one block and returns the
// outcome that was actually carried out.
func (e *Engine) processBlock(ctx context.Context, index int) (Action, error) {
	block, err := e.src.ReadBlock(index)
	if err != nil {
		return 0, newError(ErrIO, "read block", err)
	}
	if err := checkBlockSizes(block); err != nil {
		return 0, err
	}

	action := e.policy.Decide(block.Info)

	switch {
	case action == ActionDecompress && block.Info.Mode == document.ModeUncompressed:
		action = ActionCopy
	case action != ActionCopy && !e.codec.CanDecode(block.Info):
		zerolog.Ctx(ctx).Debug().
			Int("index", index).
			Stringer("coordinate", block.Info.Coordinate).
			Stringer("mode", block.Info.Mode).
			Stringer("pixel_type", block.Info.PixelType).
			Stringer("action", action).
			Msg("block cannot be decoded, copying verbatim")
		action = ActionCopy
	}

	out := &document.Block{
		Info:       block.Info,
		Data:       block.Data,
		Metadata:   block.Metadata,
		Attachment: block.Attachment,
	}
	out.Info.Coordinate = block.Info.Coordinate.Clone()
	if !sameSize(block.Info) {
		out.Info.MIndex = document.MIndexInvalid
	}

	switch action {
	case ActionDecompress:
		bitmap, err := e.codec.Decode(block)
		if err != nil {
			return 0, codecError("decode block", err)
		}
		out.Data = bitmap.Packed()
		out.Info.Mode = document.ModeUncompressed
	case ActionCompress:
		bitmap, err := e.codec.Decode(block)
		if err != nil {
			return 0, codecError("decode block", err)
		}
		data, compressedMode, err := e.policy.Compress(e.codec, bitmap)
		if err != nil {
			return 0, err
		}
		out.Data = data
		out.Info.Mode = compressedMode
	}

	if uint64(len(out.Data)) > maxPayloadSize {
		return 0, newError(ErrOverflow, "write block", errors.Errorf("payload of %d bytes", len(out.Data)))
	}

	if err := e.dst.AppendBlock(out); err != nil {
		return 0, newError(ErrIO, "write block", err)
	}
	return action, nil
}

// sameSize reports whether the block is stored at its logical size. Only
// such blocks keep their M-index in the destination.
func sameSize(info document.BlockInfo) bool {
	return int64(info.PhysicalSize.W) == int64(info.LogicalRect.W) &&
		int64(info.PhysicalSize.H) == int64(info.LogicalRect.H)
}

func checkBlockSizes(block *document.Block) error {
	info := block.Info
	if info.PhysicalSize.W > math.MaxInt32 || info.PhysicalSize.H > math.MaxInt32 {
		return newError(ErrOverflow, "check block", errors.Errorf("physical size %dx%d", info.PhysicalSize.W, info.PhysicalSize.H))
	}
	if info.LogicalRect.W < 0 || info.LogicalRect.H < 0 {
		return newError(ErrOverflow, "check block", errors.Errorf("logical size %dx%d", info.LogicalRect.W, info.LogicalRect.H))
	}
	if size, overflow := bitmapSize(info); overflow || size > codec.MaxBitmapSize {
		return newError(ErrOverflow, "check block", errors.Errorf("bitmap %dx%d %s exceeds %d bytes",
			info.PhysicalSize.W, info.PhysicalSize.H, info.PixelType, uint64(codec.MaxBitmapSize)))
	}
	for _, part := range []struct {
		name string
		size int
	}{
		{"data", len(block.Data)},
		{"metadata", len(block.Metadata)},
		{"attachment", len(block.Attachment)},
	} {
		if uint64(part.size) > maxPayloadSize {
			return newError(ErrOverflow, "check block", errors.Errorf("%s of %d bytes", part.name, part.size))
		}
	}
	return nil
}

// bitmapSize returns width*height*bytes-per-pixel of the decoded block and
// whether the product overflowed.
func bitmapSize(info document.BlockInfo) (uint64, bool) {
	hi, n := bits.Mul64(uint64(info.PhysicalSize.W), uint64(info.PhysicalSize.H))
	if hi != 0 {
		return 0, true
	}
	hi, n = bits.Mul64(n, uint64(info.PixelType.BytesPerPixel()))
	return n, hi != 0
}

func (e *Engine) copyAttachments(progress ProgressFunc) (bool, error) {
	done := 0
	cancelled := false
	var runErr error

	err := e.src.EnumerateAttachments(func(index int, _ document.AttachmentInfo) bool {
		att, err := e.src.ReadAttachment(index)
		if err != nil {
			runErr = newError(ErrIO, "read attachment", err)
			return false
		}
		if uint64(len(att.Data)) > maxPayloadSize {
			runErr = newError(ErrOverflow, "write attachment", errors.Errorf("attachment %q of %d bytes", att.Info.Name, len(att.Data)))
			return false
		}
		if err := e.dst.AppendAttachment(att); err != nil {
			runErr = newError(ErrIO, "write attachment", err)
			return false
		}
		done++

		if !progress(ProgressEvent{Phase: PhaseAttachments, Done: done, Todo: TodoUnknown}) {
			cancelled = true
			return false
		}
		return true
	})
	if runErr != nil {
		return false, runErr
	}
	if err != nil {
		return false, newError(ErrIO, "enumerate attachments", err)
	}
	return !cancelled, nil
}

func (e *Engine) copyMetadata(ctx context.Context, progress ProgressFunc) (bool, error) {
	if !progress(ProgressEvent{Phase: PhaseMetadata, Done: 0, Todo: 1}) {
		return false, nil
	}

	md, err := e.src.ReadMetadata()
	if err != nil {
		return false, newError(ErrIO, "read metadata", err)
	}

	out, changed, err := e.policy.RewriteMetadata(e.stats, md)
	if err != nil {
		return false, err
	}
	zerolog.Ctx(ctx).Debug().Bool("rewritten", changed).Msg("metadata ready")

	if uint64(len(out)) > maxPayloadSize {
		return false, newError(ErrOverflow, "write metadata", errors.Errorf("metadata of %d bytes", len(out)))
	}
	if err := e.dst.WriteMetadata(out); err != nil {
		return false, newError(ErrIO, "write metadata", err)
	}

	return progress(ProgressEvent{Phase: PhaseMetadata, Done: 1, Todo: 1}), nil
}
