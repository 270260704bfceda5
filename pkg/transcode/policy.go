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
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/document"
	"github.com/walteh/czicompress/pkg/metadata"
	"gitlab.com/tozd/go/errors"
)

// 🧭 Policy decides what happens to each block, how a compress action is
// carried out, and how metadata is rewritten once all blocks are done.
// CompressPolicy and DecompressPolicy are the only implementations.
type Policy interface {
	// Decide returns the action for a block.
	Decide(info document.BlockInfo) Action
	// Compress encodes a decoded bitmap and returns the payload and its mode.
	Compress(c codec.Capability, bitmap *codec.Bitmap) ([]byte, document.CompressionMode, error)
	// RewriteMetadata returns the metadata to write and whether it differs
	// from md.
	RewriteMetadata(stats Statistics, md document.Metadata) (document.Metadata, bool, error)

	policy()
}

// CompressPolicy re-encodes eligible blocks with a lossless zstd mode.
type CompressPolicy struct {
	strategy Strategy
	options  codec.Options
}

// NewCompressPolicy validates the strategy and the compression target.
func NewCompressPolicy(strategy Strategy, options codec.Options) (*CompressPolicy, error) {
	switch strategy {
	case StrategyAll, StrategyOnlyUncompressed, StrategyUncompressedAndLossless:
	default:
		return nil, newError(ErrConfiguration, "new compress policy", errors.Errorf("invalid strategy %d", int(strategy)))
	}
	if !options.Mode.IsLossless() {
		return nil, newError(ErrUnsupportedCodec, "new compress policy", errors.Errorf("cannot compress to %s", options.Mode))
	}
	return &CompressPolicy{strategy: strategy, options: options}, nil
}

func (*CompressPolicy) policy() {}

// Strategy returns the configured strategy.
func (p *CompressPolicy) Strategy() Strategy {
	return p.strategy
}

// Options returns the configured compression target.
func (p *CompressPolicy) Options() codec.Options {
	return p.options
}

// Decide implements Policy.
func (p *CompressPolicy) Decide(info document.BlockInfo) Action {
	switch p.strategy {
	case StrategyAll:
		return ActionCompress
	case StrategyOnlyUncompressed:
		if info.Mode == document.ModeUncompressed {
			return ActionCompress
		}
	case StrategyUncompressedAndLossless:
		if info.Mode == document.ModeUncompressed || info.Mode.IsLossless() {
			return ActionCompress
		}
	}
	return ActionCopy
}

// Compress implements Policy.
func (p *CompressPolicy) Compress(c codec.Capability, bitmap *codec.Bitmap) ([]byte, document.CompressionMode, error) {
	if !p.options.Mode.IsLossless() {
		return nil, 0, newError(ErrUnsupportedCodec, "compress", errors.Errorf("cannot compress to %s", p.options.Mode))
	}
	data, err := c.Compress(bitmap, p.options)
	if err != nil {
		return nil, 0, codecError("compress", err)
	}
	return data, p.options.Mode, nil
}

// RewriteMetadata implements Policy. The current compression parameters are
// set to lossless when at least half of the blocks were compressed.
func (p *CompressPolicy) RewriteMetadata(stats Statistics, md document.Metadata) (document.Metadata, bool, error) {
	if !majority(stats.Compressed, stats.Total()) {
		return md, false, nil
	}
	return setCompressionParameters(md, metadata.LosslessValue)
}

// DecompressPolicy decodes every decodable, compressed block.
type DecompressPolicy struct{}

// NewDecompressPolicy returns the decompress policy.
func NewDecompressPolicy() *DecompressPolicy {
	return &DecompressPolicy{}
}

func (*DecompressPolicy) policy() {}

// Decide implements Policy. The engine copies blocks that are already
// uncompressed or cannot be decoded.
func (*DecompressPolicy) Decide(document.BlockInfo) Action {
	return ActionDecompress
}

// Compress implements Policy. The decompress policy never compresses.
func (*DecompressPolicy) Compress(codec.Capability, *codec.Bitmap) ([]byte, document.CompressionMode, error) {
	return nil, 0, newError(ErrUnsupportedCodec, "compress", errors.New("decompress policy does not compress"))
}

// RewriteMetadata implements Policy. The current compression parameters are
// cleared when at least half of the blocks were decompressed.
func (*DecompressPolicy) RewriteMetadata(stats Statistics, md document.Metadata) (document.Metadata, bool, error) {
	if !majority(stats.Decompressed, stats.Total()) {
		return md, false, nil
	}
	return setCompressionParameters(md, "")
}

func setCompressionParameters(md document.Metadata, value string) (document.Metadata, bool, error) {
	out, err := metadata.SetNodeValue(md, metadata.CurrentCompressionParametersPath, value)
	if err != nil {
		return nil, false, newError(ErrIO, "rewrite metadata", err)
	}
	return out, true, nil
}

// NewPolicy builds the policy for command.
func NewPolicy(command Command, strategy Strategy, options codec.Options) (Policy, error) {
	switch command {
	case CommandCompress:
		p, err := NewCompressPolicy(strategy, options)
		if err != nil {
			return nil, err
		}
		return p, nil
	case CommandDecompress:
		return NewDecompressPolicy(), nil
	default:
		return nil, newError(ErrConfiguration, "new policy", errors.Errorf("unknown command %d", int(command)))
	}
}

func codecError(op string, err error) error {
	if errors.Is(err, codec.ErrUnsupportedMode) {
		return newError(ErrUnsupportedCodec, op, err)
	}
	return newError(ErrIO, op, err)
}
