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
	"github.com/klauspost/compress/zstd"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// zstd1 header chunk carrying the HiLoByteUnpack flag
const chunkTypeHiLoByteUnpack = 1

// zstdDecoder is shared; zstd.Decoder is safe for concurrent DecodeAll calls.
// Frames never expand beyond MaxBitmapSize.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBitmapSize))
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

type zstdEncoder struct {
	enc *zstd.Encoder
}

func newZstdEncoder(level int) (*zstdEncoder, error) {
	encLevel := zstd.SpeedDefault
	if level != 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel), zstd.WithEncoderCRC(false))
	if err != nil {
		return nil, errors.Errorf("creating zstd encoder (level %d): %w", level, err)
	}
	return &zstdEncoder{enc: enc}, nil
}

func (e *zstdEncoder) encode(src []byte) []byte {
	return e.enc.EncodeAll(src, nil)
}

func (e *zstdEncoder) encodeTo(dst, src []byte) []byte {
	return e.enc.EncodeAll(src, dst)
}

func decodeZstd0(data []byte, expected int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, expected))
	if err != nil {
		return nil, errors.Errorf("%w: zstd0: %v", ErrCorruptData, err)
	}
	return out, nil
}

// encodeZstd1 writes the zstd1 header followed by a zstd frame. The header
// starts with its own length; a three byte header carries the HiLoByteUnpack chunk.
func encodeZstd1(enc *zstdEncoder, bitmap *Bitmap, hiLo bool) []byte {
	packed := bitmap.Packed()
	hiLo = hiLo && bitmap.PixelType.BytesPerSample() == 2

	var header []byte
	if hiLo {
		header = []byte{3, chunkTypeHiLoByteUnpack, 1}
		packed = hiLoUnpack(packed)
	} else {
		header = []byte{1}
	}

	return enc.encodeTo(header, packed)
}

func decodeZstd1(data []byte, expected int, pixelType document.PixelType) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.Errorf("%w: zstd1: empty payload", ErrCorruptData)
	}

	headerSize := int(data[0])
	if headerSize < 1 || headerSize > len(data) {
		return nil, errors.Errorf("%w: zstd1: invalid header size %d", ErrCorruptData, headerSize)
	}

	hiLo := false
	for pos := 1; pos < headerSize; {
		switch data[pos] {
		case chunkTypeHiLoByteUnpack:
			if pos+1 >= headerSize {
				return nil, errors.Errorf("%w: zstd1: truncated header chunk", ErrCorruptData)
			}
			hiLo = data[pos+1]&1 == 1
			pos += 2
		default:
			return nil, errors.Errorf("%w: zstd1: unknown header chunk %d", ErrCorruptData, data[pos])
		}
	}

	out, err := zstdDecoder.DecodeAll(data[headerSize:], make([]byte, 0, expected))
	if err != nil {
		return nil, errors.Errorf("%w: zstd1: %v", ErrCorruptData, err)
	}

	if hiLo {
		if pixelType.BytesPerSample() != 2 {
			return nil, errors.Errorf("%w: zstd1: HiLoByteUnpack on %s", ErrCorruptData, pixelType)
		}
		out = hiLoPack(out)
	}
	return out, nil
}
