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
	"math"
	"sync"

	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUnsupportedMode is returned when a block's compression mode cannot be
	// decoded, or a compression target cannot be encoded.
	ErrUnsupportedMode = errors.Base("unsupported compression mode")

	// ErrCorruptData is returned when a payload does not match its declared shape.
	ErrCorruptData = errors.Base("corrupt block data")
)

// MaxBitmapSize is the largest decoded bitmap, in bytes, the codec produces.
// Block payloads are stored with uint32 sizes.
const MaxBitmapSize = math.MaxUint32

// 🖼️ Bitmap is a decoded, uncompressed pixel buffer.
type Bitmap struct {
	PixelType document.PixelType
	Width     int
	Height    int
	Stride    int
	Pixels    []byte
}

// RowBytes is the number of meaningful bytes in one row.
func (b *Bitmap) RowBytes() int {
	return b.Width * b.PixelType.BytesPerPixel()
}

// Packed returns the pixels without row padding. If the bitmap is already
// tightly packed the backing slice is returned.
func (b *Bitmap) Packed() []byte {
	rowBytes := b.RowBytes()
	if b.Stride == rowBytes {
		return b.Pixels[:rowBytes*b.Height]
	}
	out := make([]byte, rowBytes*b.Height)
	for y := 0; y < b.Height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], b.Pixels[y*b.Stride:y*b.Stride+rowBytes])
	}
	return out
}

// 🔌 Capability is the pixel codec the transcode engine calls into.
type Capability interface {
	// CanDecode reports whether a block described by info can be decoded
	CanDecode(info document.BlockInfo) bool
	// Decode decodes a block's payload into a bitmap. The caller checks
	// CanDecode first.
	Decode(block *document.Block) (*Bitmap, error)
	// Compress encodes a bitmap with the mode and parameters in opts
	Compress(bitmap *Bitmap, opts Options) ([]byte, error)
}

// Codec is the default Capability: uncompressed, JPEG (decode only) and the
// two zstd variants.
type Codec struct {
	mu       sync.Mutex
	encoders map[int]*zstdEncoder
}

var _ Capability = (*Codec)(nil)

// New returns the default codec.
func New() *Codec {
	return &Codec{
		encoders: make(map[int]*zstdEncoder),
	}
}

// CanDecode implements Capability. The pixel type must be known, and JPEG
// payloads are only read as Gray8 or Bgr24.
func (c *Codec) CanDecode(info document.BlockInfo) bool {
	if info.PixelType.BytesPerPixel() == 0 {
		return false
	}
	switch info.Mode {
	case document.ModeUncompressed, document.ModeZstd0, document.ModeZstd1:
		return true
	case document.ModeJpg:
		return jpegPixelType(info.PixelType)
	default:
		return false
	}
}

// Decode implements Capability.
func (c *Codec) Decode(block *document.Block) (*Bitmap, error) {
	info := block.Info
	bpp := info.PixelType.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.Errorf("%w: pixel type %s", ErrUnsupportedMode, info.PixelType)
	}
	if uint64(info.PhysicalSize.W)*uint64(info.PhysicalSize.H) > MaxBitmapSize/uint64(bpp) {
		return nil, errors.Errorf("%w: %dx%d %s bitmap exceeds %d bytes",
			ErrCorruptData, info.PhysicalSize.W, info.PhysicalSize.H, info.PixelType, uint64(MaxBitmapSize))
	}
	width, height := int(info.PhysicalSize.W), int(info.PhysicalSize.H)

	var pixels []byte
	var err error
	switch info.Mode {
	case document.ModeUncompressed:
		pixels = block.Data
	case document.ModeZstd0:
		pixels, err = decodeZstd0(block.Data, width*height*bpp)
	case document.ModeZstd1:
		pixels, err = decodeZstd1(block.Data, width*height*bpp, info.PixelType)
	case document.ModeJpg:
		return decodeJPEG(block.Data, info.PixelType, width, height)
	default:
		return nil, errors.Errorf("%w: cannot decode %s", ErrUnsupportedMode, info.Mode)
	}
	if err != nil {
		return nil, err
	}

	if len(pixels) != width*height*bpp {
		return nil, errors.Errorf("%w: %s payload has %d bytes, expected %dx%dx%d",
			ErrCorruptData, info.Mode, len(pixels), width, height, bpp)
	}

	return &Bitmap{
		PixelType: info.PixelType,
		Width:     width,
		Height:    height,
		Stride:    width * bpp,
		Pixels:    pixels,
	}, nil
}

// Compress implements Capability.
func (c *Codec) Compress(bitmap *Bitmap, opts Options) ([]byte, error) {
	switch opts.Mode {
	case document.ModeZstd0:
		enc, err := c.encoder(opts.Level)
		if err != nil {
			return nil, err
		}
		return enc.encode(bitmap.Packed()), nil
	case document.ModeZstd1:
		enc, err := c.encoder(opts.Level)
		if err != nil {
			return nil, err
		}
		return encodeZstd1(enc, bitmap, opts.HiLoByteUnpack), nil
	default:
		return nil, errors.Errorf("%w: cannot compress to %s", ErrUnsupportedMode, opts.Mode)
	}
}

func (c *Codec) encoder(level int) (*zstdEncoder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encoders[level]; ok {
		return enc, nil
	}
	enc, err := newZstdEncoder(level)
	if err != nil {
		return nil, err
	}
	c.encoders[level] = enc
	return enc, nil
}
