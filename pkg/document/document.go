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

package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// 🗜️ CompressionMode is the raw compression tag stored with a block. Values
// outside the named constants are preserved as-is and treated as opaque.
type CompressionMode int32

const (
	ModeUncompressed CompressionMode = 0
	ModeJpg          CompressionMode = 1
	ModeLzw          CompressionMode = 2
	ModeJpgXr        CompressionMode = 4
	ModeZstd0        CompressionMode = 5
	ModeZstd1        CompressionMode = 6
)

// String returns the name used in compression option strings
func (m CompressionMode) String() string {
	switch m {
	case ModeUncompressed:
		return "uncompressed"
	case ModeJpg:
		return "jpg"
	case ModeLzw:
		return "lzw"
	case ModeJpgXr:
		return "jpgxr"
	case ModeZstd0:
		return "zstd0"
	case ModeZstd1:
		return "zstd1"
	default:
		return fmt.Sprintf("unknown(%d)", int32(m))
	}
}

// IsLossless reports whether m is one of the two lossless zstd variants.
func (m CompressionMode) IsLossless() bool {
	return m == ModeZstd0 || m == ModeZstd1
}

// 🎨 PixelType describes the layout of one pixel in a block's bitmap.
type PixelType int32

const (
	PixelTypeInvalid     PixelType = -1
	PixelTypeGray8       PixelType = 0
	PixelTypeGray16      PixelType = 1
	PixelTypeGray32Float PixelType = 2
	PixelTypeBgr24       PixelType = 3
	PixelTypeBgr48       PixelType = 4
	PixelTypeBgra32      PixelType = 8
)

// BytesPerPixel returns the size of one pixel, or 0 for unknown types
func (p PixelType) BytesPerPixel() int {
	switch p {
	case PixelTypeGray8:
		return 1
	case PixelTypeGray16:
		return 2
	case PixelTypeBgr24:
		return 3
	case PixelTypeGray32Float, PixelTypeBgra32:
		return 4
	case PixelTypeBgr48:
		return 6
	default:
		return 0
	}
}

// BytesPerSample returns the size of a single channel value.
func (p PixelType) BytesPerSample() int {
	switch p {
	case PixelTypeGray16, PixelTypeBgr48:
		return 2
	case PixelTypeGray32Float:
		return 4
	case PixelTypeGray8, PixelTypeBgr24, PixelTypeBgra32:
		return 1
	default:
		return 0
	}
}

func (p PixelType) String() string {
	switch p {
	case PixelTypeGray8:
		return "Gray8"
	case PixelTypeGray16:
		return "Gray16"
	case PixelTypeGray32Float:
		return "Gray32Float"
	case PixelTypeBgr24:
		return "Bgr24"
	case PixelTypeBgr48:
		return "Bgr48"
	case PixelTypeBgra32:
		return "Bgra32"
	default:
		return fmt.Sprintf("PixelType(%d)", int32(p))
	}
}

// 📐 Dimension names one axis of a block coordinate (Z, C, T, ...).
type Dimension string

const (
	DimZ Dimension = "Z"
	DimC Dimension = "C"
	DimT Dimension = "T"
	DimR Dimension = "R"
	DimS Dimension = "S"
	DimI Dimension = "I"
	DimH Dimension = "H"
	DimV Dimension = "V"
	DimB Dimension = "B"
)

// Coordinate is a position in the non-spatial dimensions of the document.
type Coordinate map[Dimension]int32

// String renders the coordinate with dimensions in sorted order, e.g. "C0T3"
func (c Coordinate) String() string {
	dims := make([]string, 0, len(c))
	for d := range c {
		dims = append(dims, string(d))
	}
	sort.Strings(dims)

	var b strings.Builder
	for _, d := range dims {
		fmt.Fprintf(&b, "%s%d", d, c[Dimension(d)])
	}
	return b.String()
}

// Clone returns an independent copy of c.
func (c Coordinate) Clone() Coordinate {
	if c == nil {
		return nil
	}
	out := make(Coordinate, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Rect is a logical rectangle in pixel space.
type Rect struct {
	X int32 `cbor:"x"`
	Y int32 `cbor:"y"`
	W int32 `cbor:"w"`
	H int32 `cbor:"h"`
}

// Size is the physical size of a block's bitmap.
type Size struct {
	W uint32 `cbor:"w"`
	H uint32 `cbor:"h"`
}

// PyramidType tags blocks that belong to a resolution pyramid level.
type PyramidType uint8

const (
	PyramidNone      PyramidType = 0
	PyramidSingleSub PyramidType = 1
	PyramidMultiSub  PyramidType = 2
)

// MIndexInvalid marks a block without a valid M-index.
const MIndexInvalid = math.MaxInt32

// 🧱 BlockInfo describes a block without its payload.
type BlockInfo struct {
	Coordinate   Coordinate      `cbor:"coordinate"`
	LogicalRect  Rect            `cbor:"logical_rect"`
	PhysicalSize Size            `cbor:"physical_size"`
	PixelType    PixelType       `cbor:"pixel_type"`
	Mode         CompressionMode `cbor:"mode"`
	MIndex       int32           `cbor:"m_index"`
	PyramidType  PyramidType     `cbor:"pyramid_type"`
}

// HasMIndex reports whether the block carries a usable M-index.
func (i BlockInfo) HasMIndex() bool {
	return i.MIndex != MIndexInvalid
}

// Block is a tile of pixel data plus its optional side payloads.
type Block struct {
	Info       BlockInfo
	Data       []byte
	Metadata   []byte
	Attachment []byte
}

// 📎 AttachmentInfo identifies an attachment.
type AttachmentInfo struct {
	ContentGUID     uuid.UUID `cbor:"content_guid"`
	Name            string    `cbor:"name"`
	ContentFileType string    `cbor:"content_file_type"`
}

// Attachment is an opaque auxiliary payload. It is never transformed.
type Attachment struct {
	Info AttachmentInfo
	Data []byte
}

// Metadata is the document's XML metadata.
type Metadata []byte
