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

// Package testutils builds in-memory documents for tests.
package testutils

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/container"
	"github.com/walteh/czicompress/pkg/document"
)

// BlockSpec describes one fixture block. Its payload is generated from a
// gradient and encoded with Mode.
type BlockSpec struct {
	C         int32
	Mode      document.CompressionMode
	PixelType document.PixelType
	Width     int
	Height    int
	MIndex    int32
}

// Fixture describes a whole document.
type Fixture struct {
	Blocks      []BlockSpec
	Attachments []*document.Attachment
	Metadata    string
}

// SampleMetadata has a current compression parameters node to rewrite.
const SampleMetadata = `<?xml version="1.0" encoding="utf-8"?>
<ImageDocument>
  <Metadata>
    <Information>
      <Image>
        <SizeX>64</SizeX>
        <CurrentCompressionParameters>Lossy: 85</CurrentCompressionParameters>
      </Image>
    </Information>
  </Metadata>
</ImageDocument>`

// Gradient returns a deterministic, tightly packed bitmap.
func Gradient(pixelType document.PixelType, w, h int, seed byte) *codec.Bitmap {
	bpp := pixelType.BytesPerPixel()
	pix := make([]byte, w*h*bpp)
	for i := range pix {
		pix[i] = byte(i*13) + seed
	}
	return &codec.Bitmap{PixelType: pixelType, Width: w, Height: h, Stride: w * bpp, Pixels: pix}
}

// Blocks returns n blocks of the same shape and mode on channels 0..n-1.
func Blocks(n int, mode document.CompressionMode, pixelType document.PixelType, w, h int) []BlockSpec {
	specs := make([]BlockSpec, n)
	for i := range specs {
		specs[i] = BlockSpec{C: int32(i), Mode: mode, PixelType: pixelType, Width: w, Height: h, MIndex: int32(i)}
	}
	return specs
}

// Attachments returns n small attachments.
func Attachments(n int) []*document.Attachment {
	out := make([]*document.Attachment, n)
	for i := range out {
		out[i] = &document.Attachment{
			Info: document.AttachmentInfo{
				ContentGUID:     uuid.New(),
				Name:            "Attachment",
				ContentFileType: "BIN",
			},
			Data: []byte{byte(i), 0xde, 0xad},
		}
	}
	return out
}

// Pixels returns the raw pixels a BlockSpec is generated from.
func (s BlockSpec) Pixels() []byte {
	return Gradient(s.PixelType, s.Width, s.Height, byte(s.C)).Pixels
}

func (s BlockSpec) block(t testing.TB) *document.Block {
	t.Helper()

	bitmap := Gradient(s.PixelType, s.Width, s.Height, byte(s.C))
	var data []byte
	var err error
	switch s.Mode {
	case document.ModeUncompressed:
		data = bitmap.Pixels
	case document.ModeZstd0, document.ModeZstd1:
		opts := codec.Options{Mode: s.Mode, Level: 1, HiLoByteUnpack: s.Mode == document.ModeZstd1}
		data, err = codec.New().Compress(bitmap, opts)
	case document.ModeJpg:
		if s.PixelType != document.PixelTypeGray8 && s.PixelType != document.PixelTypeBgr24 {
			// a real JPEG stream labelled with a pixel type it cannot be read as
			bitmap = Gradient(document.PixelTypeGray8, s.Width, s.Height, byte(s.C))
		}
		data, err = codec.EncodeJPEG(bitmap, 90)
	default:
		data = []byte("opaque payload")
	}
	require.NoError(t, err, "encoding fixture block")

	return &document.Block{
		Info: document.BlockInfo{
			Coordinate:   document.Coordinate{document.DimC: s.C, document.DimZ: 0},
			LogicalRect:  document.Rect{W: int32(s.Width), H: int32(s.Height)},
			PhysicalSize: document.Size{W: uint32(s.Width), H: uint32(s.Height)},
			PixelType:    s.PixelType,
			Mode:         s.Mode,
			MIndex:       s.MIndex,
		},
		Data: data,
	}
}

// Build writes the fixture to a container and returns its bytes.
func Build(t testing.TB, f Fixture) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := container.NewWriter(&buf, container.WriterOptions{})
	require.NoError(t, err, "creating fixture writer")

	for _, s := range f.Blocks {
		require.NoError(t, w.AppendBlock(s.block(t)), "appending fixture block")
	}
	for _, a := range f.Attachments {
		require.NoError(t, w.AppendAttachment(a), "appending fixture attachment")
	}
	require.NoError(t, w.WriteMetadata(document.Metadata(f.Metadata)), "writing fixture metadata")
	require.NoError(t, w.Close(), "closing fixture writer")

	return buf.Bytes()
}

// NewDocument builds the fixture and opens it for reading.
func NewDocument(t testing.TB, f Fixture) *container.Reader {
	t.Helper()
	return Open(t, Build(t, f))
}

// Open opens container bytes.
func Open(t testing.TB, data []byte) *container.Reader {
	t.Helper()

	r, err := container.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "opening container")
	return r
}

// Sink is an in-memory destination that can be reopened as a source.
type Sink struct {
	buf bytes.Buffer
	*container.Writer
}

// NewSink returns an empty in-memory destination.
func NewSink(t testing.TB, opts container.WriterOptions) *Sink {
	t.Helper()

	s := &Sink{}
	w, err := container.NewWriter(&s.buf, opts)
	require.NoError(t, err, "creating sink writer")
	s.Writer = w
	return s
}

// Reopen closes the writer and opens what was written.
func (s *Sink) Reopen(t testing.TB) *container.Reader {
	t.Helper()

	require.NoError(t, s.Close(), "closing sink")
	return Open(t, s.buf.Bytes())
}

// Bytes returns what has been written so far.
func (s *Sink) Bytes() []byte {
	return s.buf.Bytes()
}
