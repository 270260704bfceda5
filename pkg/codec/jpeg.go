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
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// jpegPixelType reports whether JPEG payloads can be decoded into pixelType.
func jpegPixelType(pixelType document.PixelType) bool {
	return pixelType == document.PixelTypeGray8 || pixelType == document.PixelTypeBgr24
}

func decodeJPEG(data []byte, pixelType document.PixelType, width, height int) (*Bitmap, error) {
	if !jpegPixelType(pixelType) {
		return nil, errors.Errorf("%w: jpg with pixel type %s", ErrUnsupportedMode, pixelType)
	}

	// check the header before decoding so a bogus size is not allocated
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Errorf("%w: jpg: %v", ErrCorruptData, err)
	}
	if cfg.Width != width || cfg.Height != height {
		return nil, errors.Errorf("%w: jpg is %dx%d, expected %dx%d",
			ErrCorruptData, cfg.Width, cfg.Height, width, height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Errorf("%w: jpg: %v", ErrCorruptData, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		return nil, errors.Errorf("%w: jpg is %dx%d, expected %dx%d",
			ErrCorruptData, bounds.Dx(), bounds.Dy(), width, height)
	}

	nrgba := imaging.Clone(img)
	bpp := pixelType.BytesPerPixel()
	out := &Bitmap{
		PixelType: pixelType,
		Width:     width,
		Height:    height,
		Stride:    width * bpp,
		Pixels:    make([]byte, width*height*bpp),
	}

	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		dst := out.Pixels[y*out.Stride : (y+1)*out.Stride]
		for x := 0; x < width; x++ {
			r, g, b := src[x*4], src[x*4+1], src[x*4+2]
			if pixelType == document.PixelTypeGray8 {
				dst[x] = r
				continue
			}
			dst[x*3], dst[x*3+1], dst[x*3+2] = b, g, r
		}
	}

	return out, nil
}

// EncodeJPEG encodes a Gray8 or Bgr24 bitmap as a JPEG payload.
func EncodeJPEG(bitmap *Bitmap, quality int) ([]byte, error) {
	var img image.Image
	switch bitmap.PixelType {
	case document.PixelTypeGray8:
		gray := image.NewGray(image.Rect(0, 0, bitmap.Width, bitmap.Height))
		for y := 0; y < bitmap.Height; y++ {
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+bitmap.Width], bitmap.Pixels[y*bitmap.Stride:])
		}
		img = gray
	case document.PixelTypeBgr24:
		rgba := image.NewNRGBA(image.Rect(0, 0, bitmap.Width, bitmap.Height))
		for y := 0; y < bitmap.Height; y++ {
			row := bitmap.Pixels[y*bitmap.Stride:]
			for x := 0; x < bitmap.Width; x++ {
				rgba.SetNRGBA(x, y, color.NRGBA{R: row[x*3+2], G: row[x*3+1], B: row[x*3], A: 0xff})
			}
		}
		img = rgba
	default:
		return nil, errors.Errorf("%w: jpg with pixel type %s", ErrUnsupportedMode, bitmap.PixelType)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Errorf("encoding jpg: %w", err)
	}
	return buf.Bytes(), nil
}
