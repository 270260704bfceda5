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

// Package container implements the on-disk document format: a magic header,
// a sequence of CBOR segments, a directory segment and a fixed-size trailer.
//
// Writers only ever append, so a file that was not closed has no trailer and
// is rejected by Open.
package container

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

var (
	fileMagic    = [8]byte{'Z', 'I', 'S', 'R', 'A', 'W', 'F', 'L'}
	trailerMagic = [8]byte{'Z', 'I', 'S', 'R', 'A', 'W', 'D', 'R'}
)

const (
	segmentHeaderSize = 12
	trailerSize       = 16
)

type segmentKind [4]byte

var (
	kindBlock      = segmentKind{'B', 'L', 'C', 'K'}
	kindAttachment = segmentKind{'A', 'T', 'C', 'H'}
	kindMetadata   = segmentKind{'M', 'E', 'T', 'A'}
	kindDirectory  = segmentKind{'D', 'I', 'R', 'S'}
)

var (
	// ErrInvalidFile is returned when the magic, trailer or a segment header is wrong.
	ErrInvalidFile = errors.Base("invalid container file")
	// ErrDuplicateBlock is returned when a block with the same coordinate,
	// M-index and pyramid type was already written.
	ErrDuplicateBlock = errors.Base("duplicate block")
	// ErrMetadataWritten is returned on a second metadata write.
	ErrMetadataWritten = errors.Base("metadata already written")
	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.Base("container writer closed")
	// ErrIndexOutOfRange is returned for block or attachment indexes past the end.
	ErrIndexOutOfRange = errors.Base("index out of range")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("container: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// large documents carry more directory entries than the default limit
		MaxArrayElements: math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic("container: CBOR decoder initialization failed: " + err.Error())
	}
}

type blockSegment struct {
	Info       document.BlockInfo `cbor:"info"`
	Data       []byte             `cbor:"data"`
	Metadata   []byte             `cbor:"metadata,omitempty"`
	Attachment []byte             `cbor:"attachment,omitempty"`
}

type attachmentSegment struct {
	Info document.AttachmentInfo `cbor:"info"`
	Data []byte                  `cbor:"data"`
}

type metadataSegment struct {
	XML []byte `cbor:"xml"`
}

type blockEntry struct {
	Offset uint64             `cbor:"offset"`
	Info   document.BlockInfo `cbor:"info"`
}

type attachmentEntry struct {
	Offset uint64                  `cbor:"offset"`
	Info   document.AttachmentInfo `cbor:"info"`
}

type directory struct {
	FileGUID       uuid.UUID         `cbor:"file_guid"`
	Blocks         []blockEntry      `cbor:"blocks"`
	Attachments    []attachmentEntry `cbor:"attachments"`
	MetadataOffset *uint64           `cbor:"metadata_offset,omitempty"`
}

func putSegmentHeader(buf []byte, kind segmentKind, length uint64) {
	copy(buf[0:4], kind[:])
	binary.LittleEndian.PutUint64(buf[4:12], length)
}

func readSegment(r io.ReaderAt, size int64, offset uint64, want segmentKind, v any) error {
	if offset > uint64(size) || uint64(size)-offset < segmentHeaderSize {
		return errors.Errorf("%w: segment at %d past end of file", ErrInvalidFile, offset)
	}

	var hdr [segmentHeaderSize]byte
	if _, err := r.ReadAt(hdr[:], int64(offset)); err != nil {
		return errors.Errorf("reading segment header at %d: %w", offset, err)
	}

	var kind segmentKind
	copy(kind[:], hdr[0:4])
	if kind != want {
		return errors.Errorf("%w: segment at %d is %q, expected %q", ErrInvalidFile, offset, kind[:], want[:])
	}

	length := binary.LittleEndian.Uint64(hdr[4:12])
	if length > uint64(size)-offset-segmentHeaderSize {
		return errors.Errorf("%w: segment at %d overruns file", ErrInvalidFile, offset)
	}

	payload := make([]byte, length)
	if _, err := r.ReadAt(payload, int64(offset)+segmentHeaderSize); err != nil {
		return errors.Errorf("reading segment payload at %d: %w", offset, err)
	}

	if err := decMode.Unmarshal(payload, v); err != nil {
		return errors.Errorf("%w: decoding %q segment at %d: %v", ErrInvalidFile, kind[:], offset, err)
	}
	return nil
}
