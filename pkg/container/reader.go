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

package container

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// 📖 Reader reads a closed container. It implements document.SourceReader.
// Enumeration follows write order.
type Reader struct {
	r    io.ReaderAt
	size int64
	dir  directory
}

var _ document.SourceReader = (*Reader)(nil)

// Open validates the header and trailer and loads the directory.
func Open(r io.ReaderAt, size int64) (*Reader, error) {
	if size < int64(len(fileMagic))+trailerSize {
		return nil, errors.Errorf("%w: %d bytes is too small", ErrInvalidFile, size)
	}

	var magic [8]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return nil, errors.Errorf("reading file header: %w", err)
	}
	if magic != fileMagic {
		return nil, errors.Errorf("%w: bad file magic", ErrInvalidFile)
	}

	var trailer [trailerSize]byte
	if _, err := r.ReadAt(trailer[:], size-trailerSize); err != nil {
		return nil, errors.Errorf("reading trailer: %w", err)
	}
	if !bytes.Equal(trailer[8:16], trailerMagic[:]) {
		return nil, errors.Errorf("%w: missing trailer, file was not closed", ErrInvalidFile)
	}

	cr := &Reader{r: r, size: size}
	dirOffset := binary.LittleEndian.Uint64(trailer[0:8])
	if err := readSegment(r, size-trailerSize, dirOffset, kindDirectory, &cr.dir); err != nil {
		return nil, errors.Errorf("reading directory: %w", err)
	}
	return cr, nil
}

// FileGUID returns the document identity.
func (cr *Reader) FileGUID() uuid.UUID {
	return cr.dir.FileGUID
}

// Size returns the file size the reader was opened with.
func (cr *Reader) Size() int64 {
	return cr.size
}

// BlockCount implements document.SourceReader.
func (cr *Reader) BlockCount() int {
	return len(cr.dir.Blocks)
}

// AttachmentCount returns the number of attachments.
func (cr *Reader) AttachmentCount() int {
	return len(cr.dir.Attachments)
}

// EnumerateBlocks implements document.SourceReader.
func (cr *Reader) EnumerateBlocks(fn func(index int, info document.BlockInfo) bool) error {
	for i, e := range cr.dir.Blocks {
		if !fn(i, e.Info) {
			return nil
		}
	}
	return nil
}

// ReadBlock implements document.SourceReader.
func (cr *Reader) ReadBlock(index int) (*document.Block, error) {
	if index < 0 || index >= len(cr.dir.Blocks) {
		return nil, errors.Errorf("%w: block %d of %d", ErrIndexOutOfRange, index, len(cr.dir.Blocks))
	}

	var seg blockSegment
	if err := readSegment(cr.r, cr.size-trailerSize, cr.dir.Blocks[index].Offset, kindBlock, &seg); err != nil {
		return nil, errors.Errorf("reading block %d: %w", index, err)
	}
	return &document.Block{
		Info:       seg.Info,
		Data:       seg.Data,
		Metadata:   seg.Metadata,
		Attachment: seg.Attachment,
	}, nil
}

// EnumerateAttachments implements document.SourceReader.
func (cr *Reader) EnumerateAttachments(fn func(index int, info document.AttachmentInfo) bool) error {
	for i, e := range cr.dir.Attachments {
		if !fn(i, e.Info) {
			return nil
		}
	}
	return nil
}

// ReadAttachment implements document.SourceReader.
func (cr *Reader) ReadAttachment(index int) (*document.Attachment, error) {
	if index < 0 || index >= len(cr.dir.Attachments) {
		return nil, errors.Errorf("%w: attachment %d of %d", ErrIndexOutOfRange, index, len(cr.dir.Attachments))
	}

	var seg attachmentSegment
	if err := readSegment(cr.r, cr.size-trailerSize, cr.dir.Attachments[index].Offset, kindAttachment, &seg); err != nil {
		return nil, errors.Errorf("reading attachment %d: %w", index, err)
	}
	return &document.Attachment{Info: seg.Info, Data: seg.Data}, nil
}

// ReadMetadata implements document.SourceReader. A document without a
// metadata segment returns nil.
func (cr *Reader) ReadMetadata() (document.Metadata, error) {
	if cr.dir.MetadataOffset == nil {
		return nil, nil
	}

	var seg metadataSegment
	if err := readSegment(cr.r, cr.size-trailerSize, *cr.dir.MetadataOffset, kindMetadata, &seg); err != nil {
		return nil, errors.Errorf("reading metadata: %w", err)
	}
	return seg.XML, nil
}

// File is a Reader over an open file.
type File struct {
	*Reader
	f *os.File
}

// OpenFile opens path and its container directory.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Errorf("stat %s: %w", path, err)
	}

	r, err := Open(f, st.Size())
	if err != nil {
		f.Close()
		return nil, errors.Errorf("opening container %s: %w", path, err)
	}
	return &File{Reader: r, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
