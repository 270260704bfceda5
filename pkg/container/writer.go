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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// FileGUID identifies the document. A random one is generated when nil.
	FileGUID uuid.UUID
	// AllowDuplicateBlocks accepts blocks whose coordinate, M-index and
	// pyramid type match an already written block.
	AllowDuplicateBlocks bool
}

// ✍️ Writer appends a document to an io.Writer. It implements
// document.DestinationWriter and is not safe for concurrent use.
type Writer struct {
	w      io.Writer
	offset uint64
	opts   WriterOptions
	dir    directory
	seen   map[string]struct{}
	closed bool
}

var _ document.DestinationWriter = (*Writer)(nil)

// NewWriter writes the file header and returns a Writer.
func NewWriter(w io.Writer, opts WriterOptions) (*Writer, error) {
	if opts.FileGUID == uuid.Nil {
		opts.FileGUID = uuid.New()
	}

	cw := &Writer{
		w:    w,
		opts: opts,
		dir:  directory{FileGUID: opts.FileGUID},
		seen: make(map[string]struct{}),
	}

	if err := cw.write(fileMagic[:]); err != nil {
		return nil, errors.Errorf("writing file header: %w", err)
	}
	return cw, nil
}

// FileGUID returns the document identity written to the directory.
func (cw *Writer) FileGUID() uuid.UUID {
	return cw.opts.FileGUID
}

// BytesWritten returns the number of bytes written so far.
func (cw *Writer) BytesWritten() uint64 {
	return cw.offset
}

func (cw *Writer) write(p []byte) error {
	n, err := cw.w.Write(p)
	cw.offset += uint64(n)
	if err != nil {
		return errors.WithStack(err)
	}
	if n != len(p) {
		return errors.WithStack(io.ErrShortWrite)
	}
	return nil
}

func (cw *Writer) writeSegment(kind segmentKind, v any) (uint64, error) {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return 0, errors.Errorf("encoding %q segment: %w", kind[:], err)
	}

	start := cw.offset
	var hdr [segmentHeaderSize]byte
	putSegmentHeader(hdr[:], kind, uint64(len(payload)))
	if err := cw.write(hdr[:]); err != nil {
		return 0, errors.Errorf("writing %q segment header: %w", kind[:], err)
	}
	if err := cw.write(payload); err != nil {
		return 0, errors.Errorf("writing %q segment payload: %w", kind[:], err)
	}
	return start, nil
}

func duplicateKey(info document.BlockInfo) string {
	return fmt.Sprintf("%s|m%d|p%d", info.Coordinate, info.MIndex, info.PyramidType)
}

// AppendBlock implements document.DestinationWriter.
func (cw *Writer) AppendBlock(block *document.Block) error {
	if cw.closed {
		return ErrClosed
	}

	info := block.Info
	if info.HasMIndex() && !cw.opts.AllowDuplicateBlocks {
		key := duplicateKey(info)
		if _, ok := cw.seen[key]; ok {
			return errors.Errorf("%w: %s", ErrDuplicateBlock, key)
		}
		cw.seen[key] = struct{}{}
	}

	offset, err := cw.writeSegment(kindBlock, blockSegment{
		Info:       info,
		Data:       block.Data,
		Metadata:   block.Metadata,
		Attachment: block.Attachment,
	})
	if err != nil {
		return err
	}

	cw.dir.Blocks = append(cw.dir.Blocks, blockEntry{Offset: offset, Info: info})
	return nil
}

// AppendAttachment implements document.DestinationWriter.
func (cw *Writer) AppendAttachment(att *document.Attachment) error {
	if cw.closed {
		return ErrClosed
	}

	offset, err := cw.writeSegment(kindAttachment, attachmentSegment{Info: att.Info, Data: att.Data})
	if err != nil {
		return err
	}

	cw.dir.Attachments = append(cw.dir.Attachments, attachmentEntry{Offset: offset, Info: att.Info})
	return nil
}

// WriteMetadata implements document.DestinationWriter. It may be called once.
func (cw *Writer) WriteMetadata(md document.Metadata) error {
	if cw.closed {
		return ErrClosed
	}
	if cw.dir.MetadataOffset != nil {
		return ErrMetadataWritten
	}

	offset, err := cw.writeSegment(kindMetadata, metadataSegment{XML: md})
	if err != nil {
		return err
	}

	cw.dir.MetadataOffset = &offset
	return nil
}

// Close writes the directory and trailer. It does not close the underlying writer.
func (cw *Writer) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	dirOffset, err := cw.writeSegment(kindDirectory, cw.dir)
	if err != nil {
		return err
	}

	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint64(trailer[0:8], dirOffset)
	copy(trailer[8:16], trailerMagic[:])
	if err := cw.write(trailer[:]); err != nil {
		return errors.Errorf("writing trailer: %w", err)
	}
	return nil
}
