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

// 📖 SourceReader is read access to a source document. Implementations must
// not be mutated while a transcode runs.
type SourceReader interface {
	// BlockCount returns the total number of blocks in the document
	BlockCount() int
	// EnumerateBlocks calls fn for every block in document order. Enumeration
	// stops early when fn returns false.
	EnumerateBlocks(fn func(index int, info BlockInfo) bool) error
	// ReadBlock reads the block at the given directory index
	ReadBlock(index int) (*Block, error)
	// EnumerateAttachments calls fn for every attachment, stopping when fn returns false
	EnumerateAttachments(fn func(index int, info AttachmentInfo) bool) error
	ReadAttachment(index int) (*Attachment, error)
	ReadMetadata() (Metadata, error)
}

// ✍️ DestinationWriter is append-only write access to a destination document.
// It is not safe for concurrent use.
type DestinationWriter interface {
	AppendBlock(block *Block) error
	AppendAttachment(attachment *Attachment) error
	// WriteMetadata may be called exactly once
	WriteMetadata(metadata Metadata) error
	Close() error
}
