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

package testutils

import (
	"github.com/stretchr/testify/mock"
	"github.com/walteh/czicompress/pkg/document"
)

// MockDestinationWriter is a testify mock of document.DestinationWriter.
type MockDestinationWriter struct {
	mock.Mock
}

var _ document.DestinationWriter = (*MockDestinationWriter)(nil)

func (m *MockDestinationWriter) AppendBlock(block *document.Block) error {
	return m.Called(block).Error(0)
}

func (m *MockDestinationWriter) AppendAttachment(attachment *document.Attachment) error {
	return m.Called(attachment).Error(0)
}

func (m *MockDestinationWriter) WriteMetadata(metadata document.Metadata) error {
	return m.Called(metadata).Error(0)
}

func (m *MockDestinationWriter) Close() error {
	return m.Called().Error(0)
}

// MockSourceReader is a testify mock of document.SourceReader. Enumeration
// calls are driven by the Infos and AttachmentInfos fields.
type MockSourceReader struct {
	mock.Mock
	Infos           []document.BlockInfo
	AttachmentInfos []document.AttachmentInfo
}

var _ document.SourceReader = (*MockSourceReader)(nil)

func (m *MockSourceReader) BlockCount() int {
	return len(m.Infos)
}

func (m *MockSourceReader) EnumerateBlocks(fn func(int, document.BlockInfo) bool) error {
	for i, info := range m.Infos {
		if !fn(i, info) {
			break
		}
	}
	return nil
}

func (m *MockSourceReader) ReadBlock(index int) (*document.Block, error) {
	args := m.Called(index)
	block, _ := args.Get(0).(*document.Block)
	return block, args.Error(1)
}

func (m *MockSourceReader) EnumerateAttachments(fn func(int, document.AttachmentInfo) bool) error {
	for i, info := range m.AttachmentInfos {
		if !fn(i, info) {
			break
		}
	}
	return nil
}

func (m *MockSourceReader) ReadAttachment(index int) (*document.Attachment, error) {
	args := m.Called(index)
	att, _ := args.Get(0).(*document.Attachment)
	return att, args.Error(1)
}

func (m *MockSourceReader) ReadMetadata() (document.Metadata, error) {
	args := m.Called()
	md, _ := args.Get(0).(document.Metadata)
	return md, args.Error(1)
}
