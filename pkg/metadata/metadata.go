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

// Package metadata edits the XML metadata document stored in a container.
package metadata

import (
	"strings"

	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
)

const (
	// RootElement is the document element created for empty metadata.
	RootElement = "ImageDocument"

	// CurrentCompressionParametersPath records how the pixel data is compressed now.
	CurrentCompressionParametersPath = "Metadata/Information/Image/CurrentCompressionParameters"

	// LosslessValue is written to CurrentCompressionParametersPath after a compress run.
	LosslessValue = "Lossless: True"
)

// ErrInvalidPath is returned for an empty or malformed node path.
var ErrInvalidPath = errors.Base("invalid metadata node path")

func parse(xml []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if len(strings.TrimSpace(string(xml))) == 0 {
		doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
		doc.CreateElement(RootElement)
		return doc, nil
	}
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil, errors.Errorf("parsing metadata xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("metadata xml has no root element")
	}
	return doc, nil
}

func splitPath(path string) ([]string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, p := range parts {
		if p == "" {
			return nil, errors.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return parts, nil
}

// 📝 SetNodeValue sets the text of the element at path (relative to the root
// element), creating missing elements along the way, and returns the
// re-serialized document.
func SetNodeValue(xml []byte, path, value string) ([]byte, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	doc, err := parse(xml)
	if err != nil {
		return nil, err
	}

	el := doc.Root()
	for _, name := range parts {
		child := el.SelectElement(name)
		if child == nil {
			child = el.CreateElement(name)
		}
		el = child
	}
	el.SetText(value)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Errorf("serializing metadata xml: %w", err)
	}
	return out, nil
}

// GetNodeValue returns the text of the element at path and whether it exists.
func GetNodeValue(xml []byte, path string) (string, bool, error) {
	parts, err := splitPath(path)
	if err != nil {
		return "", false, err
	}

	doc, err := parse(xml)
	if err != nil {
		return "", false, err
	}

	el := doc.Root()
	for _, name := range parts {
		el = el.SelectElement(name)
		if el == nil {
			return "", false, nil
		}
	}
	return el.Text(), true, nil
}
