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
	"fmt"
	"strconv"
	"strings"

	"github.com/walteh/czicompress/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// DefaultOptionsString is the compression target used when none is configured.
const DefaultOptionsString = "zstd1:ExplicitLevel=1;PreProcess=HiLoByteUnpack"

// ErrInvalidOptions is returned by ParseOptions for malformed strings.
var ErrInvalidOptions = errors.Base("invalid compression options")

// ⚙️ Options selects a compression target mode and its parameters.
type Options struct {
	Mode           document.CompressionMode
	Level          int
	HiLoByteUnpack bool
}

// String renders o in the same syntax ParseOptions accepts.
func (o Options) String() string {
	var params []string
	if o.Level != 0 {
		params = append(params, fmt.Sprintf("ExplicitLevel=%d", o.Level))
	}
	if o.HiLoByteUnpack {
		params = append(params, "PreProcess=HiLoByteUnpack")
	}
	return o.Mode.String() + ":" + strings.Join(params, ";")
}

// DefaultOptions returns the parsed DefaultOptionsString.
func DefaultOptions() Options {
	return Options{Mode: document.ModeZstd1, Level: 1, HiLoByteUnpack: true}
}

// ParseMode resolves a mode name such as "zstd1" (case-insensitive).
func ParseMode(name string) (document.CompressionMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uncompressed":
		return document.ModeUncompressed, nil
	case "jpg", "jpeg":
		return document.ModeJpg, nil
	case "lzw":
		return document.ModeLzw, nil
	case "jpgxr", "jxr":
		return document.ModeJpgXr, nil
	case "zstd0":
		return document.ModeZstd0, nil
	case "zstd1":
		return document.ModeZstd1, nil
	default:
		return 0, errors.Errorf("%w: unknown mode %q", ErrInvalidOptions, name)
	}
}

// ParseOptions parses "mode:Key=Value;Key=Value". Recognized keys are
// ExplicitLevel (an integer) and PreProcess (only HiLoByteUnpack).
func ParseOptions(s string) (Options, error) {
	modeName, params, _ := strings.Cut(strings.TrimSpace(s), ":")

	mode, err := ParseMode(modeName)
	if err != nil {
		return Options{}, err
	}
	opts := Options{Mode: mode}

	for _, param := range strings.Split(params, ";") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return Options{}, errors.Errorf("%w: parameter %q has no value", ErrInvalidOptions, param)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "explicitlevel":
			level, err := strconv.Atoi(value)
			if err != nil {
				return Options{}, errors.Errorf("%w: ExplicitLevel %q: %v", ErrInvalidOptions, value, err)
			}
			opts.Level = level
		case "preprocess":
			if !strings.EqualFold(value, "HiLoByteUnpack") {
				return Options{}, errors.Errorf("%w: unknown PreProcess %q", ErrInvalidOptions, value)
			}
			opts.HiLoByteUnpack = true
		default:
			return Options{}, errors.Errorf("%w: unknown parameter %q", ErrInvalidOptions, key)
		}
	}

	return opts, nil
}
