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

package transcode

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎛️ Command selects the transform policy.
type Command int

const (
	CommandInvalid Command = iota
	CommandCompress
	CommandDecompress
)

func (c Command) String() string {
	switch c {
	case CommandCompress:
		return "compress"
	case CommandDecompress:
		return "decompress"
	default:
		return "invalid"
	}
}

// ParseCommand parses "compress" or "decompress" (case-insensitive).
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compress":
		return CommandCompress, nil
	case "decompress":
		return CommandDecompress, nil
	default:
		return CommandInvalid, newError(ErrConfiguration, "parse command", errors.Errorf("unknown command %q", s))
	}
}

// 🎯 Strategy selects which blocks the compress policy re-encodes.
type Strategy int

const (
	StrategyInvalid Strategy = iota
	// StrategyAll compresses every block.
	StrategyAll
	// StrategyOnlyUncompressed compresses only uncompressed blocks.
	StrategyOnlyUncompressed
	// StrategyUncompressedAndLossless compresses uncompressed blocks and
	// re-encodes blocks already in a lossless zstd mode.
	StrategyUncompressedAndLossless
)

func (s Strategy) String() string {
	switch s {
	case StrategyAll:
		return "all"
	case StrategyOnlyUncompressed:
		return "uncompressed"
	case StrategyUncompressedAndLossless:
		return "uncompressed_and_zstd"
	default:
		return "invalid"
	}
}

// ParseStrategy parses a strategy name as printed by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return StrategyAll, nil
	case "uncompressed":
		return StrategyOnlyUncompressed, nil
	case "uncompressed_and_zstd":
		return StrategyUncompressedAndLossless, nil
	default:
		return StrategyInvalid, newError(ErrConfiguration, "parse strategy", errors.Errorf("unknown strategy %q", s))
	}
}

// Action is the per-block decision of a policy.
type Action int

const (
	ActionCopy Action = iota
	ActionDecompress
	ActionCompress
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionDecompress:
		return "decompress"
	case ActionCompress:
		return "compress"
	default:
		return "invalid"
	}
}
