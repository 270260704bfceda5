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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Kind classifies fatal errors. Cancellation is never an error.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	// ErrIO is any read or write failure against the source or destination.
	ErrIO Kind = "i/o error"
	// ErrUnsupportedCodec is a compression target the codec cannot produce.
	ErrUnsupportedCodec Kind = "unsupported codec"
	// ErrOverflow is a block size outside the range the write path can address.
	ErrOverflow Kind = "size overflow"
	// ErrConfiguration is an invalid command, strategy or missing collaborator.
	ErrConfiguration Kind = "configuration error"
)

// ⚠️ Error is a fatal transcode error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's Kind, so errors.Is(err, ErrIO) works through wrapping.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(kind Kind, op string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Op: op, Err: err})
}

// KindOf returns the Kind of err, or "" if err is not a transcode error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
