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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/czicompress/pkg/codec"
	"github.com/walteh/czicompress/pkg/document"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
)

var errNotConfigured = errors.Base("operator is not configured")

// 🔧 Options contains everything an Operator needs for one run
type Options struct {
	// Source is the document to read. It is borrowed for the duration of Run.
	Source document.SourceReader
	// Destination receives the transcoded document. The caller closes it.
	Destination document.DestinationWriter
	// Command selects compress or decompress
	Command transcode.Command
	// Strategy selects the blocks to compress; ignored for decompress
	Strategy transcode.Strategy
	// Compression is the compress target and its parameters
	Compression codec.Options
	// Codec overrides the default codec
	Codec codec.Capability
}

// 🎯 Operator selects a policy from the configured command and runs an engine with it
type Operator struct {
	opts       Options
	configured bool
	stats      transcode.Statistics
}

// 🏭 New creates an unconfigured operator
func New() *Operator {
	return &Operator{}
}

// Configure stores the options for the next Run. Nothing is validated until Run.
func (o *Operator) Configure(opts Options) {
	o.opts = opts
	o.configured = true
	o.stats = transcode.Statistics{}
}

// Statistics returns the counters of the last Run.
func (o *Operator) Statistics() transcode.Statistics {
	return o.stats
}

// 🏃 Run builds the policy and engine and runs them. An unknown command fails
// before the source or destination is touched.
func (o *Operator) Run(ctx context.Context, progress transcode.ProgressFunc) (bool, error) {
	if !o.configured {
		return false, errors.WithStack(&transcode.Error{Kind: transcode.ErrConfiguration, Op: "run", Err: errNotConfigured})
	}

	policy, err := transcode.NewPolicy(o.opts.Command, o.opts.Strategy, o.opts.Compression)
	if err != nil {
		return false, err
	}

	c := o.opts.Codec
	if c == nil {
		c = codec.New()
	}

	zerolog.Ctx(ctx).Debug().
		Stringer("command", o.opts.Command).
		Stringer("strategy", o.opts.Strategy).
		Stringer("compression", o.opts.Compression).
		Msg("starting transcode")

	engine := transcode.NewEngine(o.opts.Source, o.opts.Destination, policy, c)
	ok, err := engine.Run(ctx, progress)
	o.stats = engine.Statistics()
	return ok, err
}

// Transcode configures a fresh Operator with opts and runs it.
func Transcode(ctx context.Context, opts Options, progress transcode.ProgressFunc) (transcode.Statistics, bool, error) {
	op := New()
	op.Configure(opts)
	ok, err := op.Run(ctx, progress)
	return op.Statistics(), ok, err
}
