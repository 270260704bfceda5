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

package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
	"github.com/walteh/czicompress/pkg/transcode"
	"gitlab.com/tozd/go/errors"
)

// ⏳ Progress draws transcode progress. On a terminal the current line is
// redrawn in place while the phase stays the same; otherwise one line per
// phase is written to w when the phase ends.
type Progress struct {
	formatter   FileFormatter
	w           io.Writer
	interactive bool

	mu      sync.Mutex
	area    *pterm.AreaPrinter
	started bool
	phase   transcode.Phase
	line    string
}

// NewProgress creates a progress display. interactive draws to the terminal
// with pterm; w is used otherwise.
func NewProgress(w io.Writer, interactive bool) *Progress {
	return &Progress{
		formatter:   NewDefaultFileFormatter(),
		w:           w,
		interactive: interactive,
	}
}

// Update shows ev. It always returns true so it can be used directly as a
// transcode.ProgressFunc.
func (p *Progress) Update(ev transcode.ProgressEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && ev.Phase != p.phase {
		p.freeze()
	}
	p.started = true
	p.phase = ev.Phase
	p.line = p.formatter.FormatProgress(ev)

	if !p.interactive {
		return true
	}

	if p.area == nil {
		area, err := pterm.DefaultArea.Start(p.line)
		if err != nil {
			// fall back to plain output for the rest of the run
			p.interactive = false
			return true
		}
		p.area = area
		return true
	}
	p.area.Update(p.line)
	return true
}

// freeze ends the line of the current phase.
func (p *Progress) freeze() {
	if p.area != nil {
		_ = p.area.Stop()
		p.area = nil
		return
	}
	if p.line != "" {
		fmt.Fprintln(p.w, p.line)
	}
}

// Stop ends the last line.
func (p *Progress) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false

	if p.area != nil {
		err := p.area.Stop()
		p.area = nil
		if err != nil {
			return errors.Errorf("stopping progress area: %w", err)
		}
		return nil
	}
	if p.line != "" {
		fmt.Fprintln(p.w, p.line)
	}
	p.line = ""
	return nil
}
