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

import "fmt"

// 🚦 Phase is one of the three sequential stages of a run.
type Phase int

const (
	PhaseBlocks Phase = iota
	PhaseAttachments
	PhaseMetadata
)

func (p Phase) String() string {
	switch p {
	case PhaseBlocks:
		return "Blocks"
	case PhaseAttachments:
		return "Attachments"
	case PhaseMetadata:
		return "Metadata"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// TodoUnknown is the Todo value of events whose total is not known up front.
const TodoUnknown = -1

// ProgressEvent is emitted after each unit of work.
type ProgressEvent struct {
	Phase Phase
	Done  int
	Todo  int
}

// HasTodo reports whether Todo is a known total.
func (e ProgressEvent) HasTodo() bool {
	return e.Todo >= 0
}

func (e ProgressEvent) String() string {
	if !e.HasTodo() {
		return fmt.Sprintf("%s %d", e.Phase, e.Done)
	}
	return fmt.Sprintf("%s %d/%d", e.Phase, e.Done, e.Todo)
}

// ProgressFunc receives progress events synchronously. Returning false
// cancels the run at that checkpoint.
type ProgressFunc func(ProgressEvent) bool
