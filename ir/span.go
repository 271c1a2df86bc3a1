// Copyright 2025 The PyPTO Authors
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

package ir

import "fmt"

// Span is a position in the original source that produced an IR node.
// Span is always an IgnoreField: it never participates in structural
// equality, hashing, or type checking.
type Span struct {
	File string
	Line int
	Col  int
}

// String returns the span as "file:line:col", or "-" if the span is zero.
func (s Span) String() string {
	if s == (Span{}) {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}
