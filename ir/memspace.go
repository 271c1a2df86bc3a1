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

// MemorySpace is the accelerator memory level a tensor or tile view is
// resident in, per spec.md §3.1.
type MemorySpace uint8

// Memory spaces, from slowest/largest to fastest/smallest.
const (
	InvalidMemorySpace MemorySpace = iota
	DDR
	UB
	L1
	L0A
	L0B
	L0C
)

var memSpaceNames = map[MemorySpace]string{
	InvalidMemorySpace: "invalid",
	DDR:                "ddr",
	UB:                 "ub",
	L1:                 "l1",
	L0A:                "l0a",
	L0B:                "l0b",
	L0C:                "l0c",
}

// String returns the lower-case name of the memory space.
func (m MemorySpace) String() string {
	if name, ok := memSpaceNames[m]; ok {
		return name
	}
	return "invalid"
}
