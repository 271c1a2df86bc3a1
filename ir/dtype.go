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

// DType is the scalar element type carried by tensors, tiles and scalar
// values. The set is closed: spec.md §3.1 lists FP32, FP16, BF16, INT8,
// UINT8, INT32, INT64, BOOL as the baseline and leaves room ("…") for more;
// new members only ever get appended at the end so that serialized programs
// stay stable (an external concern, see spec.md §6, but worth respecting
// here too).
type DType uint8

// Scalar element types.
const (
	InvalidDType DType = iota
	FP32
	FP16
	BF16
	INT8
	UINT8
	INT32
	INT64
	BOOL
)

var dtypeNames = map[DType]string{
	InvalidDType: "invalid",
	FP32:         "fp32",
	FP16:         "fp16",
	BF16:         "bf16",
	INT8:         "int8",
	UINT8:        "uint8",
	INT32:        "int32",
	INT64:        "int64",
	BOOL:         "bool",
}

// String returns the lower-case name of the dtype.
func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return "invalid"
}

// IsValid reports whether d is one of the registered dtypes.
func (d DType) IsValid() bool {
	_, ok := dtypeNames[d]
	return ok && d != InvalidDType
}
