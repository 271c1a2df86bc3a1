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

// KwKind tags the closed set of dynamically-typed kwarg value shapes
// (spec.md §3.2, §9 "dynamic kwargs ... tagged union 'any' with a small
// closed set of variants").
type KwKind uint8

// Kwarg value kinds.
const (
	KwInt KwKind = iota
	KwFloat
	KwBool
	KwString
	KwDType
	KwMemSpace
)

// KwValue is a single dynamically-typed kwarg value.
type KwValue struct {
	Kind KwKind
	I    int64
	F    float64
	B    bool
	S    string
	D    DType
	M    MemorySpace
}

// IntKw builds an integer kwarg value.
func IntKw(v int64) KwValue { return KwValue{Kind: KwInt, I: v} }

// FloatKw builds a float kwarg value.
func FloatKw(v float64) KwValue { return KwValue{Kind: KwFloat, F: v} }

// BoolKw builds a boolean kwarg value.
func BoolKw(v bool) KwValue { return KwValue{Kind: KwBool, B: v} }

// StringKw builds a string kwarg value.
func StringKw(v string) KwValue { return KwValue{Kind: KwString, S: v} }

// DTypeKw builds a dtype kwarg value.
func DTypeKw(v DType) KwValue { return KwValue{Kind: KwDType, D: v} }

// MemSpaceKw builds a memory-space kwarg value.
func MemSpaceKw(v MemorySpace) KwValue { return KwValue{Kind: KwMemSpace, M: v} }

// Equal reports whether two kwarg values are identical.
func (v KwValue) Equal(o KwValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KwInt:
		return v.I == o.I
	case KwFloat:
		return v.F == o.F
	case KwBool:
		return v.B == o.B
	case KwString:
		return v.S == o.S
	case KwDType:
		return v.D == o.D
	case KwMemSpace:
		return v.M == o.M
	}
	return false
}

// String renders the kwarg value the way it would appear in emitted code.
func (v KwValue) String() string {
	switch v.Kind {
	case KwInt:
		return fmt.Sprint(v.I)
	case KwFloat:
		return fmt.Sprint(v.F)
	case KwBool:
		return fmt.Sprint(v.B)
	case KwString:
		return fmt.Sprintf("%q", v.S)
	case KwDType:
		return v.D.String()
	case KwMemSpace:
		return v.M.String()
	}
	return "?"
}

// KwArg is one (name, value) pair of a Call's keyword arguments.
type KwArg struct {
	Name  string
	Value KwValue
}

// KwArgs is an ordered sequence of keyword arguments. Insertion order is
// semantically significant (spec.md §3.2): keyword ordering is preserved on
// emission, so KwArgs is a plain slice rather than a map.
type KwArgs []KwArg

// Get returns the value bound to name, and whether it was present. User
// kwargs always win over an op's default kwargs (spec.md §4.1): callers
// merge by appending user kwargs after defaults and taking the last match.
func (kw KwArgs) Get(name string) (KwValue, bool) {
	for i := len(kw) - 1; i >= 0; i-- {
		if kw[i].Name == name {
			return kw[i].Value, true
		}
	}
	return KwValue{}, false
}

// Merge combines default kwargs with user-supplied kwargs, in order, with
// user kwargs overriding a default of the same name while preserving the
// defaults' relative order for names the user did not override (spec.md §4.1).
func Merge(defaults, user KwArgs) KwArgs {
	overridden := make(map[string]bool, len(user))
	for _, kw := range user {
		overridden[kw.Name] = true
	}
	merged := make(KwArgs, 0, len(defaults)+len(user))
	for _, kw := range defaults {
		if !overridden[kw.Name] {
			merged = append(merged, kw)
		}
	}
	merged = append(merged, user...)
	return merged
}

func kwargsEqual(a, b KwArgs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Value.Equal(b[i].Value) {
			return false
		}
	}
	return true
}
