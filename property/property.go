// Package property defines the closed set of IR properties a pass may
// require, produce or invalidate (spec.md §4.4). Properties are tags, not
// enforced preconditions: pipeline.Pipeline decides whether and when to
// verify them.
package property

// IRProperty is one fact that may or may not hold of a Program at a given
// point in a pipeline.
type IRProperty uint8

// The closed set of IR properties.
const (
	TypeChecked IRProperty = iota
	SSAForm
	NoNestedCalls
	NormalizedStmtStructure
	FlattenedSingleStmt
	SplitIncoreOrch
	IncoreBlockOps
	HasMemRefs

	numProperties
)

var names = map[IRProperty]string{
	TypeChecked:             "TypeChecked",
	SSAForm:                 "SSAForm",
	NoNestedCalls:           "NoNestedCalls",
	NormalizedStmtStructure: "NormalizedStmtStructure",
	FlattenedSingleStmt:     "FlattenedSingleStmt",
	SplitIncoreOrch:         "SplitIncoreOrch",
	IncoreBlockOps:          "IncoreBlockOps",
	HasMemRefs:              "HasMemRefs",
}

func (p IRProperty) String() string {
	if s, ok := names[p]; ok {
		return s
	}
	return "invalid"
}

// Set is the powerset of IRProperty: the set of properties currently known
// to hold of a program.
type Set map[IRProperty]struct{}

// NewSet returns a Set containing exactly the given properties.
func NewSet(props ...IRProperty) Set {
	s := make(Set, len(props))
	for _, p := range props {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is a member of s.
func (s Set) Has(p IRProperty) bool {
	_, ok := s[p]
	return ok
}

// With returns a new Set equal to s with remove subtracted out and then add
// unioned in, applied in that order (matches Pipeline.Run's
// `state := (state \ invalidated) ∪ produced`, spec.md §4.8 step 2c — note
// invalidation is applied before production so a pass that both invalidates
// and produces the same property ends with it present).
func (s Set) With(remove, add Set) Set {
	out := make(Set, len(s)+len(add))
	for p := range s {
		if !remove.Has(p) {
			out[p] = struct{}{}
		}
	}
	for p := range add {
		out[p] = struct{}{}
	}
	return out
}

// Contract is the set of properties a pass requires as input, produces as
// output, and invalidates by running (spec.md §4.4).
type Contract struct {
	Required    Set
	Produced    Set
	Invalidated Set
}
