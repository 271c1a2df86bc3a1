// Package structeq implements structural equality and hashing of IR nodes
// with optional α-equivalence (spec.md §4.5). Type.Equal is deliberately
// not routed through this package (see ir/type.go's shapeEqual): types never
// contain names, so they have nothing to α-map and nothing to gain from the
// machinery here.
package structeq

import (
	"fmt"

	"github.com/pypto-lang/pypto/ir"
)

// binderType reports whether n is one of the small set of node kinds that
// introduce a name binding and therefore participate in the bijective Var<->Var map under α-equivalence
// (spec.md §4.5 step 2 names Var explicitly; IterArg is a ForStmt loop
// binder with the identical shape and gets the identical treatment).
func binderType(n ir.Node) (name string, typ ir.Type, ok bool) {
	switch v := n.(type) {
	case *ir.Var:
		return v.NameV, v.TypeV, true
	case *ir.IterArg:
		return v.NameV, v.TypeV, true
	}
	return "", nil, false
}

// bimap is the two-way Var<->Var (or IterArg<->IterArg) map the equality
// algorithm threads through a comparison (spec.md §4.5: "two maps L->R and
// R->L over Var").
type bimap struct {
	lr map[ir.Node]ir.Node
	rl map[ir.Node]ir.Node
}

func newBimap() *bimap {
	return &bimap{lr: make(map[ir.Node]ir.Node), rl: make(map[ir.Node]ir.Node)}
}

// bind attempts to associate a<->b, consulting and augmenting both
// directions; returns false if doing so would violate bijectivity.
func (m *bimap) bind(a, b ir.Node) bool {
	if existingR, ok := m.lr[a]; ok {
		return existingR == b
	}
	if existingL, ok := m.rl[b]; ok {
		return existingL == a
	}
	m.lr[a] = b
	m.rl[b] = a
	return true
}

// Equal reports whether a and b are structurally equal (spec.md §4.5). When
// autoMap is false, every Var/IterArg comparison requires pointer identity;
// when true, Var/IterArg pairs are consulted/bound bijectively instead.
func Equal(a, b ir.Node, autoMap bool) bool {
	return equalNode(a, b, autoMap, newBimap())
}

func equalNode(a, b ir.Node, autoMap bool, m *bimap) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.TypeName() != b.TypeName() {
		return false
	}

	if _, aType, ok := binderType(a); ok {
		_, bType, _ := binderType(b)
		if !autoMap {
			return false // a == b already failed above; not the same pointer
		}
		if !aType.Equal(bType) {
			return false
		}
		return m.bind(a, b)
	}

	if _, ok := a.(*ir.GlobalVar); ok {
		// GlobalVars reference a specific Function in a specific Program;
		// they are never α-renamed, so only pointer identity counts, and
		// that was already checked by the a == b test above.
		return false
	}

	af, bf := a.Fields(), b.Fields()
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		fa, fb := af[i], bf[i]
		if fa.Tag == ir.IgnoreField {
			continue
		}
		fieldAutoMap := autoMap
		if fa.Tag == ir.DefField {
			fieldAutoMap = true
		}
		if !equalField(fa, fb, fieldAutoMap, m) {
			return false
		}
	}
	return true
}

func equalField(fa, fb ir.FieldDescriptor, autoMap bool, m *bimap) bool {
	if na, ok := fa.IsNode(); ok {
		nb, ok := fb.IsNode()
		if !ok {
			return false
		}
		if na == nil || nb == nil {
			return na == nil && nb == nil
		}
		return equalNode(na, nb, autoMap, m)
	}
	if nsa, ok := fa.IsNodes(); ok {
		nsb, ok := fb.IsNodes()
		if !ok || len(nsa) != len(nsb) {
			return false
		}
		for i := range nsa {
			if !equalNode(nsa[i], nsb[i], autoMap, m) {
				return false
			}
		}
		return true
	}
	if kwa, ok := fa.IsKwArgs(); ok {
		kwb, ok := fb.IsKwArgs()
		if !ok || len(kwa) != len(kwb) {
			return false
		}
		for i := range kwa {
			if kwa[i].Name != kwb[i].Name || !kwa[i].Value.Equal(kwb[i].Value) {
				return false
			}
		}
		return true
	}
	if tsa, ok := fa.IsTypes(); ok {
		tsb, ok := fb.IsTypes()
		if !ok || len(tsa) != len(tsb) {
			return false
		}
		for i := range tsa {
			if !tsa[i].Equal(tsb[i]) {
				return false
			}
		}
		return true
	}
	if sa, ok := fa.IsScalar(); ok {
		sb, ok := fb.IsScalar()
		return ok && sa == sb
	}
	return true
}

// AssertEqual reports an error describing the first mismatch between a and
// b, or nil if they are structurally equal (spec.md §4.5:
// "assert_structural_equal ... raises with first-mismatch diagnostic").
func AssertEqual(a, b ir.Node, autoMap bool) error {
	if Equal(a, b, autoMap) {
		return nil
	}
	return fmt.Errorf("structural mismatch: %s vs %s (auto_map=%v)", describe(a), describe(b), autoMap)
}

func describe(n ir.Node) string {
	if n == nil {
		return "<nil>"
	}
	if s, ok := n.(fmt.Stringer); ok {
		return fmt.Sprintf("%s(%s)", n.TypeName(), s.String())
	}
	return n.TypeName()
}
