// Package subst is a flat name-keyed substitution map, the shape every pass
// in this core actually needs (tensor->tile renaming in
// ConvertTensorToBlockOps, SSA renaming, Phase-2 call-site rewriting). The
// teacher's internal/base/scope modeled nested lexical scoping, which none
// of these passes have: a substitution here is always function-local and
// flat, so a bare map replaces it rather than contorting that abstraction.
package subst

import "github.com/pypto-lang/pypto/ir"

// Map tracks the current replacement for each original Var name, by string
// name (spec.md §4.9 phase 1/2 describe the map as "p.name -> p_tile",
// keyed by name rather than by *Var, since the whole point is substituting
// across a renaming).
type Map struct {
	byName map[string]ir.Expr
}

// New returns an empty Map.
func New() *Map {
	return &Map{byName: make(map[string]ir.Expr)}
}

// Bind records that name should now resolve to value.
func (m *Map) Bind(name string, value ir.Expr) {
	m.byName[name] = value
}

// Lookup returns the current binding for name, if any.
func (m *Map) Lookup(name string) (ir.Expr, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// Apply rewrites e, replacing every Var whose name is bound in m with its
// bound value, post-order. Returns e unchanged (by identity) if nothing in
// its subtree was substituted, preserving structural sharing (spec.md I7).
func (m *Map) Apply(e ir.Expr) ir.Expr {
	return ir.MutateExpr(e, func(node ir.Expr) ir.Expr {
		v, ok := node.(*ir.Var)
		if !ok {
			return node
		}
		if repl, bound := m.Lookup(v.NameV); bound {
			return repl
		}
		return node
	})
}

// Changed reports whether applying m to e would produce a different tree.
func (m *Map) Changed(e ir.Expr) bool {
	return m.Apply(e) != e
}
