// Package convregistry is the process-wide mapping from a tensor-op name to
// the function that lowers a Call to it into block ops (spec.md §4.2). It
// backs ConvertTensorToBlockOps.
package convregistry

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/pypto-lang/pypto/base/sync"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
)

// ConversionResult is the expansion of one tensor-op Call into block-op
// terms: zero or more prologue statements plus the expression that stands in
// for the original call's value.
type ConversionResult struct {
	Prologue []ir.Stmt
	Result   ir.Expr
}

// ConversionFunc lowers one Call's args/kwargs/span into a ConversionResult.
type ConversionFunc func(args []ir.Expr, kwargs ir.KwArgs, span ir.Span) (ConversionResult, error)

// Registry is a process-wide tensor-op-name -> ConversionFunc table.
// Re-registering a name replaces the previous rule (spec.md §4.2): unlike
// opregistry.Registry, this table is override-friendly since tests
// frequently need to substitute a custom lowering for one op.
type Registry struct {
	funcs sync.Map[string, ConversionFunc]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// RegisterSimple registers a lowering that calls toOp on the same args and
// kwargs, with no prologue (spec.md §4.2).
func (r *Registry) RegisterSimple(fromOp, toOp string, ops *opregistry.Registry) {
	r.RegisterCustom(fromOp, func(args []ir.Expr, kwargs ir.KwArgs, span ir.Span) (ConversionResult, error) {
		call, err := ops.Create(toOp, args, kwargs, span)
		if err != nil {
			return ConversionResult{}, err
		}
		return ConversionResult{Result: call}, nil
	})
}

// RegisterCustom registers an arbitrary lowering for fromOp.
func (r *Registry) RegisterCustom(fromOp string, fn ConversionFunc) {
	r.funcs.Store(fromOp, fn)
}

// Lookup returns the ConversionFunc registered for name, if any.
func (r *Registry) Lookup(name string) (ConversionFunc, bool) {
	fn := r.funcs.Load(name)
	return fn, fn != nil
}

// HasConversion reports whether name has a registered lowering.
func (r *Registry) HasConversion(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every tensor-op name with a registered lowering, sorted for
// deterministic output (mirrors opregistry.Registry.Names).
func (r *Registry) Names() []string {
	snapshot := make(map[string]ConversionFunc)
	for name, fn := range r.funcs.Iter() {
		snapshot[name] = fn
	}
	names := maps.Keys(snapshot)
	sort.Strings(names)
	return names
}

// RegisterBaseline installs the standard tensor.* -> block.* mappings
// (spec.md §4.2).
func RegisterBaseline(r *Registry, ops *opregistry.Registry) {
	simple := map[string]string{
		"tensor.add": "block.add", "tensor.sub": "block.sub",
		"tensor.mul": "block.mul", "tensor.div": "block.div",
		"tensor.maximum": "block.maximum", "tensor.exp": "block.exp",
		"tensor.cast": "block.cast", "tensor.reshape": "block.reshape",
		"tensor.transpose": "block.transpose",
		"tensor.add_scalar": "block.adds", "tensor.sub_scalar": "block.subs",
		"tensor.mul_scalar": "block.muls", "tensor.div_scalar": "block.divs",
	}
	for from, to := range simple {
		r.RegisterSimple(from, to, ops)
	}
}
