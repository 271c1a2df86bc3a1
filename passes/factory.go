package passes

import (
	"github.com/pkg/errors"

	"github.com/pypto-lang/pypto/convregistry"
	"github.com/pypto-lang/pypto/opregistry"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
	"github.com/pypto-lang/pypto/verify"
)

// UnknownPassError is returned by Factory.Create when name has never been
// registered.
type UnknownPassError struct{ Name string }

func (e *UnknownPassError) Error() string { return errors.Errorf("unknown pass %q", e.Name).Error() }

// Factory builds passes by their stable, spec-facing name (spec.md §6): a
// pipeline description that is just a list of these names, rather than Go
// closures, is what a config file or CLI flag can name.
type Factory struct {
	ops   *opregistry.Registry
	convs *convregistry.Registry
	v     *verify.IRVerifier
}

// NewFactory builds a Factory around the process-wide registries and
// verifier every named pass needs.
func NewFactory(ops *opregistry.Registry, convs *convregistry.Registry, v *verify.IRVerifier) *Factory {
	return &Factory{ops: ops, convs: convs, v: v}
}

// Create builds the pass registered under name. run_verifier forwards
// disabledRules to RunVerifier; every other name ignores them.
func (f *Factory) Create(name string, disabledRules ...property.IRProperty) (pass.Pass, error) {
	switch name {
	case "identity":
		return Identity(), nil
	case "convert_to_ssa":
		return ConvertToSSA(), nil
	case "flatten_call_expr":
		return FlattenCallExpr(), nil
	case "normalize_stmt_structure":
		return NormalizeStmtStructure(), nil
	case "flatten_single_stmt":
		return FlattenSingleStmt(), nil
	case "outline_incore_scopes":
		return OutlineIncoreScopes(), nil
	case "convert_tensor_to_block_ops":
		return ConvertTensorToBlockOps(f.ops, f.convs), nil
	case "init_mem_ref":
		return InitMemRef(), nil
	case "basic_memory_reuse":
		return BasicMemoryReuse(), nil
	case "insert_sync":
		return InsertSync(f.ops), nil
	case "add_alloc":
		return AddAlloc(f.ops), nil
	case "run_verifier":
		return RunVerifier(f.v, disabledRules...), nil
	default:
		return pass.Pass{}, &UnknownPassError{Name: name}
	}
}
