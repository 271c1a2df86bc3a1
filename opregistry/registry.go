// Package opregistry is the process-wide mapping from primitive op name to
// its metadata: category, default kwargs, and result-type inference rule
// (spec.md §4.1). It is populated once during startup and read concurrently
// by every pipeline thereafter, following the same freeze-after-registration
// threading model as the teacher's base/sync.Map.
package opregistry

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/pypto-lang/pypto/base/sync"
	"github.com/pypto-lang/pypto/ir"
)

// Category classifies an op's place in the lowering pipeline.
type Category string

// Op categories.
const (
	TensorOp Category = "TensorOp"
	BlockOp  Category = "BlockOp"
	ScalarOp Category = "ScalarOp"
)

// InferFunc computes a Call's result type from its arguments and kwargs. It
// must be pure: no side effects, no dependence on anything but its inputs.
type InferFunc func(args []ir.Expr, kwargs ir.KwArgs) (ir.Type, error)

// Entry is the metadata registered for one op name.
type Entry struct {
	Name          string
	Category      Category
	DefaultKwargs ir.KwArgs
	InferResult   InferFunc
}

// UnknownOpError is returned by Create and GetEntry when name has never been
// registered (spec.md §7). Known lists every op name actually registered at
// the time of the failed lookup, to steer the caller toward a typo fix.
type UnknownOpError struct {
	Name  string
	Known []string
}

func (e *UnknownOpError) Error() string {
	if len(e.Known) == 0 {
		return errors.Errorf("unknown op %q", e.Name).Error()
	}
	return errors.Errorf("unknown op %q (known ops: %s)", e.Name, strings.Join(e.Known, ", ")).Error()
}

// DuplicateOpError is returned by Register when name is already present
// (spec.md §4.1).
type DuplicateOpError struct{ Name string }

func (e *DuplicateOpError) Error() string {
	return errors.Errorf("op %q already registered", e.Name).Error()
}

// Registry is a process-wide op table. New returns an empty one; the zero
// value is an equally usable empty table.
type Registry struct {
	entries sync.Map[string, *Entry]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register adds entry under its own name. It fails with DuplicateOpError if
// name is already registered: registration is meant to happen once, at
// startup, and re-registration is very likely a bug rather than an override
// (contrast convregistry.Registry, whose RegisterCustom is explicitly override
// semantics).
func (r *Registry) Register(entry *Entry) error {
	if existing := r.entries.Load(entry.Name); existing != nil {
		return &DuplicateOpError{Name: entry.Name}
	}
	r.entries.Store(entry.Name, entry)
	return nil
}

// IsRegistered reports whether name has a registered Entry.
func (r *Registry) IsRegistered(name string) bool {
	return r.entries.Load(name) != nil
}

// GetEntry returns the Entry registered under name, if any.
func (r *Registry) GetEntry(name string) (*Entry, error) {
	e := r.entries.Load(name)
	if e == nil {
		return nil, &UnknownOpError{Name: name, Known: r.Names()}
	}
	return e, nil
}

// Names returns every registered op name, sorted for deterministic output
// (spec.md §4.1, "used by debug CLIs" enumeration, mirroring
// pipeline.GetPassNames).
func (r *Registry) Names() []string {
	snapshot := make(map[string]*Entry)
	for name, entry := range r.entries.Iter() {
		snapshot[name] = entry
	}
	names := maps.Keys(snapshot)
	sort.Strings(names)
	return names
}

// Create builds a new immutable Call to name: it merges userKwargs over the
// op's default kwargs (user wins, spec.md §4.1), infers the result type, and
// fails with UnknownOpError, or with InferResult's error (for example a
// *ir.TypeMismatchError) wrapped with the op name.
func (r *Registry) Create(name string, args []ir.Expr, userKwargs ir.KwArgs, span ir.Span) (*ir.Call, error) {
	entry, err := r.GetEntry(name)
	if err != nil {
		return nil, err
	}
	kwargs := ir.Merge(entry.DefaultKwargs, userKwargs)
	resultType, err := entry.InferResult(args, kwargs)
	if err != nil {
		return nil, errors.Wrapf(err, "op %q", name)
	}
	return &ir.Call{
		Target:     &ir.Op{NameV: name},
		Args:       args,
		Kwargs:     kwargs,
		ResultType: resultType,
		SpanV:      span,
	}, nil
}
