package passes

import (
	"github.com/pypto-lang/pypto/base/ordered"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

// OutlineIncoreScopes confirms (and, where necessary, produces) the flat,
// single-SeqStmts body shape ConvertTensorToBlockOps requires of every
// InCore function. The frontend already tags InCore regions with FuncKind
// InCore directly, rather than the textual `with incore():` scoping
// original_source outlines from a larger orchestration body, so this pass's
// job reduces to normalizing statement structure within functions already
// so tagged.
func OutlineIncoreScopes() pass.Pass {
	contract := property.Contract{
		Required: property.NewSet(property.SSAForm),
		Produced: property.NewSet(property.SplitIncoreOrch),
	}
	return pass.CreateFunctionPass("OutlineIncoreScopes", contract, func(fn *ir.Function) (*ir.Function, error) {
		if fn.Kind != ir.InCore {
			return fn, nil
		}
		flat := flattenSeq(fn.Body)
		newBody := &ir.SeqStmts{Stmts: flat, SpanV: fn.SpanV}
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

// InitMemRef attaches a fresh MemRef to every TileType-typed Var defined by
// a top-level AssignStmt of the function body (statements nested in
// IfStmt/ForStmt are not visited): UB by default, or the tile's own
// declared space when it is something else (block.load/block.store already
// pin their result to a specific space).
func InitMemRef() pass.Pass {
	contract := property.Contract{
		Required: property.NewSet(property.SSAForm),
		Produced: property.NewSet(property.HasMemRefs),
	}
	return pass.CreateFunctionPass("InitMemRef", contract, func(fn *ir.Function) (*ir.Function, error) {
		memRefs := ordered.NewMap[*ir.Var, *ir.MemRef]()
		slot := 0
		for _, stmt := range flattenBody(fn.Body) {
			assign, ok := stmt.(*ir.AssignStmt)
			if !ok {
				continue
			}
			tt, ok := assign.VarV.TypeV.(*ir.TileType)
			if !ok {
				continue
			}
			space := tt.Space
			if space == ir.InvalidMemorySpace {
				space = ir.UB
			}
			memRefs.Store(assign.VarV, &ir.MemRef{SlotID: slot, Space: space, TypeV: tt, SpanV: assign.SpanV})
			slot++
		}
		newFn := ir.NewFunction(fn.Self, fn.Params, fn.Returns, fn.Body, fn.Kind, fn.SpanV)
		newFn.MemRefs = memRefs
		return newFn, nil
	})
}

// BasicMemoryReuse renumbers MemRef slot IDs so that two Vars whose
// lifetimes (first def to last use, over the function's top-level
// statements) do not overlap and which share a memory space are assigned
// the same slot, following the same dependency-analysis intent as
// original_source's BasicMemoryReuse.
func BasicMemoryReuse() pass.Pass {
	contract := property.Contract{Required: property.NewSet(property.HasMemRefs)}
	return pass.CreateFunctionPass("BasicMemoryReuse", contract, func(fn *ir.Function) (*ir.Function, error) {
		if fn.MemRefs == nil || fn.MemRefs.Size() == 0 {
			return fn, nil
		}

		stmts := flattenBody(fn.Body)
		lastUse := make(map[*ir.Var]int)
		defIndex := make(map[*ir.Var]int)
		for i, stmt := range stmts {
			if assign, ok := stmt.(*ir.AssignStmt); ok {
				if _, tracked := fn.MemRefs.Load(assign.VarV); tracked {
					if _, seen := defIndex[assign.VarV]; !seen {
						defIndex[assign.VarV] = i
					}
				}
			}
			ir.WalkStmt(stmt, func(ir.Stmt) {}, func(e ir.Expr) {
				v, ok := e.(*ir.Var)
				if !ok {
					return
				}
				if _, tracked := fn.MemRefs.Load(v); tracked {
					lastUse[v] = i
				}
			})
		}

		type freeSlot struct {
			releaseAt int
			slotID    int
			space     ir.MemorySpace
		}
		var freed []freeSlot
		nextSlot := 0
		newMemRefs := ordered.NewMap[*ir.Var, *ir.MemRef]()

		for v, ref := range fn.MemRefs.Iter() {
			di := defIndex[v]
			assigned := -1
			remaining := freed[:0]
			for _, f := range freed {
				if assigned == -1 && f.releaseAt < di && f.space == ref.Space {
					assigned = f.slotID
					continue
				}
				remaining = append(remaining, f)
			}
			freed = remaining
			if assigned == -1 {
				assigned = nextSlot
				nextSlot++
			}
			newMemRefs.Store(v, &ir.MemRef{SlotID: assigned, Space: ref.Space, TypeV: ref.TypeV, SpanV: ref.SpanV})
			if lu, ok := lastUse[v]; ok {
				freed = append(freed, freeSlot{releaseAt: lu, slotID: assigned, space: ref.Space})
			}
		}

		newFn := ir.NewFunction(fn.Self, fn.Params, fn.Returns, fn.Body, fn.Kind, fn.SpanV)
		newFn.MemRefs = newMemRefs
		return newFn, nil
	})
}

// InsertSync inserts a sync.bar_v barrier statement between two adjacent
// top-level statements whenever the MemRef-tracked tile they touch crosses
// a memory space boundary, standing in for original_source's full
// pipe-dependency analysis (spec.md §4.11 leaves this pass's behavior
// unspecified beyond its property contract).
func InsertSync(ops *opregistry.Registry) pass.Pass {
	contract := property.Contract{Required: property.NewSet(property.HasMemRefs)}
	return pass.CreateFunctionPass("InsertSync", contract, func(fn *ir.Function) (*ir.Function, error) {
		if fn.MemRefs == nil || fn.MemRefs.Size() == 0 {
			return fn, nil
		}
		stmts := flattenBody(fn.Body)
		var out []ir.Stmt
		var prevSpace ir.MemorySpace
		havePrev := false
		for _, stmt := range stmts {
			space, ok := stmtMemRefSpace(stmt, fn.MemRefs)
			if ok && havePrev && space != prevSpace {
				barrier, err := ops.Create("sync.bar_v", nil, nil, stmt.Span())
				if err != nil {
					return nil, err
				}
				out = append(out, &ir.EvalStmt{Value: barrier, SpanV: stmt.Span()})
			}
			out = append(out, stmt)
			if ok {
				prevSpace = space
				havePrev = true
			}
		}
		newBody := &ir.SeqStmts{Stmts: out, SpanV: fn.SpanV}
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}

func stmtMemRefSpace(stmt ir.Stmt, memRefs *ordered.Map[*ir.Var, *ir.MemRef]) (ir.MemorySpace, bool) {
	assign, ok := stmt.(*ir.AssignStmt)
	if !ok {
		return 0, false
	}
	ref, ok := memRefs.Load(assign.VarV)
	if !ok {
		return 0, false
	}
	return ref.Space, true
}

// AddAlloc prepends one mem.alloc statement per unique MemRef slot to the
// function body (spec.md §4.11: "traverses all TileType variables and
// creates alloc operations for each unique MemRef").
func AddAlloc(ops *opregistry.Registry) pass.Pass {
	contract := property.Contract{Required: property.NewSet(property.HasMemRefs)}
	return pass.CreateFunctionPass("AddAlloc", contract, func(fn *ir.Function) (*ir.Function, error) {
		if fn.MemRefs == nil || fn.MemRefs.Size() == 0 {
			return fn, nil
		}
		seen := make(map[int]bool)
		var allocs []ir.Stmt
		for ref := range fn.MemRefs.Values() {
			if seen[ref.SlotID] {
				continue
			}
			seen[ref.SlotID] = true
			allocCall, err := ops.Create("mem.alloc", nil, ir.KwArgs{
				{Name: "slot", Value: ir.IntKw(int64(ref.SlotID))},
				{Name: "space", Value: ir.MemSpaceKw(ref.Space)},
			}, fn.SpanV)
			if err != nil {
				return nil, err
			}
			allocs = append(allocs, &ir.EvalStmt{Value: allocCall, SpanV: fn.SpanV})
		}
		newBody := &ir.SeqStmts{Stmts: append(allocs, flattenBody(fn.Body)...), SpanV: fn.SpanV}
		return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, fn.SpanV), nil
	})
}
