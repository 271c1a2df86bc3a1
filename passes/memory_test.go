package passes

import (
	"testing"

	"github.com/pypto-lang/pypto/base/ordered"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
)

func tileType(space ir.MemorySpace) *ir.TileType {
	shape := []ir.Expr{&ir.ConstInt{Value: 4, TypeV: scalarI64()}}
	return &ir.TileType{Shape: shape, DType: ir.FP32, Space: space}
}

func newTestOps(t *testing.T) *opregistry.Registry {
	ops := opregistry.New()
	if err := opregistry.RegisterBuiltins(ops); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return ops
}

func TestOutlineIncoreScopesOnlyTouchesIncoreFunctions(t *testing.T) {
	ret := &ir.ReturnStmt{}
	inner := &ir.SeqStmts{Stmts: []ir.Stmt{ret}}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{inner}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}

	opaqueFn := ir.NewFunction(self, nil, nil, body, ir.Opaque, ir.Span{})
	out, err := OutlineIncoreScopes().Run(wrapProgram(opaqueFn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	if outFn.Body != body {
		t.Error("an Opaque function should be left untouched")
	}

	incoreFn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})
	out, err = OutlineIncoreScopes().Run(wrapProgram(incoreFn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ = out.Function(self)
	seq := outFn.Body.(*ir.SeqStmts)
	if len(seq.Stmts) != 1 {
		t.Fatalf("InCore function's nested SeqStmts should have been flattened, got %d stmts", len(seq.Stmts))
	}
}

func TestInitMemRefTagsTileVarsWithDefaultUB(t *testing.T) {
	tile := &ir.Var{NameV: "t", TypeV: tileType(ir.InvalidMemorySpace)}
	val := &ir.Call{Target: &ir.Op{NameV: "block.exp"}, ResultType: tile.TypeV}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: tile, Value: val},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})

	out, err := InitMemRef().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	ref, ok := outFn.MemRefs.Load(tile)
	if !ok {
		t.Fatal("expected tile to be tagged with a MemRef")
	}
	if ref.Space != ir.UB {
		t.Errorf("got space %v, want UB as the default", ref.Space)
	}
}

func TestInitMemRefRespectsDeclaredSpace(t *testing.T) {
	tile := &ir.Var{NameV: "t", TypeV: tileType(ir.DDR)}
	val := &ir.Call{Target: &ir.Op{NameV: "block.load"}, ResultType: tile.TypeV}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: tile, Value: val},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})

	out, err := InitMemRef().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	ref, _ := outFn.MemRefs.Load(tile)
	if ref.Space != ir.DDR {
		t.Errorf("got space %v, want the tile's own declared DDR space", ref.Space)
	}
}

func TestBasicMemoryReuseSharesSlotsForNonOverlappingLifetimes(t *testing.T) {
	a := &ir.Var{NameV: "a", TypeV: tileType(ir.UB)}
	b := &ir.Var{NameV: "b", TypeV: tileType(ir.UB)}
	val := &ir.Call{Target: &ir.Op{NameV: "block.exp"}, ResultType: a.TypeV}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: a, Value: val},
		&ir.EvalStmt{Value: a}, // last use of a
		&ir.AssignStmt{VarV: b, Value: val},
		&ir.EvalStmt{Value: b},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})
	fn.MemRefs = ordered.NewMap[*ir.Var, *ir.MemRef]()
	fn.MemRefs.Store(a, &ir.MemRef{SlotID: 0, Space: ir.UB, TypeV: a.TypeV})
	fn.MemRefs.Store(b, &ir.MemRef{SlotID: 1, Space: ir.UB, TypeV: b.TypeV})

	out, err := BasicMemoryReuse().Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	refA, _ := outFn.MemRefs.Load(a)
	refB, _ := outFn.MemRefs.Load(b)
	if refA.SlotID != refB.SlotID {
		t.Errorf("a (freed before b's def) and b should share a slot, got %d and %d", refA.SlotID, refB.SlotID)
	}
}

func TestInsertSyncAddsBarrierOnSpaceCrossing(t *testing.T) {
	ops := newTestOps(t)
	ddrTile := &ir.Var{NameV: "d", TypeV: tileType(ir.DDR)}
	ubTile := &ir.Var{NameV: "u", TypeV: tileType(ir.UB)}
	val := &ir.Call{Target: &ir.Op{NameV: "block.load"}, ResultType: ddrTile.TypeV}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: ddrTile, Value: val},
		&ir.AssignStmt{VarV: ubTile, Value: val},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})
	fn.MemRefs = ordered.NewMap[*ir.Var, *ir.MemRef]()
	fn.MemRefs.Store(ddrTile, &ir.MemRef{SlotID: 0, Space: ir.DDR, TypeV: ddrTile.TypeV})
	fn.MemRefs.Store(ubTile, &ir.MemRef{SlotID: 1, Space: ir.UB, TypeV: ubTile.TypeV})

	out, err := InsertSync(ops).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	seq := outFn.Body.(*ir.SeqStmts)
	if len(seq.Stmts) != 4 {
		t.Fatalf("got %d statements, want 4 (assign, barrier, assign, return)", len(seq.Stmts))
	}
	barrier, ok := seq.Stmts[1].(*ir.EvalStmt)
	if !ok {
		t.Fatalf("statement 1 is %T, want *ir.EvalStmt", seq.Stmts[1])
	}
	call := barrier.Value.(*ir.Call)
	if call.Target.OpName() != "sync.bar_v" {
		t.Errorf("got op %q, want sync.bar_v", call.Target.OpName())
	}
}

func TestInsertSyncSkipsWhenNoMemRefs(t *testing.T) {
	ops := newTestOps(t)
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, &ir.ReturnStmt{}, ir.InCore, ir.Span{})

	out, err := InsertSync(ops).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	if outFn.Body != fn.Body {
		t.Error("with no MemRefs, InsertSync should leave the function untouched")
	}
}

func TestAddAllocPrependsOnePerUniqueSlot(t *testing.T) {
	ops := newTestOps(t)
	a := &ir.Var{NameV: "a", TypeV: tileType(ir.UB)}
	b := &ir.Var{NameV: "b", TypeV: tileType(ir.UB)}
	val := &ir.Call{Target: &ir.Op{NameV: "block.exp"}, ResultType: a.TypeV}
	body := &ir.SeqStmts{Stmts: []ir.Stmt{
		&ir.AssignStmt{VarV: a, Value: val},
		&ir.AssignStmt{VarV: b, Value: val},
		&ir.ReturnStmt{},
	}}
	self := &ir.GlobalVar{NameV: "f", TypeV: &ir.FunctionType{}}
	fn := ir.NewFunction(self, nil, nil, body, ir.InCore, ir.Span{})
	fn.MemRefs = ordered.NewMap[*ir.Var, *ir.MemRef]()
	fn.MemRefs.Store(a, &ir.MemRef{SlotID: 0, Space: ir.UB, TypeV: a.TypeV})
	fn.MemRefs.Store(b, &ir.MemRef{SlotID: 0, Space: ir.UB, TypeV: b.TypeV}) // shares a's slot

	out, err := AddAlloc(ops).Run(wrapProgram(fn))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	outFn, _ := out.Function(self)
	seq := outFn.Body.(*ir.SeqStmts)
	allocCount := 0
	for _, stmt := range seq.Stmts {
		eval, ok := stmt.(*ir.EvalStmt)
		if !ok {
			continue
		}
		if call, ok := eval.Value.(*ir.Call); ok && call.Target.OpName() == "mem.alloc" {
			allocCount++
		}
	}
	if allocCount != 1 {
		t.Errorf("got %d mem.alloc statements, want 1 (a and b share a slot)", allocCount)
	}
}
