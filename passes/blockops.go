package passes

import (
	"fmt"

	"github.com/pypto-lang/pypto/convregistry"
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/opregistry"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

// ConvertTensorToBlockOps lowers every InCore function's TensorType
// parameters and TensorOp calls into tile-resident BlockOp terms, then
// rewrites call sites in orchestration/opaque functions to supply the
// output tensor buffers the lowering added (spec.md §4.9). ops and convs are
// the process-wide registries the lowering consults.
func ConvertTensorToBlockOps(ops *opregistry.Registry, convs *convregistry.Registry) pass.Pass {
	contract := property.Contract{
		Required: property.NewSet(property.SplitIncoreOrch),
		Produced: property.NewSet(property.IncoreBlockOps),
	}
	return pass.CreateProgramPass("ConvertTensorToBlockOps", contract, func(p *ir.Program) (*ir.Program, error) {
		addedOutputs := make(map[string]int)
		transformed := make(map[string]*ir.Function)
		phase1 := ir.NewProgram()

		for _, fn := range p.Functions() {
			if fn.Kind != ir.InCore {
				phase1.AddFunction(fn)
				continue
			}
			result, err := transformIncoreFunction(fn, ops, convs)
			if err != nil {
				return nil, err
			}
			addedOutputs[fn.Name()] = result.numAddedOutputs
			transformed[fn.Name()] = result.fn
			phase1.AddFunction(result.fn)
		}

		out := ir.NewProgram()
		for _, fn := range phase1.Functions() {
			if fn.Kind == ir.InCore {
				out.AddFunction(fn)
				continue
			}
			newFn, err := updateCallSites(fn, ops, addedOutputs, transformed)
			if err != nil {
				return nil, err
			}
			out.AddFunction(newFn)
		}
		return out, nil
	})
}

type incoreTransformResult struct {
	fn              *ir.Function
	numAddedOutputs int
}

// transformIncoreFunction implements spec.md §4.9 Phase 1 for a single
// InCore function: load prologue, body rewrite via the conversion registry,
// store epilogue with appended output parameters.
func transformIncoreFunction(fn *ir.Function, ops *opregistry.Registry, convs *convregistry.Registry) (incoreTransformResult, error) {
	span := fn.SpanV
	varMap := make(map[string]*ir.Var)
	var newStmts []ir.Stmt

	for _, param := range fn.Params {
		tt, ok := param.TypeV.(*ir.TensorType)
		if !ok {
			continue
		}
		offsets := zeroOffsetsTuple(len(tt.Shape), span)
		shapes := shapeTuple(tt.Shape, span)
		loadCall, err := ops.Create("block.load", []ir.Expr{param, offsets, shapes},
			ir.KwArgs{{Name: "target_memory", Value: ir.MemSpaceKw(ir.UB)}}, span)
		if err != nil {
			return incoreTransformResult{}, err
		}
		tileVar := &ir.Var{NameV: param.NameV + "_tile", TypeV: loadCall.Type(), SpanV: span}
		newStmts = append(newStmts, &ir.AssignStmt{VarV: tileVar, Value: loadCall, SpanV: span})
		varMap[param.NameV] = tileVar
	}

	var returnStmt *ir.ReturnStmt
	for _, stmt := range flattenBody(fn.Body) {
		if ret, ok := stmt.(*ir.ReturnStmt); ok {
			returnStmt = ret
			continue
		}

		assign, ok := stmt.(*ir.AssignStmt)
		if !ok {
			newStmts = append(newStmts, stmt)
			continue
		}

		call, isCall := assign.Value.(*ir.Call)
		var converter convregistry.ConversionFunc
		var hasConverter bool
		if isCall {
			if op, isOp := call.Target.(*ir.Op); isOp {
				converter, hasConverter = convs.Lookup(op.NameV)
			}
		}

		if !hasConverter {
			newValue, err := substituteTensorToTile(assign.Value, varMap)
			if err != nil {
				return incoreTransformResult{}, err
			}
			if newValue == assign.Value {
				newStmts = append(newStmts, stmt)
				continue
			}
			newVar := &ir.Var{NameV: assign.VarV.NameV, TypeV: newValue.Type(), SpanV: assign.VarV.SpanV}
			newStmts = append(newStmts, &ir.AssignStmt{VarV: newVar, Value: newValue, SpanV: assign.SpanV})
			varMap[assign.VarV.NameV] = newVar
			continue
		}

		substArgs, _, err := substituteExprList(call.Args, varMap)
		if err != nil {
			return incoreTransformResult{}, err
		}
		result, err := converter(substArgs, call.Kwargs, call.SpanV)
		if err != nil {
			return incoreTransformResult{}, err
		}
		newStmts = append(newStmts, result.Prologue...)
		tileVar := &ir.Var{NameV: assign.VarV.NameV + "_tile", TypeV: result.Result.Type(), SpanV: assign.VarV.SpanV}
		newStmts = append(newStmts, &ir.AssignStmt{VarV: tileVar, Value: result.Result, SpanV: assign.SpanV})
		varMap[assign.VarV.NameV] = tileVar
	}

	if returnStmt == nil {
		return incoreTransformResult{}, ir.NewInvariantViolation("incore-function-return",
			"InCore function "+fn.Name()+" has no return statement")
	}

	newParams := append([]*ir.Var{}, fn.Params...)
	newReturnTypes := make([]ir.Type, 0, len(returnStmt.Values))
	newReturnExprs := make([]ir.Expr, 0, len(returnStmt.Values))
	numAdded := 0

	for i, retExpr := range returnStmt.Values {
		substituted, err := substituteTensorToTile(retExpr, varMap)
		if err != nil {
			return incoreTransformResult{}, err
		}

		tileType, isTile := substituted.Type().(*ir.TileType)
		if !isTile {
			newReturnTypes = append(newReturnTypes, substituted.Type())
			newReturnExprs = append(newReturnExprs, substituted)
			continue
		}

		origTensorType, ok := fn.Returns[i].(*ir.TensorType)
		if !ok {
			return incoreTransformResult{}, ir.NewInvariantViolation("incore-function-return",
				fmt.Sprintf("return %d of %s should be TensorType but declared return is %s", i, fn.Name(), fn.Returns[i]))
		}

		outName := fmt.Sprintf("out_%d", numAdded)
		outParam := &ir.Var{NameV: outName, TypeV: origTensorType, SpanV: span}
		newParams = append(newParams, outParam)

		offsets := zeroOffsetsTuple(len(tileType.Shape), span)
		shapes := shapeTuple(tileType.Shape, span)
		storeCall, err := ops.Create("block.store", []ir.Expr{substituted, offsets, shapes, outParam}, nil, span)
		if err != nil {
			return incoreTransformResult{}, err
		}

		storeVar := &ir.Var{NameV: outName, TypeV: storeCall.Type(), SpanV: span}
		newStmts = append(newStmts, &ir.AssignStmt{VarV: storeVar, Value: storeCall, SpanV: span})

		newReturnTypes = append(newReturnTypes, storeCall.Type())
		newReturnExprs = append(newReturnExprs, storeVar)
		numAdded++
	}

	newRet, err := ir.NewReturnStmt(newReturnExprs, newReturnTypes, span)
	if err != nil {
		return incoreTransformResult{}, err
	}
	newStmts = append(newStmts, newRet)

	newBody := &ir.SeqStmts{Stmts: newStmts, SpanV: span}
	newFn := ir.NewFunction(fn.Self, newParams, newReturnTypes, newBody, ir.InCore, span)
	return incoreTransformResult{fn: newFn, numAddedOutputs: numAdded}, nil
}

// updateCallSites implements spec.md §4.9 Phase 2: for a non-InCore
// function, rewrite every top-level call to a transformed InCore function
// to supply fresh output tensor buffers as extra arguments. Calls inside
// IfStmt/ForStmt are never rewritten — SplitIncoreOrch guarantees flat
// bodies reach this pass, so a transformed call nested in control flow
// means SplitIncoreOrch's precondition was violated, an internal-check
// failure rather than something to silently skip (spec.md §9).
func updateCallSites(fn *ir.Function, ops *opregistry.Registry, addedOutputs map[string]int, transformed map[string]*ir.Function) (*ir.Function, error) {
	span := fn.SpanV
	var newStmts []ir.Stmt
	changed := false
	varMap := make(map[string]*ir.Var)

	for _, stmt := range flattenBody(fn.Body) {
		if ret, ok := stmt.(*ir.ReturnStmt); ok {
			if len(varMap) == 0 {
				newStmts = append(newStmts, stmt)
				continue
			}
			newVals, _, err := substituteExprList(ret.Values, varMap)
			if err != nil {
				return nil, err
			}
			newStmts = append(newStmts, &ir.ReturnStmt{Values: newVals, SpanV: ret.SpanV})
			continue
		}

		assign, ok := stmt.(*ir.AssignStmt)
		if !ok {
			if err := assertNoCallToTransformed(stmt, addedOutputs); err != nil {
				return nil, err
			}
			newStmts = append(newStmts, stmt)
			continue
		}

		value := assign.Value
		if len(varMap) > 0 {
			nv, err := substituteTensorToTile(assign.Value, varMap)
			if err != nil {
				return nil, err
			}
			value = nv
		}

		call, isCall := value.(*ir.Call)
		var gv *ir.GlobalVar
		if isCall {
			gv, _ = call.Target.(*ir.GlobalVar)
		}

		if !isCall || gv == nil || addedOutputs[gv.NameV] == 0 {
			if value != assign.Value {
				newVar := &ir.Var{NameV: assign.VarV.NameV, TypeV: value.Type(), SpanV: assign.VarV.SpanV}
				newStmts = append(newStmts, &ir.AssignStmt{VarV: newVar, Value: value, SpanV: assign.SpanV})
				varMap[assign.VarV.NameV] = newVar
				changed = true
			} else {
				newStmts = append(newStmts, stmt)
			}
			continue
		}

		numOutputs := addedOutputs[gv.NameV]
		incoreFn, ok := transformed[gv.NameV]
		if !ok {
			return nil, ir.NewInvariantViolation("call-site-rewrite", "transformed InCore function not found: "+gv.NameV)
		}

		origParamCount := len(incoreFn.Params) - numOutputs
		extraArgs := make([]ir.Expr, 0, numOutputs)
		for i := 0; i < numOutputs; i++ {
			outParam := incoreFn.Params[origParamCount+i]
			outTensorType, ok := outParam.TypeV.(*ir.TensorType)
			if !ok {
				return nil, ir.NewInvariantViolation("call-site-rewrite", "output param is not TensorType")
			}
			createCall, err := ops.Create("tensor.create", []ir.Expr{shapeTuple(outTensorType.Shape, span)},
				ir.KwArgs{{Name: "dtype", Value: ir.DTypeKw(outTensorType.DType)}}, span)
			if err != nil {
				return nil, err
			}
			outVar := &ir.Var{NameV: fmt.Sprintf("out_%d", i), TypeV: createCall.Type(), SpanV: span}
			newStmts = append(newStmts, &ir.AssignStmt{VarV: outVar, Value: createCall, SpanV: span})
			extraArgs = append(extraArgs, outVar)
		}

		newArgs := append(append([]ir.Expr{}, call.Args...), extraArgs...)

		var newReturnType ir.Type = ir.VoidType{}
		switch len(incoreFn.Returns) {
		case 0:
		case 1:
			newReturnType = incoreFn.Returns[0]
		default:
			newReturnType = &ir.TupleType{Elements: incoreFn.Returns}
		}

		newCall := &ir.Call{Target: call.Target, Args: newArgs, Kwargs: call.Kwargs, ResultType: newReturnType, SpanV: call.SpanV}
		newVar := &ir.Var{NameV: assign.VarV.NameV, TypeV: newReturnType, SpanV: assign.VarV.SpanV}
		newStmts = append(newStmts, &ir.AssignStmt{VarV: newVar, Value: newCall, SpanV: assign.SpanV})
		varMap[assign.VarV.NameV] = newVar
		changed = true
	}

	if !changed {
		return fn, nil
	}
	newBody := &ir.SeqStmts{Stmts: newStmts, SpanV: span}
	return ir.NewFunction(fn.Self, fn.Params, fn.Returns, newBody, fn.Kind, span), nil
}

// assertNoCallToTransformed fails if stmt (an IfStmt/ForStmt passed through
// unrewritten) contains a call to a function ConvertTensorToBlockOps added
// output parameters to: rewriting inside nested control flow is out of
// scope, so such a call reaching here means a precondition was violated.
func assertNoCallToTransformed(stmt ir.Stmt, addedOutputs map[string]int) error {
	switch stmt.(type) {
	case *ir.IfStmt, *ir.ForStmt:
	default:
		return nil
	}
	var found error
	ir.WalkStmt(stmt, func(ir.Stmt) {}, func(e ir.Expr) {
		call, ok := e.(*ir.Call)
		if !ok {
			return
		}
		gv, ok := call.Target.(*ir.GlobalVar)
		if !ok {
			return
		}
		if addedOutputs[gv.NameV] > 0 {
			found = ir.NewInvariantViolation("call-site-rewrite",
				"call to transformed InCore function "+gv.NameV+" found inside nested control flow")
		}
	})
	return found
}
