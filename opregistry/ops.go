package opregistry

import (
	"github.com/pkg/errors"

	"github.com/pypto-lang/pypto/ir"
)

// RegisterBuiltins populates r with the tensor.* and block.* primitives that
// ConvertTensorToBlockOps and the baseline op-conversion registry mappings
// operate on (original_source/python/pypto/ir/op/tensor_ops.py). It is meant
// to be called once, at process startup, before any pipeline runs.
func RegisterBuiltins(r *Registry) error {
	for _, entry := range []*Entry{
		elementwiseBinary("tensor.add"), elementwiseBinary("tensor.sub"),
		elementwiseBinary("tensor.mul"), elementwiseBinary("tensor.div"),
		elementwiseBinary("tensor.maximum"),
		elementwiseUnary("tensor.exp"),
		castOp("tensor.cast"),
		reshapeOp("tensor.reshape"),
		transposeOp("tensor.transpose"),
		scalarBinary("tensor.add_scalar"), scalarBinary("tensor.sub_scalar"),
		scalarBinary("tensor.mul_scalar"), scalarBinary("tensor.div_scalar"),

		elementwiseBinary("block.add"), elementwiseBinary("block.sub"),
		elementwiseBinary("block.mul"), elementwiseBinary("block.div"),
		elementwiseBinary("block.maximum"),
		elementwiseUnary("block.exp"),
		castOp("block.cast"),
		reshapeOp("block.reshape"),
		transposeOp("block.transpose"),
		scalarBinary("block.adds"), scalarBinary("block.subs"),
		scalarBinary("block.muls"), scalarBinary("block.divs"),

		tensorCreateOp(), blockLoadOp(), blockStoreOp(),

		voidOp("sync.src"), voidOp("sync.dst"), voidOp("sync.bar_v"), voidOp("sync.bar_m"),
		allocOp("mem.alloc"),
	} {
		if err := r.Register(entry); err != nil {
			return err
		}
	}
	return nil
}

func tensorLikeOf(arg ir.Expr) (shape []ir.Expr, dtype ir.DType, space ir.MemorySpace, ok bool) {
	switch t := arg.Type().(type) {
	case *ir.TensorType:
		return t.Shape, t.DType, t.Space, true
	case *ir.TileType:
		return t.Shape, t.DType, t.Space, true
	}
	return nil, 0, 0, false
}

func rebuildLike(arg ir.Expr, shape []ir.Expr, dtype ir.DType) ir.Type {
	switch t := arg.Type().(type) {
	case *ir.TensorType:
		return &ir.TensorType{Shape: shape, DType: dtype, Space: t.Space}
	case *ir.TileType:
		return &ir.TileType{Shape: shape, DType: dtype, Space: t.Space, View: t.View}
	}
	return nil
}

// elementwiseBinary returns an entry for an op taking two tensor/tile
// operands of identical shape and dtype, producing a result of that same
// shape and dtype.
func elementwiseBinary(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 2 {
				return nil, errors.Errorf("%s: wants 2 args, got %d", name, len(args))
			}
			shape, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			rshape, rdtype, _, ok := tensorLikeOf(args[1])
			if !ok || !(&ir.TensorType{Shape: shape, DType: dtype}).Equal(&ir.TensorType{Shape: rshape, DType: rdtype}) {
				return nil, ir.NewTypeMismatch(name, args[0].Type().String(), args[1].Type().String())
			}
			return rebuildLike(args[0], shape, dtype), nil
		},
	}
}

// elementwiseUnary returns an entry for a shape/dtype-preserving unary op.
func elementwiseUnary(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 1 {
				return nil, errors.Errorf("%s: wants 1 arg, got %d", name, len(args))
			}
			shape, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			return rebuildLike(args[0], shape, dtype), nil
		},
	}
}

// scalarBinary returns an entry for a tensor-op-scalar op: one tensor/tile
// operand and one scalar operand, shape-preserving, dtype-preserving.
func scalarBinary(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 2 {
				return nil, errors.Errorf("%s: wants 2 args, got %d", name, len(args))
			}
			shape, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			if _, ok := args[1].Type().(ir.ScalarType); !ok {
				return nil, ir.NewTypeMismatch(name, "ScalarType", args[1].Type().String())
			}
			return rebuildLike(args[0], shape, dtype), nil
		},
	}
}

// castOp changes dtype only; shape and memory space are preserved. The
// target dtype is a required "dtype" kwarg.
func castOp(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, kwargs ir.KwArgs) (ir.Type, error) {
			if len(args) != 1 {
				return nil, errors.Errorf("%s: wants 1 arg, got %d", name, len(args))
			}
			shape, _, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			kv, ok := kwargs.Get("dtype")
			if !ok || kv.Kind != ir.KwDType {
				return nil, errors.Errorf("%s: missing required kwarg dtype", name)
			}
			return rebuildLike(args[0], shape, kv.D), nil
		},
	}
}

// reshapeOp changes shape only; dtype and memory space are preserved. The
// target shape is given as a MakeTuple second positional arg.
func reshapeOp(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 2 {
				return nil, errors.Errorf("%s: wants 2 args, got %d", name, len(args))
			}
			_, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			shapeTuple, ok := args[1].(*ir.MakeTuple)
			if !ok {
				return nil, ir.NewTypeMismatch(name, "MakeTuple", args[1].Type().String())
			}
			return rebuildLike(args[0], shapeTuple.Elements, dtype), nil
		},
	}
}

// transposeOp reverses the operand's shape; dtype and memory space are
// preserved.
func transposeOp(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 1 {
				return nil, errors.Errorf("%s: wants 1 arg, got %d", name, len(args))
			}
			shape, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			reversed := make([]ir.Expr, len(shape))
			for i, d := range shape {
				reversed[len(shape)-1-i] = d
			}
			return rebuildLike(args[0], reversed, dtype), nil
		},
	}
}

// tensorCreateOp allocates a fresh, uninitialized DDR-resident tensor of a
// given shape and dtype: the orchestrator-side counterpart of block.store's
// destination argument (original_source's tensor.create, used by Phase 2 of
// ConvertTensorToBlockOps to manufacture output buffers at call sites).
func tensorCreateOp() *Entry {
	const name = "tensor.create"
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, kwargs ir.KwArgs) (ir.Type, error) {
			if len(args) != 1 {
				return nil, errors.Errorf("%s: wants 1 arg, got %d", name, len(args))
			}
			shapeTuple, ok := args[0].(*ir.MakeTuple)
			if !ok {
				return nil, ir.NewTypeMismatch(name, "MakeTuple", args[0].Type().String())
			}
			kv, ok := kwargs.Get("dtype")
			if !ok || kv.Kind != ir.KwDType {
				return nil, errors.Errorf("%s: missing required kwarg dtype", name)
			}
			return &ir.TensorType{Shape: shapeTuple.Elements, DType: kv.D, Space: ir.DDR}, nil
		},
	}
}

// blockLoadOp moves a DDR tensor view into a memory-space-resident tile
// (block.load(src, offsets, shape, target_memory=...)), the load prologue
// ConvertTensorToBlockOps synthesizes for every InCore TensorType parameter.
func blockLoadOp() *Entry {
	const name = "block.load"
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, kwargs ir.KwArgs) (ir.Type, error) {
			if len(args) != 3 {
				return nil, errors.Errorf("%s: wants 3 args (src,offsets,shape), got %d", name, len(args))
			}
			_, dtype, _, ok := tensorLikeOf(args[0])
			if !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			shapeTuple, ok := args[2].(*ir.MakeTuple)
			if !ok {
				return nil, ir.NewTypeMismatch(name, "MakeTuple", args[2].Type().String())
			}
			kv, ok := kwargs.Get("target_memory")
			if !ok || kv.Kind != ir.KwMemSpace {
				return nil, errors.Errorf("%s: missing required kwarg target_memory", name)
			}
			return &ir.TileType{Shape: shapeTuple.Elements, DType: dtype, Space: kv.M}, nil
		},
	}
}

// blockStoreOp writes a memory-space-resident tile back into a DDR tensor
// (block.store(tile, offsets, shape, dest)); its result type is the
// destination tensor's own type, since storing does not reshape or retype it.
func blockStoreOp() *Entry {
	const name = "block.store"
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 4 {
				return nil, errors.Errorf("%s: wants 4 args (tile,offsets,shape,dest), got %d", name, len(args))
			}
			if _, _, _, ok := tensorLikeOf(args[0]); !ok {
				return nil, ir.NewTypeMismatch(name, "Tensor|Tile", args[0].Type().String())
			}
			dest, ok := args[3].Type().(*ir.TensorType)
			if !ok {
				return nil, ir.NewTypeMismatch(name, "TensorType", args[3].Type().String())
			}
			return dest, nil
		},
	}
}

// voidOp returns an entry for a zero-arg, side-effect-only primitive that
// yields no value (the sync.src/sync.dst/sync.bar_v/sync.bar_m barriers).
func voidOp(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, _ ir.KwArgs) (ir.Type, error) {
			if len(args) != 0 {
				return nil, errors.Errorf("%s: wants 0 args, got %d", name, len(args))
			}
			return ir.VoidType{}, nil
		},
	}
}

// allocOp returns an entry for AddAlloc's memory-reservation primitive: it
// takes no positional args, only the "slot"/"space" kwargs the pass attaches,
// and yields no value.
func allocOp(name string) *Entry {
	return &Entry{
		Name:     name,
		Category: category(name),
		InferResult: func(args []ir.Expr, kwargs ir.KwArgs) (ir.Type, error) {
			if len(args) != 0 {
				return nil, errors.Errorf("%s: wants 0 args, got %d", name, len(args))
			}
			if _, ok := kwargs.Get("slot"); !ok {
				return nil, errors.Errorf("%s: missing required kwarg slot", name)
			}
			if _, ok := kwargs.Get("space"); !ok {
				return nil, errors.Errorf("%s: missing required kwarg space", name)
			}
			return ir.VoidType{}, nil
		},
	}
}

func category(name string) Category {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			switch name[:i] {
			case "tensor":
				return TensorOp
			case "block":
				return BlockOp
			}
		}
	}
	return ScalarOp
}
