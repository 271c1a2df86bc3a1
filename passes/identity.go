package passes

import (
	"github.com/pypto-lang/pypto/ir"
	"github.com/pypto-lang/pypto/pass"
	"github.com/pypto-lang/pypto/property"
)

// Identity appends "_identity" to every function's name and otherwise
// leaves it untouched. It exists purely so pipeline tests can assert that a
// named pass actually ran, mirroring original_source's own identity pass
// built for the same purpose. Unlike the pipeline's real lowerings, it
// deliberately mints a fresh GlobalVar per function, so it must not be run
// on a program whose functions call each other by name.
func Identity() pass.Pass {
	return pass.CreateFunctionPass("Identity", property.Contract{}, func(fn *ir.Function) (*ir.Function, error) {
		newSelf := &ir.GlobalVar{NameV: fn.Self.NameV + "_identity", TypeV: fn.Self.TypeV, SpanV: fn.Self.SpanV}
		return ir.NewFunction(newSelf, fn.Params, fn.Returns, fn.Body, fn.Kind, fn.SpanV), nil
	})
}
