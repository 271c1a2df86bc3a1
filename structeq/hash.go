package structeq

import (
	"fmt"
	"hash/fnv"

	"github.com/pypto-lang/pypto/ir"
)

// Hash computes the structural hash of n (spec.md §4.5): an FNV-style
// combine over the type name, then over each non-ignored field descriptor.
// The law equal(a,b,autoMap) => Hash(a,autoMap) == Hash(b,autoMap) holds for
// any fixed autoMap.
func Hash(n ir.Node, autoMap bool) uint64 {
	h := fnv.New64a()
	hashNode(h, n, autoMap)
	return h.Sum64()
}

func mix(h interface{ Write([]byte) (int, error) }, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

func mixUint(h interface{ Write([]byte) (int, error) }, v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	h.Write(b[:])
}

func hashNode(h interface{ Write([]byte) (int, error) }, n ir.Node, autoMap bool) {
	if n == nil {
		mix(h, "<nil>")
		return
	}
	mix(h, n.TypeName())

	if name, typ, ok := binderType(n); ok {
		if autoMap {
			mix(h, "var:type:")
			hashNode(h, typ, false)
		} else {
			// equal(a,b,autoMap=false) requires pointer identity for
			// Var/IterArg, so hashing the pointer itself trivially
			// satisfies equal => equal_hash.
			mix(h, "var:identity:")
			mix(h, name)
			mix(h, fmt.Sprintf("%p", n))
		}
		return
	}

	for _, f := range n.Fields() {
		if f.Tag == ir.IgnoreField {
			continue
		}
		fieldAutoMap := autoMap
		if f.Tag == ir.DefField {
			fieldAutoMap = true
		}
		hashField(h, f, fieldAutoMap)
	}
}

func hashField(h interface{ Write([]byte) (int, error) }, f ir.FieldDescriptor, autoMap bool) {
	mix(h, f.Name)
	if node, ok := f.IsNode(); ok {
		hashNode(h, node, autoMap)
		return
	}
	if nodes, ok := f.IsNodes(); ok {
		mixUint(h, uint64(len(nodes)))
		for _, c := range nodes {
			hashNode(h, c, autoMap)
		}
		return
	}
	if kwargs, ok := f.IsKwArgs(); ok {
		mixUint(h, uint64(len(kwargs)))
		for _, kw := range kwargs {
			mix(h, kw.Name)
			mix(h, kw.Value.String())
		}
		return
	}
	if types, ok := f.IsTypes(); ok {
		mixUint(h, uint64(len(types)))
		for _, t := range types {
			mix(h, t.String())
		}
		return
	}
	if scalar, ok := f.IsScalar(); ok {
		mix(h, fmt.Sprintf("%v", scalar))
	}
}
