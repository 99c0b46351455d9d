package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func internalFn(name string) *Signature {
	return NewSignature(name, nil, nil, nil, INTERNAL, NONPAYABLE)
}

func TestCallGraphReachable(t *testing.T) {
	g := NewCallGraph()
	a, b, c, d := internalFn("a"), internalFn("b"), internalFn("c"), internalFn("d")

	g.AddCall(a, b)
	g.AddCall(b, c)
	g.AddCall(a, d)
	g.AddCall(a, b) // duplicate edges are ignored

	assert.Equal(t, []*Signature{b, d}, g.Called(a))
	assert.Equal(t, []*Signature{b, d, c}, g.Reachable(a))
	assert.Equal(t, []*Signature{c}, g.Reachable(b))
	assert.Empty(t, g.Reachable(c))
	assert.True(t, g.Reaches(a, c))
	assert.False(t, g.Reaches(c, a))
	assert.False(t, g.Reaches(a, a), "a function does not reach itself without a cycle")
}

func TestCallGraphCycle(t *testing.T) {
	g := NewCallGraph()
	a, b, c := internalFn("a"), internalFn("b"), internalFn("c")

	g.AddCall(a, b)
	g.AddCall(b, c)
	g.AddCall(c, a)

	for _, f := range []*Signature{a, b, c} {
		reach := g.Reachable(f)
		assert.Len(t, reach, 3, "%s reaches every member of the cycle", f.Name)
		assert.Contains(t, reach, f, "%s reaches itself", f.Name)
	}

	self := internalFn("self")
	g.AddCall(self, self)
	assert.Equal(t, []*Signature{self}, g.Reachable(self))
}

func TestCallGraphMemoInvalidation(t *testing.T) {
	g := NewCallGraph()
	a, b, c := internalFn("a"), internalFn("b"), internalFn("c")

	g.AddCall(a, b)
	assert.Equal(t, []*Signature{b}, g.Reachable(a))

	// edges added after a query still show up
	g.AddCall(b, c)
	assert.Equal(t, []*Signature{b, c}, g.Reachable(a))
}

func TestCallGraphReachableLabels(t *testing.T) {
	g := NewCallGraph()
	ctor := NewSignature(ConstructorName, nil, nil, nil, EXTERNAL, NONPAYABLE)
	bar := NewSignature("bar", nil, nil, nil, EXTERNAL, NONPAYABLE)
	ctorOnly, runtimeOnly, shared := internalFn("ctor_only"), internalFn("runtime_only"), internalFn("shared")

	g.AddCall(ctor, ctorOnly)
	g.AddCall(ctorOnly, shared)
	g.AddCall(bar, runtimeOnly)
	g.AddCall(runtimeOnly, shared)

	deploy := g.ReachableLabels([]*Signature{ctor})
	assert.Equal(t, []*Signature{ctor, ctorOnly, shared}, deploy)

	runtime := g.ReachableLabels([]*Signature{bar})
	assert.Equal(t, []*Signature{bar, runtimeOnly, shared}, runtime)

	assert.Equal(t, []*Signature{ctor, ctorOnly, bar, runtimeOnly}, g.Callers())
}
