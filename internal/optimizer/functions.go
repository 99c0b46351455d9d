package optimizer

import (
	"sigil/internal/asm"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/semantic"
)

// Reachability holds the labels of the internal bodies each segment can
// jump to.
type Reachability struct {
	Deploy  map[string]bool
	Runtime map[string]bool
}

// NewReachability walks the call graph from each segment's entry points.
// Function ids must already be assigned.
func NewReachability(p *semantic.Program) Reachability {
	return Reachability{
		Deploy:  internalLabels(p.CallGraph.ReachableLabels(p.Root.DeployEntryPoints())),
		Runtime: internalLabels(p.CallGraph.ReachableLabels(p.Root.RuntimeEntryPoints())),
	}
}

func internalLabels(sigs []*function.Signature) map[string]bool {
	out := make(map[string]bool, len(sigs))
	for _, sig := range sigs {
		if sig.IsInternal() {
			out[sig.Label()] = true
		}
	}
	return out
}

func (r Reachability) labels(segment Segment) map[string]bool {
	if segment == Deploy {
		return r.Deploy
	}
	return r.Runtime
}

// FunctionElimination drops internal bodies the segment cannot reach.
type FunctionElimination struct {
	Reach Reachability
}

func (fe *FunctionElimination) Name() string {
	return "Function Elimination"
}

func (fe *FunctionElimination) Description() string {
	return "Removes internal function bodies unreachable from the segment's entry points"
}

func (fe *FunctionElimination) Apply(segment Segment, items []asm.Item) ([]asm.Item, bool, error) {
	return EliminateBodies(items, fe.Reach.labels(segment))
}

// EliminateBodies keeps the bodies whose label is in keep and everything
// outside a body.
func EliminateBodies(items []asm.Item, keep map[string]bool) ([]asm.Item, bool, error) {
	out := make([]asm.Item, 0, len(items))
	skipping := ""
	changed := false
	for _, it := range items {
		if skipping != "" {
			if it.Kind == asm.KindBodyEnd && it.Label == skipping {
				skipping = ""
			}
			continue
		}
		if it.Kind == asm.KindBodyStart && !keep[it.Label] {
			log.Debugf("eliminating %s", it.Label)
			skipping = it.Label
			changed = true
			continue
		}
		out = append(out, it)
	}
	if skipping != "" {
		return nil, false, errors.CompilerPanic("body %q has no end marker", skipping)
	}
	return out, changed, nil
}
