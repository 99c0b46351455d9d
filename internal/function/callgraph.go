package function

// OrderedSet keeps insertion order so that graph queries are deterministic.
type OrderedSet struct {
	items []*Signature
	index map[*Signature]struct{}
}

func NewOrderedSet() *OrderedSet {
	return &OrderedSet{index: make(map[*Signature]struct{})}
}

// Add inserts s and reports whether it was new.
func (o *OrderedSet) Add(s *Signature) bool {
	if _, ok := o.index[s]; ok {
		return false
	}
	o.index[s] = struct{}{}
	o.items = append(o.items, s)
	return true
}

func (o *OrderedSet) Contains(s *Signature) bool {
	_, ok := o.index[s]
	return ok
}

func (o *OrderedSet) Len() int { return len(o.items) }

// Items returns the members in insertion order. The slice must not be modified.
func (o *OrderedSet) Items() []*Signature { return o.items }

// CallGraph records which internal functions each function calls.
// One graph belongs to one compilation.
type CallGraph struct {
	callers   []*Signature
	called    map[*Signature]*OrderedSet
	reachable map[*Signature]*OrderedSet
}

func NewCallGraph() *CallGraph {
	return &CallGraph{
		called:    make(map[*Signature]*OrderedSet),
		reachable: make(map[*Signature]*OrderedSet),
	}
}

// AddCall records that caller invokes callee.
func (g *CallGraph) AddCall(caller, callee *Signature) {
	set, ok := g.called[caller]
	if !ok {
		set = NewOrderedSet()
		g.called[caller] = set
		g.callers = append(g.callers, caller)
	}
	if set.Add(callee) {
		// any memoized closure may now be stale
		clear(g.reachable)
	}
}

// Called returns the functions f invokes directly.
func (g *CallGraph) Called(f *Signature) []*Signature {
	if set, ok := g.called[f]; ok {
		return set.Items()
	}
	return nil
}

// Reachable returns every function transitively callable from f, in order
// of first discovery. f is included only when it sits on a cycle.
func (g *CallGraph) Reachable(f *Signature) []*Signature {
	return g.reachableSet(f).Items()
}

// Reaches reports whether target is transitively callable from f.
func (g *CallGraph) Reaches(f, target *Signature) bool {
	return g.reachableSet(f).Contains(target)
}

func (g *CallGraph) reachableSet(f *Signature) *OrderedSet {
	if memo, ok := g.reachable[f]; ok {
		return memo
	}

	seen := NewOrderedSet()
	work := append([]*Signature(nil), g.Called(f)...)
	for len(work) > 0 {
		next := work[0]
		work = work[1:]
		if !seen.Add(next) {
			continue
		}
		work = append(work, g.Called(next)...)
	}

	g.reachable[f] = seen
	return seen
}

// ReachableLabels returns the entries together with everything they reach.
func (g *CallGraph) ReachableLabels(entries []*Signature) []*Signature {
	out := NewOrderedSet()
	for _, e := range entries {
		out.Add(e)
		for _, r := range g.Reachable(e) {
			out.Add(r)
		}
	}
	return out.Items()
}

// Callers returns every function that has recorded calls, in first-call order.
func (g *CallGraph) Callers() []*Signature {
	return append([]*Signature(nil), g.callers...)
}
