package optimizer

import (
	"github.com/tliron/commonlog"

	"sigil/internal/asm"
	"sigil/internal/errors"
)

var log = commonlog.GetLogger("sigil.optimizer")

// maxRounds bounds the fixed point iteration.
const maxRounds = 16

// OptimizationPass rewrites one segment of assembly.
type OptimizationPass interface {
	Name() string
	Description() string
	// Apply returns the rewritten items and whether anything changed.
	Apply(segment Segment, items []asm.Item) ([]asm.Item, bool, error)
}

// Segment tells a pass which half of the program it is looking at.
type Segment int

const (
	Deploy Segment = iota
	Runtime
)

func (s Segment) String() string {
	if s == Deploy {
		return "deploy"
	}
	return "runtime"
}

// OptimizationPipeline runs its passes over both segments until none of
// them makes a change.
type OptimizationPipeline struct {
	passes []OptimizationPass
}

// NewOptimizationPipeline returns the passes for level. None has no
// passes at all.
func NewOptimizationPipeline(level Level, reach Reachability) *OptimizationPipeline {
	pipeline := &OptimizationPipeline{}
	if level == None {
		return pipeline
	}
	pipeline.AddPass(&FunctionElimination{Reach: reach})
	pipeline.AddPass(&UnreachableCode{})
	pipeline.AddPass(&JumpToNext{})
	return pipeline
}

func (p *OptimizationPipeline) AddPass(pass OptimizationPass) {
	p.passes = append(p.passes, pass)
}

func (p *OptimizationPipeline) Passes() []OptimizationPass {
	return p.passes
}

// Run rewrites program in place and then checks that every label still
// referenced is defined.
func (p *OptimizationPipeline) Run(program *asm.Program) error {
	log.Debugf("running %d optimization passes", len(p.passes))

	var err error
	if program.Deploy, err = p.runSegment(Deploy, program.Deploy); err != nil {
		return err
	}
	if program.Runtime, err = p.runSegment(Runtime, program.Runtime); err != nil {
		return err
	}
	if err := CheckLabels(Deploy, program.Deploy); err != nil {
		return err
	}
	return CheckLabels(Runtime, program.Runtime)
}

func (p *OptimizationPipeline) runSegment(segment Segment, items []asm.Item) ([]asm.Item, error) {
	for round := 0; round < maxRounds; round++ {
		changed := false
		for _, pass := range p.passes {
			next, ok, err := pass.Apply(segment, items)
			if err != nil {
				return nil, err
			}
			if ok {
				log.Debugf("%s: %s changed %d -> %d items", segment, pass.Name(), len(items), len(next))
				changed = true
			}
			items = next
		}
		if !changed {
			return items, nil
		}
	}
	return items, nil
}

// CheckLabels fails when an item references a label the segment does not
// define, or when body markers do not pair up.
func CheckLabels(segment Segment, items []asm.Item) error {
	defined := make(map[string]bool)
	for _, it := range items {
		if it.Kind == asm.KindLabel {
			defined[it.Label] = true
		}
	}

	var open []string
	for _, it := range items {
		switch it.Kind {
		case asm.KindPushLabel:
			if !defined[it.Label] {
				return errors.CompilerPanic("%s segment references missing label %q", segment, it.Label)
			}
		case asm.KindBodyStart:
			open = append(open, it.Label)
		case asm.KindBodyEnd:
			if len(open) == 0 || open[len(open)-1] != it.Label {
				return errors.CompilerPanic("%s segment closes body %q that is not open", segment, it.Label)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return errors.CompilerPanic("%s segment leaves body %q open", segment, open[len(open)-1])
	}
	return nil
}
