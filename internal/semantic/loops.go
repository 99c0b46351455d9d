package semantic

import (
	"fmt"

	"sigil/internal/errors"
	"sigil/internal/function"
)

// CheckLoops rejects loops over a storage array whose body may modify that
// array, either directly or through any chain of internal calls. Writes are
// tracked per state variable, so writing one element still counts as
// modifying the array.
func CheckLoops(p *Program) error {
	for _, loop := range p.LoopsInOrder() {
		if loop.Var == nil {
			continue
		}
		for _, w := range loop.Writes {
			if w.Var == loop.Var {
				return errors.ImmutableViolation(
					fmt.Sprintf("cannot modify '%s' while iterating over it", loop.Var.Name), w.Node)
			}
		}
		for _, call := range loop.Calls {
			if f := modifiedThrough(p, call.Target, loop.Var); f != nil {
				msg := fmt.Sprintf("cannot call '%s' while iterating over '%s'", call.Target.QualifiedName(), loop.Var.Name)
				builder := errors.At(errors.ErrorImmutableViolation, msg, call.Call)
				if f == call.Target {
					builder = builder.WithNote(fmt.Sprintf("'%s' modifies '%s'", f.QualifiedName(), loop.Var.Name))
				} else {
					builder = builder.WithNote(fmt.Sprintf("'%s' modifies '%s' and is reachable from '%s'",
						f.QualifiedName(), loop.Var.Name, call.Target.QualifiedName()))
				}
				return builder.Build()
			}
		}
	}
	return nil
}

// modifiedThrough returns the first function among target and everything
// it reaches that writes v.
func modifiedThrough(p *Program, target *function.Signature, v *StateVar) *function.Signature {
	candidates := append([]*function.Signature{target}, p.CallGraph.Reachable(target)...)
	for _, f := range candidates {
		for _, w := range p.Writes[f] {
			if w.Var == v {
				return f
			}
		}
	}
	return nil
}
