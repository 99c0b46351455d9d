package semantic

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/function"
)

type flow int

const (
	flowFallthrough flow = iota
	flowJump             // break or continue
	flowReturn           // return, or a revert
)

// checkFlow rejects statements after a terminator and functions with a
// return type that can fall off the end of their body.
func checkFlow(sig *function.Signature, def *ast.FunctionDef) error {
	f, err := blockFlow(def.Body)
	if err != nil {
		return err
	}
	if sig.Return != nil && f != flowReturn {
		return errors.NewSemanticError(errors.ErrorMissingReturn,
			fmt.Sprintf("missing return statement in function '%s'", sig.Name), def.Body.EndPos).
			WithNote(fmt.Sprintf("'%s' is declared to return %s", sig.Name, sig.Return)).
			Build()
	}
	return nil
}

func blockFlow(block *ast.Block) (flow, error) {
	f := flowFallthrough
	for _, stmt := range block.Stmts {
		if f != flowFallthrough {
			return f, errors.At(errors.ErrorStructure, "unreachable code", stmt).
				WithHelp("remove the statements after return, break or continue").
				Build()
		}
		var err error
		f, err = stmtFlow(stmt)
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func stmtFlow(stmt ast.Stmt) (flow, error) {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return flowReturn, nil
	case *ast.BreakStmt, *ast.ContinueStmt:
		return flowJump, nil
	case *ast.AssertStmt:
		if lit, ok := ast.Unparen(s.Test).(*ast.BoolLit); ok && !lit.Value {
			return flowReturn, nil
		}
	case *ast.Block:
		return blockFlow(s)
	case *ast.IfStmt:
		then, err := blockFlow(s.Then)
		if err != nil {
			return flowFallthrough, err
		}
		if s.Else == nil {
			return flowFallthrough, nil
		}
		otherwise, err := blockFlow(s.Else)
		if err != nil {
			return flowFallthrough, err
		}
		switch {
		case then == flowReturn && otherwise == flowReturn:
			return flowReturn, nil
		case then != flowFallthrough && otherwise != flowFallthrough:
			return flowJump, nil
		}
	case *ast.ForStmt:
		// a loop body may run zero times
		if _, err := blockFlow(s.Body); err != nil {
			return flowFallthrough, err
		}
	}
	return flowFallthrough, nil
}
