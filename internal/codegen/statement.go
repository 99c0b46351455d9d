package codegen

import (
	"fmt"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/semantic"
	"sigil/internal/types"
)

func (b *Builder) buildBlock(block *ast.Block) error {
	b.fn.push()
	defer b.fn.pop()
	for _, stmt := range block.Stmts {
		if err := b.buildStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildStatement(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		return b.buildDecl(s)
	case *ast.AssignStmt:
		return b.buildAssign(s)
	case *ast.ExprStmt:
		call, ok := ast.Unparen(s.Expr).(*ast.CallExpr)
		if !ok {
			return errors.CompilerPanic("expression statement without a call")
		}
		pushed, err := b.buildCall(call)
		if err != nil {
			return err
		}
		if pushed {
			b.op("POP")
		}
		return nil
	case *ast.ReturnStmt:
		if s.Value != nil {
			if err := b.buildExpression(s.Value); err != nil {
				return err
			}
		}
		b.buildExit(s.Value != nil)
		return nil
	case *ast.IfStmt:
		return b.buildIf(s)
	case *ast.ForStmt:
		return b.buildFor(s)
	case *ast.PassStmt:
		return nil
	case *ast.BreakStmt:
		b.jump(b.innermostLoop().end)
		return nil
	case *ast.ContinueStmt:
		b.jump(b.innermostLoop().cont)
		return nil
	case *ast.AssertStmt:
		// the reason string is not encoded; the revert carries no data
		if err := b.buildExpression(s.Test); err != nil {
			return err
		}
		b.op("ISZERO")
		b.revertIf()
		return nil
	case *ast.Block:
		return b.buildBlock(s)
	}
	return errors.CompilerPanic("cannot generate %T", stmt)
}

func (b *Builder) innermostLoop() loopLabels {
	return b.fn.loops[len(b.fn.loops)-1]
}

func (b *Builder) buildDecl(s *ast.DeclStmt) error {
	t := b.program.Locals[s]
	if !isWord(t) {
		return unsupported(fmt.Sprintf("local variable of type %s", t), s)
	}
	if err := b.buildExpression(s.Value); err != nil {
		return err
	}
	offset := b.mem.words(1)
	b.pushInt(offset)
	b.op("MSTORE")
	b.fn.define(s.Name.Value, variable{offset: offset, typ: t})
	return nil
}

func (b *Builder) buildAssign(s *ast.AssignStmt) error {
	op := s.Op.BinaryOp()

	if n, ok := ast.Unparen(s.Target).(*ast.NameExpr); ok {
		v, ok := b.fn.lookup(n.Name)
		if !ok {
			return errors.CompilerPanic("unresolved name %s", n.Name)
		}
		if op != "" {
			b.pushInt(v.offset)
			b.op("MLOAD")
		}
		if err := b.buildExpression(s.Value); err != nil {
			return err
		}
		if op != "" {
			if err := b.arithmetic(op, v.typ, s); err != nil {
				return err
			}
		}
		b.pushInt(v.offset)
		b.op("MSTORE")
		return nil
	}

	t, err := b.buildLocation(s.Target)
	if err != nil {
		return err
	}
	if !isWord(t) {
		return unsupported(fmt.Sprintf("assigning a whole %s", t), s)
	}
	if op != "" {
		b.op("DUP1", "SLOAD")
	}
	if err := b.buildExpression(s.Value); err != nil {
		return err
	}
	if op != "" {
		if err := b.arithmetic(op, t, s); err != nil {
			return err
		}
	}
	b.op("SWAP1", "SSTORE")
	return nil
}

func (b *Builder) buildIf(s *ast.IfStmt) error {
	end := b.newLabel("if_end")
	next := end
	if s.Else != nil {
		next = b.newLabel("else")
	}

	if err := b.buildExpression(s.Cond); err != nil {
		return err
	}
	b.op("ISZERO")
	b.jumpIf(next)
	if err := b.buildBlock(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		b.jump(end)
		b.emit(asm.Label(next))
		if err := b.buildBlock(s.Else); err != nil {
			return err
		}
	}
	b.emit(asm.Label(end))
	return nil
}

// loop shape shared by every iterable:
//
//	init
//	top:  exit test, load the loop variable
//	      body
//	cont: advance
//	      jump top
//	end:
type loopPlan struct {
	init    func() error
	test    func()
	load    func()
	advance func()
}

func (b *Builder) buildFor(s *ast.ForStmt) error {
	loop, ok := b.program.Loops[s]
	if !ok {
		return errors.CompilerPanic("loop was not analyzed")
	}
	if !isWord(loop.Elem) {
		return unsupported(fmt.Sprintf("iterating over %s values", loop.Elem), s)
	}

	varOffset := b.mem.words(1)
	var plan loopPlan
	var err error
	switch {
	case loop.Range != nil:
		plan, err = b.rangePlan(loop, varOffset)
	default:
		if list, ok := ast.Unparen(s.Iter).(*ast.ListExpr); ok {
			plan, err = b.listPlan(list, varOffset)
		} else {
			plan, err = b.storagePlan(s, varOffset)
		}
	}
	if err != nil {
		return err
	}

	top, cont, end := b.newLabel("loop"), b.newLabel("loop_continue"), b.newLabel("loop_end")
	if err := plan.init(); err != nil {
		return err
	}
	b.emit(asm.Label(top))
	plan.test()
	b.jumpIf(end)
	if plan.load != nil {
		plan.load()
	}

	b.fn.push()
	b.fn.define(s.Target.Value, variable{offset: varOffset, typ: loop.Elem})
	b.fn.loops = append(b.fn.loops, loopLabels{cont: cont, end: end})
	err = b.buildBlock(s.Body)
	b.fn.loops = b.fn.loops[:len(b.fn.loops)-1]
	b.fn.pop()
	if err != nil {
		return err
	}

	b.emit(asm.Label(cont))
	plan.advance()
	b.jump(top)
	b.emit(asm.Label(end))
	return nil
}

// decrement subtracts one from the word at offset.
func (b *Builder) decrement(offset int) {
	b.pushInt(1)
	b.pushInt(offset)
	b.op("MLOAD", "SUB")
	b.pushInt(offset)
	b.op("MSTORE")
}

func (b *Builder) increment(offset int) {
	b.pushInt(offset)
	b.op("MLOAD")
	b.pushInt(1)
	b.op("ADD")
	b.pushInt(offset)
	b.op("MSTORE")
}

// rangePlan keeps the loop variable and the remaining iteration count in
// memory. A count only known at run time is checked against the bound.
func (b *Builder) rangePlan(loop *semantic.Loop, varOffset int) (loopPlan, error) {
	info := loop.Range
	elem, ok := loop.Elem.(types.IntegerT)
	if !ok {
		return loopPlan{}, errors.CompilerPanic("range over %s", loop.Elem)
	}
	remaining := b.mem.words(1)

	init := func() error {
		if info.Start != nil {
			if err := b.buildExpression(info.Start); err != nil {
				return err
			}
		} else {
			b.pushInt(0)
		}

		if info.Count > 0 {
			// the last value start + count - 1 must fit the element type
			if info.Count > 1 {
				b.op("DUP1")
				b.pushInt(info.Count - 1)
				b.checkedAdd(elem)
				b.op("POP")
			}
			b.pushInt(varOffset)
			b.op("MSTORE")
			b.pushInt(info.Count)
			b.pushInt(remaining)
			b.op("MSTORE")
			return nil
		}

		// [start] -> count = end - start, at most the bound
		b.op("DUP1")
		b.pushInt(varOffset)
		b.op("MSTORE")
		if err := b.buildExpression(info.End); err != nil {
			return err
		}
		b.op("SWAP1")
		b.checkedSub(elem)
		b.op("DUP1")
		b.pushInt(info.Bound)
		b.op("LT")
		b.revertIf()
		b.pushInt(remaining)
		b.op("MSTORE")
		return nil
	}

	return loopPlan{
		init: init,
		test: func() {
			b.pushInt(remaining)
			b.op("MLOAD", "ISZERO")
		},
		advance: func() {
			b.decrement(remaining)
			b.increment(varOffset)
		},
	}, nil
}

// listPlan copies the literal into memory and walks it by index.
func (b *Builder) listPlan(list *ast.ListExpr, varOffset int) (loopPlan, error) {
	base := b.mem.words(len(list.Elements))
	index := b.mem.words(1)

	return loopPlan{
		init: func() error {
			for i, el := range list.Elements {
				if err := b.buildExpression(el); err != nil {
					return err
				}
				b.pushInt(base + i*wordSize)
				b.op("MSTORE")
			}
			b.pushInt(0)
			b.pushInt(index)
			b.op("MSTORE")
			return nil
		},
		test: func() {
			b.pushInt(len(list.Elements))
			b.pushInt(index)
			b.op("MLOAD", "LT", "ISZERO")
		},
		load: func() {
			b.pushInt(index)
			b.op("MLOAD")
			b.pushInt(wordSize)
			b.op("MUL")
			b.pushInt(base)
			b.op("ADD", "MLOAD")
			b.pushInt(varOffset)
			b.op("MSTORE")
		},
		advance: func() {
			b.increment(index)
		},
	}, nil
}

// storagePlan iterates a storage array. The base slot and, for dynamic
// arrays, the length are captured before the first iteration.
func (b *Builder) storagePlan(s *ast.ForStmt, varOffset int) (loopPlan, error) {
	baseSlot := b.mem.words(1)
	index := b.mem.words(1)
	length := b.mem.words(1)
	var elem types.Type
	first := 0

	init := func() error {
		t, err := b.buildLocation(s.Iter)
		if err != nil {
			return err
		}
		switch arr := t.(type) {
		case types.SArrayT:
			elem = arr.Elem
			b.pushInt(arr.Count)
			b.pushInt(length)
			b.op("MSTORE")
		case types.DArrayT:
			elem, first = arr.Elem, 1
			b.op("DUP1", "SLOAD")
			b.pushInt(length)
			b.op("MSTORE")
		default:
			return unsupported(fmt.Sprintf("iterating over %s", t), s.Iter)
		}
		b.pushInt(baseSlot)
		b.op("MSTORE")
		b.pushInt(0)
		b.pushInt(index)
		b.op("MSTORE")
		return nil
	}

	return loopPlan{
		init: init,
		test: func() {
			b.pushInt(length)
			b.op("MLOAD")
			b.pushInt(index)
			b.op("MLOAD", "LT", "ISZERO")
		},
		load: func() {
			b.pushInt(index)
			b.op("MLOAD")
			b.scaleIndex(elem)
			if first > 0 {
				b.pushInt(first)
				b.op("ADD")
			}
			b.pushInt(baseSlot)
			b.op("MLOAD", "ADD", "SLOAD")
			b.pushInt(varOffset)
			b.op("MSTORE")
		},
		advance: func() {
			b.increment(index)
		},
	}, nil
}
