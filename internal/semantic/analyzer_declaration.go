package semantic

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/function"
	"sigil/internal/types"
)

// declareModule registers every module-level name. Items are processed by
// kind so that functions may refer to interfaces and constants declared
// after them; constants must be declared before they are used.
func (a *Analyzer) declareModule(info *ModuleInfo) error {
	checker := a.moduleChecker(info)
	info.registry.SetSizeResolver(func(name string) (int, bool) {
		if c, ok := info.Constant(name); ok {
			return c.Value.Int()
		}
		return 0, false
	})

	for _, item := range info.AST.Items {
		if imp, ok := item.(*ast.Import); ok {
			if err := a.importModule(info, imp); err != nil {
				return err
			}
		}
	}

	for _, item := range info.AST.Items {
		if decl, ok := item.(*ast.VariableDecl); ok && decl.Constant {
			if err := a.declareConstant(info, checker, decl); err != nil {
				return err
			}
		}
	}

	if err := a.declareInterfaces(info, checker); err != nil {
		return err
	}

	for _, item := range info.AST.Items {
		if decl, ok := item.(*ast.VariableDecl); ok && !decl.Constant {
			if err := a.declareStateVar(info, checker, decl); err != nil {
				return err
			}
		}
	}

	for _, item := range info.AST.Items {
		if def, ok := item.(*ast.FunctionDef); ok {
			if err := a.declareFunction(info, checker, def); err != nil {
				return err
			}
		}
	}

	for _, item := range info.AST.Items {
		if impl, ok := item.(*ast.Implements); ok {
			if err := a.checkImplements(info, impl); err != nil {
				return err
			}
		}
	}

	if !info.IsLibrary {
		return checkSelectorCollisions(info)
	}
	return nil
}

func (a *Analyzer) defineMember(info *ModuleInfo, name string, member any, node ast.Node) error {
	if _, exists := info.members[name]; exists {
		return errors.DuplicateDeclaration(name, node)
	}
	info.members[name] = member
	return nil
}

func (a *Analyzer) declareConstant(info *ModuleInfo, checker *exprChecker, decl *ast.VariableDecl) error {
	if decl.Value == nil {
		return errors.At(errors.ErrorInvalidConstant,
			fmt.Sprintf("constant '%s' must be initialized", decl.Name.Value), &decl.Name).Build()
	}
	t, err := checker.ResolveType(decl.Type)
	if err != nil {
		return err
	}
	if !types.IsValueType(t) {
		if _, ok := t.(types.StringT); !ok {
			return errors.At(errors.ErrorInvalidConstant,
				fmt.Sprintf("constants of type %s are not supported", t), decl.Type).Build()
		}
	}

	value, err := folding.NewFolder(checker.constantLookup).Fold(decl.Value)
	if err != nil {
		return err
	}
	if err := checker.ValidateExpectedType(decl.Value, t); err != nil {
		return err
	}

	c := &Constant{Name: decl.Name.Value, Type: t, Value: value, Decl: decl}
	if _, err := info.Namespace.Define(c.Name, SymbolConstant, t, &decl.Name); err != nil {
		return err
	}
	if err := a.defineMember(info, c.Name, c, &decl.Name); err != nil {
		return err
	}
	info.Constants = append(info.Constants, c)
	return nil
}

// declareInterfaces registers every interface name before resolving member
// signatures, so that interfaces can mention each other.
func (a *Analyzer) declareInterfaces(info *ModuleInfo, checker *exprChecker) error {
	var defs []*ast.InterfaceDef
	for _, item := range info.AST.Items {
		if def, ok := item.(*ast.InterfaceDef); ok {
			iface := function.NewInterface(def.Name.Value)
			if _, err := info.Namespace.Define(iface.Name, SymbolInterface, iface, &def.Name); err != nil {
				return err
			}
			info.registry.AddUserDefinedType(iface.Name, iface)
			info.Interfaces = append(info.Interfaces, iface)
			defs = append(defs, def)
		}
	}

	for i, def := range defs {
		iface := info.Interfaces[i]
		for _, fn := range def.Functions {
			sig, err := function.FromInterfaceDef(fn, checker)
			if err != nil {
				return err
			}
			if err := iface.AddFunction(sig); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) declareStateVar(info *ModuleInfo, checker *exprChecker, decl *ast.VariableDecl) error {
	if info.IsLibrary {
		return errors.At(errors.ErrorStructure,
			"library modules cannot declare state variables", &decl.Name).
			WithHelp("libraries may only declare constants, interfaces and internal functions").
			Build()
	}
	if decl.Value != nil {
		return errors.At(errors.ErrorStructure,
			fmt.Sprintf("state variable '%s' cannot be initialized in its declaration", decl.Name.Value), decl.Value).
			WithSuggestion("assign the initial value in __init__").
			Build()
	}

	t, err := checker.ResolveType(decl.Type)
	if err != nil {
		return err
	}
	v := &StateVar{Name: decl.Name.Value, Type: t, Decl: decl}
	if err := a.defineMember(info, v.Name, v, &decl.Name); err != nil {
		return err
	}

	if decl.Public {
		getter, err := function.GetterFromVariableDecl(decl, t)
		if err != nil {
			return err
		}
		if getter.Return.ABIType() == "" {
			return errors.At(errors.ErrorStructure,
				fmt.Sprintf("cannot generate a getter returning %s", getter.Return), decl.Type).Build()
		}
		v.Getter = getter
		info.Getters = append(info.Getters, getter)
		a.program.owners[getter] = info
	}
	info.StateVars = append(info.StateVars, v)
	return nil
}

func (a *Analyzer) declareFunction(info *ModuleInfo, checker *exprChecker, def *ast.FunctionDef) error {
	sig, err := function.FromFunctionDef(def, checker)
	if err != nil {
		return err
	}
	if info.IsLibrary {
		if sig.IsExternal() {
			return errors.At(errors.ErrorStructure,
				fmt.Sprintf("library function '%s' must be @internal", sig.Name), &def.Name).
				WithNote(fmt.Sprintf("module '%s' is imported as a library", info.Name)).
				Build()
		}
		sig.Module = info.Name
	}

	if err := a.defineMember(info, sig.Name, sig, &def.Name); err != nil {
		return err
	}
	switch {
	case sig.IsConstructor():
		info.Constructor = sig
	case sig.IsFallback():
		info.Fallback = sig
	}
	info.Functions = append(info.Functions, sig)
	a.program.owners[sig] = info
	return nil
}

func (a *Analyzer) checkImplements(info *ModuleInfo, impl *ast.Implements) error {
	if info.IsLibrary {
		return errors.At(errors.ErrorStructure, "library modules cannot implement interfaces", impl).Build()
	}

	name := impl.Interface.Value
	symbol := info.Namespace.Lookup(name)
	if symbol == nil {
		var candidates []string
		for _, iface := range info.Interfaces {
			candidates = append(candidates, iface.Name)
		}
		return errors.UndefinedName(name, &impl.Interface, candidates)
	}
	iface, ok := symbol.Type.(*function.InterfaceT)
	if !ok {
		return errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("'%s' is a %s, not an interface", name, symbol.Kind), &impl.Interface).Build()
	}

	lookup := func(name string) (*function.Signature, bool) {
		if sig, ok := info.Function(name); ok {
			return sig, true
		}
		if v, ok := info.StateVar(name); ok && v.Getter != nil {
			return v.Getter, true
		}
		return nil, false
	}
	if err := iface.ValidateImplementation(impl, lookup); err != nil {
		return err
	}
	info.Implements = append(info.Implements, iface)
	return nil
}

// checkSelectorCollisions rejects two runtime entry points whose method ids
// hash to the same selector.
func checkSelectorCollisions(info *ModuleInfo) error {
	seen := make(map[uint32]string)
	for _, f := range info.RuntimeEntryPoints() {
		if f.IsFallback() {
			continue
		}
		for _, id := range f.MethodIDs() {
			if prev, ok := seen[id.Selector]; ok && prev != id.Signature {
				return errors.At(errors.ErrorSelectorCollision,
					fmt.Sprintf("methods produce colliding method ID `%s`: %s, %s", id.Hex(), prev, id.Signature), f.Decl).
					Build()
			}
			seen[id.Selector] = id.Signature
		}
	}
	return nil
}
