package lsp

import (
	"sort"

	"sigil/internal/ast"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

// SemanticToken represents a single LSP semantic token entry.
// Line and StartChar are 0-based.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask over SemanticTokenModifiers
}

// builtinTypes is only read after initialization.
var builtinTypes = types.NewTypeRegistry()

type tokenCollector struct {
	tokens []SemanticToken
}

func collectSemanticTokens(module *ast.Module) []SemanticToken {
	if module == nil {
		return nil
	}

	c := &tokenCollector{}
	ast.Inspect(module, c.visit)

	sort.SliceStable(c.tokens, func(i, j int) bool {
		if c.tokens[i].Line != c.tokens[j].Line {
			return c.tokens[i].Line < c.tokens[j].Line
		}
		return c.tokens[i].StartChar < c.tokens[j].StartChar
	})
	return c.tokens
}

func (c *tokenCollector) visit(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Import:
		for _, part := range v.Path {
			c.ident(part, "namespace", false)
		}
		if v.Alias != nil {
			c.ident(*v.Alias, "namespace", true)
		}
	case *ast.Implements:
		c.ident(v.Interface, "type", false)
	case *ast.InterfaceDef:
		c.ident(v.Name, "type", true)
	case *ast.VariableDecl:
		if v.Constant {
			c.add(v.Name.Pos, v.Name.EndPos, v.Name.Value, "variable", "declaration", "readonly")
		} else {
			c.ident(v.Name, "property", true)
		}
	case *ast.FunctionDef:
		c.ident(v.Name, "function", true)
		if v.Mutability != nil {
			c.ident(*v.Mutability, "modifier", false)
		}
	case *ast.Decorator:
		c.add(v.Pos, v.Name.EndPos, "@"+v.Name.Value, "modifier")
	case *ast.Param:
		c.ident(v.Name, "parameter", true)
	case *ast.TypeExpr:
		c.ident(v.Name, "type", false)
		for _, sub := range v.Subscripts {
			for _, arg := range sub.Args {
				if arg.Size != nil {
					c.add(arg.Size.Pos, arg.Size.EndPos, arg.Size.Value, "number")
				}
			}
		}
	case *ast.DeclStmt:
		c.ident(v.Name, "variable", true)
	case *ast.ForStmt:
		c.ident(v.Target, "variable", true)
	case *ast.NameExpr:
		c.add(v.Pos, v.EndPos, v.Name, nameTokenType(v.Name))
	case *ast.AttributeExpr:
		tokenType := "property"
		if stdlib.IsEnvironmentConstant(v) {
			tokenType = "variable"
		}
		// The receiver precedes the attribute, so visit it before adding.
		ast.Inspect(v.Value, c.visit)
		c.ident(v.Attr, tokenType, false)
		return false
	case *ast.CallExpr:
		if attr, ok := v.Func.(*ast.AttributeExpr); ok {
			ast.Inspect(attr.Value, c.visit)
			c.ident(attr.Attr, "function", false)
			for _, a := range v.Args {
				ast.Inspect(a, c.visit)
			}
			for _, kw := range v.Keywords {
				ast.Inspect(kw, c.visit)
			}
			return false
		}
	case *ast.Keyword:
		c.ident(v.Name, "parameter", false)
	case *ast.IntLit:
		c.add(v.Pos, v.EndPos, v.Value, "number")
	}
	return true
}

// nameTokenType classifies a bare name by what the environment knows
// about it; everything else is a variable.
func nameTokenType(name string) string {
	switch {
	case name == "self":
		return "keyword"
	case stdlib.IsKnownModule(name):
		return "namespace"
	case stdlib.GetBuiltin(name) != nil:
		return "function"
	case builtinTypes.IsValidType(name):
		return "type"
	}
	return "variable"
}

func (c *tokenCollector) ident(id ast.Ident, tokenType string, declaration bool) {
	if declaration {
		c.add(id.Pos, id.EndPos, id.Value, tokenType, "declaration")
		return
	}
	c.add(id.Pos, id.EndPos, id.Value, tokenType)
}

func (c *tokenCollector) add(pos, endPos ast.Position, value, tokenType string, modifiers ...string) {
	if value == "" || pos.Line == 0 {
		return
	}

	length := endPos.Column - pos.Column
	if length <= 0 || endPos.Line != pos.Line {
		length = len(value)
	}

	mask := 0
	for _, m := range modifiers {
		mask |= 1 << indexOf(m, SemanticTokenModifiers)
	}

	c.tokens = append(c.tokens, SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: mask,
	})
}

// encodeSemanticTokens packs tokens into the relative wire format.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))
		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
