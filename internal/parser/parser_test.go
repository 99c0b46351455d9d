package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/ast"
)

func parseClean(t *testing.T, source string) *ast.Module {
	t.Helper()
	module, parseErrors, scanErrors := ParseSource("test.sg", source)
	require.Empty(t, scanErrors, "Should have no scan errors")
	require.Empty(t, parseErrors, "Should have no parse errors")
	require.NotNil(t, module)
	return module
}

// body parses statements wrapped in a function and returns them.
func body(t *testing.T, stmts string) []ast.Stmt {
	t.Helper()
	module := parseClean(t, "fn f() {\n"+stmts+"\n}\n")
	require.Len(t, module.Items, 1)
	return module.Items[0].(*ast.FunctionDef).Body.Stmts
}

func expr(t *testing.T, text string) ast.Expr {
	t.Helper()
	stmts := body(t, "x = "+text+";")
	require.Len(t, stmts, 1)
	return stmts[0].(*ast.AssignStmt).Value
}

func TestParseEmptyModule(t *testing.T) {
	module := parseClean(t, "// only a comment\n")
	assert.Empty(t, module.Items)
	assert.Equal(t, "test.sg", module.Path)
}

func TestParseModuleItems(t *testing.T) {
	source := `import lib.math as m;
implements: Token;
interface Token {
    fn transfer(to: address, amount: uint256) -> bool: nonpayable;
    fn ready() -> bool: view;
}
balances: public(HashMap[address, uint256]);
FEE: constant(uint256) = 30;
slots: uint256[3][2];

@external
@nonreentrant("lock")
fn send(to: address, amount: uint256 = 10) -> uint256 {
    return amount;
}
`
	module := parseClean(t, source)
	require.Len(t, module.Items, 7)

	imp, ok := module.Items[0].(*ast.Import)
	require.True(t, ok, "first item should be an import")
	assert.Equal(t, "lib.math", imp.ModuleName())
	assert.Equal(t, "m", imp.LocalName())

	impl, ok := module.Items[1].(*ast.Implements)
	require.True(t, ok)
	assert.Equal(t, "Token", impl.Interface.Value)

	iface, ok := module.Items[2].(*ast.InterfaceDef)
	require.True(t, ok)
	require.Len(t, iface.Functions, 2)
	assert.Equal(t, "transfer", iface.Functions[0].Name.Value)
	assert.Equal(t, "nonpayable", iface.Functions[0].Mutability.Value)
	assert.Nil(t, iface.Functions[0].Body)
	assert.Equal(t, "bool", iface.Functions[1].Return.Name.Value)

	balances := module.Items[3].(*ast.VariableDecl)
	assert.True(t, balances.Public)
	assert.False(t, balances.Constant)
	assert.Equal(t, "HashMap[address, uint256]", balances.Type.String())
	require.Len(t, balances.Type.Subscripts, 1)
	assert.Len(t, balances.Type.Subscripts[0].Args, 2)

	fee := module.Items[4].(*ast.VariableDecl)
	assert.True(t, fee.Constant)
	assert.Equal(t, "30", fee.Value.(*ast.IntLit).Value)

	slots := module.Items[5].(*ast.VariableDecl)
	require.Len(t, slots.Type.Subscripts, 2)
	assert.Equal(t, "3", slots.Type.Subscripts[0].Args[0].Size.Value)
	assert.Equal(t, "2", slots.Type.Subscripts[1].Args[0].Size.Value)

	fn, ok := module.Items[6].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "send", fn.Name.Value)
	require.Len(t, fn.Decorators, 2)
	assert.False(t, fn.Decorators[0].Call)
	assert.True(t, fn.Decorators[1].Call)
	assert.Equal(t, "lock", fn.Decorators[1].Args[0].(*ast.StrLit).Value)
	require.Len(t, fn.Params, 2)
	assert.Nil(t, fn.Params[0].Default)
	assert.Equal(t, "10", fn.Params[1].Default.(*ast.IntLit).Value)
	assert.Equal(t, "uint256", fn.Return.Name.Value)
	assert.Nil(t, fn.Mutability)
}

func TestParseStatements(t *testing.T) {
	stmts := body(t, `    total: uint256 = 1;
    self.count += total;
    if total > 1 {
        pass;
    } else if total == 0 {
        break;
    } else {
        continue;
    }
    for i: uint8 in range(10) {
        pass;
    }
    for who in self.holders {
        pass;
    }
    assert total != 0, "empty";
    assert ok;
    send(to=msg.sender);
    return;`)
	require.Len(t, stmts, 9)

	decl := stmts[0].(*ast.DeclStmt)
	assert.Equal(t, "total", decl.Name.Value)
	assert.Equal(t, "uint256", decl.Type.Name.Value)

	assign := stmts[1].(*ast.AssignStmt)
	assert.Equal(t, ast.PLUS_ASSIGN, assign.Op)
	assert.Equal(t, "self.count", assign.Target.String())

	ifStmt := stmts[2].(*ast.IfStmt)
	require.NotNil(t, ifStmt.Else)
	require.Len(t, ifStmt.Else.Stmts, 1)
	nested := ifStmt.Else.Stmts[0].(*ast.IfStmt)
	assert.IsType(t, &ast.BreakStmt{}, nested.Then.Stmts[0])
	assert.IsType(t, &ast.ContinueStmt{}, nested.Else.Stmts[0])

	rangeLoop := stmts[3].(*ast.ForStmt)
	assert.Equal(t, "i", rangeLoop.Target.Value)
	assert.Equal(t, "uint8", rangeLoop.TargetType.Name.Value)
	assert.Equal(t, "range(10)", rangeLoop.Iter.String())

	listLoop := stmts[4].(*ast.ForStmt)
	assert.Nil(t, listLoop.TargetType)

	withMsg := stmts[5].(*ast.AssertStmt)
	assert.Equal(t, "empty", withMsg.Msg.(*ast.StrLit).Value)
	assert.Nil(t, stmts[6].(*ast.AssertStmt).Msg)

	call := stmts[7].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	assert.Empty(t, call.Args)
	require.Len(t, call.Keywords, 1)
	assert.Equal(t, "msg.sender", call.KeywordValue("to").String())
	assert.Nil(t, call.KeywordValue("gas"))

	assert.Nil(t, stmts[8].(*ast.ReturnStmt).Value)
}

func TestPrecedence(t *testing.T) {
	sum := expr(t, "1 + 2 * 3").(*ast.BinaryExpr)
	assert.Equal(t, "+", sum.Op)
	assert.Equal(t, "*", sum.Right.(*ast.BinaryExpr).Op)

	left := expr(t, "10 - 4 - 3").(*ast.BinaryExpr)
	assert.Equal(t, "10 - 4", left.Left.String(), "'-' is left associative")

	pow := expr(t, "2 ** 3 ** 2").(*ast.BinaryExpr)
	assert.Equal(t, "3 ** 2", pow.Right.String(), "'**' is right associative")

	logic := expr(t, "a or b and c").(*ast.BinaryExpr)
	assert.Equal(t, "or", logic.Op)
	assert.Equal(t, "and", logic.Right.(*ast.BinaryExpr).Op)

	not := expr(t, "not a == b").(*ast.UnaryExpr)
	assert.Equal(t, "==", not.Operand.(*ast.BinaryExpr).Op)

	neg := expr(t, "-x * y").(*ast.BinaryExpr)
	assert.Equal(t, "-", neg.Left.(*ast.UnaryExpr).Op)

	paren := expr(t, "(1 + 2) * 3").(*ast.BinaryExpr)
	assert.IsType(t, &ast.ParenExpr{}, paren.Left)

	postfix := expr(t, "Token(addr).balanceOf(self)[0]").(*ast.SubscriptExpr)
	assert.Equal(t, "Token(addr).balanceOf(self)", postfix.Value.String())

	list := expr(t, "[1, 2, 3,]").(*ast.ListExpr)
	assert.Len(t, list.Elements, 3)
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "0xff", expr(t, "0xff").(*ast.IntLit).Value)
	assert.Equal(t, `a"b`, expr(t, `"a\"b"`).(*ast.StrLit).Value)
	assert.True(t, expr(t, "true").(*ast.BoolLit).Value)
	assert.False(t, expr(t, "false").(*ast.BoolLit).Value)
}

func TestNodePositions(t *testing.T) {
	source := "fn f() {\n    x = a + bb;\n}\n"
	module := parseClean(t, source)
	fn := module.Items[0].(*ast.FunctionDef)

	assert.Equal(t, 1, fn.Pos.Line)
	assert.Equal(t, 4, fn.Name.Pos.Column)
	assert.Equal(t, 5, fn.Name.EndPos.Column)

	assign := fn.Body.Stmts[0].(*ast.AssignStmt)
	assert.Equal(t, 2, assign.Pos.Line)
	assert.Equal(t, 5, assign.Pos.Column)

	sum := assign.Value.(*ast.BinaryExpr)
	assert.Equal(t, "a + bb", ast.SourceText(source, sum))
	assert.Equal(t, "test.sg", sum.Pos.Filename)
}

func TestRoundTrip(t *testing.T) {
	source := `import lib.math as m;
implements: Token;
interface Token {
    fn transfer(to: address, amount: uint256) -> bool: nonpayable;
}
owner: public(address);
LIMIT: constant(uint256) = 10;
@external
@nonreentrant("lock")
fn send(to: address, amount: uint256 = 1) -> bool {
    total: uint256 = amount * 2;
    self.balances[to] += total;
    if total > LIMIT {
        return false;
    } else if total == 0 {
        pass;
    } else {
        assert not self.paused, "paused";
    }
    for i: uint8 in range(3) {
        continue;
    }
    Token(to).transfer(to, amount, gas=100);
    return true;
}
`
	module := parseClean(t, source)
	assert.Equal(t, source, module.String())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
		line    int
	}{
		{"missing semicolon", "x: uint256\n@external\nfn f() {\n    pass;\n}\n", "expected ';' after variable declaration", 2},
		{"missing body", "fn f()\nx: uint256;\n", "expected '{' to start function body", 2},
		{"bad expression", "fn f() {\n    x = 1 + ;\n}\n", "unexpected token in expression", 2},
		{"positional after keyword", "fn f() {\n    g(a=1, 2);\n}\n", "positional argument follows keyword argument", 2},
		{"bad wrapper", "x: private(uint256);\n", "expected 'public' or 'constant'", 1},
		{"stray token", "return;\n", "expected declaration", 1},
		{"unclosed block", "fn f() {\n    pass;\n", "expected '}' to close block", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, parseErrors, _ := ParseSource("test.sg", tc.source)
			require.NotEmpty(t, parseErrors)
			assert.Contains(t, parseErrors[0].Message, tc.message)
			assert.Equal(t, tc.line, parseErrors[0].Position.Line)
		})
	}
}

func TestRecovery(t *testing.T) {
	source := "x: uint256\n@external\nfn f() {\n    pass;\n}\ny: bool;\n"
	module, parseErrors, _ := ParseSource("test.sg", source)
	require.Len(t, parseErrors, 1)
	require.Len(t, module.Items, 3)
	assert.Equal(t, "f", module.Items[1].(*ast.FunctionDef).Name.Value)
	assert.Equal(t, "y", module.Items[2].(*ast.VariableDecl).Name.Value)
}
