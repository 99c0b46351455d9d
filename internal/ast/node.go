package ast

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

func (m *Module) NodePos() Position    { return m.Pos }
func (m *Module) NodeEndPos() Position { return m.EndPos }
func (*Module) NodeType() NodeType     { return MODULE }

func (i *Ident) NodePos() Position    { return i.Pos }
func (i *Ident) NodeEndPos() Position { return i.EndPos }
func (*Ident) NodeType() NodeType     { return IDENT }

func (i *Import) NodePos() Position    { return i.Pos }
func (i *Import) NodeEndPos() Position { return i.EndPos }
func (*Import) NodeType() NodeType     { return IMPORT }

func (i *Implements) NodePos() Position    { return i.Pos }
func (i *Implements) NodeEndPos() Position { return i.EndPos }
func (*Implements) NodeType() NodeType     { return IMPLEMENTS }

func (d *InterfaceDef) NodePos() Position    { return d.Pos }
func (d *InterfaceDef) NodeEndPos() Position { return d.EndPos }
func (*InterfaceDef) NodeType() NodeType     { return INTERFACE }

func (v *VariableDecl) NodePos() Position    { return v.Pos }
func (v *VariableDecl) NodeEndPos() Position { return v.EndPos }
func (*VariableDecl) NodeType() NodeType     { return VARIABLE }

func (f *FunctionDef) NodePos() Position    { return f.Pos }
func (f *FunctionDef) NodeEndPos() Position { return f.EndPos }
func (*FunctionDef) NodeType() NodeType     { return FUNCTION }

func (d *Decorator) NodePos() Position    { return d.Pos }
func (d *Decorator) NodeEndPos() Position { return d.EndPos }
func (*Decorator) NodeType() NodeType     { return DECORATOR }

func (p *Param) NodePos() Position    { return p.Pos }
func (p *Param) NodeEndPos() Position { return p.EndPos }
func (*Param) NodeType() NodeType     { return PARAM }

func (t *TypeExpr) NodePos() Position    { return t.Pos }
func (t *TypeExpr) NodeEndPos() Position { return t.EndPos }
func (*TypeExpr) NodeType() NodeType     { return TYPE }

func (s *TypeSubscript) NodePos() Position    { return s.Pos }
func (s *TypeSubscript) NodeEndPos() Position { return s.EndPos }
func (*TypeSubscript) NodeType() NodeType     { return TYPE_SUBSCRIPT }

func (a *TypeArg) NodePos() Position    { return a.Pos }
func (a *TypeArg) NodeEndPos() Position { return a.EndPos }
func (*TypeArg) NodeType() NodeType     { return TYPE_ARG }

func (b *Block) NodePos() Position    { return b.Pos }
func (b *Block) NodeEndPos() Position { return b.EndPos }
func (*Block) NodeType() NodeType     { return BLOCK }

func (d *DeclStmt) NodePos() Position    { return d.Pos }
func (d *DeclStmt) NodeEndPos() Position { return d.EndPos }
func (*DeclStmt) NodeType() NodeType     { return DECL_STMT }

func (a *AssignStmt) NodePos() Position    { return a.Pos }
func (a *AssignStmt) NodeEndPos() Position { return a.EndPos }
func (*AssignStmt) NodeType() NodeType     { return ASSIGN_STMT }

func (e *ExprStmt) NodePos() Position    { return e.Pos }
func (e *ExprStmt) NodeEndPos() Position { return e.EndPos }
func (*ExprStmt) NodeType() NodeType     { return EXPR_STMT }

func (r *ReturnStmt) NodePos() Position    { return r.Pos }
func (r *ReturnStmt) NodeEndPos() Position { return r.EndPos }
func (*ReturnStmt) NodeType() NodeType     { return RETURN_STMT }

func (i *IfStmt) NodePos() Position    { return i.Pos }
func (i *IfStmt) NodeEndPos() Position { return i.EndPos }
func (*IfStmt) NodeType() NodeType     { return IF_STMT }

func (f *ForStmt) NodePos() Position    { return f.Pos }
func (f *ForStmt) NodeEndPos() Position { return f.EndPos }
func (*ForStmt) NodeType() NodeType     { return FOR_STMT }

func (p *PassStmt) NodePos() Position    { return p.Pos }
func (p *PassStmt) NodeEndPos() Position { return p.EndPos }
func (*PassStmt) NodeType() NodeType     { return PASS_STMT }

func (b *BreakStmt) NodePos() Position    { return b.Pos }
func (b *BreakStmt) NodeEndPos() Position { return b.EndPos }
func (*BreakStmt) NodeType() NodeType     { return BREAK_STMT }

func (c *ContinueStmt) NodePos() Position    { return c.Pos }
func (c *ContinueStmt) NodeEndPos() Position { return c.EndPos }
func (*ContinueStmt) NodeType() NodeType     { return CONTINUE_STMT }

func (a *AssertStmt) NodePos() Position    { return a.Pos }
func (a *AssertStmt) NodeEndPos() Position { return a.EndPos }
func (*AssertStmt) NodeType() NodeType     { return ASSERT_STMT }

func (b *BadExpr) NodePos() Position    { return b.Pos }
func (b *BadExpr) NodeEndPos() Position { return b.EndPos }
func (*BadExpr) NodeType() NodeType     { return BAD_EXPR }

func (l *IntLit) NodePos() Position    { return l.Pos }
func (l *IntLit) NodeEndPos() Position { return l.EndPos }
func (*IntLit) NodeType() NodeType     { return INT_LIT }

func (l *StrLit) NodePos() Position    { return l.Pos }
func (l *StrLit) NodeEndPos() Position { return l.EndPos }
func (*StrLit) NodeType() NodeType     { return STR_LIT }

func (l *BoolLit) NodePos() Position    { return l.Pos }
func (l *BoolLit) NodeEndPos() Position { return l.EndPos }
func (*BoolLit) NodeType() NodeType     { return BOOL_LIT }

func (n *NameExpr) NodePos() Position    { return n.Pos }
func (n *NameExpr) NodeEndPos() Position { return n.EndPos }
func (*NameExpr) NodeType() NodeType     { return NAME_EXPR }

func (a *AttributeExpr) NodePos() Position    { return a.Pos }
func (a *AttributeExpr) NodeEndPos() Position { return a.EndPos }
func (*AttributeExpr) NodeType() NodeType     { return ATTRIBUTE_EXPR }

func (s *SubscriptExpr) NodePos() Position    { return s.Pos }
func (s *SubscriptExpr) NodeEndPos() Position { return s.EndPos }
func (*SubscriptExpr) NodeType() NodeType     { return SUBSCRIPT_EXPR }

func (c *CallExpr) NodePos() Position    { return c.Pos }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }
func (*CallExpr) NodeType() NodeType     { return CALL_EXPR }

func (k *Keyword) NodePos() Position    { return k.Pos }
func (k *Keyword) NodeEndPos() Position { return k.EndPos }
func (*Keyword) NodeType() NodeType     { return KEYWORD }

func (b *BinaryExpr) NodePos() Position    { return b.Pos }
func (b *BinaryExpr) NodeEndPos() Position { return b.EndPos }
func (*BinaryExpr) NodeType() NodeType     { return BINARY_EXPR }

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryExpr) NodeType() NodeType     { return UNARY_EXPR }

func (l *ListExpr) NodePos() Position    { return l.Pos }
func (l *ListExpr) NodeEndPos() Position { return l.EndPos }
func (*ListExpr) NodeType() NodeType     { return LIST_EXPR }

func (p *ParenExpr) NodePos() Position    { return p.Pos }
func (p *ParenExpr) NodeEndPos() Position { return p.EndPos }
func (*ParenExpr) NodeType() NodeType     { return PAREN_EXPR }
