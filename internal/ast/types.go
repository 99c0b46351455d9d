package ast

type NodeType int

const (
	// Special / error
	ILLEGAL NodeType = iota
	BAD_EXPR

	// High-level constructs
	MODULE
	IMPORT
	IMPLEMENTS
	INTERFACE
	VARIABLE
	FUNCTION
	DECORATOR
	PARAM
	IDENT

	// Types
	TYPE
	TYPE_SUBSCRIPT
	TYPE_ARG

	// Statements
	BLOCK
	DECL_STMT
	ASSIGN_STMT
	EXPR_STMT
	RETURN_STMT
	IF_STMT
	FOR_STMT
	PASS_STMT
	BREAK_STMT
	CONTINUE_STMT
	ASSERT_STMT

	// Expressions
	INT_LIT
	STR_LIT
	BOOL_LIT
	NAME_EXPR
	ATTRIBUTE_EXPR
	SUBSCRIPT_EXPR
	CALL_EXPR
	KEYWORD
	BINARY_EXPR
	UNARY_EXPR
	LIST_EXPR
	PAREN_EXPR
)

type AssignType int

const (
	ILLEGAL_ASSIGN AssignType = iota
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
)

func (a AssignType) String() string {
	switch a {
	case ASSIGN:
		return "="
	case PLUS_ASSIGN:
		return "+="
	case MINUS_ASSIGN:
		return "-="
	case STAR_ASSIGN:
		return "*="
	case SLASH_ASSIGN:
		return "/="
	case PERCENT_ASSIGN:
		return "%="
	default:
		return "?="
	}
}

// BinaryOp returns the arithmetic operator an augmented assignment applies,
// or "" for plain assignment.
func (a AssignType) BinaryOp() string {
	switch a {
	case PLUS_ASSIGN:
		return "+"
	case MINUS_ASSIGN:
		return "-"
	case STAR_ASSIGN:
		return "*"
	case SLASH_ASSIGN:
		return "/"
	case PERCENT_ASSIGN:
		return "%"
	default:
		return ""
	}
}
