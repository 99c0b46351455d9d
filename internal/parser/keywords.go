package parser

var KEYWORDS = map[string]TokenType{
	"fn":         FN,
	"import":     IMPORT,
	"as":         AS,
	"interface":  INTERFACE,
	"implements": IMPLEMENTS,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"for":        FOR,
	"in":         IN,
	"pass":       PASS,
	"break":      BREAK,
	"continue":   CONTINUE,
	"assert":     ASSERT,
	"and":        AND,
	"or":         OR,
	"not":        NOT,
	"true":       TRUE,
	"false":      FALSE,
}
