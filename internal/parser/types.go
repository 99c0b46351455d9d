package parser

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	NUMBER
	HEX_NUMBER
	STRING

	// Keywords
	FN
	IMPORT
	AS
	INTERFACE
	IMPLEMENTS
	RETURN
	IF
	ELSE
	FOR
	IN
	PASS
	BREAK
	CONTINUE
	ASSERT
	AND
	OR
	NOT
	TRUE
	FALSE

	// Operators
	PLUS
	MINUS
	STAR
	STAR_STAR
	SLASH
	PERCENT
	EQUAL
	EQUAL_EQUAL
	BANG_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL
	ARROW

	// Assignment operators
	PLUS_EQUAL
	MINUS_EQUAL
	STAR_EQUAL
	SLASH_EQUAL
	PERCENT_EQUAL

	// Separators
	COMMA
	DOT
	SEMICOLON
	COLON
	AT

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
)

var tokenNames = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	NUMBER:        "NUMBER",
	HEX_NUMBER:    "HEX_NUMBER",
	STRING:        "STRING",
	PLUS:          "'+'",
	MINUS:         "'-'",
	STAR:          "'*'",
	STAR_STAR:     "'**'",
	SLASH:         "'/'",
	PERCENT:       "'%'",
	EQUAL:         "'='",
	EQUAL_EQUAL:   "'=='",
	BANG_EQUAL:    "'!='",
	LESS:          "'<'",
	LESS_EQUAL:    "'<='",
	GREATER:       "'>'",
	GREATER_EQUAL: "'>='",
	ARROW:         "'->'",
	PLUS_EQUAL:    "'+='",
	MINUS_EQUAL:   "'-='",
	STAR_EQUAL:    "'*='",
	SLASH_EQUAL:   "'/='",
	PERCENT_EQUAL: "'%='",
	COMMA:         "','",
	DOT:           "'.'",
	SEMICOLON:     "';'",
	COLON:         "':'",
	AT:            "'@'",
	LEFT_PAREN:    "'('",
	RIGHT_PAREN:   "')'",
	LEFT_BRACE:    "'{'",
	RIGHT_BRACE:   "'}'",
	LEFT_BRACKET:  "'['",
	RIGHT_BRACKET: "']'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for word, tt := range KEYWORDS {
		if tt == t {
			return "'" + word + "'"
		}
	}
	return "UNKNOWN"
}

type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based absolute index in input
}
