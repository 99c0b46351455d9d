package parser

import (
	"strings"
	"testing"
)

func scanTypes(t *testing.T, input string, expected []TokenType) []Token {
	t.Helper()
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(scanner.Errors()) > 0 {
		t.Fatalf("unexpected scan errors: %v", scanner.Errors())
	}
	if len(tokens) != len(expected)+1 {
		t.Fatalf("expected %d tokens plus EOF, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("expected trailing EOF, got %s", tokens[len(tokens)-1].Type)
	}
	return tokens
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "fn import as interface implements return if else for in pass break continue assert and or not true false customIdent _private"
	expected := []TokenType{
		FN, IMPORT, AS, INTERFACE, IMPLEMENTS, RETURN, IF, ELSE, FOR, IN,
		PASS, BREAK, CONTINUE, ASSERT, AND, OR, NOT, TRUE, FALSE,
		IDENTIFIER, IDENTIFIER,
	}
	scanTypes(t, input, expected)
}

func TestNumbers(t *testing.T) {
	tokens := scanTypes(t, "42 0 1_000 0x0 0x1F 0xabc", []TokenType{NUMBER, NUMBER, NUMBER, HEX_NUMBER, HEX_NUMBER, HEX_NUMBER})
	if tokens[2].Lexeme != "1_000" {
		t.Errorf("expected lexeme 1_000, got %s", tokens[2].Lexeme)
	}
	if tokens[4].Lexeme != "0x1F" {
		t.Errorf("expected lexeme 0x1F, got %s", tokens[4].Lexeme)
	}
}

func TestStrings(t *testing.T) {
	tokens := scanTypes(t, `"hello" "say \"hi\""`, []TokenType{STRING, STRING})
	if tokens[0].Lexeme != `"hello"` {
		t.Errorf("expected quoted lexeme, got %s", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != `"say \"hi\""` {
		t.Errorf("expected escaped quotes to stay in the lexeme, got %s", tokens[1].Lexeme)
	}
}

func TestOperatorsAndBrackets(t *testing.T) {
	input := `( ) { } [ ] , . ; : @ + - * ** / % = == != < <= > >= -> += -= *= /= %=`
	expected := []TokenType{
		LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, LEFT_BRACKET, RIGHT_BRACKET,
		COMMA, DOT, SEMICOLON, COLON, AT,
		PLUS, MINUS, STAR, STAR_STAR, SLASH, PERCENT,
		EQUAL, EQUAL_EQUAL, BANG_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL, ARROW,
		PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL, PERCENT_EQUAL,
	}
	tokens := scanTypes(t, input, expected)

	lexemes := strings.Fields(input)
	for i, want := range lexemes {
		if tokens[i].Lexeme != want {
			t.Errorf("token %d: expected lexeme %q, got %q", i, want, tokens[i].Lexeme)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	scanTypes(t, "a // line comment\n/* block\ncomment */ b", []TokenType{IDENTIFIER, IDENTIFIER})
}

func TestPositions(t *testing.T) {
	tokens := scanTypes(t, "a\n  bb = 1;", []TokenType{IDENTIFIER, IDENTIFIER, EQUAL, NUMBER, SEMICOLON})

	bb := tokens[1]
	if bb.Position.Line != 2 || bb.Position.Column != 3 || bb.Position.Offset != 4 {
		t.Errorf("expected bb at 2:3 offset 4, got %d:%d offset %d", bb.Position.Line, bb.Position.Column, bb.Position.Offset)
	}
	semi := tokens[4]
	if semi.Position.Line != 2 || semi.Position.Column != 9 {
		t.Errorf("expected ';' at 2:9, got %d:%d", semi.Position.Line, semi.Position.Column)
	}
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		input   string
		message string
		column  int
		length  int
	}{
		{"a ! b", "use 'not'", 3, 1},
		{`x = "open`, "Unterminated string", 5, 5},
		{"0x", "Invalid hex literal", 1, 2},
		{"a $", "Unexpected character", 3, 1},
		{"/* never closed", "Unterminated block comment", 1, 15},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			scanner := NewScanner(tc.input)
			scanner.ScanTokens()
			errs := scanner.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if !strings.Contains(errs[0].Message, tc.message) {
				t.Errorf("expected message containing %q, got %q", tc.message, errs[0].Message)
			}
			if errs[0].Position.Column != tc.column || errs[0].Length != tc.length {
				t.Errorf("expected column %d length %d, got column %d length %d",
					tc.column, tc.length, errs[0].Position.Column, errs[0].Length)
			}
		})
	}
}
