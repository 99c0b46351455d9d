package errors

import (
	"fmt"
	"sort"
	"strings"

	"sigil/internal/ast"
)

// SemanticErrorBuilder provides a fluent interface for creating semantic errors with suggestions
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder
func NewSemanticError(code, message string, pos ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// At creates a builder spanning the whole node.
func At(code, message string, node ast.Node) *SemanticErrorBuilder {
	return NewSemanticError(code, message, node.NodePos()).WithLength(spanLength(node))
}

// WithLength sets the length of the error span
func (b *SemanticErrorBuilder) WithLength(length int) *SemanticErrorBuilder {
	if length > 0 {
		b.err.Length = length
	}
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *SemanticErrorBuilder) WithSuggestion(message string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *SemanticErrorBuilder) WithReplacement(message, replacement string, pos ast.Position, length int) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
		Position:    pos,
		Length:      length,
	})
	return b
}

// WithNote adds a note to the error
func (b *SemanticErrorBuilder) WithNote(note string) *SemanticErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// spanLength is the source length of a single-line node.
func spanLength(n ast.Node) int {
	start, end := n.NodePos(), n.NodeEndPos()
	if end.Line != start.Line {
		return 1
	}
	return end.Offset - start.Offset
}

// UndefinedName creates an error for unknown identifiers with suggestions
func UndefinedName(name string, node ast.Node, candidates []string) CompilerError {
	builder := At(ErrorUndefinedName, fmt.Sprintf("'%s' is not defined", name), node)

	similar := FindSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
	case 1:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	return builder.Build()
}

// UnknownMember creates an error for a missing attribute on a namespace or value
func UnknownMember(owner, member string, node ast.Node, candidates []string) CompilerError {
	builder := At(ErrorUnknownMember, fmt.Sprintf("%s has no member '%s'", owner, member), node)
	if similar := FindSimilarNames(member, candidates); len(similar) > 0 {
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	}
	return builder.Build()
}

// TypeMismatch creates an error for incompatible types
func TypeMismatch(expected, actual string, node ast.Node) CompilerError {
	builder := At(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), node)
	if strings.HasPrefix(expected, "uint") && strings.HasPrefix(actual, "uint") ||
		strings.HasPrefix(expected, "int") && strings.HasPrefix(actual, "int") {
		builder = builder.WithNote("integer types of different widths are not implicitly converted")
	}
	return builder.Build()
}

// DuplicateDeclaration creates an error for duplicate declarations
func DuplicateDeclaration(name string, node ast.Node) CompilerError {
	return At(ErrorDuplicateDeclaration, fmt.Sprintf("duplicate declaration: %s", name), node).
		WithSuggestion(fmt.Sprintf("rename the duplicate '%s' to a unique name", name)).
		WithNote("identifiers must be unique within their scope").
		Build()
}

// ArgumentCount creates an error for a call with too few or too many arguments
func ArgumentCount(name string, minArgs, maxArgs, got int, node ast.Node) CompilerError {
	expected := fmt.Sprintf("%d", minArgs)
	if maxArgs != minArgs {
		expected = fmt.Sprintf("%d to %d", minArgs, maxArgs)
	}
	return At(ErrorArgumentCount,
		fmt.Sprintf("invalid argument count for call to '%s': expected %s, got %d", name, expected, got), node).
		WithHelp("check the function signature for the number of parameters").
		Build()
}

// UnknownKeyword creates an error for an unrecognized keyword argument. The
// hint is the call rewritten without the offending keyword.
func UnknownKeyword(kwarg string, allowed []string, hint string, node ast.Node) CompilerError {
	restricted := "no keyword arguments"
	if len(allowed) > 0 {
		parts := make([]string, len(allowed))
		for i, a := range allowed {
			parts[i] = a + "="
		}
		restricted = strings.Join(parts, ", ")
	}
	msg := fmt.Sprintf("unexpected keyword argument '%s'; usage of kwargs here is restricted to %s.", kwarg, restricted)
	if hint == "" {
		return At(ErrorUnknownKeyword, msg, node).Build()
	}
	return At(ErrorUnknownKeyword, msg+fmt.Sprintf(" (hint: Try removing the kwarg: `%s`)", hint), node).
		WithReplacement("remove the keyword", hint, node.NodePos(), spanLength(node)).
		Build()
}

// CallViolation creates an error for a target that the receiver cannot reach
func CallViolation(message string, node ast.Node) CompilerError {
	return At(ErrorCallViolation, message, node).Build()
}

// NonPayable creates an error for a value transfer to a non-payable function
func NonPayable(name string, node ast.Node) CompilerError {
	return At(ErrorNonPayable, fmt.Sprintf("cannot send value to non-payable function '%s'", name), node).
		WithSuggestion("mark the target @payable or drop the 'value' argument").
		Build()
}

// LiteralRequired creates an error for a keyword argument that must be a literal
func LiteralRequired(kwarg string, node ast.Node) CompilerError {
	return At(ErrorLiteralRequired, fmt.Sprintf("value for '%s' must be a literal", kwarg), node).Build()
}

// ImmutableViolation creates an error for modifying an iterated storage value
func ImmutableViolation(message string, node ast.Node) CompilerError {
	return At(ErrorImmutableViolation, message, node).
		WithNote("the iterated value cannot be modified from inside the loop, directly or through called functions").
		Build()
}

// StateAccessViolation creates an error for forbidden reads or writes of state
func StateAccessViolation(message string, node ast.Node) CompilerError {
	return At(ErrorStateAccessViolation, message, node).Build()
}

// CompilerPanic reports a broken compiler invariant. It is never the user's fault.
func CompilerPanic(format string, args ...any) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorCompilerPanic,
		Message:  "compiler panic: " + fmt.Sprintf(format, args...),
		HelpText: "this is a bug in the compiler, please report it",
	}
}

// FindSimilarNames returns the candidates within edit distance two of target, sorted.
func FindSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if candidate != target && levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}
	sort.Strings(similar)
	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
