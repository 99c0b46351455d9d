package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"

	"sigil/internal/ast"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// CompilerError represents a structured error with suggestions and context
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0001
	Message     string       // Primary error message
	Position    ast.Position // Location in source
	Length      int          // Length of the problematic region
	Suggestions []Suggestion // Suggested fixes
	Notes       []string     // Additional context notes
	HelpText    string       // Help text for the error
}

// Error renders the diagnostic on one line, prefixed by its location.
func (e CompilerError) Error() string {
	loc := ""
	if e.Position.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d: ", e.Position.Filename, e.Position.Line, e.Position.Column)
	}
	return fmt.Sprintf("%s%s[%s]: %s", loc, e.Level, e.Code, e.Message)
}

// AsCompilerError extracts a diagnostic from an error chain.
func AsCompilerError(err error) (CompilerError, bool) {
	var ce CompilerError
	if pkgerrors.As(err, &ce) {
		return ce, true
	}
	return ce, false
}

// IsPanic reports whether err is an internal compiler error.
func IsPanic(err error) bool {
	ce, ok := AsCompilerError(err)
	return ok && ce.Code == ErrorCompilerPanic
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string       // Description of the suggestion
	Replacement string       // Suggested replacement text (optional)
	Position    ast.Position // Position to apply the fix (optional)
	Length      int          // Length of text to replace (optional)
}

// SourceFunc returns the text of a file named by a diagnostic.
type SourceFunc func(path string) (string, error)

// ErrorReporter renders diagnostics with an excerpt of the offending line.
type ErrorReporter struct {
	filename string
	lines    []string
	sources  SourceFunc
}

var (
	levelStyles = map[ErrorLevel]*color.Color{
		Error:   color.New(color.FgRed, color.Bold),
		Warning: color.New(color.FgYellow, color.Bold),
		Note:    color.New(color.FgBlue, color.Bold),
		Help:    color.New(color.FgGreen, color.Bold),
	}
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	blue  = color.New(color.FgBlue).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

func levelStyle(level ErrorLevel) func(...interface{}) string {
	if c, ok := levelStyles[level]; ok {
		return c.SprintFunc()
	}
	return levelStyles[Error].SprintFunc()
}

// NewErrorReporter creates a reporter for diagnostics in filename.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// WithSources lets the reporter quote files other than its own, such as
// an imported module that failed to compile.
func (er *ErrorReporter) WithSources(fn SourceFunc) *ErrorReporter {
	er.sources = fn
	return er
}

// Report formats any error returned by the compiler. Diagnostics get the
// full source excerpt, other errors a single colored line.
func (er *ErrorReporter) Report(err error) string {
	if ce, ok := AsCompilerError(err); ok {
		return er.FormatError(ce)
	}
	return fmt.Sprintf("%s: %s\n", levelStyle(Error)(string(Error)), err)
}

// FormatError renders err as
//
//	error[E0201]: message
//	   --> file.sg:3:10
//	    |
//	  2 | previous line
//	  3 | offending line
//	    |          ^^^^^
//	    = help: suggestion
//	    = note: note
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var b strings.Builder
	pos := err.Position
	file := pos.Filename
	if file == "" {
		file = er.filename
	}

	head := string(err.Level)
	if err.Code != "" {
		head += "[" + err.Code + "]"
	}
	fmt.Fprintf(&b, "%s: %s\n", levelStyle(err.Level)(head), bold(err.Message))

	width := gutterWidth(pos.Line)
	pad := strings.Repeat(" ", width)
	if pos.Line > 0 {
		fmt.Fprintf(&b, "%s %s %s:%d:%d\n", pad, faint("-->"), file, pos.Line, pos.Column)
		if lines := er.linesOf(file); pos.Line <= len(lines) {
			fmt.Fprintf(&b, "%s %s\n", pad, faint("|"))
			if pos.Line > 1 {
				fmt.Fprintf(&b, "%s %s %s\n", faint(fmt.Sprintf("%*d", width, pos.Line-1)), faint("|"), lines[pos.Line-2])
			}
			text := lines[pos.Line-1]
			fmt.Fprintf(&b, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, pos.Line)), faint("|"), text)
			fmt.Fprintf(&b, "%s %s %s\n", pad, faint("|"), underline(text, pos.Column, err.Length, err.Level))
		}
	}

	for _, s := range err.Suggestions {
		fmt.Fprintf(&b, "%s %s %s: %s\n", pad, faint("="), cyan("help"), s.Message)
		if s.Replacement == "" {
			continue
		}
		for _, line := range strings.Split(s.Replacement, "\n") {
			fmt.Fprintf(&b, "%s %s %s\n", pad, faint("|"), cyan(line))
		}
	}
	for _, note := range err.Notes {
		fmt.Fprintf(&b, "%s %s %s: %s\n", pad, faint("="), blue("note"), note)
	}
	if err.HelpText != "" {
		fmt.Fprintf(&b, "%s %s %s: %s\n", pad, faint("="), green("help"), err.HelpText)
	}

	b.WriteString("\n")
	return b.String()
}

// linesOf returns the lines of file, nil when its text is unavailable.
func (er *ErrorReporter) linesOf(file string) []string {
	if file == er.filename {
		return er.lines
	}
	if er.sources == nil {
		return nil
	}
	text, err := er.sources(file)
	if err != nil {
		return nil
	}
	return strings.Split(text, "\n")
}

// underline marks length bytes of text from column, clipped to the end of
// the line. Tabs in the indentation are kept so the carets line up.
func underline(text string, column, length int, level ErrorLevel) string {
	start := min(max(column-1, 0), len(text))
	var pad strings.Builder
	for i := 0; i < start; i++ {
		if text[i] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	length = max(min(length, len(text)-start), 1)
	return pad.String() + levelStyle(level)(strings.Repeat("^", length))
}

func gutterWidth(line int) int {
	return max(len(fmt.Sprint(line)), 3)
}
