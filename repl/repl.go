// Package repl is an interactive session that compiles declarations as
// they are typed.
package repl

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"sigil/grammar"
	"sigil/internal/compiler"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/output"
)

const (
	PROMPT       = "> "
	CONTINUATION = ">> "
	sessionFile  = "<repl>"
)

const help = `Type module-level declarations; each one is compiled with everything
entered before it. Blocks may span several lines.

  :selector <sig>   canonical form and selector of a signature
  :show [format]    render the session (abi, asm, layout, ...)
  :source           print the accepted declarations
  :reset            forget every declaration
  :help             this text
  :quit             leave
`

// Session holds the declarations accepted so far.
type Session struct {
	compiler *compiler.Compiler
	out      io.Writer
	accepted []string
}

func NewSession(c *compiler.Compiler, out io.Writer) *Session {
	return &Session{compiler: c, out: out}
}

func (s *Session) Source() string {
	return strings.Join(s.accepted, "\n")
}

// Execute runs one complete input and reports whether the session ended.
func (s *Session) Execute(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, ":") {
		return s.command(input)
	}

	source := s.Source() + "\n" + input
	art, err := s.compiler.CompileSource(sessionFile, source)
	if err != nil {
		fmt.Fprint(s.out, errors.NewErrorReporter(sessionFile, source).WithSources(s.compiler.Loader().ReadFile).Report(err))
		return false
	}
	s.accepted = append(s.accepted, input)

	ids := output.Identifiers(art.Program)
	sigs := make([]string, 0, len(ids))
	for sig := range ids {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	for _, sig := range sigs {
		fmt.Fprintf(s.out, "%s %s\n", ids[sig], sig)
	}
	fmt.Fprintln(s.out, color.GreenString("ok"), fmt.Sprintf("(%d bytes runtime)", len(art.Code.Runtime)))
	return false
}

func (s *Session) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(s.out, help)
	case ":reset":
		s.accepted = nil
	case ":source":
		fmt.Fprintln(s.out, s.Source())
	case ":selector":
		s.selector(arg)
	case ":show":
		s.show(arg)
	default:
		fmt.Fprintf(s.out, "unknown command %s, try :help\n", name)
	}
	return false
}

func (s *Session) selector(text string) {
	canonical, err := grammar.Canonicalize(text)
	if err != nil {
		fmt.Fprintln(s.out, color.RedString("error:"), err)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", function.FormatSelector(function.Selector(canonical)), canonical)
}

func (s *Session) show(arg string) {
	formats, err := output.ParseFormats(arg)
	if err != nil {
		fmt.Fprintln(s.out, color.RedString("error:"), err)
		return
	}
	source := s.Source()
	art, err := s.compiler.CompileSource(sessionFile, source)
	if err != nil {
		fmt.Fprint(s.out, errors.NewErrorReporter(sessionFile, source).WithSources(s.compiler.Loader().ReadFile).Report(err))
		return
	}
	for _, f := range formats {
		text, err := output.Render(art, f)
		if err != nil {
			fmt.Fprintln(s.out, color.RedString("error:"), err)
			return
		}
		fmt.Fprintln(s.out, text)
	}
}

// Complete reports whether every brace opened in text is closed.
func Complete(text string) bool {
	depth := 0
	for _, r := range text {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth <= 0
}

func completer() *readline.PrefixCompleter {
	var formats []readline.PrefixCompleterInterface
	for _, f := range output.Formats() {
		formats = append(formats, readline.PcItem(string(f)))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(":selector"),
		readline.PcItem(":show", formats...),
		readline.PcItem(":source"),
		readline.PcItem(":reset"),
		readline.PcItem(":help"),
		readline.PcItem(":quit"),
	)
}

// Start reads inputs until :quit or end of input.
func Start(c *compiler.Compiler, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       PROMPT,
		AutoComplete: completer(),
		Stdout:       out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s := NewSession(c, out)
	for {
		input, err := readInput(rl)
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if s.Execute(input) {
			return nil
		}
	}
}

func readInput(rl *readline.Instance) (string, error) {
	rl.SetPrompt(PROMPT)
	input, err := rl.Readline()
	if err != nil {
		return "", err
	}
	for !Complete(input) {
		rl.SetPrompt(CONTINUATION)
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		input += "\n" + line
	}
	return input, nil
}
