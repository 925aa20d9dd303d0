// Package repl is an interactive token inspector for Quill source.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/quill"
	"github.com/sambeau/quill/pkg/quill/settings"
	"github.com/sambeau/quill/pkg/quill/values"
)

const PROMPT = ">> "
const PROMPT_RAW = ":> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
█▀█ █░█ █ █░░ █░░
▀▀█ █▄█ █ █▄▄ █▄▄`

var replCommands = []string{":help", ":prec", ":limits", ":keywords", ":let", ":vars", ":clear", ":raw"}

// Options configures a REPL session.
type Options struct {
	Version     string
	Settings    settings.LangSettings
	Locale      string // for :vars display
	HistoryFile string // "" uses a file in the temp directory
}

// Start runs the REPL with line editing, history and tab completion until
// the user quits.
func Start(in io.Reader, out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".quill_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	s := NewSession(out, opts)
	for {
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				if s.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.Discard()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		complete, quit := s.Handle(input)
		if quit {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
		if complete != "" {
			line.AppendHistory(complete)
		}
	}
}

// Session holds the state of one REPL, independent of the terminal.
type Session struct {
	out    io.Writer
	interp *quill.Interpreter
	locale string
	raw    bool
	buf    strings.Builder
}

func NewSession(out io.Writer, opts Options) *Session {
	return &Session{
		out:    out,
		interp: quill.New(quill.WithSettings(opts.Settings), quill.WithLogger(quill.WriterLogger(out))),
		locale: opts.Locale,
	}
}

// Prompt is the prompt for the next line.
func (s *Session) Prompt() string {
	switch {
	case s.buf.Len() > 0:
		return CONTINUATION_PROMPT
	case s.raw:
		return PROMPT_RAW
	default:
		return PROMPT
	}
}

// Pending reports whether a multi-line input is being collected.
func (s *Session) Pending() bool { return s.buf.Len() > 0 }

// Discard drops any collected input.
func (s *Session) Discard() { s.buf.Reset() }

// Handle processes one line. It returns the complete input once one has
// been collected, for history, and whether the user asked to quit.
func (s *Session) Handle(input string) (complete string, quit bool) {
	trimmed := strings.TrimSpace(input)
	if s.buf.Len() == 0 {
		if trimmed == "exit" || trimmed == "quit" {
			return "", true
		}
		if strings.HasPrefix(trimmed, ":") {
			s.command(trimmed)
			return trimmed, false
		}
		if trimmed == "" {
			return "", false
		}
	}

	if s.buf.Len() > 0 {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(input)

	src := s.buf.String()
	tokens, err := s.interp.Tokenize(src)
	if err != nil {
		s.printError(err)
		s.buf.Reset()
		return src, false
	}
	report, err := s.interp.CheckStructure(tokens)
	if err != nil {
		if le, ok := qerrors.As(err); ok && le.Code == "PARSE-0002" {
			// unclosed bracket; keep reading
			return "", false
		}
		s.printError(err)
		s.buf.Reset()
		return src, false
	}
	s.buf.Reset()

	s.printTokens(tokens)
	if !s.raw {
		fmt.Fprintf(s.out, "%d tokens, %d statements\n", report.Tokens, report.Statements)
	}
	return src, false
}

func (s *Session) printTokens(tokens []lexer.TokenData) {
	for _, td := range lexer.Significant(tokens) {
		if td.Token.Is(lexer.EOF) {
			continue
		}
		if s.raw {
			fmt.Fprintln(s.out, td.Token.Type())
			continue
		}
		fmt.Fprintf(s.out, "  %-8s %-16s %q", fmt.Sprintf("%d:%d", td.Line, td.Column), td.Token.Type(), td.Token.Text())
		if v := td.Token.Value(); v != nil && td.Token.Kind() != lexer.KindKeyword {
			fmt.Fprintf(s.out, " = %s", values.Format(v, s.locale))
		}
		fmt.Fprintln(s.out)
	}
}

func (s *Session) printError(err error) {
	if le, ok := qerrors.As(err); ok {
		fmt.Fprintln(s.out, le.PrettyString())
		return
	}
	fmt.Fprintln(s.out, "Error:", err)
}

// command handles REPL meta-commands that start with ':'
func (s *Session) command(cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?    Show this help")
		fmt.Fprintln(s.out, "  :prec <op>       Show an operator's precedence")
		fmt.Fprintln(s.out, "  :limits          Show the active resource limits")
		fmt.Fprintln(s.out, "  :keywords        List keywords and symbols")
		fmt.Fprintln(s.out, "  :let <name> <literal>")
		fmt.Fprintln(s.out, "                   Bind a variable in the session scope")
		fmt.Fprintln(s.out, "  :vars            Show variables in scope")
		fmt.Fprintln(s.out, "  :clear           Clear all variables")
		fmt.Fprintln(s.out, "  :raw             Toggle raw output (token types only)")
		fmt.Fprintln(s.out, "  exit, quit       Exit the REPL")

	case ":prec":
		if arg == "" {
			for _, op := range lexer.ExpressionOperators() {
				p, _ := lexer.PrecedenceOf(op)
				fmt.Fprintf(s.out, "  %-4s %d\n", op, p)
			}
			return
		}
		p, err := lexer.Precedence(arg)
		if err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintf(s.out, "%s has precedence %d\n", arg, p)

	case ":limits":
		for _, l := range s.interp.Settings().Limits() {
			value := fmt.Sprint(l.Value)
			if l.Value <= settings.Unbounded {
				value = "unbounded"
			}
			fmt.Fprintf(s.out, "  %-34s %s\n", l.Name, value)
		}

	case ":keywords":
		fmt.Fprintln(s.out, strings.Join(lexer.Keywords(), " "))
		fmt.Fprintln(s.out, strings.Join(lexer.Symbols(), " "))

	case ":let":
		s.let(arg)

	case ":vars":
		s.printVars()

	case ":clear":
		s.interp.Reset()
		fmt.Fprintln(s.out, "Scope cleared")

	case ":raw":
		s.raw = !s.raw
		if s.raw {
			fmt.Fprintln(s.out, "Raw output mode ON (token types only)")
		} else {
			fmt.Fprintln(s.out, "Raw output mode OFF")
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// let binds name to the value of a single literal token.
func (s *Session) let(arg string) {
	name, text, _ := strings.Cut(arg, " ")
	text = strings.TrimSpace(text)
	if name == "" || text == "" {
		fmt.Fprintln(s.out, "usage: :let <name> <literal>")
		return
	}
	tokens, err := lexer.New(text).Tokenize()
	if err != nil {
		s.printError(err)
		return
	}
	sig := lexer.Significant(tokens)
	if len(sig) != 2 || !sig[0].Token.IsLiteral() {
		fmt.Fprintf(s.out, "%s is not a single literal\n", text)
		return
	}
	value := sig[0].Token.Value()
	if value == nil {
		value = values.Null{}
	}
	if err := s.interp.Set(name, value, true); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "%s = %s\n", name, values.Format(value, s.locale))
}

// printVars displays the session scope, sorted by name.
func (s *Session) printVars() {
	names := s.interp.Scope().Names()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no variables)")
		return
	}
	sort.Strings(names)
	for _, name := range names {
		v, _ := s.interp.Scope().Lookup(name)
		value := truncate(values.Format(v.Value, s.locale), 60)
		fmt.Fprintf(s.out, "  %s: %s = %s\n", name, v.Type, value)
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	candidates := lexer.Keywords()
	if strings.HasPrefix(lastWord, ":") && len(words) == 1 {
		candidates = replCommands
	}

	var matches []string
	for _, word := range candidates {
		if strings.HasPrefix(word, lastWord) && word != lastWord {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}
