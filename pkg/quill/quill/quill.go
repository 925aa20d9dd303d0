// Package quill is the embedding API. An Interpreter owns the scope, symbol
// tables and call stack for one script, and enforces its LangSettings.
//
// Basic usage:
//
//	in := quill.New(quill.WithSettings(settings.DefaultLimits()), quill.WithFilename("main.qs"))
//	tokens, err := in.Tokenize(src)
//	if err != nil {
//	    return err
//	}
//	report, err := in.CheckStructure(tokens)
//
// An Interpreter is not safe for concurrent use.
package quill

import (
	"github.com/sambeau/quill/pkg/quill/ast"
	"github.com/sambeau/quill/pkg/quill/callstack"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/limits"
	"github.com/sambeau/quill/pkg/quill/scope"
	"github.com/sambeau/quill/pkg/quill/settings"
	"github.com/sambeau/quill/pkg/quill/symbols"
	"github.com/sambeau/quill/pkg/quill/values"
)

// Interpreter holds the execution state of one script.
type Interpreter struct {
	filename   string
	settings   settings.LangSettings
	limits     *limits.Checker
	logger     Logger
	scope      *scope.Scope
	symbols    *symbols.Scopes
	calls      *callstack.CallStack
	exceptions int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSettings sets the resource limits. The default is settings.New(),
// which is unbounded.
func WithSettings(s settings.LangSettings) Option {
	return func(in *Interpreter) { in.settings = s }
}

// WithLogger sets where diagnostics go. The default discards them.
func WithLogger(l Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithFilename names the script in error positions.
func WithFilename(name string) Option {
	return func(in *Interpreter) { in.filename = name }
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		settings: settings.New(),
		logger:   NopLogger(),
		scope:    scope.New(),
		symbols:  symbols.NewScopes(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.limits = limits.New(in.settings)
	in.calls = callstack.New(in.limits.CheckCallStack)
	return in
}

func (in *Interpreter) Scope() *scope.Scope             { return in.scope }
func (in *Interpreter) Symbols() *symbols.Scopes        { return in.symbols }
func (in *Interpreter) CallStack() *callstack.CallStack { return in.calls }
func (in *Interpreter) Settings() settings.LangSettings { return in.settings }
func (in *Interpreter) Filename() string                { return in.filename }
func (in *Interpreter) Logger() Logger                  { return in.logger }

// Location is a position in this interpreter's script.
func (in *Interpreter) Location(line, column int) ast.Location {
	return ast.Location{Script: in.filename, Line: line, Column: column}
}

// Tokenize enforces the script length limit and lexes src.
func (in *Interpreter) Tokenize(src string) ([]lexer.TokenData, error) {
	if err := in.limits.CheckScriptLength(src); err != nil {
		return nil, in.withFile(err)
	}
	return lexer.NewWithFilename(src, in.filename).Tokenize()
}

// EnterBlock opens a lexical block in both the runtime scope and the symbol
// tables.
func (in *Interpreter) EnterBlock(name string) {
	in.scope.Push()
	in.symbols.Push(name)
}

// ExitBlock closes the innermost block. The global block stays.
func (in *Interpreter) ExitBlock() {
	in.scope.Pop()
	in.symbols.Pop()
}

// Set writes a variable and enforces the scope limits. A write that breaks
// a limit is undone before the error is returned.
func (in *Interpreter) Set(name string, v values.Value, declare bool) error {
	var prev scope.Variable
	var existed bool
	if declare {
		prev, existed = in.scope.Current().Get(name)
	} else {
		prev, existed = in.scope.Lookup(name)
	}

	in.scope.SetValue(name, v, declare)
	err := in.limits.CheckScope(in.scope.Total(), in.scope.TotalStringLength())
	if err == nil {
		return nil
	}
	if existed {
		in.scope.SetValue(name, prev.Value, declare)
	} else {
		in.scope.Remove(name)
	}
	return in.withFile(err)
}

// Get reads a variable, innermost block first.
func (in *Interpreter) Get(name string) (values.Value, error) {
	v, err := in.scope.Get(name)
	if err != nil {
		return nil, in.withFile(err)
	}
	return v, nil
}

// Call runs fn inside a call frame. The frame is popped whether or not fn
// fails.
func (in *Interpreter) Call(name string, node ast.Node, fn func() (values.Value, error)) (values.Value, error) {
	if err := in.calls.Push(name, node); err != nil {
		in.logger.LogLine("[WARN]", err.Error())
		return nil, in.withFile(err)
	}
	defer in.calls.Pop()
	return fn()
}

// Loop runs body up to n times, or until it returns stop or an error. A
// negative n loops until body stops. The loop limit is checked before every
// iteration.
func (in *Interpreter) Loop(node ast.Node, n int, body func(i int) (stop bool, err error)) error {
	for i := 0; n < 0 || i < n; i++ {
		if err := in.limits.CheckLoop(node, i+1); err != nil {
			in.logger.LogLine("[WARN]", err.Error())
			return in.withFile(err)
		}
		stop, err := body(i)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// Raise counts a script exception against the exception limit. It returns
// err, or the limit error once too many have been raised.
func (in *Interpreter) Raise(err error) error {
	in.exceptions++
	if lerr := in.limits.CheckExceptions(in.exceptions); lerr != nil {
		return in.withFile(lerr)
	}
	return err
}

// Exit returns the error a script uses to stop on purpose.
func (in *Interpreter) Exit(message string) error {
	return in.withFile(qerrors.NewExit(message))
}

// Reset discards all script state but keeps the settings, logger and
// filename.
func (in *Interpreter) Reset() {
	in.scope.Clear()
	in.symbols = symbols.NewScopes()
	in.calls.Clear()
	in.exceptions = 0
}

func (in *Interpreter) withFile(err error) error {
	le, ok := qerrors.As(err)
	if !ok || in.filename == "" || le.File != "" {
		return err
	}
	return le.WithFile(in.filename)
}
