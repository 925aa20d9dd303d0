package parsestack

import (
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// CheckFunc is called after each push onto a named stack, with the token
// that opened the construct.
type CheckFunc func(m *Manager, name string, td lexer.TokenData) error

type opener struct {
	td        lexer.TokenData
	construct Construct
	name      string // "" for untracked constructs
	closer    string
	header    string // "function" or "loop" for a header's parameter list
}

// holdsStatements reports whether newlines and semicolons directly inside
// the construct separate statements.
func (o *opener) holdsStatements() bool {
	return o.closer == "}" && o.construct != Map
}

// tracker classifies brackets from the tokens around them.
//
// "(" after a name or a closing bracket is a call, after function/for/while
// a header, otherwise a group. "{" after a function header is a function
// body, after a loop header a loop body, at statement start or after a
// block keyword a block, otherwise a map.
type tracker struct {
	open          []opener
	prev          *lexer.Token
	pendingHeader string
	closedHeader  string
}

// step consumes one significant token and returns the construct it opened
// or closed, if any.
func (t *tracker) step(td lexer.TokenData) (opened, closed *opener, err error) {
	tok := td.Token
	justClosed := ""

	switch tok.Type() {
	case lexer.FUNCTION:
		t.pendingHeader = "function"
	case lexer.FOR, lexer.WHILE:
		t.pendingHeader = "loop"

	case lexer.LPAREN:
		o := opener{td: td, construct: Block, closer: ")"}
		switch {
		case t.pendingHeader != "":
			o.header = t.pendingHeader
			t.pendingHeader = ""
		case t.prev != nil && (t.prev.Kind() == lexer.KindIdent || t.prev.Is(lexer.RPAREN) || t.prev.Is(lexer.RBRACKET)):
			o.construct, o.name = FunctionCall, FunctionCalls
		}
		t.open = append(t.open, o)
		opened = &t.open[len(t.open)-1]

	case lexer.LBRACKET:
		t.open = append(t.open, opener{td: td, construct: Array, name: Arrays, closer: "]"})
		opened = &t.open[len(t.open)-1]

	case lexer.LBRACE:
		o := opener{td: td, closer: "}"}
		switch {
		case t.closedHeader == "function":
			o.construct, o.name = Function, Functions
		case t.closedHeader == "loop":
			o.construct, o.name = Loop, Loops
		case startsBlock(t.prev):
			o.construct = Block
		default:
			o.construct, o.name = Map, Maps
		}
		t.open = append(t.open, o)
		opened = &t.open[len(t.open)-1]

	case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
		top := t.innermost()
		if top == nil {
			return nil, nil, qerrors.NewWithPosition("PARSE-0001", td.Line, td.Column,
				map[string]any{"Got": tok.Text(), "Expected": "end of statement"})
		}
		if top.closer != tok.Text() {
			return nil, nil, qerrors.NewWithPosition("PARSE-0001", td.Line, td.Column,
				map[string]any{"Got": tok.Text(), "Expected": top.closer})
		}
		c := *top
		closed = &c
		t.open = t.open[:len(t.open)-1]
		justClosed = c.header
	}

	t.closedHeader = justClosed
	t.prev = tok
	return opened, closed, nil
}

func (t *tracker) innermost() *opener {
	if len(t.open) == 0 {
		return nil
	}
	return &t.open[len(t.open)-1]
}

// unclosed reports the innermost construct still open at end of input.
func (t *tracker) unclosed() error {
	top := t.innermost()
	if top == nil {
		return nil
	}
	return qerrors.NewWithPosition("PARSE-0002", top.td.Line, top.td.Column,
		map[string]any{"Open": top.td.Token.Text()})
}

// Scan walks a token stream the way the parser nests constructs: it opens
// one on every bracket, classifies it, and closes it on the matching
// bracket. check may be nil.
func Scan(tokens []lexer.TokenData, check CheckFunc) (*Manager, error) {
	m := NewManager()
	var t tracker

	for _, td := range lexer.Significant(tokens) {
		if td.Token.Is(lexer.EOF) {
			break
		}
		opened, closed, err := t.step(td)
		if err != nil {
			return m, err
		}
		switch {
		case opened != nil && opened.name == "":
			m.Push(opened.construct)
		case opened != nil:
			if err := m.PushNamed(opened.name); err != nil {
				return m, err
			}
			if check != nil {
				if err := check(m, opened.name, opened.td); err != nil {
					return m, err
				}
			}
		case closed != nil && closed.name == "":
			m.Pop()
		case closed != nil:
			if err := m.PopNamed(closed.name); err != nil {
				return m, err
			}
		}
	}
	return m, t.unclosed()
}

// CountStatements counts statements the way the parser would split them:
// newlines and semicolons end a statement at the top level and directly
// inside blocks and bodies, never inside brackets or map literals. A block
// body's statements count on their own; else and catch continue the
// statement before them.
func CountStatements(tokens []lexer.TokenData) (int, error) {
	var t tracker
	count := 0
	inStatement := false

	atStatementLevel := func() bool {
		top := t.innermost()
		return top == nil || top.holdsStatements()
	}

	for _, td := range tokens {
		tok := td.Token
		switch tok.Kind() {
		case lexer.KindComment, lexer.KindWhitespace:
			continue
		case lexer.KindNewLine:
			if atStatementLevel() {
				inStatement = false
			}
			continue
		case lexer.KindEnd:
			return count, t.unclosed()
		}

		boundary := tok.Is(lexer.SEMICOLON) && atStatementLevel()
		opened, closed, err := t.step(td)
		if err != nil {
			return count, err
		}
		if boundary {
			inStatement = false
			continue
		}
		if closed != nil && closed.holdsStatements() {
			inStatement = false
			continue
		}
		if !inStatement && !tok.Is(lexer.ELSE) && !tok.Is(lexer.CATCH) {
			count++
		}
		inStatement = true
		if opened != nil && opened.holdsStatements() {
			inStatement = false
		}
	}
	return count, t.unclosed()
}

// startsBlock reports whether "{" after prev opens a statement block rather
// than a map literal.
func startsBlock(prev *lexer.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Type() {
	case lexer.RPAREN, lexer.SEMICOLON, lexer.LBRACE, lexer.RBRACE,
		lexer.ELSE, lexer.TRY, lexer.CATCH, lexer.THEN, lexer.ARROW:
		return true
	}
	return false
}
