package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	qerrors "github.com/sambeau/quill/pkg/quill/errors"
)

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune
	chSize       int  // byte size of current character
	line         int  // line of the current char
	column       int  // column of the current char
	index        int  // sequence number of the next token
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer whose errors carry filename.
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
	}
	l.readChar()
	return l
}

// LexerState holds the state of a lexer for save/restore
type LexerState struct {
	position     int
	readPosition int
	ch           byte
	chRune       rune
	chSize       int
	line         int
	column       int
	index        int
}

// SaveState saves the current lexer state for potential restoration
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		chRune:       l.chRune,
		chSize:       l.chSize,
		line:         l.line,
		column:       l.column,
		index:        l.index,
	}
}

// RestoreState restores the lexer to a previously saved state
func (l *Lexer) RestoreState(state LexerState) {
	l.position = state.position
	l.readPosition = state.readPosition
	l.ch = state.ch
	l.chRune = state.chRune
	l.chSize = state.chSize
	l.line = state.line
	l.column = state.column
	l.index = state.index
}

// PeekToken returns the next token without consuming it
func (l *Lexer) PeekToken() (TokenData, error) {
	state := l.SaveState()
	td, err := l.NextToken()
	l.RestoreState(state)
	return td, err
}

// Tokenize scans the rest of the input. The last token is always the end
// token unless an error stops the scan.
func (l *Lexer) Tokenize() ([]TokenData, error) {
	var tokens []TokenData
	for {
		td, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, td)
		if td.Token.Kind() == KindEnd {
			return tokens, nil
		}
	}
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() (TokenData, error) {
	l.skipWhitespace()
	pos := Position{Line: l.line, Column: l.column, Offset: l.position, Index: l.index}

	if l.atEnd() {
		return EndToken().At(pos), nil
	}

	switch {
	case l.ch == '\n':
		l.readChar()
		return l.emit(NewLineToken(), pos), nil

	case l.ch == '/' && l.peekChar() == '/':
		return l.emit(ToComment(l.readLineComment()), pos), nil

	case l.ch == '/' && l.peekChar() == '*':
		text, ok := l.readBlockComment()
		if !ok {
			return TokenData{}, l.fail(qerrors.New("LEX-0007", nil), pos)
		}
		return l.emit(ToComment(text), pos), nil

	case l.ch == '"' || l.ch == '\'':
		tok, ok := l.readString()
		if !ok {
			return TokenData{}, l.fail(qerrors.New("LEX-0005", nil), pos)
		}
		return l.emit(tok, pos), nil

	case l.ch == '@':
		tok, err := l.readAtLiteral()
		if err != nil {
			return TokenData{}, l.fail(err, pos)
		}
		return l.emit(tok, pos), nil

	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok, err := ToLiteralNumber(l.readNumber())
		if err != nil {
			return TokenData{}, l.fail(err, pos)
		}
		return l.emit(tok, pos), nil

	case isLetterRune(l.chRune):
		word := l.readIdentifier()
		if tok, ok := Lookup(word); ok {
			return l.emit(tok, pos), nil
		}
		return l.emit(ToIdent(word), pos), nil
	}

	if tok, ok := matchSymbol(l.input[l.position:]); ok {
		for range len(tok.Text()) {
			l.readChar()
		}
		return l.emit(tok, pos), nil
	}

	return TokenData{}, l.fail(qerrors.New("LEX-0006", map[string]any{"Text": string(l.chRune)}), pos)
}

func (l *Lexer) emit(tok *Token, pos Position) TokenData {
	l.index++
	return tok.At(pos)
}

// fail attaches the token start position and filename to a lexical error.
func (l *Lexer) fail(err error, pos Position) error {
	le, ok := qerrors.As(err)
	if !ok {
		return err
	}
	le = le.WithPosition(pos.Line, pos.Column)
	if l.filename != "" {
		le = le.WithFile(l.filename)
	}
	return le
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.column++

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = b
		l.chRune = r
		l.chSize = size
	}
	l.position = l.readPosition
	l.readPosition += l.chSize
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// appendCurrentChar appends all bytes of the current character.
func (l *Lexer) appendCurrentChar(result []byte) []byte {
	return append(result, l.input[l.position:l.position+l.chSize]...)
}

// peekChar returns the next byte without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharN returns the byte n positions ahead without advancing position
func (l *Lexer) peekCharN(n int) byte {
	pos := l.readPosition + n - 1
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// skipWhitespace skips blanks but not newlines, which are tokens.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEnd() && (isLetterRune(l.chRune) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits, an optional fraction and an optional exponent.
// Letters glued to the end are swallowed so "12px" fails as one literal.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharN(2))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	for !l.atEnd() && (isLetterRune(l.chRune) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString reads a quoted string with escapes. Double-quoted strings
// containing ${...} become interpolated tokens. Strings cannot span lines.
func (l *Lexer) readString() (*Token, bool) {
	quote := l.ch
	l.readChar() // skip opening quote
	start := l.position

	var text []byte
	var parts []Part
	interpolated := false

	for l.ch != quote {
		if l.atEnd() || l.ch == '\n' {
			return nil, false
		}
		switch {
		case l.ch == '\\':
			l.readChar() // consume backslash
			if l.atEnd() {
				return nil, false
			}
			switch l.ch {
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			case 'r':
				text = append(text, '\r')
			case '\\', '"', '\'', '$':
				text = append(text, l.ch)
			default:
				// unknown escape, keep as-is
				text = l.appendCurrentChar(append(text, '\\'))
			}
		case quote == '"' && l.ch == '$' && l.peekChar() == '{':
			expr, ok := l.readInterpolation()
			if !ok {
				return nil, false
			}
			if len(text) > 0 {
				parts = append(parts, Part{Text: string(text)})
				text = text[:0]
			}
			parts = append(parts, Part{Text: expr, Expr: true})
			interpolated = true
			continue
		default:
			text = l.appendCurrentChar(text)
		}
		l.readChar()
	}

	raw := l.input[start:l.position]
	l.readChar() // closing quote

	if !interpolated {
		return ToLiteralString(string(text)), true
	}
	if len(text) > 0 {
		parts = append(parts, Part{Text: string(text)})
	}
	return ToMulti(raw, parts), true
}

// readInterpolation reads "${expr}" and returns expr. Braces nest.
func (l *Lexer) readInterpolation() (string, bool) {
	l.readChar() // $
	l.readChar() // {
	start := l.position
	depth := 1
	for !l.atEnd() && l.ch != '\n' {
		switch l.ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				expr := l.input[start:l.position]
				l.readChar()
				return strings.TrimSpace(expr), true
			}
		}
		l.readChar()
	}
	return "", false
}

func (l *Lexer) readLineComment() string {
	l.readChar()
	l.readChar()
	start := l.position
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
	return strings.TrimSpace(l.input[start:l.position])
}

func (l *Lexer) readBlockComment() (string, bool) {
	l.readChar()
	l.readChar()
	start := l.position
	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			text := l.input[start:l.position]
			l.readChar()
			l.readChar()
			return strings.TrimSpace(text), true
		}
		l.readChar()
	}
	return "", false
}

// readAtLiteral reads @2024-01-31, @9:30am, @1.2.3 or a quoted form such
// as @'Jan 31 2024' for values containing spaces.
func (l *Lexer) readAtLiteral() (*Token, error) {
	l.readChar() // @

	var text string
	if l.ch == '\'' || l.ch == '"' {
		quote := l.ch
		l.readChar()
		start := l.position
		for l.ch != quote {
			if l.atEnd() || l.ch == '\n' {
				return nil, qerrors.New("LEX-0005", nil)
			}
			l.readChar()
		}
		text = l.input[start:l.position]
		l.readChar()
	} else {
		start := l.position
		for !l.atEnd() && !isAtTerminator(l.ch) {
			l.readChar()
		}
		text = l.input[start:l.position]
	}

	if strings.TrimSpace(text) == "" {
		return nil, qerrors.New("LEX-0006", map[string]any{"Text": "@"})
	}
	return classifyAt(text)
}

func isAtTerminator(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ',', ';', '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

// isLetterRune checks if a rune can start an identifier.
func isLetterRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Significant drops comments and newlines from a token stream.
func Significant(tokens []TokenData) []TokenData {
	out := make([]TokenData, 0, len(tokens))
	for _, td := range tokens {
		switch td.Token.Kind() {
		case KindComment, KindNewLine, KindWhitespace:
			continue
		}
		out = append(out, td)
	}
	return out
}
