package lexer

import (
	"sort"
	"sync"

	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
)

// registry is the immutable table of fixed vocabulary, keyed by source text.
type registry struct {
	keywords     map[string]*Token
	symbols      map[string]*Token
	literals     map[string]*Token
	maxSymbolLen int
	eof          *Token
	newline      *Token
}

var keywordTypes = map[string]TokenType{
	"var":      VAR,
	"const":    CONST,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"function": FUNCTION,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"try":      TRY,
	"catch":    CATCH,
	"throw":    THROW,
	"new":      NEW,
	"in":       IN,
	"run":      RUN,
	"then":     THEN,
	"typeof":   TYPEOF,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
}

var symbolTypes = map[string]TokenType{
	"+":  PLUS,
	"-":  MINUS,
	"*":  MULTIPLY,
	"/":  DIVIDE,
	"%":  PERCENT,
	"<":  LT,
	"<=": LTE,
	">":  GT,
	">=": GTE,
	"==": EQ,
	"!=": NOT_EQ,
	"&&": LOGICAL_AND,
	"||": LOGICAL_OR,
	"!":  BANG,
	"++": INCREMENT,
	"--": DECREMENT,
	"+=": PLUS_ASSIGN,
	"-=": MINUS_ASSIGN,
	"*=": MUL_ASSIGN,
	"/=": DIV_ASSIGN,
	"=":  ASSIGN,
	"(":  LPAREN,
	")":  RPAREN,
	"[":  LBRACKET,
	"]":  RBRACKET,
	"{":  LBRACE,
	"}":  RBRACE,
	",":  COMMA,
	".":  DOT,
	";":  SEMICOLON,
	":":  COLON,
	"?":  QUESTION,
	"=>": ARROW,
}

var vocabulary = sync.OnceValue(func() *registry {
	r := &registry{
		keywords: make(map[string]*Token, len(keywordTypes)),
		symbols:  make(map[string]*Token, len(symbolTypes)),
		literals: map[string]*Token{
			"true":  newToken(KindLiteralBool, TRUE, "true", values.Bool{Value: true}),
			"false": newToken(KindLiteralBool, FALSE, "false", values.Bool{Value: false}),
			"null":  newToken(KindLiteralOther, NULL, "null", values.Null{}),
		},
		eof:     newToken(KindEnd, EOF, "", nil),
		newline: newToken(KindNewLine, NEWLINE, "\n", nil),
	}
	for text, typ := range keywordTypes {
		r.keywords[text] = newToken(KindKeyword, typ, text, nil)
	}
	for text, typ := range symbolTypes {
		r.symbols[text] = newToken(KindSymbol, typ, text, nil)
		if len(text) > r.maxSymbolLen {
			r.maxSymbolLen = len(text)
		}
	}
	return r
})

// Lookup returns the shared token registered for text.
func Lookup(text string) (*Token, bool) {
	r := vocabulary()
	if tok, ok := r.keywords[text]; ok {
		return tok, true
	}
	if tok, ok := r.symbols[text]; ok {
		return tok, true
	}
	tok, ok := r.literals[text]
	return tok, ok
}

// IsKeyword reports whether text is a reserved word.
func IsKeyword(text string) bool {
	_, ok := vocabulary().keywords[text]
	return ok
}

// IsSymbol reports whether text is a registered symbol.
func IsSymbol(text string) bool {
	_, ok := vocabulary().symbols[text]
	return ok
}

// IsLiteral reports whether text is a registered literal (true, false, null).
func IsLiteral(text string) bool {
	_, ok := vocabulary().literals[text]
	return ok
}

// EndToken is the token that terminates every stream.
func EndToken() *Token { return vocabulary().eof }

// NewLineToken is the shared line-break token.
func NewLineToken() *Token { return vocabulary().newline }

// Keywords returns all keywords and word literals, sorted.
func Keywords() []string {
	r := vocabulary()
	words := make([]string, 0, len(r.keywords)+len(r.literals))
	for w := range r.keywords {
		words = append(words, w)
	}
	for w := range r.literals {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Symbols returns all registered symbol texts, sorted.
func Symbols() []string {
	r := vocabulary()
	syms := make([]string, 0, len(r.symbols))
	for s := range r.symbols {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// SuggestKeyword returns the keyword an identifier was probably meant to be,
// or "" when it is not a near miss.
func SuggestKeyword(word string) string {
	if IsKeyword(word) || IsLiteral(word) {
		return ""
	}
	return qerrors.FindClosestMatch(word, Keywords())
}

// matchSymbol returns the longest registered symbol that prefixes s.
func matchSymbol(s string) (*Token, bool) {
	r := vocabulary()
	n := min(r.maxSymbolLen, len(s))
	for ; n > 0; n-- {
		if tok, ok := r.symbols[s[:n]]; ok {
			return tok, true
		}
	}
	return nil, false
}
