package lexer

import (
	"fmt"

	"github.com/sambeau/quill/pkg/quill/values"
)

// Kind is the coarse category of a token.
type Kind int

const (
	KindKeyword Kind = iota
	KindSymbol
	KindIdent
	KindComment
	KindMulti // string with ${...} interpolation
	KindLiteralString
	KindLiteralNumber
	KindLiteralDate
	KindLiteralBool
	KindLiteralTime
	KindLiteralVersion
	KindLiteralOther // null
	KindNewLine
	KindWhitespace
	KindEnd
)

var kindNames = [...]string{
	KindKeyword:        "Keyword",
	KindSymbol:         "Symbol",
	KindIdent:          "Ident",
	KindComment:        "Comment",
	KindMulti:          "Multi",
	KindLiteralString:  "LiteralString",
	KindLiteralNumber:  "LiteralNumber",
	KindLiteralDate:    "LiteralDate",
	KindLiteralBool:    "LiteralBool",
	KindLiteralTime:    "LiteralTime",
	KindLiteralVersion: "LiteralVersion",
	KindLiteralOther:   "LiteralOther",
	KindNewLine:        "NewLine",
	KindWhitespace:     "Whitespace",
	KindEnd:            "End",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsLiteral reports whether k is one of the literal kinds.
func (k Kind) IsLiteral() bool {
	return k >= KindLiteralString && k <= KindLiteralOther
}

// TokenType is the fine-grained identity of a token.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	NEWLINE
	WHITESPACE
	COMMENT
	IDENT
	MULTI

	// Literals
	LITERAL_STRING
	LITERAL_NUMBER
	LITERAL_DATE
	LITERAL_TIME
	LITERAL_VERSION
	TRUE
	FALSE
	NULL

	// Keywords
	VAR
	CONST
	IF
	ELSE
	FOR
	WHILE
	FUNCTION
	RETURN
	BREAK
	CONTINUE
	TRY
	CATCH
	THROW
	NEW
	IN
	RUN
	THEN
	TYPEOF
	AND // "and"
	OR  // "or"
	NOT // "not"

	// Symbols
	PLUS         // +
	MINUS        // -
	MULTIPLY     // *
	DIVIDE       // /
	PERCENT      // %
	LT           // <
	LTE          // <=
	GT           // >
	GTE          // >=
	EQ           // ==
	NOT_EQ       // !=
	LOGICAL_AND  // &&
	LOGICAL_OR   // ||
	BANG         // !
	INCREMENT    // ++
	DECREMENT    // --
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	MUL_ASSIGN   // *=
	DIV_ASSIGN   // /=
	ASSIGN       // =
	LPAREN       // (
	RPAREN       // )
	LBRACKET     // [
	RBRACKET     // ]
	LBRACE       // {
	RBRACE       // }
	COMMA        // ,
	DOT          // .
	SEMICOLON    // ;
	COLON        // :
	QUESTION     // ?
	ARROW        // =>
)

var typeNames = map[TokenType]string{
	ILLEGAL:         "Illegal",
	EOF:             "EndToken",
	NEWLINE:         "NewLine",
	WHITESPACE:      "WhiteSpace",
	COMMENT:         "Comment",
	IDENT:           "Ident",
	MULTI:           "Multi",
	LITERAL_STRING:  "LiteralString",
	LITERAL_NUMBER:  "LiteralNumber",
	LITERAL_DATE:    "LiteralDate",
	LITERAL_TIME:    "LiteralTime",
	LITERAL_VERSION: "LiteralVersion",
	TRUE:            "True",
	FALSE:           "False",
	NULL:            "Null",
	VAR:             "Var",
	CONST:           "Const",
	IF:              "If",
	ELSE:            "Else",
	FOR:             "For",
	WHILE:           "While",
	FUNCTION:        "Function",
	RETURN:          "Return",
	BREAK:           "Break",
	CONTINUE:        "Continue",
	TRY:             "Try",
	CATCH:           "Catch",
	THROW:           "Throw",
	NEW:             "New",
	IN:              "In",
	RUN:             "Run",
	THEN:            "Then",
	TYPEOF:          "Typeof",
	AND:             "And",
	OR:              "Or",
	NOT:             "Not",
	PLUS:            "Plus",
	MINUS:           "Minus",
	MULTIPLY:        "Multiply",
	DIVIDE:          "Divide",
	PERCENT:         "Percent",
	LT:              "LessThan",
	LTE:             "LessThanOrEqual",
	GT:              "MoreThan",
	GTE:             "MoreThanOrEqual",
	EQ:              "EqualEqual",
	NOT_EQ:          "NotEqual",
	LOGICAL_AND:     "LogicalAnd",
	LOGICAL_OR:      "LogicalOr",
	BANG:            "LogicalNot",
	INCREMENT:       "Increment",
	DECREMENT:       "Decrement",
	PLUS_ASSIGN:     "IncrementAdd",
	MINUS_ASSIGN:    "IncrementSubtract",
	MUL_ASSIGN:      "IncrementMultiply",
	DIV_ASSIGN:      "IncrementDivide",
	ASSIGN:          "Assignment",
	LPAREN:          "LeftParenthesis",
	RPAREN:          "RightParenthesis",
	LBRACKET:        "LeftBracket",
	RBRACKET:        "RightBracket",
	LBRACE:          "LeftBrace",
	RBRACE:          "RightBrace",
	COMMA:           "Comma",
	DOT:             "Dot",
	SEMICOLON:       "Semicolon",
	COLON:           "Colon",
	QUESTION:        "Question",
	ARROW:           "Arrow",
}

// String returns the type name, e.g. "Plus" or "LiteralNumber".
func (tt TokenType) String() string {
	if name, ok := typeNames[tt]; ok {
		return name
	}
	return "Unknown"
}

// Part is one segment of an interpolated string.
type Part struct {
	Text string
	Expr bool // Text is expression source from ${...}
}

// Token is an immutable vocabulary entry. Keywords, symbols and the
// true/false/null literals are allocated once in the registry and shared;
// literals and identifiers are allocated per occurrence.
type Token struct {
	kind  Kind
	typ   TokenType
	text  string
	value values.Value
	parts []Part
}

func newToken(kind Kind, typ TokenType, text string, value values.Value) *Token {
	return &Token{kind: kind, typ: typ, text: text, value: value}
}

func (t *Token) Kind() Kind           { return t.kind }
func (t *Token) Type() TokenType      { return t.typ }
func (t *Token) Text() string         { return t.text }
func (t *Token) Value() values.Value  { return t.value }
func (t *Token) IsLiteral() bool      { return t.kind.IsLiteral() }
func (t *Token) Is(tt TokenType) bool { return t.typ == tt }

// Parts returns a copy of the segments of an interpolated string token.
func (t *Token) Parts() []Part {
	return append([]Part(nil), t.parts...)
}

func (t *Token) String() string {
	return fmt.Sprintf("{Kind: %s, Type: %s, Text: %q}", t.kind, t.typ, t.text)
}

// At pairs the token with a source position.
func (t *Token) At(pos Position) TokenData {
	return TokenData{Token: t, Position: pos}
}

// Position locates one token occurrence in the source.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte offset into the source
	Index  int // sequence number of the token in the stream
}

// TokenData is one occurrence of a token in a script.
type TokenData struct {
	Token *Token
	Position
}

func (td TokenData) String() string {
	return fmt.Sprintf("%d:%d %s %q", td.Line, td.Column, td.Token.Type(), td.Token.Text())
}
