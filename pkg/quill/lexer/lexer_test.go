package lexer

import (
	"errors"
	"testing"
	"time"

	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
)

func TestNextToken(t *testing.T) {
	input := "var x = 1 + 2.5 // note\nif (x >= 3) { print(\"hi ${x}\") }"

	tests := []struct {
		expectedType TokenType
		expectedText string
	}{
		{VAR, "var"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{LITERAL_NUMBER, "1"},
		{PLUS, "+"},
		{LITERAL_NUMBER, "2.5"},
		{COMMENT, "note"},
		{NEWLINE, "\n"},
		{IF, "if"},
		{LPAREN, "("},
		{IDENT, "x"},
		{GTE, ">="},
		{LITERAL_NUMBER, "3"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{IDENT, "print"},
		{LPAREN, "("},
		{MULTI, "hi ${x}"},
		{RPAREN, ")"},
		{RBRACE, "}"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		td, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if td.Token.Type() != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%q, got=%q", i, tt.expectedType, td.Token.Type())
		}
		if td.Token.Text() != tt.expectedText {
			t.Fatalf("tests[%d] - text wrong. expected=%q, got=%q", i, tt.expectedText, td.Token.Text())
		}
		if td.Index != i && tt.expectedType != EOF {
			t.Errorf("tests[%d] - index = %d", i, td.Index)
		}
	}
}

func TestPositions(t *testing.T) {
	tokens, err := New("var x\nif (x >= 3)").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := map[int][2]int{
		0: {1, 1}, // var
		1: {1, 5}, // x
		2: {1, 6}, // newline
		3: {2, 1}, // if
		4: {2, 4}, // (
		6: {2, 7}, // >=
	}
	for i, pos := range want {
		if tokens[i].Line != pos[0] || tokens[i].Column != pos[1] {
			t.Errorf("token %d (%s) at %d:%d, want %d:%d", i, tokens[i].Token.Text(), tokens[i].Line, tokens[i].Column, pos[0], pos[1])
		}
	}
	if tokens[3].Offset != 6 {
		t.Errorf("offset of 'if' = %d, want 6", tokens[3].Offset)
	}
}

func TestRegistryTokensAreShared(t *testing.T) {
	a, ok := Lookup("if")
	if !ok {
		t.Fatal("if not registered")
	}
	b, _ := Lookup("if")
	if a != b {
		t.Error("Lookup should return the same token")
	}

	tokens, err := New("if if x x").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Token != tokens[1].Token || tokens[0].Token != a {
		t.Error("keyword occurrences should share the registry token")
	}
	if tokens[0].Column == tokens[1].Column {
		t.Error("occurrences should carry their own positions")
	}
	if tokens[2].Token == tokens[3].Token {
		t.Error("identifiers are allocated per occurrence")
	}
}

func TestRegistryMembership(t *testing.T) {
	tests := []struct {
		text                     string
		keyword, symbol, literal bool
	}{
		{"function", true, false, false},
		{"and", true, false, false},
		{"+=", false, true, false},
		{"=>", false, true, false},
		{"true", false, false, true},
		{"null", false, false, true},
		{"foo", false, false, false},
	}
	for _, tt := range tests {
		if got := IsKeyword(tt.text); got != tt.keyword {
			t.Errorf("IsKeyword(%q) = %v", tt.text, got)
		}
		if got := IsSymbol(tt.text); got != tt.symbol {
			t.Errorf("IsSymbol(%q) = %v", tt.text, got)
		}
		if got := IsLiteral(tt.text); got != tt.literal {
			t.Errorf("IsLiteral(%q) = %v", tt.text, got)
		}
	}

	tok, _ := Lookup("true")
	if tok.Kind() != KindLiteralBool || tok.Value() != (values.Bool{Value: true}) {
		t.Errorf("true token = %v", tok)
	}
}

func TestKeywordsAndSuggest(t *testing.T) {
	words := Keywords()
	for i := 1; i < len(words); i++ {
		if words[i-1] > words[i] {
			t.Fatalf("Keywords not sorted at %d: %v", i, words)
		}
	}
	tests := []struct{ in, want string }{
		{"fucntion", "function"},
		{"retrun", "return"},
		{"while", ""},
		{"banana", ""},
	}
	for _, tt := range tests {
		if got := SuggestKeyword(tt.in); got != tt.want {
			t.Errorf("SuggestKeyword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{`"hello"`, KindLiteralString, "hello"},
		{`'it\'s'`, KindLiteralString, "it's"},
		{`"tab\there"`, KindLiteralString, "tab\there"},
		{`"cost \${x}"`, KindLiteralString, "cost ${x}"},
		{`'no ${interp}'`, KindLiteralString, "no ${interp}"},
		{`"héllo"`, KindLiteralString, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			td, err := New(tt.input).NextToken()
			if err != nil {
				t.Fatal(err)
			}
			if td.Token.Kind() != tt.kind || td.Token.Text() != tt.text {
				t.Errorf("got %s %q, want %s %q", td.Token.Kind(), td.Token.Text(), tt.kind, tt.text)
			}
		})
	}
}

func TestInterpolation(t *testing.T) {
	td, err := New(`"a ${b + {c: 1}.c} d${e}"`).NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if td.Token.Kind() != KindMulti {
		t.Fatalf("kind = %s", td.Token.Kind())
	}
	want := []Part{
		{Text: "a "},
		{Text: "b + {c: 1}.c", Expr: true},
		{Text: " d"},
		{Text: "e", Expr: true},
	}
	got := td.Token.Parts()
	if len(got) != len(want) {
		t.Fatalf("parts = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAtLiterals(t *testing.T) {
	tokens, err := New("@2024-01-31 @9:30am @1.2.3.4 @'oct 7, 1970' @noon").Tokenize()
	if err != nil {
		t.Fatal(err)
	}

	date := tokens[0].Token
	if date.Kind() != KindLiteralDate {
		t.Fatalf("kind = %s", date.Kind())
	}
	d := date.Value().(values.Date).Value
	if d.Year() != 2024 || d.Month() != time.January || d.Day() != 31 {
		t.Errorf("date = %v", d)
	}

	tm := tokens[1].Token
	if tm.Kind() != KindLiteralTime || tm.Value().(values.Time).Value != 9*time.Hour+30*time.Minute {
		t.Errorf("time = %v", tm)
	}

	ver := tokens[2].Token
	if ver.Kind() != KindLiteralVersion {
		t.Fatalf("kind = %s", ver.Kind())
	}
	v := ver.Value().(values.Object).Value.(Version)
	if v != (Version{Major: 1, Minor: 2, Build: 3, Revision: 4}) {
		t.Errorf("version = %+v", v)
	}

	if tokens[3].Token.Kind() != KindLiteralDate {
		t.Errorf("quoted date kind = %s", tokens[3].Token.Kind())
	}
	if tokens[4].Token.Kind() != KindLiteralTime {
		t.Errorf("noon kind = %s", tokens[4].Token.Kind())
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input  string
		code   string
		line   int
		column int
	}{
		{`"abc`, "LEX-0005", 1, 1},
		{"x = \"abc\ny\"", "LEX-0005", 1, 5},
		{"x = #", "LEX-0006", 1, 5},
		{"a\n/* open", "LEX-0007", 2, 1},
		{"12abc", "LEX-0001", 1, 1},
		{"t = @13:75", "LEX-0004", 1, 5},
		{"@2024-13-45", "LEX-0002", 1, 1},
		{"@zzz", "LEX-0002", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewWithFilename(tt.input, "main.qs").Tokenize()
			if err == nil {
				t.Fatal("expected error")
			}
			le, ok := qerrors.As(err)
			if !ok {
				t.Fatalf("not a LangError: %v", err)
			}
			if le.Code != tt.code {
				t.Errorf("code = %s, want %s", le.Code, tt.code)
			}
			if le.Line != tt.line || le.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", le.Line, le.Column, tt.line, tt.column)
			}
			if le.File != "main.qs" {
				t.Errorf("file = %q", le.File)
			}
			if !qerrors.IsSyntaxError(err) {
				t.Error("lexical errors are syntax errors")
			}
		})
	}
}

func TestPeekToken(t *testing.T) {
	l := New("a b")
	peeked, err := l.PeekToken()
	if err != nil {
		t.Fatal(err)
	}
	next, _ := l.NextToken()
	if peeked.Token.Text() != "a" || next.Token.Text() != "a" || peeked.Position != next.Position {
		t.Errorf("peek %v, next %v", peeked, next)
	}
	next, _ = l.NextToken()
	if next.Token.Text() != "b" || next.Index != 1 {
		t.Errorf("second token = %v", next)
	}
}

func TestSignificant(t *testing.T) {
	tokens, err := New("a // c\n/* d */ b").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	sig := Significant(tokens)
	if len(sig) != 3 || sig[0].Token.Text() != "a" || sig[1].Token.Text() != "b" || sig[2].Token.Kind() != KindEnd {
		t.Errorf("Significant = %v", sig)
	}
}

func TestLiteralConstructors(t *testing.T) {
	if tok, err := ToLiteralNumber("1e3"); err != nil || tok.Value().(values.Number).Value != 1000 {
		t.Errorf("ToLiteralNumber(1e3) = %v, %v", tok, err)
	}
	for _, bad := range []string{"", "abc", "NaN", "Inf", "1..2"} {
		if _, err := ToLiteralNumber(bad); !errors.Is(err, qerrors.ErrInvalidNumber) {
			t.Errorf("ToLiteralNumber(%q) err = %v", bad, err)
		}
	}
	if _, err := ToLiteralDate("yesterday-ish"); !errors.Is(err, qerrors.ErrInvalidDate) {
		t.Errorf("ToLiteralDate err = %v", err)
	}
	if _, err := ToLiteralVersion("1"); !errors.Is(err, qerrors.ErrInvalidVersion) {
		t.Errorf("ToLiteralVersion err = %v", err)
	}
	a, b := ToIdent("x"), ToIdent("x")
	if a == b {
		t.Error("ToIdent should allocate")
	}
	if s := ToLiteralString("q"); s.Kind() != KindLiteralString || s.Value() != (values.String{Value: "q"}) {
		t.Errorf("ToLiteralString = %v", s)
	}
}

func TestVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.10.0", -1},
		{"v2.0", "2.0.0", 0},
		{"1.2.3", "1.2.3.0", -1},
		{"1.2.3.10", "1.2.3.9", 1},
	}
	for _, tt := range tests {
		a, err := ParseVersion(tt.a)
		if err != nil {
			t.Fatal(err)
		}
		b, err := ParseVersion(tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	for _, bad := range []string{"1", "1.a", "1.2.3.4.5", "1..2", "-1.2"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) should fail", bad)
		}
	}
	if v, _ := ParseVersion("1.2"); v.String() != "1.2.0" {
		t.Errorf("String() = %q", v.String())
	}
}
