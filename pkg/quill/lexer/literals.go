package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
	"golang.org/x/mod/semver"
)

// ToLiteralNumber parses text as a number literal.
func ToLiteralNumber(text string) (*Token, error) {
	if text == "" || !(isDigit(text[0]) || text[0] == '.') {
		return nil, qerrors.New("LEX-0001", map[string]any{"Text": text})
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, qerrors.New("LEX-0001", map[string]any{"Text": text})
	}
	return newToken(KindLiteralNumber, LITERAL_NUMBER, text, values.Number{Value: f}), nil
}

// ToLiteralDate parses text as a calendar date or timestamp. Ambiguous
// day/month orders are rejected.
func ToLiteralDate(text string) (*Token, error) {
	t, err := dateparse.ParseStrict(strings.TrimSpace(text))
	if err != nil {
		return nil, qerrors.New("LEX-0002", map[string]any{"Text": text})
	}
	return newToken(KindLiteralDate, LITERAL_DATE, text, values.Date{Value: t}), nil
}

// ToLiteralTime parses text as a time of day.
func ToLiteralTime(text string) (*Token, error) {
	d, err := values.ParseTimeOfDay(text)
	if err != nil {
		return nil, err
	}
	return newToken(KindLiteralTime, LITERAL_TIME, text, values.Time{Value: d}), nil
}

// ToLiteralVersion parses "major.minor[.build[.revision]]", with an optional
// leading "v".
func ToLiteralVersion(text string) (*Token, error) {
	v, err := ParseVersion(text)
	if err != nil {
		return nil, err
	}
	return newToken(KindLiteralVersion, LITERAL_VERSION, text, values.Object{TypeName: "version", Value: v}), nil
}

// ToLiteralString wraps an already unescaped string.
func ToLiteralString(text string) *Token {
	return newToken(KindLiteralString, LITERAL_STRING, text, values.String{Value: text})
}

// ToIdent returns an identifier token.
func ToIdent(name string) *Token {
	return newToken(KindIdent, IDENT, name, nil)
}

// ToComment returns a comment token; text excludes the delimiters.
func ToComment(text string) *Token {
	return newToken(KindComment, COMMENT, text, nil)
}

// ToMulti returns an interpolated string token. text is the raw source
// between the quotes.
func ToMulti(text string, parts []Part) *Token {
	tok := newToken(KindMulti, MULTI, text, nil)
	tok.parts = append([]Part(nil), parts...)
	return tok
}

// Version is a dotted release number. Revision is -1 when absent.
type Version struct {
	Major, Minor, Build, Revision int
}

// ParseVersion parses a two to four part version number.
func ParseVersion(text string) (Version, error) {
	bad := func() (Version, error) {
		return Version{}, qerrors.New("LEX-0003", map[string]any{"Text": text})
	}
	s := strings.TrimPrefix(strings.TrimSpace(text), "v")
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return bad()
	}
	nums := []int{0, 0, 0, -1}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p == "" || p[0] == '+' {
			return bad()
		}
		nums[i] = n
	}
	v := Version{Major: nums[0], Minor: nums[1], Build: nums[2], Revision: nums[3]}
	if !semver.IsValid(v.semver()) {
		return bad()
	}
	return v, nil
}

func (v Version) semver() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Build)
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
	if v.Revision >= 0 {
		s += "." + strconv.Itoa(v.Revision)
	}
	return s
}

// Compare returns -1, 0 or +1. A missing revision sorts before revision 0.
func (v Version) Compare(other Version) int {
	if c := semver.Compare(v.semver(), other.semver()); c != 0 {
		return c
	}
	switch {
	case v.Revision < other.Revision:
		return -1
	case v.Revision > other.Revision:
		return 1
	}
	return 0
}

// classifyAt decides which literal an @-prefixed word denotes.
func classifyAt(text string) (*Token, error) {
	lower := strings.ToLower(text)
	switch {
	case lower == "noon" || lower == "midnight" ||
		strings.HasSuffix(lower, "am") || strings.HasSuffix(lower, "pm"):
		return ToLiteralTime(text)
	case strings.Contains(text, ":") && !strings.ContainsAny(text, "-/T "):
		return ToLiteralTime(text)
	case strings.ContainsAny(text, "-/ ") || strings.Contains(text, "T"):
		return ToLiteralDate(text)
	case strings.Count(text, ".") >= 1 && strings.Trim(strings.TrimPrefix(text, "v"), "0123456789.") == "":
		return ToLiteralVersion(text)
	}
	if _, err := dateparse.ParseStrict(text); err == nil {
		return ToLiteralDate(text)
	}
	return nil, qerrors.New("LEX-0002", map[string]any{"Text": text})
}
