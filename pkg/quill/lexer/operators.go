package lexer

import (
	"sort"
	"sync"

	qerrors "github.com/sambeau/quill/pkg/quill/errors"
)

// Operator is the closed set of operators the parser climbs over.
type Operator int

const (
	OpNone Operator = iota

	// math
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus

	// compare
	OpLessThan
	OpLessThanEqual
	OpMoreThan
	OpMoreThanEqual
	OpEqualEqual
	OpNotEqual

	// logical
	OpAnd
	OpOr
	OpNot

	// increment and compound assignment
	OpIncrement
	OpDecrement
	OpIncrementAdd
	OpIncrementSubtract
	OpIncrementMultiply
	OpIncrementDivide

	// delimiters
	OpLeftParen
	OpRightParen
	OpLeftBracket
	OpRightBracket
	OpLeftBrace
	OpRightBrace
	OpComma
	OpDot
)

type category uint8

const (
	catMath category = 1 << iota
	catCompare
	catLogical
	catIncrement
)

type opInfo struct {
	text       string
	category   category
	precedence int
	expr       bool // takes part in precedence climbing
}

var opInfos = map[Operator]opInfo{
	OpAdd:               {text: "+", category: catMath, precedence: 5, expr: true},
	OpSubtract:          {text: "-", category: catMath, precedence: 5, expr: true},
	OpMultiply:          {text: "*", category: catMath, precedence: 6, expr: true},
	OpDivide:            {text: "/", category: catMath, precedence: 6, expr: true},
	OpModulus:           {text: "%", category: catMath, precedence: 6, expr: true},
	OpLessThan:          {text: "<", category: catCompare, precedence: 4, expr: true},
	OpLessThanEqual:     {text: "<=", category: catCompare, precedence: 4, expr: true},
	OpMoreThan:          {text: ">", category: catCompare, precedence: 4, expr: true},
	OpMoreThanEqual:     {text: ">=", category: catCompare, precedence: 4, expr: true},
	OpEqualEqual:        {text: "==", category: catCompare, precedence: 3, expr: true},
	OpNotEqual:          {text: "!=", category: catCompare, precedence: 3, expr: true},
	OpAnd:               {text: "&&", category: catLogical, precedence: 0, expr: true},
	OpOr:                {text: "||", category: catLogical, precedence: 0, expr: true},
	OpNot:               {text: "!", category: catLogical, precedence: 7, expr: true},
	OpIncrement:         {text: "++", category: catIncrement, precedence: 7, expr: true},
	OpDecrement:         {text: "--", category: catIncrement, precedence: 7, expr: true},
	OpIncrementAdd:      {text: "+=", category: catIncrement},
	OpIncrementSubtract: {text: "-=", category: catIncrement},
	OpIncrementMultiply: {text: "*=", category: catIncrement},
	OpIncrementDivide:   {text: "/=", category: catIncrement},
	OpLeftParen:         {text: "(", precedence: 9, expr: true},
	OpRightParen:        {text: ")"},
	OpLeftBracket:       {text: "[", precedence: 8, expr: true},
	OpRightBracket:      {text: "]"},
	OpLeftBrace:         {text: "{"},
	OpRightBrace:        {text: "}"},
	OpComma:             {text: ","},
	OpDot:               {text: ".", precedence: 8, expr: true},
}

type operatorTables struct {
	byText     map[string]Operator
	precedence map[Operator]int
}

var operators = sync.OnceValue(func() *operatorTables {
	t := &operatorTables{
		byText:     make(map[string]Operator, len(opInfos)+2),
		precedence: make(map[Operator]int),
	}
	for op, info := range opInfos {
		t.byText[info.text] = op
		if info.expr {
			t.precedence[op] = info.precedence
		}
	}
	// word aliases
	t.byText["and"] = OpAnd
	t.byText["or"] = OpOr
	t.byText["not"] = OpNot
	return t
})

// String returns the operator's source text.
func (op Operator) String() string {
	if info, ok := opInfos[op]; ok {
		return info.text
	}
	return "none"
}

// LookupOperator maps source text to its operator.
func LookupOperator(text string) (Operator, bool) {
	op, ok := operators().byText[text]
	return op, ok
}

// IsOp reports whether text is a registered operator.
func IsOp(text string) bool {
	_, ok := operators().byText[text]
	return ok
}

// Precedence returns the binding strength of the operator spelled text.
// Higher binds tighter; "(" is the strict maximum.
func Precedence(text string) (int, error) {
	op, ok := LookupOperator(text)
	if !ok {
		return 0, qerrors.New("OP-0001", map[string]any{"Text": text})
	}
	p, ok := operators().precedence[op]
	if !ok {
		return 0, qerrors.New("OP-0001", map[string]any{"Text": text})
	}
	return p, nil
}

// PrecedenceOf is Precedence keyed by operator.
func PrecedenceOf(op Operator) (int, bool) {
	p, ok := operators().precedence[op]
	return p, ok
}

// ExpressionOperators lists the operators that take part in precedence
// climbing, ordered by their enumeration value.
func ExpressionOperators() []Operator {
	var ops []Operator
	for op, info := range opInfos {
		if info.expr {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// OperatorFor returns the operator a token spells, if any.
func OperatorFor(tok *Token) (Operator, bool) {
	if tok == nil || (tok.Kind() != KindSymbol && tok.Kind() != KindKeyword) {
		return OpNone, false
	}
	return LookupOperator(tok.Text())
}

func IsMath(op Operator) bool      { return opInfos[op].category&catMath != 0 }
func IsCompare(op Operator) bool   { return opInfos[op].category&catCompare != 0 }
func IsLogical(op Operator) bool   { return opInfos[op].category&catLogical != 0 }
func IsIncrement(op Operator) bool { return opInfos[op].category&catIncrement != 0 }
