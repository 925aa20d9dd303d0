package quill

import (
	"fmt"
	"slices"

	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/parsestack"
)

// Report summarizes a structural check.
type Report struct {
	Tokens     int      // significant tokens, excluding EOF
	Statements int      // as split by the parser
	Deepest    int      // deepest nesting reached at an array, map, call, function or loop
	Warnings   []string // likely mistakes that are not errors
}

// CheckStructure validates bracket nesting and applies every limit that can
// be decided from tokens alone: nesting, statement count, member-access
// chains, function parameters and operator chains. Warnings are logged.
func (in *Interpreter) CheckStructure(tokens []lexer.TokenData) (Report, error) {
	var rep Report

	_, err := parsestack.Scan(tokens, func(m *parsestack.Manager, name string, td lexer.TokenData) error {
		rep.Deepest = max(rep.Deepest, m.Count())
		return in.limits.CheckConstruct(m, name, td)
	})
	if err != nil {
		return rep, in.withFile(err)
	}

	rep.Statements, err = parsestack.CountStatements(tokens)
	if err != nil {
		return rep, in.withFile(err)
	}
	if err := in.limits.CheckStatements(rep.Statements); err != nil {
		return rep, in.withFile(err)
	}

	sig := lexer.Significant(tokens)
	if n := len(sig); n > 0 && sig[n-1].Token.Is(lexer.EOF) {
		sig = sig[:n-1]
	}
	rep.Tokens = len(sig)

	if err := in.checkMemberAccess(sig); err != nil {
		return rep, in.withFile(err)
	}
	if err := in.checkParams(sig); err != nil {
		return rep, in.withFile(err)
	}
	if err := in.checkExpressions(sig); err != nil {
		return rep, in.withFile(err)
	}

	rep.Warnings = keywordWarnings(sig)
	for _, w := range rep.Warnings {
		in.logger.LogLine("[WARN]", w)
	}
	return rep, nil
}

// checkMemberAccess limits chains such as a.b.c, counting each ".name".
func (in *Interpreter) checkMemberAccess(sig []lexer.TokenData) error {
	chain := 0
	var start lexer.TokenData
	for i, td := range sig {
		tok := td.Token
		if tok.Is(lexer.DOT) && i > 0 && i+1 < len(sig) && sig[i+1].Token.Kind() == lexer.KindIdent {
			if chain == 0 {
				start = sig[i-1]
			}
			chain++
			if err := in.limits.CheckMemberAccess(chain, in.Location(start.Line, start.Column)); err != nil {
				return err
			}
			continue
		}
		// the name after a counted dot keeps the chain going
		if tok.Kind() == lexer.KindIdent && i > 0 && sig[i-1].Token.Is(lexer.DOT) {
			continue
		}
		chain = 0
	}
	return nil
}

// checkParams limits the parameter lists of function definitions.
func (in *Interpreter) checkParams(sig []lexer.TokenData) error {
	for i := 0; i < len(sig); i++ {
		if !sig[i].Token.Is(lexer.FUNCTION) {
			continue
		}
		fn := sig[i]
		name := "function"
		j := i + 1
		if j < len(sig) && sig[j].Token.Kind() == lexer.KindIdent {
			name = sig[j].Token.Text()
			j++
		}
		if j >= len(sig) || !sig[j].Token.Is(lexer.LPAREN) {
			continue
		}
		count, depth := 0, 0
		for k := j + 1; k < len(sig); k++ {
			tok := sig[k].Token
			if tok.Is(lexer.RPAREN) && depth == 0 {
				break
			}
			switch {
			case tok.Is(lexer.LPAREN), tok.Is(lexer.LBRACKET), tok.Is(lexer.LBRACE):
				depth++
			case tok.Is(lexer.RPAREN), tok.Is(lexer.RBRACKET), tok.Is(lexer.RBRACE):
				depth--
			case tok.Kind() == lexer.KindIdent && depth == 0:
				// a name opens a parameter only after "(" or ","; later
				// names belong to a default value
				if prev := sig[k-1].Token; k == j+1 || prev.Is(lexer.COMMA) {
					count++
				}
			}
		}
		if err := in.limits.CheckFuncParams(name, count, in.Location(fn.Line, fn.Column)); err != nil {
			return err
		}
	}
	return nil
}

// exprChain tracks operands joined by binary operators at one bracket level.
type exprChain struct {
	operands int
	afterOp  bool
	start    lexer.TokenData
	opener   lexer.TokenData
	follows  bool // the group directly follows an operand, as in f(x) or a[i]
}

// checkExpressions limits how many operands one chain of binary operators
// may join, as in a + b * c - d. A bracketed group counts as one operand of
// the enclosing chain; a call or index extends the operand before it.
func (in *Interpreter) checkExpressions(sig []lexer.TokenData) error {
	stack := []exprChain{{}}
	prevOperand := false
	member := false

	for _, td := range sig {
		tok := td.Token
		cur := &stack[len(stack)-1]

		if member && tok.Kind() == lexer.KindIdent {
			member = false
			prevOperand = true
			continue
		}
		member = false

		switch {
		case tok.Is(lexer.LPAREN), tok.Is(lexer.LBRACKET), tok.Is(lexer.LBRACE):
			stack = append(stack, exprChain{opener: td, follows: prevOperand})
			prevOperand = false
			continue
		case tok.Is(lexer.RPAREN), tok.Is(lexer.RBRACKET), tok.Is(lexer.RBRACE):
			group := *cur
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			if !group.follows {
				if err := in.operand(&stack[len(stack)-1], group.opener); err != nil {
					return err
				}
			}
			prevOperand = true
			continue
		case tok.Is(lexer.DOT):
			member = true
			continue
		case tok.Kind() == lexer.KindIdent || tok.IsLiteral() || tok.Kind() == lexer.KindMulti:
			if err := in.operand(cur, td); err != nil {
				return err
			}
			prevOperand = true
			continue
		}

		op, isOp := lexer.OperatorFor(tok)
		switch {
		case isOp && (op == lexer.OpNot || lexer.IsIncrement(op)):
			// unary; i++ leaves the operand in place
			if op == lexer.OpNot {
				prevOperand = false
			}
		case isOp && (lexer.IsMath(op) || lexer.IsCompare(op) || lexer.IsLogical(op)):
			if prevOperand && cur.operands > 0 {
				cur.afterOp = true
			}
			prevOperand = false
		default:
			cur.operands = 0
			cur.afterOp = false
			prevOperand = false
		}
	}
	return nil
}

// operand adds td to the chain c, starting a new chain unless an operator
// is pending.
func (in *Interpreter) operand(c *exprChain, td lexer.TokenData) error {
	if !c.afterOp {
		c.operands, c.start = 1, td
		return nil
	}
	c.operands++
	c.afterOp = false
	return in.limits.CheckConsecutiveExpressions(c.operands, in.Location(c.start.Line, c.start.Column))
}

// keywordWarnings flags identifiers that are a keyword with letters swapped,
// such as "fucntion" or "retrun".
func keywordWarnings(sig []lexer.TokenData) []string {
	var out []string
	seen := make(map[string]bool)
	for _, td := range sig {
		if td.Token.Kind() != lexer.KindIdent {
			continue
		}
		word := td.Token.Text()
		if seen[word] {
			continue
		}
		seen[word] = true
		if kw := lexer.SuggestKeyword(word); kw != "" && sameLetters(word, kw) {
			out = append(out, fmt.Sprintf("line %d, column %d: %q looks like the keyword %q", td.Line, td.Column, word, kw))
		}
	}
	return out
}

func sameLetters(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	slices.Sort(ra)
	slices.Sort(rb)
	return slices.Equal(ra, rb)
}
