// Package limits enforces LangSettings. Every check returns a Limit error
// when its setting is exceeded and nil when the setting is unbounded.
package limits

import (
	"unicode/utf8"

	"github.com/sambeau/quill/pkg/quill/ast"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/parsestack"
	"github.com/sambeau/quill/pkg/quill/settings"
)

// Checker applies one set of limits.
type Checker struct {
	s settings.LangSettings
}

func New(s settings.LangSettings) *Checker {
	return &Checker{s: s}
}

func (c *Checker) Settings() settings.LangSettings { return c.s }

// CheckCallStack has the callstack.LimitCheck signature. depth is the depth
// the stack would reach.
func (c *Checker) CheckCallStack(node ast.Node, depth int) error {
	if !c.s.HasMaxCallStack() || depth <= c.s.MaxCallStack {
		return nil
	}
	name := ""
	if node != nil {
		name = node.QualifiedName()
	}
	err := qerrors.New("LIMIT-0001", map[string]any{"Got": depth, "Max": c.s.MaxCallStack, "Function": name})
	if name == "" {
		err.Hints = nil
	}
	return atNode(err, node)
}

// CheckLoop is called before the given 1-based iteration runs.
func (c *Checker) CheckLoop(node ast.Node, iteration int) error {
	if !c.s.HasMaxLoopLimit() || iteration <= c.s.MaxLoopLimit {
		return nil
	}
	return atNode(qerrors.New("LIMIT-0002", map[string]any{"Max": c.s.MaxLoopLimit}), node)
}

func (c *Checker) CheckStatements(count int) error {
	if !c.s.HasMaxStatements() || count <= c.s.MaxStatements {
		return nil
	}
	return qerrors.New("LIMIT-0003", map[string]any{"Got": count, "Max": c.s.MaxStatements})
}

// CheckNested limits how deeply one kind of construct may nest.
func (c *Checker) CheckNested(construct string, depth int, loc ast.Location) error {
	if !c.s.HasMaxNestedStatements() || depth <= c.s.MaxNestedStatements {
		return nil
	}
	return at(qerrors.New("LIMIT-0004", map[string]any{
		"Construct": construct, "Got": depth, "Max": c.s.MaxNestedStatements,
	}), loc)
}

// CheckConstruct has the parsestack.CheckFunc signature.
func (c *Checker) CheckConstruct(m *parsestack.Manager, name string, td lexer.TokenData) error {
	return c.CheckNested(name, m.CountOf(name), ast.LocationOf("", td))
}

func (c *Checker) CheckConsecutiveExpressions(count int, loc ast.Location) error {
	if !c.s.HasMaxConsecutiveExpressions() || count <= c.s.MaxConsecutiveExpressions {
		return nil
	}
	return at(qerrors.New("LIMIT-0005", map[string]any{"Got": count, "Max": c.s.MaxConsecutiveExpressions}), loc)
}

// CheckMemberAccess limits chains such as a.b.c.d.
func (c *Checker) CheckMemberAccess(count int, loc ast.Location) error {
	if !c.s.HasMaxMemberAccess() || count <= c.s.MaxMemberAccess {
		return nil
	}
	return at(qerrors.New("LIMIT-0006", map[string]any{"Got": count, "Max": c.s.MaxMemberAccess}), loc)
}

func (c *Checker) CheckFuncParams(function string, count int, loc ast.Location) error {
	if !c.s.HasMaxFuncParams() || count <= c.s.MaxFuncParams {
		return nil
	}
	return at(qerrors.New("LIMIT-0007", map[string]any{
		"Function": function, "Got": count, "Max": c.s.MaxFuncParams,
	}), loc)
}

// CheckScriptLength counts characters, not bytes.
func (c *Checker) CheckScriptLength(src string) error {
	if !c.s.HasMaxScriptLength() {
		return nil
	}
	n := utf8.RuneCountInString(src)
	if n <= c.s.MaxScriptLength {
		return nil
	}
	return qerrors.New("LIMIT-0008", map[string]any{"Got": n, "Max": c.s.MaxScriptLength})
}

// CheckScope limits the variable count and the summed length of string
// variables across every block.
func (c *Checker) CheckScope(total, stringLength int) error {
	if c.s.HasMaxScopeVariables() && total > c.s.MaxScopeVariables {
		return qerrors.New("LIMIT-0009", map[string]any{"Got": total, "Max": c.s.MaxScopeVariables})
	}
	if c.s.HasMaxScopeStringVariablesLength() && stringLength > c.s.MaxScopeStringVariablesLength {
		return qerrors.New("LIMIT-0010", map[string]any{"Got": stringLength, "Max": c.s.MaxScopeStringVariablesLength})
	}
	return nil
}

func (c *Checker) CheckExceptions(count int) error {
	if !c.s.HasMaxExceptions() || count <= c.s.MaxExceptions {
		return nil
	}
	return qerrors.New("LIMIT-0011", map[string]any{"Got": count, "Max": c.s.MaxExceptions})
}

func atNode(err *qerrors.LangError, node ast.Node) error {
	if node == nil {
		return err
	}
	return at(err, node.Location())
}

func at(err *qerrors.LangError, loc ast.Location) error {
	if loc.Line > 0 {
		err = err.WithPosition(loc.Line, loc.Column)
	}
	if loc.Script != "" {
		err = err.WithFile(loc.Script)
	}
	return err
}
