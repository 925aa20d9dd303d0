package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/values"
)

// Location is where a node starts in its script.
type Location struct {
	Script string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Script == "" {
		return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Script, l.Line, l.Column)
}

// LocationOf builds a Location from a token occurrence.
func LocationOf(script string, td lexer.TokenData) Location {
	return Location{Script: script, Line: td.Line, Column: td.Column}
}

// Node represents any node in the AST
type Node interface {
	// Parent is a back-link to the owning node; nil for the root.
	Parent() Node
	// SetParent is called once, right after the node is attached. Attaching
	// to a second, different parent panics.
	SetParent(Node)
	Location() Location
	// IsBoundary reports whether the grammar closes this node with a
	// delimiter, returned by Terminator.
	IsBoundary() bool
	Terminator() string
	// QualifiedName is the dotted name the node refers to, or "".
	QualifiedName() string
	Accept(Visitor) (values.Value, error)
	String() string
}

// Visitor is implemented by tree walkers such as the evaluator.
type Visitor interface {
	VisitIdentifier(*Identifier) (values.Value, error)
	VisitLiteral(*Literal) (values.Value, error)
	VisitMemberAccess(*MemberAccess) (values.Value, error)
	VisitFunctionCall(*FunctionCall) (values.Value, error)
	VisitArrayLiteral(*ArrayLiteral) (values.Value, error)
	VisitMapLiteral(*MapLiteral) (values.Value, error)
	VisitBlock(*Block) (values.Value, error)
}

// Base carries the state every node shares. Concrete nodes embed it.
type Base struct {
	parent   Node
	Loc      Location
	Boundary bool
	Terminal string
}

func (b *Base) Parent() Node          { return b.parent }
func (b *Base) Location() Location    { return b.Loc }
func (b *Base) IsBoundary() bool      { return b.Boundary }
func (b *Base) Terminator() string    { return b.Terminal }
func (b *Base) QualifiedName() string { return "" }

func (b *Base) SetParent(p Node) {
	if b.parent != nil && b.parent != p {
		panic(fmt.Sprintf("ast: node at %s already attached to %s", b.Loc, b.parent.String()))
	}
	b.parent = p
}

// Attach sets parent as the parent of every non-nil child.
func Attach(parent Node, children ...Node) {
	for _, c := range children {
		if c != nil {
			c.SetParent(parent)
		}
	}
}

// Root follows parent links to the top of the tree.
func Root(n Node) Node {
	for n != nil && n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// Identifier is a bare name.
type Identifier struct {
	Base
	Name string
}

func NewIdentifier(loc Location, name string) *Identifier {
	return &Identifier{Base: Base{Loc: loc}, Name: name}
}

func (i *Identifier) QualifiedName() string                  { return i.Name }
func (i *Identifier) Accept(v Visitor) (values.Value, error) { return v.VisitIdentifier(i) }
func (i *Identifier) String() string                         { return i.Name }

// Literal is a constant taken from a literal token.
type Literal struct {
	Base
	Token *lexer.Token
}

func NewLiteral(loc Location, tok *lexer.Token) *Literal {
	return &Literal{Base: Base{Loc: loc}, Token: tok}
}

// Value is the literal's runtime value; null when the token carries none.
func (l *Literal) Value() values.Value {
	if l.Token == nil || l.Token.Value() == nil {
		return values.Null{}
	}
	return l.Token.Value()
}

func (l *Literal) Accept(v Visitor) (values.Value, error) { return v.VisitLiteral(l) }
func (l *Literal) String() string {
	if l.Token == nil {
		return "null"
	}
	if l.Token.Kind() == lexer.KindLiteralString {
		return fmt.Sprintf("%q", l.Token.Text())
	}
	return l.Token.Text()
}

// MemberAccess is "object.member".
type MemberAccess struct {
	Base
	Object Node
	Member string
}

func NewMemberAccess(loc Location, object Node, member string) *MemberAccess {
	m := &MemberAccess{Base: Base{Loc: loc}, Object: object, Member: member}
	Attach(m, object)
	return m
}

func (m *MemberAccess) QualifiedName() string {
	if m.Object == nil {
		return m.Member
	}
	prefix := m.Object.QualifiedName()
	if prefix == "" {
		return ""
	}
	return prefix + "." + m.Member
}

func (m *MemberAccess) Accept(v Visitor) (values.Value, error) { return v.VisitMemberAccess(m) }
func (m *MemberAccess) String() string {
	if m.Object == nil {
		return m.Member
	}
	return m.Object.String() + "." + m.Member
}

// FunctionCall is "callee(args...)".
type FunctionCall struct {
	Base
	Callee    Node
	Arguments []Node
}

func NewFunctionCall(loc Location, callee Node, args ...Node) *FunctionCall {
	c := &FunctionCall{Base: Base{Loc: loc, Boundary: true, Terminal: ")"}, Callee: callee, Arguments: args}
	Attach(c, callee)
	Attach(c, args...)
	return c
}

// QualifiedName is the callee's dotted name, e.g. "math.max".
func (c *FunctionCall) QualifiedName() string {
	if c.Callee == nil {
		return ""
	}
	return c.Callee.QualifiedName()
}

func (c *FunctionCall) Accept(v Visitor) (values.Value, error) { return v.VisitFunctionCall(c) }
func (c *FunctionCall) String() string {
	var out bytes.Buffer
	if c.Callee != nil {
		out.WriteString(c.Callee.String())
	}
	out.WriteString("(")
	out.WriteString(joinNodes(c.Arguments))
	out.WriteString(")")
	return out.String()
}

// ArrayLiteral is "[a, b, c]".
type ArrayLiteral struct {
	Base
	Elements []Node
}

func NewArrayLiteral(loc Location, elements ...Node) *ArrayLiteral {
	a := &ArrayLiteral{Base: Base{Loc: loc, Boundary: true, Terminal: "]"}, Elements: elements}
	Attach(a, elements...)
	return a
}

func (a *ArrayLiteral) Accept(v Visitor) (values.Value, error) { return v.VisitArrayLiteral(a) }
func (a *ArrayLiteral) String() string                         { return "[" + joinNodes(a.Elements) + "]" }

// MapEntry is one "key: value" pair of a map literal.
type MapEntry struct {
	Key   string
	Value Node
}

// MapLiteral is "{k: v, ...}" in expression position.
type MapLiteral struct {
	Base
	Entries []MapEntry
}

func NewMapLiteral(loc Location, entries ...MapEntry) *MapLiteral {
	m := &MapLiteral{Base: Base{Loc: loc, Boundary: true, Terminal: "}"}, Entries: entries}
	for _, e := range entries {
		Attach(m, e.Value)
	}
	return m
}

func (m *MapLiteral) Accept(v Visitor) (values.Value, error) { return v.VisitMapLiteral(m) }
func (m *MapLiteral) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		val := "null"
		if e.Value != nil {
			val = e.Value.String()
		}
		parts[i] = e.Key + ": " + val
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Block is a braced statement list. Name labels function and loop bodies
// in traces.
type Block struct {
	Base
	Name       string
	Statements []Node
}

func NewBlock(loc Location, name string, statements ...Node) *Block {
	b := &Block{Base: Base{Loc: loc, Boundary: true, Terminal: "}"}, Name: name, Statements: statements}
	Attach(b, statements...)
	return b
}

// QualifiedName joins the names of enclosing named blocks, e.g. "outer.inner".
func (b *Block) QualifiedName() string {
	var names []string
	for n := Node(b); n != nil; n = n.Parent() {
		if blk, ok := n.(*Block); ok && blk.Name != "" {
			names = append([]string{blk.Name}, names...)
		}
	}
	return strings.Join(names, ".")
}

func (b *Block) Accept(v Visitor) (values.Value, error) { return v.VisitBlock(b) }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		if n == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
