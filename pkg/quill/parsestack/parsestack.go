// Package parsestack tracks which syntactic constructs the parser is inside,
// so nesting can be validated and limited before anything runs.
package parsestack

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
)

// Construct tags a nested piece of syntax.
type Construct int

const (
	Array Construct = iota
	Map
	FunctionCall
	Block
	Function
	Loop
)

func (c Construct) String() string {
	switch c {
	case Array:
		return "array"
	case Map:
		return "map"
	case FunctionCall:
		return "function call"
	case Block:
		return "block"
	case Function:
		return "function"
	case Loop:
		return "loop"
	default:
		return "unknown"
	}
}

// Names of the per-construct stacks.
const (
	Maps          = "maps"
	Arrays        = "arrays"
	Loops         = "loops"
	FunctionCalls = "functioncalls"
	Functions     = "functions"
)

var namedConstructs = map[string]Construct{
	Maps:          Map,
	Arrays:        Array,
	Loops:         Loop,
	FunctionCalls: FunctionCall,
	Functions:     Function,
}

// NameOf returns the named stack that tracks c, if any.
func NameOf(c Construct) (string, bool) {
	for name, nc := range namedConstructs {
		if nc == c {
			return name, true
		}
	}
	return "", false
}

// Stack is a LIFO of construct tags.
type Stack struct {
	s *arraystack.Stack
}

func NewStack() *Stack {
	return &Stack{s: arraystack.New()}
}

func (st *Stack) Push(c Construct) { st.s.Push(c) }

// Pop removes the top tag; ok is false on an empty stack.
func (st *Stack) Pop() (Construct, bool) {
	v, ok := st.s.Pop()
	if !ok {
		return 0, false
	}
	return v.(Construct), true
}

// Current returns the top tag, failing on an empty stack.
func (st *Stack) Current() (Construct, error) {
	v, ok := st.s.Peek()
	if !ok {
		return 0, qerrors.New("STACK-0001", nil)
	}
	return v.(Construct), nil
}

func (st *Stack) Count() int { return st.s.Size() }
func (st *Stack) Clear()     { st.s.Clear() }

// Manager pairs the generic stack with one stack per named construct.
type Manager struct {
	generic *Stack
	named   map[string]*Stack
	owners  []string // named stack of each generic entry, "" for untracked
}

func NewManager() *Manager {
	m := &Manager{generic: NewStack(), named: make(map[string]*Stack, len(namedConstructs))}
	for name := range namedConstructs {
		m.named[name] = NewStack()
	}
	return m
}

// Push records entry into an untracked construct such as a block.
func (m *Manager) Push(c Construct) {
	m.generic.Push(c)
	m.owners = append(m.owners, "")
}

// Pop records exit from the innermost construct. A construct entered with
// PushNamed also leaves its named stack, so CountOf stays in step.
func (m *Manager) Pop() (Construct, bool) {
	c, ok := m.generic.Pop()
	if !ok {
		return c, false
	}
	if owner := m.popOwner(); owner != "" {
		m.named[owner].Pop()
	}
	return c, true
}

func (m *Manager) popOwner() string {
	owner := m.owners[len(m.owners)-1]
	m.owners = m.owners[:len(m.owners)-1]
	return owner
}

// PushNamed records entry into the construct tracked by name, on both the
// generic stack and the named one.
func (m *Manager) PushNamed(name string) error {
	c, ok := namedConstructs[name]
	if !ok {
		return qerrors.New("STACK-0002", map[string]any{"Name": name})
	}
	m.generic.Push(c)
	m.named[name].Push(c)
	m.owners = append(m.owners, name)
	return nil
}

// PopNamed records exit from the construct tracked by name. It must be the
// innermost construct.
func (m *Manager) PopNamed(name string) error {
	c, ok := namedConstructs[name]
	if !ok {
		return qerrors.New("STACK-0002", map[string]any{"Name": name})
	}
	current, err := m.generic.Current()
	if err != nil {
		return err
	}
	if current != c || m.owners[len(m.owners)-1] != name {
		return qerrors.New("STACK-0003", map[string]any{"Name": c, "Current": current})
	}
	m.generic.Pop()
	m.named[name].Pop()
	m.popOwner()
	return nil
}

// CountOf is the nesting depth of the named construct; 0 for unknown names.
func (m *Manager) CountOf(name string) int {
	st, ok := m.named[name]
	if !ok {
		return 0
	}
	return st.Count()
}

// Current is the innermost construct of any kind.
func (m *Manager) Current() (Construct, error) { return m.generic.Current() }

// Count is the total nesting depth.
func (m *Manager) Count() int { return m.generic.Count() }

// Reset empties every stack.
func (m *Manager) Reset() {
	m.generic.Clear()
	m.owners = m.owners[:0]
	for _, st := range m.named {
		st.Clear()
	}
}
