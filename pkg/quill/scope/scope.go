// Package scope is the evaluator's runtime variable store: a stack of
// lexical blocks, searched innermost first, that keeps running totals of
// variables and string bytes for sandbox limits.
package scope

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
)

// NotFound is returned by Find when no block binds the name.
const NotFound = -1

// Variable is one binding. A null value leaves it uninitialized.
type Variable struct {
	Name        string
	Value       values.Value
	Type        values.Kind
	Initialized bool
}

// Block is one lexical frame. Names keep insertion order.
type Block struct {
	vars      *linkedhashmap.Map // string -> *Variable
	stringLen int
}

func newBlock() *Block {
	return &Block{vars: linkedhashmap.New()}
}

// Len is the number of variables bound in the block.
func (b *Block) Len() int { return b.vars.Size() }

// StringLength is the summed byte length of the block's string values.
func (b *Block) StringLength() int { return b.stringLen }

// Names returns the block's names in declaration order.
func (b *Block) Names() []string {
	keys := b.vars.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}

// Get returns a copy of the named variable.
func (b *Block) Get(name string) (Variable, bool) {
	v, ok := b.lookup(name)
	if !ok {
		return Variable{}, false
	}
	return *v, true
}

func (b *Block) lookup(name string) (*Variable, bool) {
	v, found := b.vars.Get(name)
	if !found {
		return nil, false
	}
	return v.(*Variable), true
}

// set binds name in this block and returns whether the name is new and the
// change in string length.
func (b *Block) set(name string, value values.Value) (added bool, delta int) {
	newLen := values.StringLength(value)
	v, found := b.lookup(name)
	if !found {
		v = &Variable{Name: name, Type: values.KindNull}
		b.vars.Put(name, v)
	}
	delta = newLen - values.StringLength(v.Value)

	v.Value = value
	v.Initialized = !values.IsNull(value)
	if v.Initialized {
		v.Type = values.KindOf(value)
	}
	b.stringLen += delta
	return !found, delta
}

func (b *Block) remove(name string) (removed bool, delta int) {
	v, found := b.lookup(name)
	if !found {
		return false, 0
	}
	delta = -values.StringLength(v.Value)
	b.vars.Remove(name)
	b.stringLen += delta
	return true, delta
}

// Scope is a stack of blocks; index 0 is the global block. It is never empty.
type Scope struct {
	blocks    []*Block
	total     int
	stringLen int
}

// New returns a scope holding one empty global block.
func New() *Scope {
	return &Scope{blocks: []*Block{newBlock()}}
}

// Push enters a new innermost block.
func (s *Scope) Push() {
	s.blocks = append(s.blocks, newBlock())
}

// Pop leaves the innermost block. The global block is never popped.
func (s *Scope) Pop() {
	if len(s.blocks) <= 1 {
		return
	}
	top := s.blocks[len(s.blocks)-1]
	s.blocks[len(s.blocks)-1] = nil
	s.blocks = s.blocks[:len(s.blocks)-1]
	s.total -= top.Len()
	s.stringLen -= top.StringLength()
}

// Depth is the number of blocks on the stack, at least 1.
func (s *Scope) Depth() int { return len(s.blocks) }

// Current is the innermost block.
func (s *Scope) Current() *Block { return s.blocks[len(s.blocks)-1] }

// SetValue writes name. With declare it always binds in the innermost block,
// shadowing outer bindings. Without it, the nearest existing binding is
// assigned, falling back to a new binding in the innermost block.
func (s *Scope) SetValue(name string, value values.Value, declare bool) {
	idx := len(s.blocks) - 1
	if !declare {
		if found := s.Find(name); found != NotFound {
			idx = found
		}
	}
	added, delta := s.blocks[idx].set(name, value)
	if added {
		s.total++
	}
	s.stringLen += delta
}

// Get resolves name innermost first.
func (s *Scope) Get(name string) (values.Value, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, qerrors.NewNameNotFound(name, s.Names())
	}
	if v.Value == nil {
		return values.Null{}, nil
	}
	return v.Value, nil
}

// GetAs resolves name and converts its value.
func GetAs[T any](s *Scope, name string, convert values.Converter[T]) (T, error) {
	v, err := s.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert(v)
}

// Lookup returns a copy of the nearest binding of name.
func (s *Scope) Lookup(name string) (Variable, bool) {
	idx := s.Find(name)
	if idx == NotFound {
		return Variable{}, false
	}
	return s.blocks[idx].Get(name)
}

// Find returns the index of the innermost block binding name, or NotFound.
func (s *Scope) Find(name string) int {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if _, ok := s.blocks[i].vars.Get(name); ok {
			return i
		}
	}
	return NotFound
}

// Contains reports whether name is bound in any block.
func (s *Scope) Contains(name string) bool {
	return s.Find(name) != NotFound
}

// Remove unbinds name from the innermost block only. Outer bindings are
// left alone.
func (s *Scope) Remove(name string) {
	removed, delta := s.Current().remove(name)
	if removed {
		s.total--
	}
	s.stringLen += delta
}

// Clear drops every binding and leaves one empty global block.
func (s *Scope) Clear() {
	s.blocks = []*Block{newBlock()}
	s.total = 0
	s.stringLen = 0
}

// Total is the number of bindings across all blocks.
func (s *Scope) Total() int { return s.total }

// TotalStringLength is the summed byte length of every string value bound.
func (s *Scope) TotalStringLength() int { return s.stringLen }

// Names returns every visible name, innermost block first, without
// duplicates from shadowed bindings.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for i := len(s.blocks) - 1; i >= 0; i-- {
		for _, name := range s.blocks[i].Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
