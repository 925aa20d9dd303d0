// Package callstack tracks in-flight function calls. Depth limits are not
// enforced here; a LimitCheck callback decides whether a push may proceed.
package callstack

import (
	"github.com/sambeau/quill/pkg/quill/ast"
)

// Frame is one active call.
type Frame struct {
	Name string   // qualified function name
	Node ast.Node // call site
}

// LimitCheck is consulted before a frame is committed, with the depth the
// stack would have after the push. A non-nil error rejects the call.
type LimitCheck func(node ast.Node, depth int) error

// CallStack is a LIFO of frames.
type CallStack struct {
	frames []Frame
	check  LimitCheck
}

// New returns an empty stack. check may be nil.
func New(check LimitCheck) *CallStack {
	return &CallStack{check: check}
}

// SetLimitCheck replaces the callback.
func (c *CallStack) SetLimitCheck(check LimitCheck) {
	c.check = check
}

// Push records a call. If the limit check fails the stack is unchanged and
// the error is returned.
func (c *CallStack) Push(name string, node ast.Node) error {
	if c.check != nil {
		if err := c.check(node, len(c.frames)+1); err != nil {
			return err
		}
	}
	c.frames = append(c.frames, Frame{Name: name, Node: node})
	return nil
}

// Pop removes the most recent frame. Popping an empty stack does nothing.
func (c *CallStack) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames[len(c.frames)-1] = Frame{}
	c.frames = c.frames[:len(c.frames)-1]
}

// At returns the most recent frame whatever the index. Callers only ever
// ask for the current frame.
func (c *CallStack) At(int) (Frame, bool) {
	return c.Top()
}

// Top returns the most recent frame.
func (c *CallStack) Top() (Frame, bool) {
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// Count is the current depth.
func (c *CallStack) Count() int { return len(c.frames) }

// Frames returns a copy of the stack, most recent first.
func (c *CallStack) Frames() []Frame {
	out := make([]Frame, len(c.frames))
	for i, f := range c.frames {
		out[len(c.frames)-1-i] = f
	}
	return out
}

// Clear drops every frame.
func (c *CallStack) Clear() {
	clear(c.frames)
	c.frames = c.frames[:0]
}
