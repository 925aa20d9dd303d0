package callstack

import (
	"errors"
	"testing"

	"github.com/sambeau/quill/pkg/quill/ast"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
)

func site(name string, line int) ast.Node {
	return ast.NewFunctionCall(ast.Location{Line: line, Column: 1}, ast.NewIdentifier(ast.Location{Line: line, Column: 1}, name))
}

func TestLimitCheckRejectsBeforeCommit(t *testing.T) {
	var seen []int
	stack := New(func(node ast.Node, depth int) error {
		seen = append(seen, depth)
		if depth > 4 {
			return qerrors.New("LIMIT-0001", map[string]any{"Got": depth, "Max": 4, "Function": node.QualifiedName()})
		}
		return nil
	})

	for i := 1; i <= 4; i++ {
		if err := stack.Push("fib", site("fib", i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	err := stack.Push("fib", site("fib", 5))
	if !errors.Is(err, qerrors.ErrCallStackLimit) || !qerrors.IsLimitError(err) {
		t.Fatalf("fifth push err = %v", err)
	}
	if stack.Count() != 4 {
		t.Errorf("Count = %d after rejected push, want 4", stack.Count())
	}
	want := []int{1, 2, 3, 4, 5}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("check %d saw depth %d, want %d", i, seen[i], want[i])
		}
	}
	top, _ := stack.Top()
	if top.Node.Location().Line != 4 {
		t.Errorf("top frame line = %d, want 4", top.Node.Location().Line)
	}
}

func TestPopEmptyIsNoop(t *testing.T) {
	stack := New(nil)
	stack.Pop()
	if stack.Count() != 0 {
		t.Fatal("Count should stay 0")
	}
	if _, ok := stack.Top(); ok {
		t.Error("Top on empty stack should report false")
	}
	stack.Push("a", nil)
	stack.Pop()
	stack.Pop()
	if stack.Count() != 0 {
		t.Errorf("Count = %d", stack.Count())
	}
}

func TestAtReturnsMostRecent(t *testing.T) {
	stack := New(nil)
	stack.Push("outer", site("outer", 1))
	stack.Push("inner", site("inner", 2))
	for _, i := range []int{0, 1, 7, -1} {
		f, ok := stack.At(i)
		if !ok || f.Name != "inner" {
			t.Errorf("At(%d) = %v, %v", i, f.Name, ok)
		}
	}
	if _, ok := New(nil).At(0); ok {
		t.Error("At on an empty stack should report false")
	}
}

func TestFramesNewestFirst(t *testing.T) {
	stack := New(nil)
	for _, name := range []string{"main", "load", "parse"} {
		stack.Push(name, nil)
	}
	frames := stack.Frames()
	if len(frames) != 3 || frames[0].Name != "parse" || frames[2].Name != "main" {
		t.Errorf("Frames = %v", frames)
	}
	frames[0].Name = "changed"
	if top, _ := stack.Top(); top.Name != "parse" {
		t.Error("Frames should return a copy")
	}
	stack.Clear()
	if stack.Count() != 0 {
		t.Error("Clear should empty the stack")
	}
}

func TestSetLimitCheck(t *testing.T) {
	stack := New(nil)
	stack.Push("a", nil)
	stack.SetLimitCheck(func(_ ast.Node, depth int) error {
		if depth > 1 {
			return errors.New("no nesting")
		}
		return nil
	})
	if err := stack.Push("b", nil); err == nil {
		t.Error("replacement check should apply")
	}
}
