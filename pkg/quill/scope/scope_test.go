package scope

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
)

func num(f float64) values.Value { return values.Number{Value: f} }
func str(s string) values.Value  { return values.String{Value: s} }

func mustGet(t *testing.T, s *Scope, name string) values.Value {
	t.Helper()
	v, err := s.Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	return v
}

func TestShadowing(t *testing.T) {
	s := New()
	s.Push()
	s.SetValue("x", num(1), true)
	s.Push()
	s.SetValue("x", num(2), true)
	if got := mustGet(t, s, "x"); got != num(2) {
		t.Errorf("inner x = %v, want 2", got)
	}
	s.Pop()
	if got := mustGet(t, s, "x"); got != num(1) {
		t.Errorf("outer x = %v, want 1", got)
	}
}

func TestAssignmentReachesOuterBinding(t *testing.T) {
	s := New()
	s.SetValue("x", num(1), true)
	s.Push()
	s.SetValue("x", num(9), false)
	if s.Current().Len() != 0 {
		t.Error("assignment should not create an inner binding")
	}
	s.Pop()
	if got := mustGet(t, s, "x"); got != num(9) {
		t.Errorf("x = %v, want 9", got)
	}
	if s.Total() != 1 {
		t.Errorf("Total = %d, want 1", s.Total())
	}
}

func TestAssignmentWithoutBindingDeclares(t *testing.T) {
	s := New()
	s.Push()
	s.SetValue("y", str("new"), false)
	if s.Find("y") != 1 {
		t.Errorf("Find(y) = %d, want 1", s.Find("y"))
	}
	s.Pop()
	if s.Contains("y") {
		t.Error("y should leave with its block")
	}
}

func TestPopNeverEmpties(t *testing.T) {
	s := New()
	s.SetValue("g", num(1), true)
	for range 5 {
		s.Pop()
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth = %d, want 1", s.Depth())
	}
	if got := mustGet(t, s, "g"); got != num(1) {
		t.Errorf("global binding lost: %v", got)
	}
	s.Push()
	s.Push()
	s.Clear()
	if s.Depth() != 1 || s.Total() != 0 || s.TotalStringLength() != 0 {
		t.Errorf("after Clear: depth %d total %d strlen %d", s.Depth(), s.Total(), s.TotalStringLength())
	}
	s.SetValue("after", num(1), true)
	if !s.Contains("after") {
		t.Error("scope should accept writes after Clear")
	}
}

func TestNullIsUninitialized(t *testing.T) {
	s := New()
	s.SetValue("x", values.Null{}, true)
	v, ok := s.Lookup("x")
	if !ok || v.Initialized {
		t.Errorf("null binding = %+v, %v", v, ok)
	}
	if got := mustGet(t, s, "x"); !values.IsNull(got) {
		t.Errorf("Get = %v", got)
	}

	s.SetValue("x", str("set"), false)
	v, _ = s.Lookup("x")
	if !v.Initialized || v.Type != values.KindString {
		t.Errorf("after assignment = %+v", v)
	}

	s.SetValue("x", nil, false)
	v, _ = s.Lookup("x")
	if v.Initialized || v.Type != values.KindString {
		t.Errorf("after clearing = %+v", v)
	}
}

func TestRemoveOnlyInnermost(t *testing.T) {
	s := New()
	s.SetValue("x", str("outer"), true)
	s.Push()
	s.Remove("x")
	if !s.Contains("x") {
		t.Error("Remove must not reach outer blocks")
	}
	s.SetValue("x", str("inner"), true)
	s.Remove("x")
	if got := mustGet(t, s, "x"); got != str("outer") {
		t.Errorf("x = %v, want outer", got)
	}
	s.Remove("missing")
	if s.Total() != 1 || s.TotalStringLength() != len("outer") {
		t.Errorf("totals = %d, %d", s.Total(), s.TotalStringLength())
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	s.SetValue("counter", num(1), true)
	_, err := s.Get("countr")
	if !errors.Is(err, qerrors.ErrNameNotFound) {
		t.Fatalf("err = %v", err)
	}
	le, _ := qerrors.As(err)
	if len(le.Hints) == 0 || !strings.Contains(le.Hints[0], "counter") {
		t.Errorf("hints = %v", le.Hints)
	}
}

func TestGetAs(t *testing.T) {
	s := New()
	s.SetValue("n", str("42"), true)
	n, err := GetAs(s, "n", values.ToNumber)
	if err != nil || n != 42 {
		t.Errorf("GetAs number = %v, %v", n, err)
	}
	if _, err := GetAs(s, "n", values.ToArray); !errors.Is(err, qerrors.ErrConversion) {
		t.Errorf("GetAs array err = %v", err)
	}
	if _, err := GetAs(s, "nope", values.ToNumber); !errors.Is(err, qerrors.ErrNameNotFound) {
		t.Errorf("GetAs missing err = %v", err)
	}
}

func TestStringLengthCountsBytes(t *testing.T) {
	s := New()
	s.SetValue("a", str("héllo"), true)
	s.SetValue("b", num(12345), true)
	if s.TotalStringLength() != 6 {
		t.Errorf("TotalStringLength = %d, want 6", s.TotalStringLength())
	}
	s.SetValue("a", str("hi"), false)
	if s.TotalStringLength() != 2 || s.Current().StringLength() != 2 {
		t.Errorf("after reassignment = %d", s.TotalStringLength())
	}
}

func TestNamesInnermostFirst(t *testing.T) {
	s := New()
	s.SetValue("a", num(1), true)
	s.SetValue("b", num(1), true)
	s.Push()
	s.SetValue("c", num(1), true)
	s.SetValue("a", num(2), true)
	got := strings.Join(s.Names(), ",")
	if got != "c,a,b" {
		t.Errorf("Names = %s, want c,a,b", got)
	}
}

// recount walks every block and recomputes the aggregates from scratch.
func recount(s *Scope) (total, strlen int) {
	for _, b := range s.blocks {
		blockLen := 0
		for _, name := range b.Names() {
			v, _ := b.Get(name)
			blockLen += values.StringLength(v.Value)
		}
		if blockLen != b.StringLength() {
			panic(fmt.Sprintf("block accumulator %d, recount %d", b.StringLength(), blockLen))
		}
		total += b.Len()
		strlen += blockLen
	}
	return total, strlen
}

func TestAccountingUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	names := []string{"a", "b", "c", "d", "e"}
	randomValue := func() values.Value {
		switch rng.IntN(4) {
		case 0:
			return values.Null{}
		case 1:
			return num(rng.Float64())
		default:
			return str(strings.Repeat("x", rng.IntN(20)))
		}
	}

	s := New()
	for i := range 5000 {
		name := names[rng.IntN(len(names))]
		switch rng.IntN(6) {
		case 0:
			s.Push()
		case 1:
			s.Pop()
		case 2:
			s.Remove(name)
		case 3:
			s.SetValue(name, randomValue(), true)
		default:
			s.SetValue(name, randomValue(), false)
		}

		total, strlen := recount(s)
		if total != s.Total() || strlen != s.TotalStringLength() {
			t.Fatalf("step %d: Total %d/%d, TotalStringLength %d/%d", i, s.Total(), total, s.TotalStringLength(), strlen)
		}
		if s.Depth() < 1 {
			t.Fatalf("step %d: scope emptied", i)
		}
	}
}
