package settings

import (
	"strings"
	"testing"
)

func TestNewIsUnbounded(t *testing.T) {
	s := New()
	for _, l := range s.Limits() {
		if l.Value != Unbounded {
			t.Errorf("%s = %d, want -1", l.Name, l.Value)
		}
	}
	if s.HasMaxCallStack() || s.HasMaxLoopLimit() || s.HasMaxScriptLength() || s.HasMaxExceptions() {
		t.Error("New() should report no limits")
	}
}

func TestBelowUnboundedIsNotALimit(t *testing.T) {
	s := DefaultLimits()
	s.MaxCallStack = -2
	s.MaxLoopLimit = -5
	s.MaxScopeStringVariablesLength = -100
	if s.HasMaxCallStack() || s.HasMaxLoopLimit() || s.HasMaxScopeStringVariablesLength() {
		t.Error("values below -1 should not report a limit")
	}
	if !s.HasMaxStatements() {
		t.Error("untouched limits should still apply")
	}
}

func TestDefaultLimits(t *testing.T) {
	s := DefaultLimits()
	want := map[string]int{
		"max_loop_limit":                    200,
		"max_call_stack":                    15,
		"max_statements":                    200,
		"max_nested_statements":             20,
		"max_consecutive_expressions":       10,
		"max_member_access":                 5,
		"max_func_params":                   10,
		"max_script_length":                 20000,
		"max_scope_variables":               100,
		"max_scope_string_variables_length": 5000,
		"max_exceptions":                    10,
	}
	limits := s.Limits()
	if len(limits) != len(want) {
		t.Fatalf("Limits() has %d entries, want %d", len(limits), len(want))
	}
	for _, l := range limits {
		if want[l.Name] != l.Value {
			t.Errorf("%s = %d, want %d", l.Name, l.Value, want[l.Name])
		}
	}

	checks := []struct {
		name string
		has  bool
	}{
		{"statements", s.HasMaxStatements()},
		{"nested", s.HasMaxNestedStatements()},
		{"loop", s.HasMaxLoopLimit()},
		{"call stack", s.HasMaxCallStack()},
		{"consecutive", s.HasMaxConsecutiveExpressions()},
		{"member access", s.HasMaxMemberAccess()},
		{"params", s.HasMaxFuncParams()},
		{"script length", s.HasMaxScriptLength()},
		{"scope variables", s.HasMaxScopeVariables()},
		{"scope strings", s.HasMaxScopeStringVariablesLength()},
		{"exceptions", s.HasMaxExceptions()},
	}
	for _, c := range checks {
		if !c.has {
			t.Errorf("%s should be limited", c.name)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LangSettings)
		wantErr string
	}{
		{"defaults", func(*LangSettings) {}, ""},
		{"zero is a limit", func(s *LangSettings) { s.MaxLoopLimit = 0 }, ""},
		{"unbounded", func(s *LangSettings) { s.MaxCallStack = Unbounded }, ""},
		{"below unbounded", func(s *LangSettings) { s.MaxCallStack = -2 }, "max_call_stack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultLimits()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
