// Package settings holds the resource limits a host places on a script.
package settings

import "fmt"

// Unbounded disables a limit.
const Unbounded = -1

// LangSettings is the set of resource limits for one interpretation. A value
// of Unbounded (-1) turns the corresponding check off.
type LangSettings struct {
	MaxStatements                 int `yaml:"max_statements"`
	MaxNestedStatements           int `yaml:"max_nested_statements"`
	MaxLoopLimit                  int `yaml:"max_loop_limit"`
	MaxCallStack                  int `yaml:"max_call_stack"`
	MaxConsecutiveExpressions     int `yaml:"max_consecutive_expressions"`
	MaxMemberAccess               int `yaml:"max_member_access"`
	MaxFuncParams                 int `yaml:"max_func_params"`
	MaxScriptLength               int `yaml:"max_script_length"`
	MaxScopeVariables             int `yaml:"max_scope_variables"`
	MaxScopeStringVariablesLength int `yaml:"max_scope_string_variables_length"`
	MaxExceptions                 int `yaml:"max_exceptions"`
}

// New returns settings with every limit disabled.
func New() LangSettings {
	return LangSettings{
		MaxStatements:                 Unbounded,
		MaxNestedStatements:           Unbounded,
		MaxLoopLimit:                  Unbounded,
		MaxCallStack:                  Unbounded,
		MaxConsecutiveExpressions:     Unbounded,
		MaxMemberAccess:               Unbounded,
		MaxFuncParams:                 Unbounded,
		MaxScriptLength:               Unbounded,
		MaxScopeVariables:             Unbounded,
		MaxScopeStringVariablesLength: Unbounded,
		MaxExceptions:                 Unbounded,
	}
}

// DefaultLimits returns the sandbox profile used for untrusted scripts.
func DefaultLimits() LangSettings {
	return LangSettings{
		MaxStatements:                 200,
		MaxNestedStatements:           20,
		MaxLoopLimit:                  200,
		MaxCallStack:                  15,
		MaxConsecutiveExpressions:     10,
		MaxMemberAccess:               5,
		MaxFuncParams:                 10,
		MaxScriptLength:               20000,
		MaxScopeVariables:             100,
		MaxScopeStringVariablesLength: 5000,
		MaxExceptions:                 10,
	}
}

func (s LangSettings) HasMaxStatements() bool       { return s.MaxStatements > Unbounded }
func (s LangSettings) HasMaxNestedStatements() bool { return s.MaxNestedStatements > Unbounded }
func (s LangSettings) HasMaxLoopLimit() bool        { return s.MaxLoopLimit > Unbounded }
func (s LangSettings) HasMaxCallStack() bool        { return s.MaxCallStack > Unbounded }
func (s LangSettings) HasMaxConsecutiveExpressions() bool {
	return s.MaxConsecutiveExpressions > Unbounded
}
func (s LangSettings) HasMaxMemberAccess() bool   { return s.MaxMemberAccess > Unbounded }
func (s LangSettings) HasMaxFuncParams() bool     { return s.MaxFuncParams > Unbounded }
func (s LangSettings) HasMaxScriptLength() bool   { return s.MaxScriptLength > Unbounded }
func (s LangSettings) HasMaxScopeVariables() bool { return s.MaxScopeVariables > Unbounded }
func (s LangSettings) HasMaxScopeStringVariablesLength() bool {
	return s.MaxScopeStringVariablesLength > Unbounded
}
func (s LangSettings) HasMaxExceptions() bool { return s.MaxExceptions > Unbounded }

// Limit is one named setting, for display.
type Limit struct {
	Name  string // yaml key
	Value int
}

// Limits lists every setting in declaration order.
func (s LangSettings) Limits() []Limit {
	return []Limit{
		{"max_statements", s.MaxStatements},
		{"max_nested_statements", s.MaxNestedStatements},
		{"max_loop_limit", s.MaxLoopLimit},
		{"max_call_stack", s.MaxCallStack},
		{"max_consecutive_expressions", s.MaxConsecutiveExpressions},
		{"max_member_access", s.MaxMemberAccess},
		{"max_func_params", s.MaxFuncParams},
		{"max_script_length", s.MaxScriptLength},
		{"max_scope_variables", s.MaxScopeVariables},
		{"max_scope_string_variables_length", s.MaxScopeStringVariablesLength},
		{"max_exceptions", s.MaxExceptions},
	}
}

// Validate rejects values below Unbounded.
func (s LangSettings) Validate() error {
	for _, l := range s.Limits() {
		if l.Value < Unbounded {
			return fmt.Errorf("%s: %d is not a valid limit (use -1 for no limit)", l.Name, l.Value)
		}
	}
	return nil
}
