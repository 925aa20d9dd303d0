// Package errors provides structured error types for the Quill language.
//
// Every error raised by the lexical and execution core is a LangError. A
// LangError carries an error type tag (syntax, exit or limit) that hosts use to
// tell a broken script from one that stopped on purpose or one that ran out of
// sandbox budget, plus a class and catalog code for finer filtering.
package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorType is the user-facing category of an error.
type ErrorType string

const (
	TypeSyntax ErrorType = "Syntax Error"
	TypeExit   ErrorType = "Exit Error"
	TypeLimit  ErrorType = "Limit Error"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse      ErrorClass = "parse"      // Structural/syntax errors
	ClassFormat     ErrorClass = "format"     // Bad literal text
	ClassOperator   ErrorClass = "operator"   // Unknown operator
	ClassUndefined  ErrorClass = "undefined"  // Not found/defined
	ClassArgument   ErrorClass = "argument"   // Invalid argument
	ClassConversion ErrorClass = "conversion" // Value coercion failures
	ClassIndex      ErrorClass = "index"      // Empty stack / out of range
	ClassState      ErrorClass = "state"      // Invalid state
	ClassLimit      ErrorClass = "limit"      // Sandbox limit exceeded
	ClassExit       ErrorClass = "exit"       // Intentional termination
)

// LangError represents any error from lexing, static analysis or evaluation.
type LangError struct {
	Type    ErrorType      `json:"type"`            // Syntax, Exit or Limit
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "LEX-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // Script path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *LangError) Error() string {
	return e.String()
}

// Is reports whether target is a LangError with the same code. This lets the
// Err* sentinels below be used with errors.Is.
func (e *LangError) Is(target error) bool {
	t, ok := target.(*LangError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// String returns a formatted string representation of the error.
func (e *LangError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *LangError) PrettyString() string {
	var sb strings.Builder

	header := string(e.Type)
	if header == "" {
		header = string(TypeSyntax)
	}
	sb.WriteString(header)

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Hint: ")
		} else {
			sb.WriteString("  or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *LangError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the script path set.
func (e *LangError) WithFile(file string) *LangError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *LangError) WithPosition(line, column int) *LangError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsSyntax returns true if this is a syntax/structural error.
func (e *LangError) IsSyntax() bool { return e.Type == TypeSyntax }

// IsExit returns true if this error is an intentional script termination.
func (e *LangError) IsExit() bool { return e.Type == TypeExit }

// IsLimit returns true if a sandbox limit was exceeded.
func (e *LangError) IsLimit() bool { return e.Type == TypeLimit }

// As returns the LangError in err's chain, if any.
func As(err error) (*LangError, bool) {
	var le *LangError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsSyntaxError reports whether err carries a syntax LangError.
func IsSyntaxError(err error) bool {
	le, ok := As(err)
	return ok && le.IsSyntax()
}

// IsExitError reports whether err carries an exit LangError.
func IsExitError(err error) bool {
	le, ok := As(err)
	return ok && le.IsExit()
}

// IsLimitError reports whether err carries a limit LangError.
func IsLimitError(err error) bool {
	le, ok := As(err)
	return ok && le.IsLimit()
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Type     ErrorType  // Syntax, Exit or Limit
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Lexical errors (LEX-0xxx)
	"LEX-0001": {
		Type:     TypeSyntax,
		Class:    ClassFormat,
		Template: "invalid number literal: {{.Text}}",
	},
	"LEX-0002": {
		Type:     TypeSyntax,
		Class:    ClassFormat,
		Template: "invalid date literal: {{.Text}}",
		Hints:    []string{"@2024-01-31", "@'Jan 31 2024'"},
	},
	"LEX-0003": {
		Type:     TypeSyntax,
		Class:    ClassFormat,
		Template: "invalid version literal: {{.Text}}",
		Hints:    []string{"@1.2", "@1.2.3", "@1.2.3.4"},
	},
	"LEX-0004": {
		Type:     TypeSyntax,
		Class:    ClassFormat,
		Template: "invalid time literal: {{.Text}}",
		Hints:    []string{"@9:30am", "@14:05"},
	},
	"LEX-0005": {
		Type:     TypeSyntax,
		Class:    ClassParse,
		Template: "unterminated string",
	},
	"LEX-0006": {
		Type:     TypeSyntax,
		Class:    ClassParse,
		Template: "unexpected character '{{.Text}}'",
	},
	"LEX-0007": {
		Type:     TypeSyntax,
		Class:    ClassParse,
		Template: "unterminated block comment",
	},

	// Operator errors (OP-0xxx)
	"OP-0001": {
		Type:     TypeSyntax,
		Class:    ClassOperator,
		Template: "'{{.Text}}' is not a registered operator",
	},

	// Structural errors (PARSE-0xxx)
	"PARSE-0001": {
		Type:     TypeSyntax,
		Class:    ClassParse,
		Template: "unexpected '{{.Got}}', expected '{{.Expected}}'",
	},
	"PARSE-0002": {
		Type:     TypeSyntax,
		Class:    ClassParse,
		Template: "unclosed '{{.Open}}'",
	},

	// Name resolution errors (SCOPE-0xxx, SYM-0xxx)
	"SCOPE-0001": {
		Type:     TypeSyntax,
		Class:    ClassUndefined,
		Template: "variable not found: {{.Name}}",
	},
	"SYM-0001": {
		Type:     TypeSyntax,
		Class:    ClassUndefined,
		Template: "cannot alias undefined symbol '{{.Name}}'",
	},
	"SYM-0002": {
		Type:     TypeSyntax,
		Class:    ClassArgument,
		Template: "constant '{{.Name}}' must be defined with a value",
	},
	"SYM-0003": {
		Type:     TypeSyntax,
		Class:    ClassState,
		Template: "alias '{{.Alias}}' would shadow {{.Existing}} '{{.Alias}}' with {{.Category}} '{{.Name}}'",
	},
	"SYM-0004": {
		Type:     TypeSyntax,
		Class:    ClassArgument,
		Template: "function metadata must have a name",
	},
	"SYM-0005": {
		Type:     TypeSyntax,
		Class:    ClassUndefined,
		Template: "undefined symbol '{{.Name}}'",
	},

	// Conversion errors (CONV-0xxx)
	"CONV-0001": {
		Type:     TypeSyntax,
		Class:    ClassConversion,
		Template: "cannot convert {{.From}} to {{.To}}",
	},
	"CONV-0002": {
		Type:     TypeSyntax,
		Class:    ClassConversion,
		Template: "cannot convert {{.From}} '{{.Text}}' to {{.To}}",
	},

	// Parse stack errors (STACK-0xxx)
	"STACK-0001": {
		Type:     TypeSyntax,
		Class:    ClassIndex,
		Template: "parse stack is empty",
	},
	"STACK-0002": {
		Type:     TypeSyntax,
		Class:    ClassArgument,
		Template: "unknown construct stack '{{.Name}}'",
	},
	"STACK-0003": {
		Type:     TypeSyntax,
		Class:    ClassState,
		Template: "cannot close {{.Name}}: innermost construct is {{.Current}}",
	},

	// Limit errors (LIMIT-0xxx)
	"LIMIT-0001": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "call stack depth {{.Got}} exceeds limit of {{.Max}}",
		Hints:    []string{"check for unbounded recursion in '{{.Function}}'"},
	},
	"LIMIT-0002": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "loop exceeded {{.Max}} iterations",
	},
	"LIMIT-0003": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "script has {{.Got}} statements, limit is {{.Max}}",
	},
	"LIMIT-0004": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "{{.Construct}} nested {{.Got}} deep, limit is {{.Max}}",
	},
	"LIMIT-0005": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "{{.Got}} consecutive expressions, limit is {{.Max}}",
	},
	"LIMIT-0006": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "{{.Got}} consecutive member accesses, limit is {{.Max}}",
	},
	"LIMIT-0007": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "function '{{.Function}}' has {{.Got}} parameters, limit is {{.Max}}",
	},
	"LIMIT-0008": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "script length {{.Got}} exceeds limit of {{.Max}} characters",
	},
	"LIMIT-0009": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "scope holds {{.Got}} variables, limit is {{.Max}}",
	},
	"LIMIT-0010": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "string variables in scope total {{.Got}} characters, limit is {{.Max}}",
	},
	"LIMIT-0011": {
		Type:     TypeLimit,
		Class:    ClassLimit,
		Template: "{{.Got}} exceptions raised, limit is {{.Max}}",
	},

	// Exit (EXIT-0xxx)
	"EXIT-0001": {
		Type:     TypeExit,
		Class:    ClassExit,
		Template: "{{.Message}}",
	},
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrInvalidNumber   = &LangError{Code: "LEX-0001"}
	ErrInvalidDate     = &LangError{Code: "LEX-0002"}
	ErrInvalidVersion  = &LangError{Code: "LEX-0003"}
	ErrInvalidTime     = &LangError{Code: "LEX-0004"}
	ErrUnknownOperator = &LangError{Code: "OP-0001"}
	ErrNameNotFound    = &LangError{Code: "SCOPE-0001"}
	ErrUndefinedSymbol = &LangError{Code: "SYM-0001"}
	ErrConstantValue   = &LangError{Code: "SYM-0002"}
	ErrAliasConflict   = &LangError{Code: "SYM-0003"}
	ErrConversion      = &LangError{Code: "CONV-0001"}
	ErrEmptyStack      = &LangError{Code: "STACK-0001"}
	ErrCallStackLimit  = &LangError{Code: "LIMIT-0001"}
	ErrLoopLimit       = &LangError{Code: "LIMIT-0002"}
)

// New creates a LangError from the catalog.
// If the code is not found, creates a generic syntax error with the message.
func New(code string, data map[string]any) *LangError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &LangError{
			Type:    TypeSyntax,
			Class:   ClassState,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &LangError{
		Type:    def.Type,
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a LangError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *LangError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewExit creates the error used when a script asks to stop.
func NewExit(message string) *LangError {
	return New("EXIT-0001", map[string]any{"Message": message})
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(typ ErrorType, class ErrorClass, message string) *LangError {
	return &LangError{
		Type:    typ,
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// threshold is the largest edit distance still worth suggesting for input.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the empty string when nothing is close enough or the input is an
// exact match.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// NewNameNotFound creates a variable-not-found error with an optional
// "Did you mean?" hint drawn from the visible names.
func NewNameNotFound(name string, visible []string) *LangError {
	err := New("SCOPE-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, visible); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
