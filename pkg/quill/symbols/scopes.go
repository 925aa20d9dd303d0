package symbols

// Scopes tracks the table the parser is currently declaring into.
type Scopes struct {
	global  *Table
	current *Table
	depth   int
}

// NewScopes starts at a fresh global table.
func NewScopes() *Scopes {
	g := NewGlobal()
	return &Scopes{global: g, current: g}
}

// Push opens a nested table and makes it current.
func (s *Scopes) Push(name string) *Table {
	s.current = s.current.NewChild(name)
	s.depth++
	return s.current
}

// Pop returns to the parent table. The global table stays current once
// reached.
func (s *Scopes) Pop() {
	if s.current.IsGlobal() {
		return
	}
	s.current = s.current.Parent()
	s.depth--
}

func (s *Scopes) Current() *Table { return s.current }
func (s *Scopes) Global() *Table  { return s.global }

// Depth is the number of tables above the global one.
func (s *Scopes) Depth() int { return s.depth }
