// Package symbols holds the parser's static view of declared names:
// variables, constants and functions, in a tree of tables that mirrors
// function and block nesting.
package symbols

import (
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/lithammer/fuzzysearch/fuzzy"
	qerrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/values"
)

// Category says what kind of declaration a symbol is.
type Category int

const (
	CategoryVar Category = iota
	CategoryConst
	CategoryFunc
)

func (c Category) String() string {
	switch c {
	case CategoryVar:
		return "var"
	case CategoryConst:
		return "const"
	case CategoryFunc:
		return "func"
	default:
		return "unknown"
	}
}

// FunctionMeta describes a declared function.
type FunctionMeta struct {
	Name       string
	Params     []string
	ReturnType values.Kind
	Aliases    []string
	Doc        string
}

// Symbol is one declaration. Aliases share the same *Symbol.
type Symbol struct {
	Name     string
	Category Category
	DataType values.Kind
	Value    values.Value  // constants only
	Meta     *FunctionMeta // functions only
}

// Table is one level of declarations. The global table has no parent.
type Table struct {
	name    string
	parent  *Table
	symbols *linkedhashmap.Map // string -> *Symbol
}

// NewGlobal returns a root table.
func NewGlobal() *Table {
	return &Table{name: "global", symbols: linkedhashmap.New()}
}

// NewChild returns a table nested in t.
func (t *Table) NewChild(name string) *Table {
	return &Table{name: name, parent: t, symbols: linkedhashmap.New()}
}

func (t *Table) Name() string   { return t.name }
func (t *Table) Parent() *Table { return t.parent }
func (t *Table) IsGlobal() bool { return t.parent == nil }

// DefineVariable declares name, replacing any local definition. The data
// type defaults to object.
func (t *Table) DefineVariable(name string, dataType ...values.Kind) *Symbol {
	dt := values.KindObject
	if len(dataType) > 0 {
		dt = dataType[0]
	}
	sym := &Symbol{Name: name, Category: CategoryVar, DataType: dt}
	t.symbols.Put(name, sym)
	return sym
}

// DefineConstant declares a constant. A constant needs a value.
func (t *Table) DefineConstant(name string, value values.Value) (*Symbol, error) {
	if value == nil {
		return nil, qerrors.New("SYM-0002", map[string]any{"Name": name})
	}
	sym := &Symbol{Name: name, Category: CategoryConst, DataType: value.Kind(), Value: value}
	t.symbols.Put(name, sym)
	return sym, nil
}

// DefineFunction declares a function under its name and every alias in meta.
// Nothing is bound if an alias would replace a local symbol of another
// category.
func (t *Table) DefineFunction(meta *FunctionMeta) (*Symbol, error) {
	if meta == nil || meta.Name == "" {
		return nil, qerrors.New("SYM-0004", nil)
	}
	sym := &Symbol{Name: meta.Name, Category: CategoryFunc, DataType: values.KindFunction, Meta: meta}
	for _, alias := range meta.Aliases {
		if err := t.aliasConflict(alias, sym); err != nil {
			return nil, err
		}
	}
	t.symbols.Put(meta.Name, sym)
	for _, alias := range meta.Aliases {
		t.symbols.Put(alias, sym)
	}
	return sym, nil
}

// DefineAlias binds alias to the symbol existing names in this table. The
// source is not looked up in parents. An alias may replace a local symbol of
// the same category but not one of a different category.
func (t *Table) DefineAlias(existing, alias string) error {
	sym, ok := t.local(existing)
	if !ok {
		return qerrors.New("SYM-0001", map[string]any{"Name": existing})
	}
	if err := t.aliasConflict(alias, sym); err != nil {
		return err
	}
	t.symbols.Put(alias, sym)
	return nil
}

// aliasConflict rejects binding alias to sym over a local symbol of a
// different category.
func (t *Table) aliasConflict(alias string, sym *Symbol) error {
	if prior, ok := t.local(alias); ok && prior != sym && prior.Category != sym.Category {
		return qerrors.New("SYM-0003", map[string]any{
			"Alias":    alias,
			"Existing": prior.Category,
			"Category": sym.Category,
			"Name":     sym.Name,
		})
	}
	return nil
}

func (t *Table) local(name string) (*Symbol, bool) {
	v, found := t.symbols.Get(name)
	if !found {
		return nil, false
	}
	return v.(*Symbol), true
}

// ContainsLocal reports whether this table itself defines name.
func (t *Table) ContainsLocal(name string) bool {
	_, ok := t.local(name)
	return ok
}

// Contains reports whether name is defined here or in any parent.
func (t *Table) Contains(name string) bool {
	_, ok := t.GetSymbol(name)
	return ok
}

// GetSymbol finds name here first, then up the parent chain.
func (t *Table) GetSymbol(name string) (*Symbol, bool) {
	for tbl := t; tbl != nil; tbl = tbl.parent {
		if sym, ok := tbl.local(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Names returns the names defined in this table, in definition order.
func (t *Table) Names() []string {
	keys := t.symbols.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}

// Visible returns every name resolvable from t, nearest table first.
func (t *Table) Visible() []string {
	seen := make(map[string]bool)
	var names []string
	for tbl := t; tbl != nil; tbl = tbl.parent {
		for _, name := range tbl.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Suggest ranks visible names that name could be a misspelling of, best
// first. Abbreviations are matched fuzzily; typos by edit distance.
func (t *Table) Suggest(name string) []string {
	visible := t.Visible()
	ranks := fuzzy.RankFindFold(name, visible)
	sort.Sort(ranks)

	var out []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		if r.Target == name || seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}
	if closest := qerrors.FindClosestMatch(name, visible); closest != "" && !seen[closest] {
		out = append(out, closest)
	}
	return out
}

// Undefined builds the error for a reference to a name no table defines.
func (t *Table) Undefined(name string) *qerrors.LangError {
	err := qerrors.New("SYM-0005", map[string]any{"Name": name})
	if s := t.Suggest(name); len(s) > 0 {
		err.Hints = append(err.Hints, "Did you mean `"+s[0]+"`?")
	}
	return err
}
