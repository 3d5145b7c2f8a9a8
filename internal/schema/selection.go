package schema

import (
	"fmt"
	"strings"
	"text/scanner"
)

// Selection is one entry of a selection set: either a field, or an inline
// fragment whose Set applies only when the value's concrete type is On.
type Selection struct {
	// Name is the selected field; empty for an inline fragment.
	Name string
	// Alias renames the field in the result.
	Alias string
	// On is the type condition of an inline fragment.
	On string
	// Set is the nested selection.
	Set SelectionSet
}

// SelectionSet is an ordered list of selections.
type SelectionSet []Selection

// ResponseKey returns the key the field is reported under.
func (s Selection) ResponseKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// IsFragment reports whether s is an inline fragment.
func (s Selection) IsFragment() bool {
	return s.On != ""
}

// Fields builds a selection set of leaf fields.
func Fields(names ...string) SelectionSet {
	set := make(SelectionSet, 0, len(names))
	for _, n := range names {
		set = append(set, Selection{Name: n})
	}
	return set
}

// ParseSelection reads a selection set written as
//
//	{ name animals { name ... on Lion { walkSpeed runSpeed } } }
//
// Fields are separated by white space or commas, "alias: field" renames a
// field, and "... on Type { ... }" is an inline fragment. The outer braces
// are optional. Arguments, variables and named fragments are not supported.
func ParseSelection(src string) (SelectionSet, error) {
	p := newSelectionParser(src)
	p.next()

	var (
		set SelectionSet
		err error
	)
	if p.tok == '{' {
		set, err = p.parseSet()
	} else {
		set, err = p.parseItems(scanner.EOF)
	}
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %s after selection", p.describe())
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidSelection)
	}
	return set, nil
}

// MustParseSelection is like ParseSelection but panics on error.
func MustParseSelection(src string) SelectionSet {
	set, err := ParseSelection(src)
	if err != nil {
		panic(err)
	}
	return set
}

// String renders the set in the syntax ParseSelection reads.
func (set SelectionSet) String() string {
	var b strings.Builder
	writeSet(&b, set)
	return b.String()
}

func writeSet(b *strings.Builder, set SelectionSet) {
	b.WriteString("{")
	for _, sel := range set {
		b.WriteString(" ")
		if sel.IsFragment() {
			b.WriteString("... on ")
			b.WriteString(sel.On)
		} else {
			if sel.Alias != "" {
				b.WriteString(sel.Alias)
				b.WriteString(": ")
			}
			b.WriteString(sel.Name)
		}
		if len(sel.Set) > 0 {
			b.WriteString(" ")
			writeSet(b, sel.Set)
		}
	}
	b.WriteString(" }")
}

type selectionParser struct {
	s     scanner.Scanner
	tok   rune
	text  string
	error string
}

func newSelectionParser(src string) *selectionParser {
	p := &selectionParser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents
	p.s.Whitespace = scanner.GoWhitespace | 1<<','
	p.s.Error = func(_ *scanner.Scanner, msg string) {
		if p.error == "" {
			p.error = msg
		}
	}
	return p
}

func (p *selectionParser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
}

func (p *selectionParser) describe() string {
	switch p.tok {
	case scanner.EOF:
		return "end of input"
	case scanner.Ident:
		return fmt.Sprintf("%q", p.text)
	}
	return fmt.Sprintf("%q", string(p.tok))
}

func (p *selectionParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.error != "" {
		msg = p.error
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidSelection, p.s.Position, msg)
}

// parseSet parses "{ items }". The current token is '{'.
func (p *selectionParser) parseSet() (SelectionSet, error) {
	p.next()
	set, err := p.parseItems('}')
	if err != nil {
		return nil, err
	}
	if p.tok != '}' {
		return nil, p.errorf("expected \"}\", got %s", p.describe())
	}
	p.next()
	if len(set) == 0 {
		return nil, p.errorf("empty selection set")
	}
	return set, nil
}

// parseItems parses selections until the token end.
func (p *selectionParser) parseItems(end rune) (SelectionSet, error) {
	var set SelectionSet
	for p.tok != end && p.tok != scanner.EOF {
		sel, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		set = append(set, sel)
	}
	return set, nil
}

func (p *selectionParser) parseItem() (Selection, error) {
	if p.tok == '.' {
		return p.parseFragment()
	}
	if p.tok != scanner.Ident || !isName(p.text) {
		return Selection{}, p.errorf("expected field name, got %s", p.describe())
	}

	sel := Selection{Name: p.text}
	p.next()
	if p.tok == ':' {
		p.next()
		if p.tok != scanner.Ident || !isName(p.text) {
			return Selection{}, p.errorf("expected field name after alias %q, got %s", sel.Name, p.describe())
		}
		sel.Alias, sel.Name = sel.Name, p.text
		p.next()
	}
	if p.tok == '{' {
		set, err := p.parseSet()
		if err != nil {
			return Selection{}, err
		}
		sel.Set = set
	}
	return sel, nil
}

// parseFragment parses "... on Type { items }". The current token is '.'.
func (p *selectionParser) parseFragment() (Selection, error) {
	for i := 0; i < 3; i++ {
		if p.tok != '.' {
			return Selection{}, p.errorf("expected \"...\"")
		}
		p.next()
	}
	if p.tok != scanner.Ident || p.text != "on" {
		return Selection{}, p.errorf("expected \"on\" after \"...\", got %s", p.describe())
	}
	p.next()
	if p.tok != scanner.Ident || !isName(p.text) {
		return Selection{}, p.errorf("expected type name, got %s", p.describe())
	}
	sel := Selection{On: p.text}
	p.next()
	if p.tok != '{' {
		return Selection{}, p.errorf("expected \"{\" after \"... on %s\", got %s", sel.On, p.describe())
	}
	set, err := p.parseSet()
	if err != nil {
		return Selection{}, err
	}
	sel.Set = set
	return sel, nil
}
