package splitter

import "fmt"

// Script is the immutable result of one parse: the source text, the
// located statements in order, and any advisory diagnostics. A Script is
// safe for concurrent readers.
type Script struct {
	source     string
	statements []Statement
	diags      []Diagnostic
}

// Source returns the text the script was parsed from.
func (s *Script) Source() string { return s.source }

// StatementCount returns the number of statements located.
func (s *Script) StatementCount() int { return len(s.statements) }

// Statements returns the located statements in source order.
func (s *Script) Statements() []Statement { return s.statements }

// StatementAt returns the statement with the given index. An
// out-of-range index is a caller bug and panics.
func (s *Script) StatementAt(i int) Statement {
	if i < 0 || i >= len(s.statements) {
		panic(fmt.Sprintf("splitter: statement index %d out of range [0, %d)", i, len(s.statements)))
	}
	return s.statements[i]
}

// StatementIndexAt maps a byte offset to a statement index: the
// statement containing the offset, or for offsets in the gaps between
// statements, the nearest preceding statement. Offsets before the first
// statement map to index 0. The second return is false only when the
// script has no statements at all.
func (s *Script) StatementIndexAt(offset int) (int, bool) {
	if len(s.statements) == 0 {
		return 0, false
	}
	idx := 0
	for i, st := range s.statements {
		if st.Start > offset {
			break
		}
		idx = i
	}
	return idx, true
}

// Diagnostics returns the advisory findings recorded during the parse,
// in source order.
func (s *Script) Diagnostics() []Diagnostic { return s.diags }
