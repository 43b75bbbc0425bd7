package splitter

import "strings"

// Statement is one executable statement located inside a script buffer.
// Start and End delimit the raw half-open span, including any leading
// whitespace or comments but excluding the delimiter that terminated it.
// Index is the statement's zero-based position in the script.
//
// Statements are immutable snapshots; any edit to the underlying buffer
// invalidates them and the consumer re-parses.
type Statement struct {
	Start int
	End   int
	Index int
}

// Text returns the statement text within buffer, with surrounding
// whitespace trimmed.
func (s Statement) Text(buffer string) string {
	return strings.TrimSpace(buffer[s.Start:s.End])
}

// Contains reports whether the byte offset falls inside the raw span.
func (s Statement) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}
