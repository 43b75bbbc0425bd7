package splitter

import "sqlscript/pkg/lexer"

// DiagnosticCode identifies an advisory finding attached to a parsed
// script. Findings never fail the parse; the affected text runs to
// end-of-input and lands in the final statement.
type DiagnosticCode int

const (
	// UnterminatedLiteral marks a string literal, quoted identifier or
	// dollar-quoted region with no closing marker.
	UnterminatedLiteral DiagnosticCode = iota
	// UnterminatedComment marks a block comment with no closing marker.
	UnterminatedComment
	// UnterminatedBlock marks a procedural block still open at
	// end-of-input. Pos is the offset of the unmatched opener.
	UnterminatedBlock
)

var diagnosticCodeNames = map[DiagnosticCode]string{
	UnterminatedLiteral: "UNTERMINATED_LITERAL",
	UnterminatedComment: "UNTERMINATED_COMMENT",
	UnterminatedBlock:   "UNTERMINATED_BLOCK",
}

func (c DiagnosticCode) String() string {
	if name, ok := diagnosticCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Diagnostic is one advisory finding at a byte offset.
type Diagnostic struct {
	Code DiagnosticCode
	Pos  int
}

// fromLexerDiagnostic lifts a tokenizer finding into the script-level
// diagnostic space.
func fromLexerDiagnostic(d lexer.Diagnostic) Diagnostic {
	code := UnterminatedLiteral
	if d.Code == lexer.UnterminatedComment {
		code = UnterminatedComment
	}
	return Diagnostic{Code: code, Pos: d.Pos}
}
