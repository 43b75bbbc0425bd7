package lexer

// TokenKind classifies a span of script text. The set is closed: every
// character of the input belongs to exactly one of these categories.
type TokenKind int

const (
	Whitespace TokenKind = iota
	LineComment
	BlockComment
	StringLiteral
	QuotedIdentifier
	Word
	Number
	Operator
	Delimiter
	EndOfInput
)

var tokenKindNames = map[TokenKind]string{
	Whitespace:       "WHITESPACE",
	LineComment:      "LINE_COMMENT",
	BlockComment:     "BLOCK_COMMENT",
	StringLiteral:    "STRING_LITERAL",
	QuotedIdentifier: "QUOTED_IDENTIFIER",
	Word:             "WORD",
	Number:           "NUMBER",
	Operator:         "OPERATOR",
	Delimiter:        "DELIMITER",
	EndOfInput:       "END_OF_INPUT",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a classified half-open span [Start, End) into the original
// buffer. Tokens never copy text; callers slice the buffer when they need
// it. For StringLiteral and QuotedIdentifier tokens, Quote holds the
// opening quote character (the closing character may differ, e.g. `[` / `]`).
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Quote byte
}

// Text returns the raw text of the token within src.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

// Significant reports whether the token carries statement content, i.e.
// it is neither whitespace, a comment, nor the end-of-input marker.
func (t Token) Significant() bool {
	switch t.Kind {
	case Whitespace, LineComment, BlockComment, EndOfInput:
		return false
	}
	return true
}
