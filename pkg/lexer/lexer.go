package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"sqlscript/pkg/dialect"
)

// multiCharOperators are recognized as a single Operator token. Longer
// matches win; every entry here is two characters.
var multiCharOperators = []string{"::", "||", "<>", "!=", "<=", ">=", ":=", "=>"}

// DiagnosticCode identifies a recoverable lexing anomaly.
type DiagnosticCode int

const (
	// UnterminatedLiteral marks a string literal or quoted identifier with
	// no closing quote before end-of-input.
	UnterminatedLiteral DiagnosticCode = iota
	// UnterminatedComment marks a block comment with no closing marker.
	UnterminatedComment
)

// Diagnostic records a recoverable anomaly at a byte offset. Anomalies
// never abort lexing: the affected token simply runs to end-of-input.
type Diagnostic struct {
	Code DiagnosticCode
	Pos  int
}

// Lexer scans script text into a stream of classified tokens. The token
// spans are contiguous and cover every byte of the input exactly once,
// ending with an EndOfInput token at len(src).
//
// The lexer never backtracks across emitted tokens and performs no
// lookahead beyond what is needed to find a matching close marker.
type Lexer struct {
	src                string
	pos                int
	profile            *dialect.Profile
	checkEscapedQuotes bool
	diags              []Diagnostic
}

// New creates a Lexer over src using the given dialect profile.
// A nil profile falls back to the standard profile.
func New(src string, profile *dialect.Profile) *Lexer {
	if profile == nil {
		profile = dialect.Standard()
	}
	return &Lexer{src: src, profile: profile}
}

// SetCheckEscapedQuotes enables backslash-escape handling inside string
// literals even when the profile does not mandate it (the nonstandard
// escaped-quote convention some drivers accept).
func (l *Lexer) SetCheckEscapedQuotes(on bool) {
	l.checkEscapedQuotes = on
}

// Seek repositions the scan cursor. Used by callers that consume a span
// of raw text themselves (e.g. a multi-character statement delimiter).
func (l *Lexer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.src) {
		pos = len(l.src)
	}
	l.pos = pos
}

// Diagnostics returns the anomalies recorded so far, in source order.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diags
}

// NextToken scans and returns the next token. Once the input is
// exhausted it keeps returning an EndOfInput token at len(src).
func (l *Lexer) NextToken() Token {
	if l.pos >= len(l.src) {
		return Token{Kind: EndOfInput, Start: len(l.src), End: len(l.src)}
	}

	start := l.pos
	c := l.src[l.pos]

	for _, marker := range l.profile.LineComments {
		if strings.HasPrefix(l.src[l.pos:], marker) {
			return l.readLineComment(start)
		}
	}
	if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*' {
		return l.readBlockComment(start)
	}
	if c == '$' && l.profile.DollarQuotes {
		if tok, ok := l.readDollarQuoted(start); ok {
			return tok
		}
	}
	if (c == 'e' || c == 'E') && l.profile.EscapeStringPrefix &&
		l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
		l.pos++ // the E prefix belongs to the literal
		return l.readQuoted(start, StringLiteral, '\'', '\'', false, true)
	}
	if c == '\'' {
		backslash := l.profile.BackslashEscapes || l.checkEscapedQuotes
		return l.readQuoted(start, StringLiteral, '\'', '\'', l.profile.DoubledQuoteEscape, backslash)
	}
	if close, ok := l.profile.IdentQuoteClose(c); ok {
		return l.readQuoted(start, QuotedIdentifier, c, close, true, false)
	}
	if c == ';' {
		l.pos++
		return Token{Kind: Delimiter, Start: start, End: l.pos}
	}

	r, width := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case unicode.IsSpace(r):
		return l.readWhitespace(start)
	case r == '_' || unicode.IsLetter(r):
		return l.readWord(start)
	case unicode.IsDigit(r):
		return l.readNumber(start)
	default:
		for _, op := range multiCharOperators {
			if strings.HasPrefix(l.src[l.pos:], op) {
				l.pos += len(op)
				return Token{Kind: Operator, Start: start, End: l.pos}
			}
		}
		l.pos += width
		return Token{Kind: Operator, Start: start, End: l.pos}
	}
}

// readLineComment consumes up to (not including) the line terminator, so
// the newline stays in the following whitespace token.
func (l *Lexer) readLineComment(start int) Token {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	end := l.pos
	if end > start && l.src[end-1] == '\r' {
		end--
		l.pos--
	}
	return Token{Kind: LineComment, Start: start, End: end}
}

func (l *Lexer) readBlockComment(start int) Token {
	l.pos += 2
	depth := 1
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			l.pos += 2
			depth--
			if depth == 0 {
				return Token{Kind: BlockComment, Start: start, End: l.pos}
			}
			continue
		}
		if l.profile.NestedBlockComments &&
			l.src[l.pos] == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*' {
			l.pos += 2
			depth++
			continue
		}
		l.pos++
	}
	l.diags = append(l.diags, Diagnostic{Code: UnterminatedComment, Pos: start})
	return Token{Kind: BlockComment, Start: start, End: l.pos}
}

// readQuoted consumes a quoted region that opened at l.pos. doubled means
// a repeated close character is an escape; backslash means a backslash
// escapes the next character. An unterminated region runs to end-of-input
// and is recorded as a diagnostic.
func (l *Lexer) readQuoted(start int, kind TokenKind, open, close byte, doubled, backslash bool) Token {
	l.pos++
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if backslash && ch == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2
			continue
		}
		if ch == close {
			if doubled && l.pos+1 < len(l.src) && l.src[l.pos+1] == close {
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Kind: kind, Start: start, End: l.pos, Quote: open}
		}
		l.pos++
	}
	l.diags = append(l.diags, Diagnostic{Code: UnterminatedLiteral, Pos: start})
	return Token{Kind: kind, Start: start, End: l.pos, Quote: open}
}

// readDollarQuoted handles $$...$$ and $tag$...$tag$ literals. It reports
// ok=false when the text after the dollar sign is not a valid tag, in
// which case the caller treats the dollar sign as an operator.
func (l *Lexer) readDollarQuoted(start int) (Token, bool) {
	tag, ok := dollarTag(l.src[l.pos+1:])
	if !ok {
		return Token{}, false
	}
	open := "$" + tag + "$"
	bodyStart := l.pos + len(open)
	rel := strings.Index(l.src[bodyStart:], open)
	if rel == -1 {
		l.pos = len(l.src)
		l.diags = append(l.diags, Diagnostic{Code: UnterminatedLiteral, Pos: start})
		return Token{Kind: StringLiteral, Start: start, End: l.pos, Quote: '$'}, true
	}
	l.pos = bodyStart + rel + len(open)
	return Token{Kind: StringLiteral, Start: start, End: l.pos, Quote: '$'}, true
}

// dollarTag reads the identifier between the opening dollar signs of a
// dollar-quoted literal. An empty tag ($$) is valid.
func dollarTag(src string) (string, bool) {
	r, width := utf8.DecodeRuneInString(src)
	if r == '$' {
		return "", true
	}
	if r != '_' && !unicode.IsLetter(r) {
		// Not a tag; likely a positional parameter such as $1.
		return "", false
	}
	i := width
	for i < len(src) {
		r, width = utf8.DecodeRuneInString(src[i:])
		switch {
		case r == '$':
			return src[:i], true
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			i += width
		default:
			return "", false
		}
	}
	return "", false
}

func (l *Lexer) readWhitespace(start int) Token {
	for l.pos < len(l.src) {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += width
	}
	return Token{Kind: Whitespace, Start: start, End: l.pos}
}

func (l *Lexer) readWord(start int) Token {
	for l.pos < len(l.src) {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += width
	}
	return Token{Kind: Word, Start: start, End: l.pos}
}

// readNumber consumes a numeric-literal-looking run: digits, at most one
// decimal point, and an optional exponent.
func (l *Lexer) readNumber(start int) Token {
	l.consumeDigits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		l.consumeDigits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.consumeDigits()
		} else {
			// Not an exponent after all; the e starts a word.
			l.pos = mark
		}
	}
	return Token{Kind: Number, Start: start, End: l.pos}
}

func (l *Lexer) consumeDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
