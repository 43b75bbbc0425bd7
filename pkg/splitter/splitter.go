// Package splitter locates the executable statements inside a SQL
// script without understanding the statements themselves. It consumes
// the token stream of pkg/lexer and applies delimiter and procedural
// block rules described by a dialect profile.
package splitter

import (
	"context"
	"sort"
	"strings"

	"sqlscript/pkg/dialect"
	"sqlscript/pkg/lexer"
)

// cancelCheckInterval is how many tokens are processed between
// cooperative context checks in ParseContext.
const cancelCheckInterval = 256

// Splitter splits script text into statements according to one dialect
// profile and the currently configured options. A Splitter instance is
// not safe for concurrent use; create one per goroutine. Option setters
// take effect at the next Parse call.
type Splitter struct {
	profile              *dialect.Profile
	alternate            *DelimiterDefinition
	emptyLineIsDelimiter bool
	checkEscapedQuotes   bool
}

// New creates a Splitter for the given profile. A nil profile falls back
// to the standard profile. The profile is validated before any parse can
// run.
func New(profile *dialect.Profile) (*Splitter, error) {
	if profile == nil {
		profile = dialect.Standard()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{profile: profile}, nil
}

// SetAlternateDelimiter replaces the default semicolon delimiter for
// subsequent parses. While an alternate delimiter is active, semicolons
// are ordinary statement text. Pass nil to restore the default.
func (s *Splitter) SetAlternateDelimiter(d *DelimiterDefinition) {
	s.alternate = d
}

// SetEmptyLineIsDelimiter makes a blank line terminate the current
// statement, when the line occurs outside any procedural block.
func (s *Splitter) SetEmptyLineIsDelimiter(on bool) {
	s.emptyLineIsDelimiter = on
}

// SetCheckEscapedQuotes makes the tokenizer honor backslash-escaped
// quotes inside string literals even when the dialect does not.
func (s *Splitter) SetCheckEscapedQuotes(on bool) {
	s.checkEscapedQuotes = on
}

// Parse splits text into statements. The result depends only on the
// text, the profile and the options in effect; the same input always
// yields the same Script.
func (s *Splitter) Parse(text string) (*Script, error) {
	return s.ParseContext(context.Background(), text)
}

// ParseContext is Parse with cooperative cancellation. The context is
// polled every few hundred tokens, so very large scripts can be
// abandoned without finishing the pass.
func (s *Splitter) ParseContext(ctx context.Context, text string) (*Script, error) {
	delim := s.alternate
	if delim == nil {
		delim = Default()
	}

	lx := lexer.New(text, s.profile)
	lx.SetCheckEscapedQuotes(s.checkEscapedQuotes)

	p := &parser{
		src:       text,
		lx:        lx,
		profile:   s.profile,
		delim:     delim,
		emptyLine: s.emptyLineIsDelimiter,
	}
	return p.run(ctx)
}

// parser holds the state of one parse pass. It lives for a single
// ParseContext call and is discarded afterwards.
type parser struct {
	src       string
	lx        *lexer.Lexer
	queue     []lexer.Token
	profile   *dialect.Profile
	delim     *DelimiterDefinition
	emptyLine bool

	statements []Statement
	diags      []Diagnostic

	// Per-statement state, reset at every boundary.
	stmtStart      int
	hasSignificant bool
	firstWord      bool
	prevWord       string
	createSeen     bool
	routinePending bool
	declareOpen    bool

	// Block depth survives delimiters by construction: boundaries are
	// only recognized at depth zero.
	depth     int
	openerPos int
}

func (p *parser) run(ctx context.Context) (*Script, error) {
	p.resetStatement(0)

	for count := 0; ; count++ {
		if count%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tok := p.next()
		if tok.Kind == lexer.EndOfInput {
			break
		}

		if !tok.Significant() {
			if p.emptyLine && p.depth == 0 && tok.Kind == lexer.Whitespace &&
				containsBlankLine(tok.Text(p.src)) {
				p.endStatement(tok.Start, tok.End)
			}
			continue
		}

		if p.depth == 0 {
			if end, ok := p.matchDelimiter(tok); ok {
				p.endStatement(tok.Start, end)
				p.seek(end)
				continue
			}
		}

		p.hasSignificant = true

		if tok.Kind == lexer.Word {
			p.onWord(tok)
		} else {
			p.firstWord = false
			p.prevWord = ""
		}
	}

	p.endStatement(len(p.src), len(p.src))

	if p.depth > 0 {
		p.diags = append(p.diags, Diagnostic{Code: UnterminatedBlock, Pos: p.openerPos})
	}
	for _, d := range p.lx.Diagnostics() {
		p.diags = append(p.diags, fromLexerDiagnostic(d))
	}
	sort.Slice(p.diags, func(i, j int) bool { return p.diags[i].Pos < p.diags[j].Pos })

	return &Script{source: p.src, statements: p.statements, diags: p.diags}, nil
}

// onWord applies the procedural block rules to one word token.
func (p *parser) onWord(tok lexer.Token) {
	w := strings.ToUpper(tok.Text(p.src))
	first := p.firstWord
	p.firstWord = false
	prev := p.prevWord
	p.prevWord = w

	// The qualifier of END IF / END LOOP / END CASE belongs to the
	// closer that was already counted.
	if prev == "END" && p.profile.IsEndQualifier(w) {
		return
	}

	switch {
	case w == "END":
		if p.depth > 0 {
			p.depth--
		}
		if p.depth == 0 {
			p.declareOpen = false
		}

	case w == "BEGIN" && p.profile.IsBlockOpener(w):
		if p.beginIsTransaction() {
			return
		}
		if p.declareOpen {
			// DECLARE or a routine body introducer already opened the
			// block; this BEGIN starts its body.
			p.declareOpen = false
			return
		}
		p.open(tok.Start)

	case p.profile.IsBlockOpener(w):
		p.open(tok.Start)

	case p.profile.IsInnerOpener(w) && p.depth > 0:
		p.open(tok.Start)

	case p.profile.IsStatementOpener(w) && first:
		p.open(tok.Start)
		p.declareOpen = true

	case w == "CREATE" && first:
		p.createSeen = true

	case p.createSeen && p.profile.IsRoutineWord(w):
		p.createSeen = false
		p.routinePending = true

	case p.routinePending && p.profile.IsBodyIntroducer(w):
		p.routinePending = false
		p.open(tok.Start)
		p.declareOpen = true
	}
}

// beginIsTransaction peeks past a BEGIN: followed by the active
// delimiter, a semicolon, WORK or TRANSACTION it is transaction control
// rather than a procedural block.
func (p *parser) beginIsTransaction() bool {
	nxt := p.peekSignificant()
	switch nxt.Kind {
	case lexer.Delimiter, lexer.EndOfInput:
		return true
	case lexer.Word:
		w := nxt.Text(p.src)
		if strings.EqualFold(w, "WORK") || strings.EqualFold(w, "TRANSACTION") ||
			strings.EqualFold(w, "TRAN") {
			return true
		}
		return false
	default:
		if end, ok := p.matchDelimiterAt(nxt); ok && end > nxt.Start {
			return true
		}
		return false
	}
}

func (p *parser) open(pos int) {
	if p.depth == 0 {
		p.openerPos = pos
	}
	p.depth++
}

// matchDelimiter reports whether the active delimiter occurs at the
// start of tok, returning the offset just past the match. Quoted tokens
// never match.
func (p *parser) matchDelimiter(tok lexer.Token) (int, bool) {
	if tok.Kind == lexer.StringLiteral || tok.Kind == lexer.QuotedIdentifier {
		return 0, false
	}
	return p.matchDelimiterAt(tok)
}

func (p *parser) matchDelimiterAt(tok lexer.Token) (int, bool) {
	text := p.delim.Text()

	// The common case: the default semicolon arrives as its own token.
	if text == ";" && !p.delim.SingleLine() {
		if tok.Kind == lexer.Delimiter {
			return tok.End, true
		}
		return 0, false
	}

	rest := p.src[tok.Start:]
	if len(rest) < len(text) {
		return 0, false
	}
	head := rest[:len(text)]
	if p.delim.hasLetters() {
		if !strings.EqualFold(head, text) {
			return 0, false
		}
		// Word boundary: GO must not match the front of GOTO.
		if len(rest) > len(text) && isWordByte(rest[len(text)]) {
			return 0, false
		}
	} else if head != text {
		return 0, false
	}

	end := tok.Start + len(text)
	if p.delim.SingleLine() && !p.aloneOnLine(tok.Start, end) {
		return 0, false
	}
	return end, true
}

// aloneOnLine reports whether the span [start, end) is the only
// non-whitespace content of its physical line.
func (p *parser) aloneOnLine(start, end int) bool {
	for i := start - 1; i >= 0; i-- {
		c := p.src[i]
		if c == '\n' {
			break
		}
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	for i := end; i < len(p.src); i++ {
		c := p.src[i]
		if c == '\n' {
			break
		}
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}

// endStatement closes the current segment at end and starts the next at
// restart. Segments with no significant content are dropped, not
// emitted as empty statements.
func (p *parser) endStatement(end, restart int) {
	if p.hasSignificant {
		p.statements = append(p.statements, Statement{
			Start: p.stmtStart,
			End:   end,
			Index: len(p.statements),
		})
	}
	p.resetStatement(restart)
}

func (p *parser) resetStatement(start int) {
	p.stmtStart = start
	p.hasSignificant = false
	p.firstWord = true
	p.prevWord = ""
	p.createSeen = false
	p.routinePending = false
	p.declareOpen = false
}

// next returns the following token, draining tokens buffered by a peek
// before pulling from the lexer.
func (p *parser) next() lexer.Token {
	if len(p.queue) > 0 {
		tok := p.queue[0]
		p.queue = p.queue[1:]
		return tok
	}
	return p.lx.NextToken()
}

// peekSignificant returns the next significant token without consuming
// anything: every token read during the peek is buffered and will flow
// through the main loop afterwards.
func (p *parser) peekSignificant() lexer.Token {
	for _, tok := range p.queue {
		if tok.Significant() {
			return tok
		}
	}
	for {
		tok := p.lx.NextToken()
		if tok.Kind == lexer.EndOfInput {
			return tok
		}
		p.queue = append(p.queue, tok)
		if tok.Significant() {
			return tok
		}
	}
}

// seek repositions the lexer past a consumed delimiter and discards any
// tokens buffered before that point.
func (p *parser) seek(pos int) {
	p.queue = p.queue[:0]
	p.lx.Seek(pos)
}

// containsBlankLine reports whether a whitespace run contains a line
// with no content at all, i.e. two newlines separated only by spaces,
// tabs or carriage returns.
func containsBlankLine(ws string) bool {
	seenNewline := false
	for i := 0; i < len(ws); i++ {
		switch ws[i] {
		case '\n':
			if seenNewline {
				return true
			}
			seenNewline = true
		case ' ', '\t', '\r':
		default:
			seenNewline = false
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
