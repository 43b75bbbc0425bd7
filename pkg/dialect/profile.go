// Package dialect describes the lexical rules of one database product as
// an immutable value. Profiles are plain data consumed by the lexer and
// splitter; dialect variation never requires a different algorithm.
package dialect

import (
	"strings"

	"github.com/samber/lo"

	"sqlscript/pkg/scripterror"
)

// QuotePair is an identifier quoting convention: the character that opens
// a quoted identifier and the character that closes it. For most dialects
// Open == Close; SQL Server brackets are the exception.
type QuotePair struct {
	Open  byte
	Close byte
}

// Profile is the full lexical configuration for one dialect. Profiles are
// immutable once constructed and safe to share between goroutines.
//
// Word lists are matched case-insensitively.
type Profile struct {
	// Name identifies the profile ("mysql", "oracle", ...).
	Name string

	// LineComments are the markers that start a comment running to
	// end-of-line. "--" for every dialect; MySQL adds "#".
	LineComments []string

	// NestedBlockComments controls whether /* ... /* ... */ ... */ is one
	// comment (PostgreSQL) or closes at the first */ (everyone else).
	NestedBlockComments bool

	// IdentQuotes lists the valid identifier quoting conventions.
	IdentQuotes []QuotePair

	// DoubledQuoteEscape: a doubled quote inside a string literal is an
	// escaped quote, not the end of the literal.
	DoubledQuoteEscape bool

	// BackslashEscapes: a backslash inside a string literal escapes the
	// following character (MySQL).
	BackslashEscapes bool

	// EscapeStringPrefix enables E'...' literals with backslash escaping
	// even when plain literals use doubled quotes (PostgreSQL).
	EscapeStringPrefix bool

	// DollarQuotes enables $$...$$ and $tag$...$tag$ string literals.
	DollarQuotes bool

	// BlockOpeners open a procedural construct wherever they appear
	// (BEGIN, CASE). Delimiters inside an open construct do not terminate
	// the statement.
	BlockOpeners []string

	// InnerOpeners open a construct only inside an already-open one
	// (IF, LOOP, WHILE, REPEAT). Keeps "DROP TABLE IF EXISTS" from being
	// mistaken for a block.
	InnerOpeners []string

	// StatementOpeners open a construct only as the first word of a
	// statement (DECLARE in Oracle anonymous blocks).
	StatementOpeners []string

	// EndQualifiers are the words that may follow END as part of the
	// closer (END IF, END LOOP, ...). They are consumed with the END.
	EndQualifiers []string

	// RoutineWords combine with a preceding CREATE to announce a routine
	// definition (FUNCTION, PROCEDURE, TRIGGER, ...).
	RoutineWords []string

	// BodyIntroducers are the words that start a routine body after
	// CREATE ... <routine word> ... (AS, IS). Seeing one opens a block.
	BodyIntroducers []string
}

// IdentQuoteClose returns the closing character for an identifier quote
// opening character, if the profile recognizes it.
func (p *Profile) IdentQuoteClose(open byte) (byte, bool) {
	for _, q := range p.IdentQuotes {
		if q.Open == open {
			return q.Close, true
		}
	}
	return 0, false
}

func containsFold(words []string, w string) bool {
	return lo.SomeBy(words, func(s string) bool { return strings.EqualFold(s, w) })
}

// IsBlockOpener reports whether w opens a construct anywhere.
func (p *Profile) IsBlockOpener(w string) bool { return containsFold(p.BlockOpeners, w) }

// IsInnerOpener reports whether w opens a construct when nested.
func (p *Profile) IsInnerOpener(w string) bool { return containsFold(p.InnerOpeners, w) }

// IsStatementOpener reports whether w opens a construct at statement start.
func (p *Profile) IsStatementOpener(w string) bool { return containsFold(p.StatementOpeners, w) }

// IsEndQualifier reports whether w may follow END as part of the closer.
func (p *Profile) IsEndQualifier(w string) bool { return containsFold(p.EndQualifiers, w) }

// IsRoutineWord reports whether CREATE followed by w announces a routine.
func (p *Profile) IsRoutineWord(w string) bool { return containsFold(p.RoutineWords, w) }

// IsBodyIntroducer reports whether w starts a routine body.
func (p *Profile) IsBodyIntroducer(w string) bool { return containsFold(p.BodyIntroducers, w) }

// Validate rejects contradictory configuration. It is called by the
// built-in constructors and by LoadFile before a profile is ever handed
// to a lexer.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return scripterror.New(scripterror.CategoryConfig, "PROFILE_NAME_EMPTY",
			"dialect profile has no name")
	}
	for _, m := range p.LineComments {
		if m == "" {
			return scripterror.New(scripterror.CategoryConfig, "PROFILE_COMMENT_MARKER_EMPTY",
				"line comment marker is empty").WithDetail("profile " + p.Name)
		}
		if strings.ContainsAny(m, " \t\r\n") {
			return scripterror.New(scripterror.CategoryConfig, "PROFILE_COMMENT_MARKER_BLANK",
				"line comment marker contains whitespace").WithDetail("profile " + p.Name)
		}
	}
	for _, q := range p.IdentQuotes {
		if q.Open == 0 || q.Close == 0 {
			return scripterror.New(scripterror.CategoryConfig, "PROFILE_QUOTE_PAIR_INVALID",
				"identifier quote pair has a zero character").WithDetail("profile " + p.Name)
		}
		if q.Open == '\'' {
			return scripterror.New(scripterror.CategoryConfig, "PROFILE_QUOTE_PAIR_INVALID",
				"single quote cannot double as an identifier quote").WithDetail("profile " + p.Name)
		}
	}
	for _, list := range [][]string{
		p.BlockOpeners, p.InnerOpeners, p.StatementOpeners,
		p.EndQualifiers, p.RoutineWords, p.BodyIntroducers,
	} {
		for _, w := range list {
			if strings.TrimSpace(w) == "" {
				return scripterror.New(scripterror.CategoryConfig, "PROFILE_KEYWORD_EMPTY",
					"block keyword list contains an empty entry").WithDetail("profile " + p.Name)
			}
		}
	}
	return nil
}

// Standard is the dialect-neutral default profile: double-quoted
// identifiers, doubled-quote escaping, ISO block keywords.
func Standard() *Profile {
	return &Profile{
		Name:               "standard",
		LineComments:       []string{"--"},
		IdentQuotes:        []QuotePair{{'"', '"'}},
		DoubledQuoteEscape: true,
		BlockOpeners:       []string{"BEGIN", "CASE"},
		InnerOpeners:       []string{"IF", "LOOP"},
		StatementOpeners:   []string{"DECLARE"},
		EndQualifiers:      []string{"IF", "CASE", "LOOP"},
		RoutineWords:       []string{"FUNCTION", "PROCEDURE", "TRIGGER"},
		BodyIntroducers:    []string{"AS", "IS"},
	}
}

// MySQL covers MySQL, MariaDB and friends: backtick identifiers,
// backslash escapes, # comments, the full procedural loop family.
func MySQL() *Profile {
	return &Profile{
		Name:               "mysql",
		LineComments:       []string{"--", "#"},
		IdentQuotes:        []QuotePair{{'`', '`'}, {'"', '"'}},
		DoubledQuoteEscape: true,
		BackslashEscapes:   true,
		BlockOpeners:       []string{"BEGIN", "CASE"},
		InnerOpeners:       []string{"IF", "LOOP", "WHILE", "REPEAT"},
		EndQualifiers:      []string{"IF", "CASE", "LOOP", "WHILE", "REPEAT"},
		RoutineWords:       []string{"FUNCTION", "PROCEDURE", "TRIGGER", "EVENT"},
		BodyIntroducers:    []string{},
	}
}

// PostgreSQL: dollar quoting, E'...' strings, nested block comments.
// Routine bodies arrive as dollar-quoted (or plain) string literals, so
// AS must not open a procedural block here; the block keywords cover
// BEGIN ATOMIC bodies and explicit blocks written outside a literal.
func PostgreSQL() *Profile {
	return &Profile{
		Name:                "postgresql",
		LineComments:        []string{"--"},
		NestedBlockComments: true,
		IdentQuotes:         []QuotePair{{'"', '"'}},
		DoubledQuoteEscape:  true,
		EscapeStringPrefix:  true,
		DollarQuotes:        true,
		BlockOpeners:        []string{"BEGIN", "CASE"},
		InnerOpeners:        []string{"IF", "LOOP"},
		StatementOpeners:    []string{"DECLARE"},
		EndQualifiers:       []string{"IF", "CASE", "LOOP"},
		RoutineWords:        []string{"FUNCTION", "PROCEDURE", "TRIGGER"},
		BodyIntroducers:     []string{},
	}
}

// Oracle: PL/SQL blocks (DECLARE ... BEGIN ... END), AS/IS routine
// bodies. Scripts conventionally terminate blocks with a single-line /
// delimiter, which is a splitter setting rather than a profile property.
func Oracle() *Profile {
	return &Profile{
		Name:               "oracle",
		LineComments:       []string{"--"},
		IdentQuotes:        []QuotePair{{'"', '"'}},
		DoubledQuoteEscape: true,
		BlockOpeners:       []string{"BEGIN", "CASE"},
		InnerOpeners:       []string{"IF", "LOOP"},
		StatementOpeners:   []string{"DECLARE"},
		EndQualifiers:      []string{"IF", "CASE", "LOOP"},
		RoutineWords:       []string{"FUNCTION", "PROCEDURE", "TRIGGER", "PACKAGE", "TYPE"},
		BodyIntroducers:    []string{"AS", "IS"},
	}
}

// SQLServer: bracketed identifiers, CREATE PROC ... AS BEGIN bodies.
func SQLServer() *Profile {
	return &Profile{
		Name:               "sqlserver",
		LineComments:       []string{"--"},
		IdentQuotes:        []QuotePair{{'[', ']'}, {'"', '"'}},
		DoubledQuoteEscape: true,
		BlockOpeners:       []string{"BEGIN", "CASE"},
		InnerOpeners:       []string{},
		EndQualifiers:      []string{},
		RoutineWords:       []string{"FUNCTION", "PROCEDURE", "PROC", "TRIGGER", "VIEW"},
		BodyIntroducers:    []string{"AS"},
	}
}

// Firebird: PSQL bodies introduced by AS, EXECUTE BLOCK constructs.
func Firebird() *Profile {
	return &Profile{
		Name:               "firebird",
		LineComments:       []string{"--"},
		IdentQuotes:        []QuotePair{{'"', '"'}},
		DoubledQuoteEscape: true,
		BlockOpeners:       []string{"BEGIN", "CASE"},
		InnerOpeners:       []string{"IF", "WHILE"},
		StatementOpeners:   []string{},
		EndQualifiers:      []string{},
		RoutineWords:       []string{"FUNCTION", "PROCEDURE", "TRIGGER", "BLOCK"},
		BodyIntroducers:    []string{"AS"},
	}
}

// Lookup resolves an opaque dialect identifier, as supplied by a
// connection or metadata layer, to a built-in profile. Common aliases
// are accepted.
func Lookup(name string) (*Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "ansi", "generic":
		return Standard(), nil
	case "mysql", "mariadb", "singlestore":
		return MySQL(), nil
	case "postgresql", "postgres", "pg", "cockroachdb", "redshift":
		return PostgreSQL(), nil
	case "oracle":
		return Oracle(), nil
	case "sqlserver", "mssql", "tsql":
		return SQLServer(), nil
	case "firebird", "interbase":
		return Firebird(), nil
	default:
		return nil, scripterror.New(scripterror.CategoryConfig, "DIALECT_UNKNOWN",
			"unknown dialect").
			WithDetail(name).
			WithHint("use one of: standard, mysql, postgresql, oracle, sqlserver, firebird, or load a profile file")
	}
}

// Names lists the built-in profile names in a stable order.
func Names() []string {
	return []string{"standard", "mysql", "postgresql", "oracle", "sqlserver", "firebird"}
}
