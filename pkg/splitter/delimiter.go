package splitter

import (
	"strings"

	"sqlscript/pkg/scripterror"
)

// DelimiterDefinition describes a statement delimiter. Text is matched
// against the raw script (case-insensitively when it contains letters).
// SingleLine restricts the match to delimiters that are the only
// non-whitespace content of their physical line, the convention used for
// GO in SQL Server scripts and / in Oracle scripts.
//
// Definitions are immutable once constructed and safe to share.
type DelimiterDefinition struct {
	text       string
	singleLine bool
}

// Default returns the standard delimiter: a semicolon, matched anywhere.
func Default() *DelimiterDefinition {
	return &DelimiterDefinition{text: ";"}
}

// NewDelimiter validates and constructs a delimiter definition. The text
// must be non-empty, must not contain a backslash and must not contain
// blank space.
func NewDelimiter(text string, singleLine bool) (*DelimiterDefinition, error) {
	if text == "" {
		return nil, scripterror.New(scripterror.CategoryConfig, "DELIMITER_EMPTY",
			"delimiter is empty").WithOperation("NewDelimiter")
	}
	if strings.ContainsRune(text, '\\') {
		return nil, scripterror.New(scripterror.CategoryConfig, "DELIMITER_BACKSLASH",
			"delimiter contains a backslash").
			WithDetail(text).
			WithOperation("NewDelimiter")
	}
	if strings.ContainsAny(text, " \t\r\n") {
		return nil, scripterror.New(scripterror.CategoryConfig, "DELIMITER_BLANK_SPACE",
			"delimiter contains blank space").
			WithDetail(text).
			WithOperation("NewDelimiter")
	}
	return &DelimiterDefinition{text: text, singleLine: singleLine}, nil
}

// Text returns the delimiter text.
func (d *DelimiterDefinition) Text() string { return d.text }

// SingleLine reports whether the delimiter only matches when it is the
// sole non-whitespace content of its line.
func (d *DelimiterDefinition) SingleLine() bool { return d.singleLine }

// hasLetters reports whether the delimiter needs case-insensitive
// matching and word-boundary checks.
func (d *DelimiterDefinition) hasLetters() bool {
	for i := 0; i < len(d.text); i++ {
		c := d.text[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
