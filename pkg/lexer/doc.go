// Package lexer implements the profile-driven tokenizer that underpins
// script splitting.
//
// The lexer converts raw script text into a stream of classified spans.
// Tokens carry byte offsets into the original buffer instead of copied
// text, so the spans tile the input exactly: every byte belongs to one
// token, and the stream ends with an EndOfInput token at len(src).
//
// # Usage
//
//	l := lexer.New("SELECT 1; SELECT 2;", dialect.MySQL())
//	for {
//	    tok := l.NextToken()
//	    if tok.Kind == lexer.EndOfInput {
//	        break
//	    }
//	    fmt.Printf("%s %q\n", tok.Kind, tok.Text(src))
//	}
//
// # Dialect sensitivity
//
// All dialect variation arrives as data through a dialect.Profile: which
// markers start a line comment, whether block comments nest, which
// characters quote identifiers, and how quotes are escaped inside string
// literals. The scanning algorithm itself never branches on a dialect
// name.
//
// # Anomalies
//
// Unterminated strings, identifiers and block comments never fail the
// scan. The affected token runs to end-of-input and the anomaly is
// recorded; Diagnostics returns the findings after the stream is
// drained.
package lexer
