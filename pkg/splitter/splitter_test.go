package splitter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlscript/pkg/dialect"
)

func mustSplit(t *testing.T, profile *dialect.Profile, text string, configure ...func(*Splitter)) *Script {
	t.Helper()
	sp, err := New(profile)
	require.NoError(t, err)
	for _, fn := range configure {
		fn(sp)
	}
	script, err := sp.Parse(text)
	require.NoError(t, err)
	return script
}

func texts(script *Script) []string {
	out := make([]string, 0, script.StatementCount())
	for _, st := range script.Statements() {
		out = append(out, st.Text(script.Source()))
	}
	return out
}

func withDelimiter(t *testing.T, text string, singleLine bool) func(*Splitter) {
	t.Helper()
	d, err := NewDelimiter(text, singleLine)
	require.NoError(t, err)
	return func(sp *Splitter) { sp.SetAlternateDelimiter(d) }
}

func TestParse_DefaultDelimiter(t *testing.T) {
	script := mustSplit(t, nil, "SELECT 1; SELECT 2;")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, texts(script))
}

func TestParse_QuotedDelimiterIsNotABoundary(t *testing.T) {
	script := mustSplit(t, nil, "SELECT ';'; SELECT 2;")
	assert.Equal(t, []string{"SELECT ';'", "SELECT 2"}, texts(script))
}

func TestParse_DelimiterInCommentsIsNotABoundary(t *testing.T) {
	script := mustSplit(t, nil, "SELECT 1 -- not here;\n; SELECT 2 /* nor; here */;")
	require.Equal(t, 2, script.StatementCount())
	assert.Equal(t, "SELECT 1 -- not here;", script.StatementAt(0).Text(script.Source()))
}

func TestParse_TrailingStatementWithoutDelimiter(t *testing.T) {
	script := mustSplit(t, nil, "SELECT 1; SELECT 2")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, texts(script))
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t  ", "-- only a comment\n", ";;;"} {
		script := mustSplit(t, nil, text)
		assert.Zero(t, script.StatementCount(), "input %q", text)
	}
}

func TestParse_Idempotence(t *testing.T) {
	text := "SELECT 1;\nBEGIN SELECT 2; END;\nSELECT 3"
	sp, err := New(dialect.MySQL())
	require.NoError(t, err)

	first, err := sp.Parse(text)
	require.NoError(t, err)
	second, err := sp.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, first.Statements(), second.Statements())
	assert.Equal(t, first.Diagnostics(), second.Diagnostics())
}

func TestParse_BlockSuppression(t *testing.T) {
	script := mustSplit(t, nil, "BEGIN\n  SELECT 1;\nEND;\n")
	require.Equal(t, 1, script.StatementCount())
	assert.Equal(t, "BEGIN\n  SELECT 1;\nEND", script.StatementAt(0).Text(script.Source()))
}

func TestParse_NestedBlocks(t *testing.T) {
	text := `BEGIN
  IF x THEN
    SELECT 1;
  END IF;
  CASE WHEN y THEN 1 ELSE 2 END;
END;
SELECT 2;`
	script := mustSplit(t, nil, text)
	require.Equal(t, 2, script.StatementCount())
	assert.Equal(t, "SELECT 2", script.StatementAt(1).Text(text))
}

func TestParse_IfOutsideBlockIsNotAnOpener(t *testing.T) {
	script := mustSplit(t, nil, "DROP TABLE IF EXISTS t;\nSELECT 1;")
	assert.Equal(t, []string{"DROP TABLE IF EXISTS t", "SELECT 1"}, texts(script))
}

func TestParse_CaseExpressionBalances(t *testing.T) {
	script := mustSplit(t, nil, "SELECT CASE WHEN a THEN 1 ELSE 2 END FROM t;\nSELECT 3;")
	assert.Equal(t, 2, script.StatementCount())
}

func TestParse_BeginTransactionIsNotABlock(t *testing.T) {
	tests := []string{
		"BEGIN;\nSELECT 1;\nCOMMIT;",
		"BEGIN TRANSACTION;\nSELECT 1;\nCOMMIT;",
		"BEGIN WORK;\nSELECT 1;\nCOMMIT;",
	}
	for _, text := range tests {
		script := mustSplit(t, nil, text)
		assert.Equal(t, 3, script.StatementCount(), "input %q", text)
	}
}

func TestParse_MySQLProcedureWithAlternateDelimiter(t *testing.T) {
	text := `CREATE PROCEDURE p()
BEGIN
  SELECT 1;
  IF x THEN
    SELECT 2;
  END IF;
END//
SELECT 3//`
	script := mustSplit(t, dialect.MySQL(), text, withDelimiter(t, "//", false))

	require.Equal(t, 2, script.StatementCount())
	first := script.StatementAt(0).Text(text)
	assert.True(t, strings.HasPrefix(first, "CREATE PROCEDURE"))
	assert.True(t, strings.HasSuffix(first, "END"))
	assert.Equal(t, "SELECT 3", script.StatementAt(1).Text(text))
}

func TestParse_SemicolonIsContentUnderAlternateDelimiter(t *testing.T) {
	script := mustSplit(t, nil, "SELECT 1; SELECT 2//", withDelimiter(t, "//", false))
	assert.Equal(t, []string{"SELECT 1; SELECT 2"}, texts(script))
}

func TestParse_SingleLineSlashDelimiter(t *testing.T) {
	text := "SELECT 1\n/\nSELECT 2\n/\n"
	script := mustSplit(t, nil, text, withDelimiter(t, "/", true))
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, texts(script))
}

func TestParse_EmbeddedSlashIsNotADelimiter(t *testing.T) {
	text := "SELECT 8/2\n/\n"
	script := mustSplit(t, nil, text, withDelimiter(t, "/", true))
	assert.Equal(t, []string{"SELECT 8/2"}, texts(script))
}

func TestParse_SlashWithSurroundingBlanksStillMatches(t *testing.T) {
	text := "SELECT 1\n  /  \nSELECT 2\n/\n"
	script := mustSplit(t, nil, text, withDelimiter(t, "/", true))
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, texts(script))
}

func TestParse_OracleAnonymousBlock(t *testing.T) {
	text := `DECLARE
  v NUMBER;
BEGIN
  v := 1;
END;
/
SELECT 1
/
`
	script := mustSplit(t, dialect.Oracle(), text, withDelimiter(t, "/", true))

	require.Equal(t, 2, script.StatementCount())
	first := script.StatementAt(0).Text(text)
	assert.True(t, strings.HasPrefix(first, "DECLARE"))
	assert.True(t, strings.HasSuffix(first, "END;"))
	assert.Equal(t, "SELECT 1", script.StatementAt(1).Text(text))
}

func TestParse_OracleProcedureBody(t *testing.T) {
	text := `CREATE OR REPLACE PROCEDURE p AS
  v NUMBER;
BEGIN
  v := 1;
END;
/
`
	script := mustSplit(t, dialect.Oracle(), text, withDelimiter(t, "/", true))
	require.Equal(t, 1, script.StatementCount())
	assert.True(t, strings.HasSuffix(script.StatementAt(0).Text(text), "END;"))
}

func TestParse_SQLServerGoDelimiter(t *testing.T) {
	text := `CREATE PROCEDURE p AS
BEGIN
  SELECT 1;
END
go
SELECT 2
GO
`
	script := mustSplit(t, dialect.SQLServer(), text, withDelimiter(t, "GO", true))
	require.Equal(t, 2, script.StatementCount())
	assert.Equal(t, "SELECT 2", script.StatementAt(1).Text(text))
}

func TestParse_GoDoesNotMatchInsideLongerWord(t *testing.T) {
	text := "SELECT 1\nGOTO label\nGO\n"
	script := mustSplit(t, dialect.SQLServer(), text, withDelimiter(t, "GO", true))
	assert.Equal(t, []string{"SELECT 1\nGOTO label"}, texts(script))
}

func TestParse_PostgresFunctionBody(t *testing.T) {
	text := `CREATE FUNCTION f() RETURNS integer AS $$
BEGIN
  RETURN 1;
END;
$$ LANGUAGE plpgsql;
SELECT f();`
	script := mustSplit(t, dialect.PostgreSQL(), text)

	require.Equal(t, 2, script.StatementCount())
	assert.True(t, strings.HasSuffix(script.StatementAt(0).Text(text), "LANGUAGE plpgsql"))
	assert.Equal(t, "SELECT f()", script.StatementAt(1).Text(text))
}

func TestParse_EmptyLineDelimiter(t *testing.T) {
	text := "SELECT 1\n\nSELECT 2\n"
	script := mustSplit(t, nil, text, func(sp *Splitter) { sp.SetEmptyLineIsDelimiter(true) })
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, texts(script))
}

func TestParse_EmptyLineInsideBlockDoesNotSplit(t *testing.T) {
	text := "BEGIN\n  SELECT 1;\n\n  SELECT 2;\nEND;\n"
	script := mustSplit(t, nil, text, func(sp *Splitter) { sp.SetEmptyLineIsDelimiter(true) })
	assert.Equal(t, 1, script.StatementCount())
}

func TestParse_EmptyLineModeOffByDefault(t *testing.T) {
	script := mustSplit(t, nil, "SELECT 1\n\nSELECT 2\n")
	assert.Equal(t, 1, script.StatementCount())
}

func TestParse_CheckEscapedQuotes(t *testing.T) {
	text := `SELECT 'a\'s'; SELECT 2;`

	// By default the standard profile ends the literal at the inner
	// quote; the quote before the semicolon then opens a new string
	// that runs unterminated to end-of-input, merging everything into
	// one statement.
	script := mustSplit(t, nil, text)
	assert.Equal(t, 1, script.StatementCount())
	require.Len(t, script.Diagnostics(), 1)
	assert.Equal(t, UnterminatedLiteral, script.Diagnostics()[0].Code)

	// With the override the backslash keeps the literal together and
	// the script splits normally.
	script = mustSplit(t, nil, text, func(sp *Splitter) { sp.SetCheckEscapedQuotes(true) })
	assert.Equal(t, []string{`SELECT 'a\'s'`, "SELECT 2"}, texts(script))
}

func TestParse_UnterminatedBlockDiagnostic(t *testing.T) {
	text := "BEGIN\n  SELECT 1;\n"
	script := mustSplit(t, nil, text)

	require.Equal(t, 1, script.StatementCount())
	require.Len(t, script.Diagnostics(), 1)
	d := script.Diagnostics()[0]
	assert.Equal(t, UnterminatedBlock, d.Code)
	assert.Equal(t, 0, d.Pos)
}

func TestParse_UnterminatedLiteralDiagnostic(t *testing.T) {
	text := "SELECT 1; SELECT 'oops"
	script := mustSplit(t, nil, text)

	require.Equal(t, 2, script.StatementCount())
	assert.Equal(t, "SELECT 'oops", script.StatementAt(1).Text(text))
	require.Len(t, script.Diagnostics(), 1)
	assert.Equal(t, UnterminatedLiteral, script.Diagnostics()[0].Code)
	assert.Equal(t, 17, script.Diagnostics()[0].Pos)
}

func TestParse_UnterminatedCommentDiagnostic(t *testing.T) {
	text := "SELECT 1; /* oops"
	script := mustSplit(t, nil, text)

	require.Len(t, script.Diagnostics(), 1)
	assert.Equal(t, UnterminatedComment, script.Diagnostics()[0].Code)
}

func TestParseContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sp, err := New(nil)
	require.NoError(t, err)
	_, err = sp.ParseContext(ctx, "SELECT 1; SELECT 2;")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsInvalidProfile(t *testing.T) {
	bad := dialect.Standard()
	bad.Name = ""
	_, err := New(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROFILE_NAME_EMPTY")
}

func TestParse_StatementSpansExcludeDelimiter(t *testing.T) {
	text := "SELECT 1; SELECT 2;"
	script := mustSplit(t, nil, text)

	st := script.StatementAt(0)
	assert.Equal(t, 0, st.Start)
	assert.Equal(t, 8, st.End)
	assert.Equal(t, "SELECT 1", text[st.Start:st.End])

	st = script.StatementAt(1)
	assert.Equal(t, "SELECT 2", strings.TrimSpace(text[st.Start:st.End]))
}
