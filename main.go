package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"sqlscript/pkg/dialect"
	"sqlscript/pkg/splitter"
)

// rootFlags are shared by every subcommand that parses a script.
type rootFlags struct {
	dialectName        string
	profilePath        string
	delimiter          string
	singleLine         bool
	emptyLineDelimiter bool
	checkEscapedQuotes bool
}

var flags rootFlags

func main() {
	root := &cobra.Command{
		Use:   "sqlsplit",
		Short: "Split SQL scripts into individual statements",
		Long: `sqlsplit locates the executable statements inside a SQL script:
dialect-aware tokenization, configurable delimiters and procedural
block handling (BEGIN ... END bodies stay whole).`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.dialectName, "dialect", "d", "standard",
		"built-in dialect: "+strings.Join(dialect.Names(), ", "))
	pf.StringVar(&flags.profilePath, "profile", "",
		"YAML dialect profile file (overrides --dialect)")
	pf.StringVar(&flags.delimiter, "delimiter", "",
		"alternate statement delimiter (default ;)")
	pf.BoolVar(&flags.singleLine, "single-line", false,
		"delimiter only matches alone on its line (GO, /)")
	pf.BoolVar(&flags.emptyLineDelimiter, "empty-line-delimiter", false,
		"a blank line outside a block ends the statement")
	pf.BoolVar(&flags.checkEscapedQuotes, "check-escaped-quotes", false,
		"honor backslash-escaped quotes in string literals")

	root.AddCommand(newSplitCommand(), newCountCommand(), newAtCommand(), newDialectsCommand())

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newSplitCommand() *cobra.Command {
	var asJSON, asTable bool

	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Print each statement of the script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, script, err := parseInput(args)
			if err != nil {
				return err
			}
			reportDiagnostics(text, script)

			switch {
			case asJSON:
				return printJSON(cmd.OutOrStdout(), text, script)
			case asTable:
				printTable(cmd.OutOrStdout(), text, script)
			default:
				for i, st := range script.Statements() {
					if i > 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "--")
					}
					fmt.Fprintln(cmd.OutOrStdout(), st.Text(text))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit statements as JSON")
	cmd.Flags().BoolVar(&asTable, "table", false, "render statements as a table")
	return cmd
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count [file]",
		Short: "Print the number of statements in the script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, script, err := parseInput(args)
			if err != nil {
				return err
			}
			reportDiagnostics(text, script)
			fmt.Fprintln(cmd.OutOrStdout(), script.StatementCount())
			return nil
		},
	}
}

func newAtCommand() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "at [file]",
		Short: "Print the statement under a byte offset",
		Long: `at resolves a cursor position to the statement that contains it,
or to the nearest preceding statement when the offset falls between
statements. This is the lookup an editor performs for
"execute statement at cursor".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, script, err := parseInput(args)
			if err != nil {
				return err
			}
			reportDiagnostics(text, script)

			idx, ok := script.StatementIndexAt(offset)
			if !ok {
				return fmt.Errorf("script contains no statements")
			}
			st := script.StatementAt(idx)
			fmt.Fprintf(cmd.OutOrStdout(), "statement %d [%d:%d]\n%s\n",
				idx, st.Start, st.End, st.Text(text))
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset into the script")
	return cmd
}

func newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the built-in dialect profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range dialect.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// parseInput reads the script from the file argument or stdin, builds a
// splitter from the global flags and parses.
func parseInput(args []string) (string, *splitter.Script, error) {
	var data []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", nil, err
	}
	text := string(data)

	profile, err := resolveProfile()
	if err != nil {
		return "", nil, err
	}

	sp, err := splitter.New(profile)
	if err != nil {
		return "", nil, err
	}
	if flags.delimiter != "" {
		d, err := splitter.NewDelimiter(flags.delimiter, flags.singleLine)
		if err != nil {
			return "", nil, err
		}
		sp.SetAlternateDelimiter(d)
	}
	sp.SetEmptyLineIsDelimiter(flags.emptyLineDelimiter)
	sp.SetCheckEscapedQuotes(flags.checkEscapedQuotes)

	script, err := sp.Parse(text)
	if err != nil {
		return "", nil, err
	}
	return text, script, nil
}

func resolveProfile() (*dialect.Profile, error) {
	if flags.profilePath != "" {
		return dialect.LoadFile(flags.profilePath)
	}
	return dialect.Lookup(flags.dialectName)
}

// reportDiagnostics prints advisory findings to stderr with their line
// and column, in yellow when the terminal supports it.
func reportDiagnostics(text string, script *splitter.Script) {
	warn := color.New(color.FgYellow)
	for _, d := range script.Diagnostics() {
		line, col := lineCol(text, d.Pos)
		warn.Fprintf(os.Stderr, "warning: %s at %d:%d\n", d.Code, line, col)
	}
}

func lineCol(text string, pos int) (int, int) {
	if pos > len(text) {
		pos = len(text)
	}
	line, col := 1, 1
	for i := 0; i < pos; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

type statementJSON struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

func printJSON(w io.Writer, text string, script *splitter.Script) error {
	out := lo.Map(script.Statements(), func(st splitter.Statement, _ int) statementJSON {
		return statementJSON{Index: st.Index, Start: st.Start, End: st.End, Text: st.Text(text)}
	})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(w io.Writer, text string, script *splitter.Script) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Span", "Statement"})
	for _, st := range script.Statements() {
		t.AppendRow(table.Row{st.Index, fmt.Sprintf("%d:%d", st.Start, st.End), st.Text(text)})
	}
	t.Render()
}
