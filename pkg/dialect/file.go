package dialect

import (
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	lru "github.com/hashicorp/golang-lru/v2"

	"sqlscript/pkg/scripterror"
)

// profileFile is the on-disk YAML shape of a dialect profile. Identifier
// quotes are written as two-character strings ("\"\"", "``", "[]").
type profileFile struct {
	Name                string   `yaml:"name"`
	LineComments        []string `yaml:"line-comments"`
	NestedBlockComments bool     `yaml:"nested-block-comments"`
	IdentQuotes         []string `yaml:"ident-quotes"`
	DoubledQuoteEscape  bool     `yaml:"doubled-quote-escape"`
	BackslashEscapes    bool     `yaml:"backslash-escapes"`
	EscapeStringPrefix  bool     `yaml:"escape-string-prefix"`
	DollarQuotes        bool     `yaml:"dollar-quotes"`
	BlockOpeners        []string `yaml:"block-openers"`
	InnerOpeners        []string `yaml:"inner-openers"`
	StatementOpeners    []string `yaml:"statement-openers"`
	EndQualifiers       []string `yaml:"end-qualifiers"`
	RoutineWords        []string `yaml:"routine-words"`
	BodyIntroducers     []string `yaml:"body-introducers"`
}

// fileCache memoizes loaded profile files by path. Profiles are
// immutable, so handing the same pointer to every caller is safe.
var fileCache = sync.OnceValue(func() *lru.Cache[string, *Profile] {
	c, err := lru.New[string, *Profile](64)
	if err != nil {
		panic(err)
	}
	return c
})

// LoadFile reads a dialect profile from a YAML file, validates it and
// memoizes the result by path. Use it for database engines without a
// built-in profile.
func LoadFile(path string) (*Profile, error) {
	if p, ok := fileCache().Get(path); ok {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scripterror.Wrap(err, "PROFILE_FILE_READ", "LoadFile").
			WithDetail(path).
			WithHint("check that the profile file exists and is readable")
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, scripterror.Wrap(err, "PROFILE_FILE_PARSE", "LoadFile").
			WithDetail(path).
			WithHint("the profile file must be valid YAML")
	}

	p, err := pf.toProfile()
	if err != nil {
		return nil, scripterror.Wrap(err, "PROFILE_FILE_INVALID", "LoadFile").WithDetail(path)
	}

	fileCache().Add(path, p)
	return p, nil
}

func (pf *profileFile) toProfile() (*Profile, error) {
	p := &Profile{
		Name:                pf.Name,
		LineComments:        pf.LineComments,
		NestedBlockComments: pf.NestedBlockComments,
		DoubledQuoteEscape:  pf.DoubledQuoteEscape,
		BackslashEscapes:    pf.BackslashEscapes,
		EscapeStringPrefix:  pf.EscapeStringPrefix,
		DollarQuotes:        pf.DollarQuotes,
		BlockOpeners:        pf.BlockOpeners,
		InnerOpeners:        pf.InnerOpeners,
		StatementOpeners:    pf.StatementOpeners,
		EndQualifiers:       pf.EndQualifiers,
		RoutineWords:        pf.RoutineWords,
		BodyIntroducers:     pf.BodyIntroducers,
	}
	if len(p.LineComments) == 0 {
		p.LineComments = []string{"--"}
	}
	for _, q := range pf.IdentQuotes {
		if len(q) != 2 {
			return nil, scripterror.New(scripterror.CategoryConfig, "PROFILE_QUOTE_PAIR_INVALID",
				"identifier quote entry must be exactly two characters").
				WithDetail(q).
				WithHint("write quote pairs as two-character strings, e.g. '\"\"', \"``\" or \"[]\"")
		}
		p.IdentQuotes = append(p.IdentQuotes, QuotePair{Open: q[0], Close: q[1]})
	}
	if len(p.IdentQuotes) == 0 {
		p.IdentQuotes = []QuotePair{{'"', '"'}}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
