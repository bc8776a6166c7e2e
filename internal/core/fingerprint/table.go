// Package fingerprint scores raw HTML against per-platform indicator patterns
// and names the CMS that most likely produced it
package fingerprint

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

//go:embed signatures.json
var embedded []byte

// Rule is the uncompiled form of an indicator
// Pattern is a delimited literal like "/wp-content/i"
type Rule struct {
	Pattern string  `json:"pattern"`
	Weight  float64 `json:"weight"`
}

// Spec is the uncompiled form of a platform signature
type Spec struct {
	Name       string `json:"name"`
	Indicators []Rule `json:"indicators"`
}

type rawTable struct {
	Version   int    `json:"version"`
	Platforms []Spec `json:"platforms"`
}

// Indicator is a compiled rule
// Text is the pattern source with its delimiters and flags removed
type Indicator struct {
	Text   string
	Flags  string
	Weight float64
	re     *regexp.Regexp
}

// Matches reports whether the indicator fires anywhere in html
func (i Indicator) Matches(html string) bool { return i.re.MatchString(html) }

// Signature is a platform and its indicators in table order
type Signature struct {
	Platform   string
	Indicators []Indicator
}

// Table is an ordered, immutable set of signatures
// order decides ties so callers must not reorder it
type Table struct {
	Version    int
	Signatures []Signature
}

// Load returns the compiled built-in table
func Load() (*Table, error) {
	var rt rawTable
	if err := json.Unmarshal(embedded, &rt); err != nil {
		return nil, fmt.Errorf("fingerprint: parse signatures.json: %w", err)
	}
	return Compile(rt.Version, rt.Platforms)
}

// MustLoad is Load for package init and main
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Compile validates and compiles specs in the given order
func Compile(version int, specs []Spec) (*Table, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("fingerprint: no platforms")
	}
	seen := make(map[string]struct{}, len(specs))
	out := &Table{Version: version, Signatures: make([]Signature, 0, len(specs))}

	for _, sp := range specs {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			return nil, fmt.Errorf("fingerprint: platform with empty name")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("fingerprint: duplicate platform %q", name)
		}
		seen[key] = struct{}{}

		if len(sp.Indicators) == 0 {
			return nil, fmt.Errorf("fingerprint: platform %q has no indicators", name)
		}
		sig := Signature{Platform: name, Indicators: make([]Indicator, 0, len(sp.Indicators))}
		for j, r := range sp.Indicators {
			ind, err := compileRule(r)
			if err != nil {
				return nil, fmt.Errorf("fingerprint: %s indicator %d: %w", name, j, err)
			}
			sig.Indicators = append(sig.Indicators, ind)
		}
		out.Signatures = append(out.Signatures, sig)
	}
	return out, nil
}

func compileRule(r Rule) (Indicator, error) {
	if r.Weight <= 0 {
		return Indicator{}, fmt.Errorf("weight must be positive, got %v", r.Weight)
	}
	src, flags, err := splitLiteral(r.Pattern)
	if err != nil {
		return Indicator{}, err
	}

	// matching is always case-insensitive, other flags map onto RE2 where they exist
	mode := "i"
	if strings.ContainsRune(flags, 'm') {
		mode += "m"
	}
	if strings.ContainsRune(flags, 's') {
		mode += "s"
	}
	re, err := regexp.Compile("(?" + mode + ")" + src)
	if err != nil {
		return Indicator{}, fmt.Errorf("compile %q: %w", r.Pattern, err)
	}
	return Indicator{Text: src, Flags: flags, Weight: r.Weight, re: re}, nil
}

// splitLiteral breaks "/source/flags" into its parts
func splitLiteral(lit string) (src, flags string, err error) {
	lit = strings.TrimSpace(lit)
	end := strings.LastIndexByte(lit, '/')
	if len(lit) < 3 || lit[0] != '/' || end <= 0 {
		return "", "", fmt.Errorf("pattern %q is not a /source/flags literal", lit)
	}
	src, flags = lit[1:end], lit[end+1:]
	if src == "" {
		return "", "", fmt.Errorf("pattern %q has an empty source", lit)
	}
	for _, f := range flags {
		if !strings.ContainsRune("gimsuy", f) {
			return "", "", fmt.Errorf("pattern %q has unknown flag %q", lit, f)
		}
	}
	return src, flags, nil
}

// Platforms lists platform names in table order
func (t *Table) Platforms() []string {
	out := make([]string, len(t.Signatures))
	for i, s := range t.Signatures {
		out[i] = s.Platform
	}
	return out
}

// IndicatorCount is the number of indicators across all platforms
func (t *Table) IndicatorCount() int {
	n := 0
	for _, s := range t.Signatures {
		n += len(s.Indicators)
	}
	return n
}
