package compliance

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

//go:embed rules.toml
var defaultRules []byte

// Severity grades how serious a failed rule is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Weight is the severity's contribution to the summary ranking.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 1
	}
	return 0
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool { return s.Weight() > 0 }

// Jurisdiction is a regulatory zone.
type Jurisdiction string

const (
	JurisdictionEU   Jurisdiction = "EU"
	JurisdictionUS   Jurisdiction = "US"
	JurisdictionWHO  Jurisdiction = "WHO"
	JurisdictionPICS Jurisdiction = "PICS"
	// JurisdictionGlobal on a rule applies it in every zone. As a requested
	// zone it selects every checkable rule.
	JurisdictionGlobal Jurisdiction = "GLOBAL"
)

// Jurisdictions lists the known zones.
var Jurisdictions = []Jurisdiction{JurisdictionEU, JurisdictionUS, JurisdictionWHO, JurisdictionPICS, JurisdictionGlobal}

// ParseJurisdiction resolves a zone name. Aliases such as "FDA" and "PIC/S"
// are accepted; the empty string is EU.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EU", "EMA":
		return JurisdictionEU, nil
	case "US", "FDA", "USA":
		return JurisdictionUS, nil
	case "WHO":
		return JurisdictionWHO, nil
	case "PICS", "PIC/S":
		return JurisdictionPICS, nil
	case "GLOBAL", "ALL":
		return JurisdictionGlobal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJurisdiction, s)
}

// Rule is one regulatory requirement.
type Rule struct {
	ID            string              `toml:"id" json:"id"`
	Source        string              `toml:"source" json:"source"`
	Section       string              `toml:"section" json:"section"`
	Requirement   string              `toml:"requirement" json:"requirement"`
	Categories    []facility.Category `toml:"categories" json:"categories"`
	Severity      Severity            `toml:"severity" json:"severity"`
	Checkable     bool                `toml:"checkable" json:"checkable"`
	Jurisdictions []Jurisdiction      `toml:"jurisdictions" json:"jurisdictions"`
	Remediation   string              `toml:"remediation" json:"remediation,omitempty"`
	AutoFix       bool                `toml:"auto_fix" json:"auto_fix"`
}

// Citation renders the source and section.
func (r Rule) Citation() string {
	if r.Section == "" {
		return r.Source
	}
	return r.Source + " §" + r.Section
}

// AppliesTo reports whether the rule is in force in zone.
func (r Rule) AppliesTo(zone Jurisdiction) bool {
	if zone == JurisdictionGlobal {
		return true
	}
	for _, j := range r.Jurisdictions {
		if j == zone || j == JurisdictionGlobal {
			return true
		}
	}
	return false
}

func (r Rule) clone() Rule {
	r.Categories = slices.Clone(r.Categories)
	r.Jurisdictions = slices.Clone(r.Jurisdictions)
	return r
}

// Rulebook is the immutable set of rules, in file order.
type Rulebook struct {
	rules []Rule
	byID  map[string]int
}

// DefaultRulebook decodes the embedded rulebook.
func DefaultRulebook() (*Rulebook, error) {
	return LoadRulebook(bytes.NewReader(defaultRules))
}

// MustDefaultRulebook is DefaultRulebook for initialisation and tests.
func MustDefaultRulebook() *Rulebook {
	b, err := DefaultRulebook()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadRulebookFile decodes a rulebook file.
func LoadRulebookFile(path string) (*Rulebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadRulebook(f)
}

// LoadRulebook decodes and validates a TOML rulebook.
func LoadRulebook(r io.Reader) (*Rulebook, error) {
	var raw struct {
		Rules []Rule `toml:"rules"`
	}
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rulebook: %w", err)
	}
	b := &Rulebook{byID: make(map[string]int, len(raw.Rules))}
	for _, rule := range raw.Rules {
		if err := validateRule(rule); err != nil {
			return nil, err
		}
		if _, dup := b.byID[rule.ID]; dup {
			return nil, fmt.Errorf("rule %q defined twice", rule.ID)
		}
		b.byID[rule.ID] = len(b.rules)
		b.rules = append(b.rules, rule)
	}
	return b, nil
}

func validateRule(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule without id")
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %q: unknown severity %q", r.ID, r.Severity)
	}
	if len(r.Jurisdictions) == 0 {
		return fmt.Errorf("rule %q: no jurisdictions", r.ID)
	}
	for _, j := range r.Jurisdictions {
		if !slices.Contains(Jurisdictions, j) {
			return fmt.Errorf("rule %q: unknown jurisdiction %q", r.ID, j)
		}
	}
	for _, c := range r.Categories {
		if !c.Valid() {
			return fmt.Errorf("rule %q: unknown category %q", r.ID, c)
		}
	}
	return nil
}

// Rules returns a copy of every rule in file order.
func (b *Rulebook) Rules() []Rule {
	out := make([]Rule, len(b.rules))
	for i, r := range b.rules {
		out[i] = r.clone()
	}
	return out
}

// Rule returns a copy of the rule with the given id.
func (b *Rulebook) Rule(id string) (Rule, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Rule{}, false
	}
	return b.rules[i].clone(), true
}

// Len returns the number of rules.
func (b *Rulebook) Len() int { return len(b.rules) }

// Applicable returns the checkable rules in force in zone, in file order.
func (b *Rulebook) Applicable(zone Jurisdiction) []Rule {
	var out []Rule
	for _, r := range b.rules {
		if r.Checkable && r.AppliesTo(zone) {
			out = append(out, r.clone())
		}
	}
	return out
}

// Reference returns the non-checkable rules in force in zone.
func (b *Rulebook) Reference(zone Jurisdiction) []Rule {
	var out []Rule
	for _, r := range b.rules {
		if !r.Checkable && r.AppliesTo(zone) {
			out = append(out, r.clone())
		}
	}
	return out
}
