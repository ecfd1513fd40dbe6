package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a rules.yaml file. Sections absent from the file keep their
// built-in defaults; sections present replace the defaults wholesale.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading rules: %w", err)
	}
	set := Default()
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("parsing rules: %w", err)
	}
	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return set, nil
}

// Save writes a rule set to a YAML file.
func Save(path string, set Set) error {
	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Validate checks the tables for entries that could never match or that
// would produce an unnamed target.
func (s Set) Validate() error {
	for i, r := range s.Reclass {
		if r.Name == "" {
			return fmt.Errorf("reclass rule %d: missing name", i)
		}
		if len(r.Include) == 0 {
			return fmt.Errorf("reclass rule %q: no include keywords", r.Name)
		}
		if r.When != WhenPositive && r.When != WhenNegative {
			return fmt.Errorf("reclass rule %q: when must be %q or %q, got %q", r.Name, WhenPositive, WhenNegative, r.When)
		}
		if r.Area == "" {
			return fmt.Errorf("reclass rule %q: missing area", r.Name)
		}
	}
	for i, m := range s.Notes {
		if m.Note == "" {
			return fmt.Errorf("note mapping %d: missing note", i)
		}
		if m.Label == "" && len(m.NameKeywords) == 0 {
			return fmt.Errorf("note mapping %q: needs a label or name keywords", m.Note)
		}
		if m.Label != "" && (m.Level < 1 || m.Level > 5) {
			return fmt.Errorf("note mapping %q: level %d out of range 1..5", m.Note, m.Level)
		}
	}
	for _, v := range s.Vocabulary {
		for _, c := range v.Categories {
			if c.Name == "" || len(c.Keywords) == 0 {
				return fmt.Errorf("vocabulary %q: category needs a name and keywords", v.Note)
			}
		}
	}
	return nil
}
