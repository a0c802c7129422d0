// Package dictionary loads the swappable word tables (slang, synonyms and
// polarity keywords) from YAML and layers them over the built-in ones.
package dictionary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ReviewPrep/internal/augment"
	"ReviewPrep/internal/consistency"
	"ReviewPrep/internal/textnorm"
)

// Overrides is the on-disk shape of a dictionary file.
type Overrides struct {
	Slang       map[string]string       `yaml:"slang"`
	Synonyms    map[string][]string     `yaml:"synonyms"`
	Keywords    consistency.Keywords    `yaml:"keywords"`
	NeutralCues consistency.NeutralCues `yaml:"neutralCues"`
}

// Set bundles the resolved tables handed to the stages.
type Set struct {
	Slang       textnorm.Dictionary
	Synonyms    augment.Synonyms
	Keywords    consistency.Keywords
	NeutralCues consistency.NeutralCues
}

// Defaults returns the built-in tables.
func Defaults() Set {
	return Set{
		Slang:       textnorm.DefaultSlang(),
		Synonyms:    augment.DefaultSynonyms(),
		Keywords:    consistency.DefaultKeywords(),
		NeutralCues: consistency.DefaultNeutralCues(),
	}
}

// Load reads the override files in order. Later files win.
func Load(paths ...string) (Set, error) {
	set := Defaults()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Set{}, fmt.Errorf("read dictionary %s: %w", path, err)
		}
		var o Overrides
		if err := yaml.Unmarshal(data, &o); err != nil {
			return Set{}, fmt.Errorf("parse dictionary %s: %w", path, err)
		}
		set = set.Apply(o)
	}
	return set, nil
}

// Apply layers o over s.
func (s Set) Apply(o Overrides) Set {
	s.Slang = s.Slang.Merge(o.Slang)
	s.Synonyms = s.Synonyms.Merge(o.Synonyms)
	s.Keywords = s.Keywords.Override(o.Keywords)
	if len(o.NeutralCues.Positive) > 0 {
		s.NeutralCues.Positive = append([]string(nil), o.NeutralCues.Positive...)
	}
	if len(o.NeutralCues.Negative) > 0 {
		s.NeutralCues.Negative = append([]string(nil), o.NeutralCues.Negative...)
	}
	return s
}
