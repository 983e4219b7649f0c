// Package classify maps raw usage-event labels onto the report's semantic
// feature categories through an ordered rule table.
package classify

import (
	_ "embed"
	"fmt"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// Category is one semantic feature bucket of the usage report.
type Category string

const (
	GeneratedTranscripts   Category = "generated_transcripts"
	RegeneratedTranscripts Category = "regenerated_transcripts"
	InitialSummaries       Category = "initial_summaries"
	RegeneratedSummaries   Category = "regenerated_summaries"
	GeneratedNotes         Category = "generated_notes"
	RegeneratedNotes       Category = "regenerated_notes"
)

// Categories returns every category in report column order.
// GeneratedTranscripts comes first even though it has no label rule; it is
// counted by row presence in the transcription table, not by label.
func Categories() []Category {
	return []Category{
		GeneratedTranscripts,
		RegeneratedTranscripts,
		InitialSummaries,
		RegeneratedSummaries,
		GeneratedNotes,
		RegeneratedNotes,
	}
}

//go:embed rules.yml
var rulesFile []byte

type ruleEntry struct {
	Category string `yaml:"category"`
	Regex    string `yaml:"regex"`
	Exclude  string `yaml:"exclude"`
}

type rule struct {
	category Category
	match    *pcre.Regexp
	exclude  *pcre.Regexp
}

// Classifier evaluates the ordered rule table. Rules are checked top to
// bottom and the first whose regex matches, and whose exclude guard does
// not, decides the category.
type Classifier struct {
	rules []rule
}

var (
	defaultClassifier *Classifier
	once              sync.Once
)

// Default returns the classifier built from the embedded rule table.
func Default() *Classifier {
	once.Do(func() {
		c, err := newFromYAML(rulesFile)
		if err != nil {
			// The embedded table is validated by tests; an error here means
			// a broken build, so an empty classifier (everything
			// uncategorized) is the safest degradation.
			c = &Classifier{}
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

func newFromYAML(data []byte) (*Classifier, error) {
	var entries []ruleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing rule table: %w", err)
	}

	c := &Classifier{rules: make([]rule, 0, len(entries))}
	for _, e := range entries {
		match, err := pcre.Compile("(?i)" + e.Regex)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", e.Category, err)
		}
		r := rule{category: Category(e.Category), match: match}
		if e.Exclude != "" {
			excl, err := pcre.Compile("(?i)" + e.Exclude)
			if err != nil {
				return nil, fmt.Errorf("compiling exclude for rule %q: %w", e.Category, err)
			}
			r.exclude = excl
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Classify returns the category for a usage label. The second return is
// false when no rule matches; such labels stay out of every category count.
func (c *Classifier) Classify(label string) (Category, bool) {
	if label == "" {
		return "", false
	}
	for _, r := range c.rules {
		if !r.match.MatchString(label) {
			continue
		}
		if r.exclude != nil && r.exclude.MatchString(label) {
			continue
		}
		return r.category, true
	}
	return "", false
}
