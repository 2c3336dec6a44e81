// Package classify assigns each digest item to one topical section.
package classify

import (
	"fmt"
	"strings"
)

// Cover is the default label of items promoted to the edition cover. It is
// applied after classification and is never a section label.
const Cover = "Cover"

// Category is one taxonomy rule: an item belongs here when any keyword is a
// substring of its lower-cased title and summary.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is an ordered priority list of categories plus the labels used
// when no rule matches.
type Taxonomy struct {
	Categories []Category `yaml:"categories"`
	// ResearchLabel is used for unmatched items from research sources.
	ResearchLabel string `yaml:"research_label"`
	// DefaultLabel catches everything else.
	DefaultLabel string `yaml:"default_label"`
	// ResearchSources are source-domain substrings that mark a research source.
	ResearchSources []string `yaml:"research_sources"`
	// CoverLabel replaces Cover when set.
	CoverLabel string `yaml:"cover_label"`
}

// Cover returns the label given to cover items.
func (t Taxonomy) Cover() string {
	if l := strings.TrimSpace(t.CoverLabel); l != "" {
		return l
	}
	return Cover
}

// DefaultTaxonomy returns the built-in section rules. Order matters.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []Category{
			{Name: "Models", Keywords: []string{"gpt", "llama", "claude", "mistral", "mixtral", "gemini", "opus", "sonnet", "ai studio", "foundry", "luma", "stability"}},
			{Name: "Tools", Keywords: []string{"plugin", "sdk", "github", "copilot", "vscode", "framework", "tool", "herramienta", "repo", "open-source", "open source", "librería", "library", "api"}},
			{Name: "Regulation", Keywords: []string{"ai act", "regul", "privacidad", "normativa", "ley", "policy", "europea", "comisión", "gdpr", "copyright"}},
			{Name: "Research", Keywords: []string{"arxiv", "paper", "benchmark", "sota", "state-of-the-art", "dataset", "neurips", "icml", "iclr", "nature", "science"}},
			{Name: "Security", Keywords: []string{"seguridad", "ataque", "prompt injection", "jailbreak", "deepfake", "captcha", "bot", "riesgo", "safety", "alignment"}},
			{Name: "Hardware", Keywords: []string{"nvidia", "amd", "intel", "h100", "gh200", "chip", "asic", "gpu", "tpu", "inferentia", "grace", "licencia", "export"}},
			{Name: "Market", Keywords: []string{"startup", "financiación", "investment", "adquisición", "adquisition", "merge", "ipo", "open-weight", "licencia apache", "apertura"}},
		},
		ResearchLabel:   "Research",
		DefaultLabel:    "Market",
		ResearchSources: []string{"arxiv", "nature"},
		CoverLabel:      Cover,
	}
}

// Labels returns every section label an item can be classified into, in
// taxonomy order, followed by the fallback labels not already listed.
func (t Taxonomy) Labels() []string {
	labels := make([]string, 0, len(t.Categories)+2)
	seen := make(map[string]bool, len(t.Categories)+2)
	add := func(l string) {
		if l == "" || seen[l] {
			return
		}
		seen[l] = true
		labels = append(labels, l)
	}
	for _, c := range t.Categories {
		add(c.Name)
	}
	add(t.ResearchLabel)
	add(t.DefaultLabel)
	return labels
}

// Validate reports taxonomy mistakes that would make classification ambiguous.
func (t Taxonomy) Validate() error {
	if t.DefaultLabel == "" {
		return fmt.Errorf("taxonomy: default label is required")
	}
	if t.ResearchLabel == "" {
		return fmt.Errorf("taxonomy: research label is required")
	}
	cover := t.Cover()
	seen := make(map[string]bool, len(t.Categories))
	for i, c := range t.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("taxonomy: category %d has no name", i)
		}
		if c.Name == cover {
			return fmt.Errorf("taxonomy: %q is reserved for the cover", cover)
		}
		if seen[c.Name] {
			return fmt.Errorf("taxonomy: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
	}
	if t.DefaultLabel == cover || t.ResearchLabel == cover {
		return fmt.Errorf("taxonomy: %q is reserved for the cover", cover)
	}
	return nil
}

// Classifier applies a Taxonomy. It holds no mutable state.
type Classifier struct {
	tax Taxonomy
}

// New returns a Classifier for tax. Keywords are lower-cased once here.
func New(tax Taxonomy) *Classifier {
	cats := make([]Category, len(tax.Categories))
	for i, c := range tax.Categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		cats[i] = Category{Name: c.Name, Keywords: kws}
	}
	tax.Categories = cats
	return &Classifier{tax: tax}
}

// Taxonomy returns the rules the classifier was built with.
func (c *Classifier) Taxonomy() Taxonomy {
	return c.tax
}

// Classify returns the first category whose keywords occur in title or
// summary. Unmatched items go to the research label when the source looks
// like a research publisher, otherwise to the default label.
func (c *Classifier) Classify(title, summary, source string) string {
	text := strings.ToLower(title + " " + summary)
	for _, cat := range c.tax.Categories {
		for _, k := range cat.Keywords {
			if strings.Contains(text, k) {
				return cat.Name
			}
		}
	}

	source = strings.ToLower(source)
	for _, s := range c.tax.ResearchSources {
		if s != "" && strings.Contains(source, strings.ToLower(s)) {
			return c.tax.ResearchLabel
		}
	}
	return c.tax.DefaultLabel
}
