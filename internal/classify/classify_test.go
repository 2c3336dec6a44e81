package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := New(DefaultTaxonomy())

	tests := []struct {
		name    string
		title   string
		summary string
		source  string
		want    string
	}{
		{name: "models keyword", title: "Meta releases Llama 4", want: "Models"},
		{name: "case insensitive", title: "CLAUDE gets longer context", want: "Models"},
		{name: "keyword in summary", title: "Big news", summary: "A new SDK for agents", want: "Tools"},
		{name: "regulation", title: "The AI Act timeline", want: "Regulation"},
		{name: "hardware", title: "Nvidia H100 shortage eases", want: "Hardware"},
		{
			name:  "first category wins when two match",
			title: "GPT integration lands on GitHub",
			want:  "Models",
		},
		{
			name:  "priority is order not match count",
			title: "Nvidia chip gpu tpu asic roundup with one paper",
			want:  "Research",
		},
		{name: "arxiv source fallback", title: "On the estimation of things", source: "arxiv.org", want: "Research"},
		{name: "nature source fallback", title: "Protein folding results", source: "nature.com", want: "Research"},
		{name: "default bucket", title: "Quarterly results announced", source: "example.com", want: "Market"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.title, tt.summary, tt.source))
		})
	}
}

func TestClassifyInjectedTaxonomy(t *testing.T) {
	tax := Taxonomy{
		Categories: []Category{
			{Name: "B", Keywords: []string{" Beta "}},
			{Name: "A", Keywords: []string{"alpha", "beta"}},
		},
		ResearchLabel:   "R",
		DefaultLabel:    "D",
		ResearchSources: []string{"lab"},
	}
	c := New(tax)

	assert.Equal(t, "B", c.Classify("alpha and beta", "", ""))
	assert.Equal(t, "A", c.Classify("alpha only", "", ""))
	assert.Equal(t, "R", c.Classify("nothing", "", "bio-lab.org"))
	assert.Equal(t, "D", c.Classify("nothing", "", "news.com"))
}

func TestTaxonomyValidate(t *testing.T) {
	require.NoError(t, DefaultTaxonomy().Validate())

	tests := []struct {
		name string
		tax  Taxonomy
	}{
		{name: "missing default", tax: Taxonomy{ResearchLabel: "R"}},
		{name: "missing research", tax: Taxonomy{DefaultLabel: "D"}},
		{name: "empty name", tax: Taxonomy{DefaultLabel: "D", ResearchLabel: "R", Categories: []Category{{Name: " "}}}},
		{name: "duplicate", tax: Taxonomy{DefaultLabel: "D", ResearchLabel: "R", Categories: []Category{{Name: "X"}, {Name: "X"}}}},
		{name: "cover category", tax: Taxonomy{DefaultLabel: "D", ResearchLabel: "R", Categories: []Category{{Name: Cover}}}},
		{name: "cover default", tax: Taxonomy{DefaultLabel: Cover, ResearchLabel: "R"}},
		{name: "custom cover category", tax: Taxonomy{DefaultLabel: "D", ResearchLabel: "R", CoverLabel: "Portada", Categories: []Category{{Name: "Portada"}}}},
		{name: "custom cover research", tax: Taxonomy{DefaultLabel: "D", ResearchLabel: "Portada", CoverLabel: "Portada"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.tax.Validate())
		})
	}
}

func TestTaxonomyLabels(t *testing.T) {
	got := DefaultTaxonomy().Labels()
	assert.Equal(t, []string{"Models", "Tools", "Regulation", "Research", "Security", "Hardware", "Market"}, got)

	tax := Taxonomy{Categories: []Category{{Name: "X"}}, ResearchLabel: "R", DefaultLabel: "D"}
	assert.Equal(t, []string{"X", "R", "D"}, tax.Labels())
}

func TestTaxonomyCover(t *testing.T) {
	assert.Equal(t, Cover, Taxonomy{}.Cover())
	assert.Equal(t, Cover, DefaultTaxonomy().Cover())
	assert.Equal(t, "Portada", Taxonomy{CoverLabel: " Portada "}.Cover())

	// With a custom cover label the default one is an ordinary section name.
	tax := Taxonomy{DefaultLabel: "D", ResearchLabel: "R", CoverLabel: "Portada", Categories: []Category{{Name: Cover}}}
	assert.NoError(t, tax.Validate())
}
