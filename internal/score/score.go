// Package score ranks digest items by recency, source authority and topical
// keywords.
package score

import (
	"math"
	"strings"
	"time"
)

// RecencyWindow is the age at which the recency term reaches zero.
const RecencyWindow = 7 * 24 * time.Hour

// Boost adds Weight to an item's score when Keyword occurs in its text.
type Boost struct {
	Keyword string  `yaml:"keyword"`
	Weight  float64 `yaml:"weight"`
}

// Tables holds the scoring configuration.
type Tables struct {
	// SourceWeights maps a source domain to an authority multiplier.
	// Unlisted domains weigh 1.0.
	SourceWeights map[string]float64 `yaml:"source_weights"`
	KeywordBoosts []Boost            `yaml:"keyword_boosts"`
}

// DefaultTables returns the built-in weights.
func DefaultTables() Tables {
	return Tables{
		SourceWeights: map[string]float64{
			"openai.com":           1.4,
			"anthropic.com":        1.3,
			"googleblog.com":       1.2,
			"arstechnica.com":      1.15,
			"technologyreview.com": 1.15,
			"theverge.com":         1.05,
			"xataka.com":           1.05,
			"cincodias.elpais.com": 1.05,
			"nytimes.com":          1.1,
			"reuters.com":          1.15,
			"nature.com":           1.2,
			"arxiv.org":            1.1,
		},
		KeywordBoosts: []Boost{
			{Keyword: "gpt-5", Weight: 0.6},
			{Keyword: "gpt5", Weight: 0.6},
			{Keyword: "gpt", Weight: 0.3},
			{Keyword: "llama", Weight: 0.4},
			{Keyword: "claude", Weight: 0.35},
			{Keyword: "gemini", Weight: 0.35},
			{Keyword: "ai act", Weight: 0.6},
			{Keyword: "regulación", Weight: 0.4},
			{Keyword: "benchmark", Weight: 0.25},
			{Keyword: "sota", Weight: 0.25},
			{Keyword: "open-source", Weight: 0.25},
			{Keyword: "open weight", Weight: 0.3},
			{Keyword: "open‑weight", Weight: 0.3},
		},
	}
}

// Scorer computes relevance scores. It holds no mutable state.
type Scorer struct {
	weights map[string]float64
	boosts  []Boost
}

// New returns a Scorer for the given tables.
func New(t Tables) *Scorer {
	weights := make(map[string]float64, len(t.SourceWeights))
	for k, v := range t.SourceWeights {
		weights[strings.ToLower(k)] = v
	}
	boosts := make([]Boost, 0, len(t.KeywordBoosts))
	for _, b := range t.KeywordBoosts {
		k := strings.ToLower(b.Keyword)
		if k == "" {
			continue
		}
		boosts = append(boosts, Boost{Keyword: k, Weight: b.Weight})
	}
	return &Scorer{weights: weights, boosts: boosts}
}

// Score returns recency + (sourceWeight - 1) + keywordBoost. Higher is
// better.
func (s *Scorer) Score(published time.Time, source, title, summary string, now time.Time) float64 {
	return s.Recency(published, now) + (s.SourceWeight(source) - 1.0) + s.KeywordBoost(title, summary)
}

// Recency decays linearly from 1 for a brand new item to 0 at seven days.
// Future timestamps count as age zero.
func (s *Scorer) Recency(published, now time.Time) float64 {
	ageDays := math.Max(0, now.Sub(published).Hours()/24)
	windowDays := RecencyWindow.Hours() / 24
	return math.Max(0, 1-math.Min(ageDays/windowDays, 1))
}

// SourceWeight returns the authority multiplier for source, 1.0 if unknown.
func (s *Scorer) SourceWeight(source string) float64 {
	if w, ok := s.weights[strings.ToLower(source)]; ok {
		return w
	}
	return 1.0
}

// KeywordBoost sums the weights of every boost keyword found in the text.
// Overlapping keywords all count.
func (s *Scorer) KeywordBoost(title, summary string) float64 {
	text := strings.ToLower(title + " " + summary)
	var total float64
	for _, b := range s.boosts {
		if strings.Contains(text, b.Keyword) {
			total += b.Weight
		}
	}
	return total
}
