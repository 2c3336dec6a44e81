package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

func TestRecency(t *testing.T) {
	s := New(Tables{})

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{name: "brand new", age: 0, want: 1},
		{name: "future is age zero", age: -48 * time.Hour, want: 1},
		{name: "half window", age: 84 * time.Hour, want: 0.5},
		{name: "one day", age: 24 * time.Hour, want: 1 - 1.0/7},
		{name: "exactly seven days", age: 7 * 24 * time.Hour, want: 0},
		{name: "ten days", age: 10 * 24 * time.Hour, want: 0},
		{name: "a year", age: 365 * 24 * time.Hour, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Recency(now.Add(-tt.age), now), 1e-9)
		})
	}
}

func TestRecencyMonotonic(t *testing.T) {
	s := New(DefaultTables())
	prev := -1.0
	for h := 24 * 10; h >= -24; h -= 6 {
		got := s.Score(now.Add(-time.Duration(h)*time.Hour), "openai.com", "GPT news", "", now)
		assert.GreaterOrEqual(t, got, prev, "age %dh", h)
		prev = got
	}
}

func TestScore(t *testing.T) {
	s := New(DefaultTables())

	tests := []struct {
		name    string
		age     time.Duration
		source  string
		title   string
		summary string
		want    float64
	}{
		{name: "unknown source no keywords", source: "example.com", title: "Quarterly update", want: 1},
		{name: "source bonus is additive", source: "openai.com", title: "Quarterly update", want: 1 + 0.4},
		{name: "source lookup ignores case", source: "OpenAI.com", title: "Quarterly update", want: 1 + 0.4},
		{
			name:   "overlapping keywords accumulate",
			source: "example.com",
			title:  "GPT-5 is here",
			// gpt-5 0.6 + gpt 0.3
			want: 1 + 0.9,
		},
		{
			name:    "summary keywords count",
			source:  "example.com",
			title:   "Weekly recap",
			summary: "Claude and Gemini on a new benchmark",
			want:    1 + 0.35 + 0.35 + 0.25,
		},
		{
			name:   "stale item keeps only bonuses",
			age:    30 * 24 * time.Hour,
			source: "arxiv.org",
			title:  "A benchmark for agents",
			want:   0.1 + 0.25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(now.Add(-tt.age), tt.source, tt.title, tt.summary, now)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestInjectedTables(t *testing.T) {
	s := New(Tables{
		SourceWeights: map[string]float64{"Low.example": 0.5},
		KeywordBoosts: []Boost{{Keyword: "Rust", Weight: 2}, {Keyword: "", Weight: 100}},
	})

	assert.InDelta(t, 0.5, s.SourceWeight("low.example"), 1e-9)
	assert.InDelta(t, 1.0, s.SourceWeight("other.example"), 1e-9)
	assert.InDelta(t, 2.0, s.KeywordBoost("rust in the kernel", ""), 1e-9)
	// Weights below 1 act as a penalty.
	assert.InDelta(t, 1-0.5, s.Score(now, "low.example", "plain", "", now), 1e-9)
}
