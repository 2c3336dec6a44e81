package summarize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	damping        = 0.85
	epsilon        = 1e-4
	zeroDivGuard   = 1e-7
	maxPowerRounds = 1000
)

// ErrNoSentences is returned when the text has nothing to rank.
var ErrNoSentences = errors.New("textrank: no sentences")

// TextRank ranks sentences by their centrality in a similarity graph and
// keeps the best ones in document order.
type TextRank struct{}

// NewTextRank returns the graph-based extractive engine.
func NewTextRank() *TextRank {
	return &TextRank{}
}

// Ready reports whether stop words for lang are bundled.
func (TextRank) Ready(lang string) bool {
	_, ok := StopWords(lang)
	return ok
}

// Sentences returns the n highest ranked sentences of text in the order they
// appear. Equal ranks keep document order.
func (tr TextRank) Sentences(ctx context.Context, text string, n int, lang string) ([]string, error) {
	stop, ok := StopWords(lang)
	if !ok {
		return nil, fmt.Errorf("textrank: no stop words for %q", lang)
	}
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}
	if n <= 0 {
		n = DefaultSentences
	}

	bags := make([][]string, len(sentences))
	for i, s := range sentences {
		bags[i] = words(s, stop)
	}

	ranks, err := rank(ctx, bags)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] > ranks[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	sort.Ints(order)

	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = sentences[idx]
	}
	return out, nil
}

// rank builds the damped transition matrix and runs power iteration.
func rank(ctx context.Context, bags [][]string) ([]float64, error) {
	n := len(bags)
	counts := make([]map[string]int, n)
	for i, b := range bags {
		counts[i] = make(map[string]int, len(b))
		for _, w := range b {
			counts[i][w]++
		}
	}

	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := edge(bags[i], counts[j], len(bags[j]))
			weights[i][j] = r
			weights[j][i] = r
		}
	}

	base := (1 - damping) / float64(n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += weights[i][j]
		}
		for j := 0; j < n; j++ {
			weights[i][j] = base + damping*weights[i][j]/(sum+zeroDivGuard)
		}
	}

	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	for round := 0; round < maxPowerRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			var v float64
			for i := 0; i < n; i++ {
				v += weights[i][j] * p[i]
			}
			next[j] = v
		}
		var delta float64
		for i := range p {
			d := next[i] - p[i]
			delta += d * d
		}
		p, next = next, p
		if math.Sqrt(delta) <= epsilon {
			return p, nil
		}
	}
	return nil, fmt.Errorf("textrank: no convergence after %d rounds", maxPowerRounds)
}

// edge rates two sentences by shared words, normalized by the log of their
// lengths.
func edge(a []string, bCounts map[string]int, bLen int) float64 {
	var shared int
	for _, w := range a {
		shared += bCounts[w]
	}
	if shared == 0 {
		return 0
	}
	norm := math.Log(float64(len(a))) + math.Log(float64(bLen))
	if math.Abs(norm) < 1e-9 {
		return float64(shared)
	}
	return float64(shared) / norm
}
