package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Model X launches today!!", "model x launches today"},
		{"  GPT-5: what's new?  ", "gpt 5 what s new"},
		{"---", ""},
		{"Regulación europea", "regulaci n europea"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestRatio(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		for _, s := range []string{"", "a", "OpenAI ships a new model", "¡¡!!"} {
			assert.Equal(t, 1.0, Ratio(s, s), s)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"Model X launches today", "Model X launched yesterday"},
			{"Nvidia unveils new GPU", "AMD unveils new chip"},
			{"abc", ""},
			{"EU AI Act enters into force", "The AI Act: EU rules now in force"},
		}
		for _, p := range pairs {
			assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "%q vs %q", p[0], p[1])
		}
	})

	t.Run("punctuation only difference is a duplicate", func(t *testing.T) {
		assert.Equal(t, 1.0, Ratio("Model X launches today", "Model X launches today!!"))
	})

	t.Run("known value", func(t *testing.T) {
		// "abcd" vs "bcde": matching block "bcd" -> 2*3/8
		assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
	})

	t.Run("nothing in common", func(t *testing.T) {
		assert.Equal(t, 0.0, Ratio("12345", "abcde"))
	})

	t.Run("empty against non-empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Ratio("", "something"))
	})
}
