// Package gemini is the optional Gemini summary engine. It plugs into
// summarize.Summarizer as the primary tier and spends one request of the
// run's budget per summary.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/weeklydigest/internal/ratelimit"
	"github.com/deusflow/weeklydigest/internal/retry"
	"github.com/deusflow/weeklydigest/internal/summarize"
)

// DefaultModel is used when NewClient gets an empty model name.
const DefaultModel = "gemini-1.5-flash"

// maxPromptRunes bounds the article text sent in one prompt.
const maxPromptRunes = 6000

var (
	errNoResponse = errors.New("no response from Gemini")
	errEmpty      = errors.New("empty summary from Gemini")
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a Generator backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate sends prompt and returns the text of the first candidate.
// Blocked prompts are not retried.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", retry.Permanent(fmt.Errorf("prompt blocked: %v", resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errNoResponse
	}
	return b.String(), nil
}

// Engine summarizes through a Generator within a request budget.
type Engine struct {
	gen     Generator
	limiter *ratelimit.Limiter
	retry   retry.Config
	log     *slog.Logger
}

// NewEngine returns an Engine. A nil limiter means no budget.
func NewEngine(gen Generator, limiter *ratelimit.Limiter, rc retry.Config, log *slog.Logger) *Engine {
	if limiter == nil {
		limiter = ratelimit.New("gemini", 0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{gen: gen, limiter: limiter, retry: rc, log: log}
}

// Ready reports whether a generator is configured and budget remains. Any
// language is accepted.
func (e *Engine) Ready(string) bool {
	return e.gen != nil && e.limiter.Allow()
}

// Sentences asks the model for an n-sentence summary of text in lang.
func (e *Engine) Sentences(ctx context.Context, text string, n int, lang string) ([]string, error) {
	if err := e.limiter.Use(); err != nil {
		return nil, err
	}

	prompt := buildPrompt(text, n, lang)
	var reply string
	err := retry.WithRetry(ctx, e.retry, func(ctx context.Context) error {
		out, err := e.gen.Generate(ctx, prompt)
		if err != nil {
			e.log.Debug("gemini request failed", "error", err)
			return err
		}
		reply = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	sentences := parseSummary(reply, n)
	if len(sentences) == 0 {
		return nil, errEmpty
	}
	return sentences, nil
}

func buildPrompt(text string, n int, lang string) string {
	return fmt.Sprintf(`Summarize the following news article in %s in at most %d sentences.
Reply with the summary only: plain sentences, no title, no list, no labels.
Keep product and company names as written.

ARTICLE:
%s
`, languageName(lang), n, trimContent(text))
}

func languageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "the article's language"
	}
	return strings.ToUpper(lang[:1]) + lang[1:]
}

// trimContent collapses whitespace and cuts text to maxPromptRunes, ending on
// a sentence boundary when one is reasonably close.
func trimContent(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPromptRunes {
		return text
	}
	runes := []rune(text)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

var (
	labelRe  = regexp.MustCompile(`(?i)^(summary|resumen|resum)\s*:\s*`)
	bulletRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
)

// parseSummary strips labels, list markers and markdown emphasis from a
// model reply and returns at most n sentences.
func parseSummary(reply string, n int) []string {
	var parts []string
	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		line = labelRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "**", "")
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}

	sentences := summarize.SplitSentences(strings.Join(parts, " "))
	if n > 0 && len(sentences) > n {
		sentences = sentences[:n]
	}
	return sentences
}
