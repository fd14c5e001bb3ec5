package puzzle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"example.com/wordlink/internal/apperr"
)

var ErrGeneration = apperr.New(apperr.Internal, "generation_failed", "failed to generate puzzle")

// Generator produces puzzle content. Output is trusted for meaning but is validated
// structurally before admission.
type Generator interface {
	Generate(ctx context.Context, target Difficulty) (Draft, error)
}

// GeneratorConfig configures HTTPGenerator. An empty APIKeyHeader means x-api-key and nil
// Headers mean DefaultGeneratorHeaders.
type GeneratorConfig struct {
	URL          string
	APIKey       string
	APIKeyHeader string
	Headers      map[string]string
	Model        string
	Timeout      time.Duration
	MaxTokens    int
}

// DefaultGeneratorHeaders pin the messages API version the request and reply shapes follow.
func DefaultGeneratorHeaders() map[string]string {
	return map[string]string{"anthropic-version": "2023-06-01"}
}

// HTTPGenerator asks a hosted text-generation model for a puzzle in JSON. Requests and replies
// use the Anthropic messages shape; the endpoint, key header and extra headers are configurable
// so compatible gateways work too.
type HTTPGenerator struct {
	cfg    GeneratorConfig
	client *http.Client
}

func NewHTTPGenerator(cfg GeneratorConfig) *HTTPGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "x-api-key"
	}
	if cfg.Headers == nil {
		cfg.Headers = DefaultGeneratorHeaders()
	}
	return &HTTPGenerator{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

const systemPrompt = `You write word connection puzzles: 16 words hidden in 4 groups of 4.
Each group has a color that ranks its difficulty: yellow (easiest), green, blue, purple (hardest).
Use every color exactly once. Groups must come from different domains and use different kinds of
connection (meaning, function, context, word structure, culture, wordplay). Words may look like they
fit several groups, but each word belongs to exactly one group and no word may repeat.

Reply with JSON only:
{
  "categories": [
    {"name": "...", "words": ["W1","W2","W3","W4"], "color": "yellow|green|blue|purple", "reasoning": "..."}
  ],
  "overall_reasoning": "..."
}`

type messagesRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system"`
	Messages  []messageContent `json:"messages"`
}

type messageContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type generatedPuzzle struct {
	Categories []struct {
		Name       string   `json:"name"`
		Words      []string `json:"words"`
		Color      string   `json:"color"`
		Tier       string   `json:"tier"`
		Difficulty string   `json:"difficulty"`
		Reasoning  string   `json:"reasoning"`
	} `json:"categories"`
	OverallReasoning string `json:"overall_reasoning"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, target Difficulty) (Draft, error) {
	if target == "" {
		target = DifficultyMedium
	}
	user := fmt.Sprintf("Generate a new puzzle. Overall difficulty: %s. Maximize diversity between the four groups.", target)

	body, err := json.Marshal(messagesRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []messageContent{{Role: "user", Content: user}},
	})
	if err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range g.cfg.Headers {
		req.Header.Set(k, v)
	}
	if g.cfg.APIKey != "" {
		req.Header.Set(g.cfg.APIKeyHeader, g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Draft{}, apperr.Wrap(ErrGeneration, fmt.Errorf("generator status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}
	var text strings.Builder
	for _, c := range mr.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	d, err := ParseDraft(text.String())
	if err != nil {
		return Draft{}, apperr.Wrap(ErrGeneration, err)
	}
	d.Difficulty = target
	return d, nil
}

// ParseDraft extracts the first JSON object from a model reply and maps it to a Draft.
// Category tiers are taken from color, then tier, then difficulty.
func ParseDraft(text string) (Draft, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Draft{}, fmt.Errorf("no JSON object in reply")
	}

	var gp generatedPuzzle
	if err := json.Unmarshal([]byte(text[start:end+1]), &gp); err != nil {
		return Draft{}, fmt.Errorf("decode reply: %w", err)
	}

	var d Draft
	for _, c := range gp.Categories {
		var tier Tier
		var err error
		for _, s := range []string{c.Color, c.Tier, c.Difficulty} {
			if strings.TrimSpace(s) == "" {
				continue
			}
			if tier, err = ParseTier(s); err == nil {
				break
			}
		}
		if !tier.Valid() {
			return Draft{}, fmt.Errorf("category %q has no usable color or tier", c.Name)
		}

		words := make([]string, len(c.Words))
		for i, w := range c.Words {
			words[i] = NormalizeWord(w)
		}
		d.Categories = append(d.Categories, Category{
			Name:      strings.TrimSpace(c.Name),
			Words:     words,
			Tier:      tier,
			Rationale: strings.TrimSpace(c.Reasoning),
		})
		d.Words = append(d.Words, words...)
	}
	d.Reasoning = strings.TrimSpace(gp.OverallReasoning)
	if d.Reasoning == "" {
		d.Reasoning = "AI-generated puzzle with diverse categories."
	}
	return d, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SampleGenerator cycles through the built-in sample puzzles. Used when no generator
// endpoint is configured.
type SampleGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *SampleGenerator) Generate(_ context.Context, target Difficulty) (Draft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	samples := SampleDrafts()
	d := samples[g.next%len(samples)]
	g.next++
	if target != "" {
		d.Difficulty = target
	}
	return d, nil
}
