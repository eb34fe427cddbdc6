// Package classify maps asset names and generated descriptions onto the
// configured publishing taxonomy. Keyword scoring runs first; an optional
// language-model fallback handles names no keyword matches.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

// Completer is the language-model dependency for fallback classification.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier resolves a taxonomy category for an asset.
type Classifier struct {
	categories []config.Category
	llm        Completer
}

// New constructs a classifier over the configured taxonomy. llm may be nil,
// in which case only keyword scoring runs.
func New(categories []config.Category, llm Completer) *Classifier {
	return &Classifier{categories: categories, llm: llm}
}

// Classify scores taxonomy keywords against the name and description and
// returns the best match. When no keyword hits and a language model is
// available, the model picks from the taxonomy; otherwise classification
// fails and the caller substitutes the default category.
func (c *Classifier) Classify(ctx context.Context, name, description string) (config.Category, error) {
	if category, ok := c.keywordMatch(name, description); ok {
		return category, nil
	}
	if c.llm == nil {
		return config.Category{}, services.Wrap(services.ErrNotFound, "classify", "keyword scoring", "no category matched", nil)
	}
	return c.llmMatch(ctx, name, description)
}

// keywordMatch counts keyword occurrences in the combined text. Ties resolve
// to the category listed first in the taxonomy.
func (c *Classifier) keywordMatch(name, description string) (config.Category, bool) {
	text := strings.ToLower(name + " " + description)

	best := config.Category{}
	bestScore := 0
	for _, category := range c.categories {
		score := 0
		for _, keyword := range category.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			score += strings.Count(text, keyword)
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best, bestScore > 0
}

const classifySystemPrompt = "You classify papercraft models into a fixed taxonomy. Respond with JSON " +
	"only, in the form {\"category_id\": N} where N is the id of the best-fitting category."

func (c *Classifier) llmMatch(ctx context.Context, name, description string) (config.Category, error) {
	var prompt strings.Builder
	prompt.WriteString("Categories:\n")
	for _, category := range c.categories {
		fmt.Fprintf(&prompt, "- id %d: %s\n", category.ID, category.Name)
	}
	fmt.Fprintf(&prompt, "\nModel name: %s\nDescription: %s\n", name, description)

	content, err := c.llm.Complete(ctx, classifySystemPrompt, prompt.String())
	if err != nil {
		return config.Category{}, err
	}

	var parsed struct {
		CategoryID int64 `json:"category_id"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &parsed); err != nil {
		return config.Category{}, services.Wrap(services.ErrDegenerate, "classify", "model fallback", "parse payload", err)
	}
	for _, category := range c.categories {
		if category.ID == parsed.CategoryID {
			return category, nil
		}
	}
	return config.Category{}, services.Wrap(services.ErrDegenerate, "classify", "model fallback",
		fmt.Sprintf("unknown category id %d", parsed.CategoryID), nil)
}

// extractJSONObject tolerates code fences and prose around the JSON payload.
func extractJSONObject(content string) string {
	trimmed := strings.TrimSpace(content)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1]
		}
	}
	return trimmed
}
