package categorization

import (
	"context"
	"time"
)

const (
	// HistoryLimit caps the few-shot examples sent to the model
	HistoryLimit = 15
	// DefaultCacheTTL is how long a categorized description is remembered
	DefaultCacheTTL = 30 * 24 * time.Hour

	fallbackRationalePrefix = "automatic categorization failed: "
)

// ModelClient sends a prompt to a language model and returns its raw text
// answer
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// modelAnswer is the JSON contract the prompt asks the model to follow
type modelAnswer struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
	Confidence  float64  `json:"confidence"`
	Rationale   string   `json:"rationale"`
}
