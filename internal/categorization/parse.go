package categorization

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/richxcame/expense-tracker/pkg/models"
)

// ErrEmptyCategory is returned when the model answered without a category
var ErrEmptyCategory = errors.New("model returned an empty category")

// ParseResponse decodes the model's answer. Markdown code fences around the
// JSON are stripped and confidence is clamped to [0, 1].
func ParseResponse(raw string) (models.Category, error) {
	var answer modelAnswer
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &answer); err != nil {
		return models.Category{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	primary := strings.TrimSpace(answer.Category)
	if primary == "" {
		return models.Category{}, ErrEmptyCategory
	}

	tags := make([]string, 0, len(answer.Tags))
	for _, tag := range answer.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	return models.Category{
		Primary:    primary,
		Secondary:  strings.TrimSpace(answer.Subcategory),
		Tags:       tags,
		Confidence: clamp(answer.Confidence, 0, 1),
		Rationale:  strings.TrimSpace(answer.Rationale),
	}, nil
}

// stripCodeFence removes ``` or ```json wrapping and any prose around the
// outermost JSON object
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the language tag line ("json", "JSON", ...)
			if tag := strings.TrimSpace(s[:nl]); !strings.HasPrefix(tag, "{") {
				s = s[nl+1:]
			}
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start > 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
