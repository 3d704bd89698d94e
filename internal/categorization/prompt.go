package categorization

import (
	"fmt"
	"strings"

	"github.com/richxcame/expense-tracker/pkg/models"
)

const systemPrompt = "You classify personal expenses. Answer with a single JSON object and nothing else."

// BuildPrompt renders the classification request. User-defined categories
// are listed as preferred, defaults as fallback, and the most recent history
// entries (at most HistoryLimit) as examples.
func BuildPrompt(description string, amount float64, available []models.CategoryOption, history []models.HistoryEntry) string {
	var custom, defaults []string
	for _, opt := range available {
		if opt.UserID != nil && !opt.IsDefault {
			custom = append(custom, opt.Name)
		} else {
			defaults = append(defaults, opt.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Categorize the following expense.\n\n")
	fmt.Fprintf(&b, "Description: %q\n", strings.TrimSpace(description))
	fmt.Fprintf(&b, "Amount: %.2f\n\n", amount)

	if len(custom) > 0 {
		b.WriteString("Preferred categories (defined by the user, use one of these whenever it fits):\n")
		writeList(&b, custom)
		b.WriteString("\n")
	}
	if len(defaults) > 0 {
		b.WriteString("Fallback categories (use only if no preferred category fits):\n")
		writeList(&b, defaults)
		b.WriteString("\n")
	}

	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	if len(history) > 0 {
		b.WriteString("Previously categorized expenses from this user, most recent first. ")
		b.WriteString("Reuse the same category for recurring merchants and abbreviations:\n")
		for _, h := range history {
			label := h.Category.Primary
			if h.Category.Secondary != "" {
				label += " / " + h.Category.Secondary
			}
			fmt.Fprintf(&b, "- %q -> %s\n", h.Description, label)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with JSON only, in this exact shape:\n")
	b.WriteString(`{"category": "<primary category>", "subcategory": "<optional secondary label or empty>", `)
	b.WriteString(`"tags": ["<short lowercase tag>"], "confidence": <number between 0 and 1>, "rationale": "<one sentence>"}`)
	b.WriteString("\n")

	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
