package research

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// PromptTokenCount estimates the token footprint of a prompt. When accurate
// is set it uses the gpt-4 BPE via tiktoken (downloads the encoding on first
// use); otherwise it falls back to the 4-characters-per-token approximation.
func PromptTokenCount(prompt string, accurate bool) int {
	if accurate {
		if enc, err := tiktoken.EncodingForModel("gpt-4"); err == nil {
			return len(enc.Encode(prompt, nil, nil))
		}
	}
	return len(prompt) / 4
}

// CostOptions parameterizes the prompt cost comparison.
type CostOptions struct {
	QueriesPerDay       int     // Expected daily query volume
	InputTokenPrice     float64 // $ per 1M input tokens
	OutputTokenEstimate int     // Average output tokens per response
	OutputTokenPrice    float64 // $ per 1M output tokens
	AccurateCounting    bool    // Use tiktoken for precise counts
}

// DefaultCostOptions mirrors current Claude Sonnet pricing at a moderate volume.
func DefaultCostOptions() CostOptions {
	return CostOptions{
		QueriesPerDay:       100,
		InputTokenPrice:     3.0,
		OutputTokenEstimate: 500,
		OutputTokenPrice:    15.0,
	}
}

// PromptCost summarizes the projected spend for one prompt variant.
type PromptCost struct {
	Name         string
	InputTokens  int
	DailyCost    float64
	MonthlyCost  float64
	AnnualSaving float64 // Versus the most expensive variant
}

// ComparePromptCosts projects daily and monthly costs for every prompt
// variant in the catalog, ordered cheapest first.
func ComparePromptCosts(opts CostOptions) []PromptCost {
	if opts.QueriesPerDay <= 0 {
		opts = DefaultCostOptions()
	}

	names := PromptNames()
	catalog := Prompts()
	costs := make([]PromptCost, 0, len(names))

	var maxDaily float64
	for _, name := range names {
		inputTokens := PromptTokenCount(catalog[name], opts.AccurateCounting)
		queries := float64(opts.QueriesPerDay)

		inputCost := float64(inputTokens) * queries / 1e6 * opts.InputTokenPrice
		outputCost := float64(opts.OutputTokenEstimate) * queries / 1e6 * opts.OutputTokenPrice
		daily := inputCost + outputCost

		if daily > maxDaily {
			maxDaily = daily
		}
		costs = append(costs, PromptCost{
			Name:        name,
			InputTokens: inputTokens,
			DailyCost:   daily,
			MonthlyCost: daily * 30,
		})
	}

	for i := range costs {
		costs[i].AnnualSaving = (maxDaily - costs[i].DailyCost) * 365
	}

	// Cheapest first
	for i := 0; i < len(costs); i++ {
		for j := i + 1; j < len(costs); j++ {
			if costs[j].DailyCost < costs[i].DailyCost {
				costs[i], costs[j] = costs[j], costs[i]
			}
		}
	}
	return costs
}

// FormatCostReport renders the comparison as a human-readable table.
func FormatCostReport(costs []PromptCost) string {
	var b strings.Builder
	b.WriteString("Prompt cost comparison\n")
	b.WriteString(fmt.Sprintf("%-10s %12s %12s %12s %14s\n", "variant", "tokens", "daily $", "monthly $", "annual save $"))
	for _, c := range costs {
		b.WriteString(fmt.Sprintf("%-10s %12d %12.4f %12.4f %14.2f\n",
			c.Name, c.InputTokens, c.DailyCost, c.MonthlyCost, c.AnnualSaving))
	}
	return b.String()
}
