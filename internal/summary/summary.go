// Package summary turns computed statistics into a short narrative for the
// requesting user, via the language model with a deterministic template
// fallback.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/pkg/anthropic"
)

const defaultMaxTokens = 1024

const systemPrompt = `You are writing a short neighborhood assessment for one
specific person. You get their profile and a set of computed metrics.

Write 3 to 5 sentences of plain prose. Mention concrete numbers. Weigh the
metrics by what matters to this person. Point out weak spots honestly. Do
not invent data that is not in the metrics.`

// Generator produces summaries.
type Generator struct {
	llm       anthropic.Client
	cat       *catalog.Catalog
	modelName string
}

// NewGenerator creates a generator bound to a catalog.
func NewGenerator(llm anthropic.Client, cat *catalog.Catalog, modelName string) *Generator {
	return &Generator{llm: llm, cat: cat, modelName: modelName}
}

// Generate asks the model for a narrative summary. On failure the caller
// degrades to Template.
func (g *Generator) Generate(ctx context.Context, address string, intent *model.UserIntent, stats model.Statistics, ids []string) (string, error) {
	resp, err := g.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.modelName,
		MaxTokens: defaultMaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: g.userPrompt(address, intent, stats, ids)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "summary: create message")
	}
	resp.Usage.LogCost(g.modelName, "summary")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("summary: model returned empty text")
	}
	return text, nil
}

func (g *Generator) userPrompt(address string, intent *model.UserIntent, stats model.Statistics, ids []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", address)
	if intent != nil {
		fmt.Fprintf(&b, "Person: %s\n", intent.ProfileType)
		if len(intent.Priorities) > 0 {
			fmt.Fprintf(&b, "Priorities: %s\n", strings.Join(intent.Priorities, ", "))
		}
		if len(intent.Concerns) > 0 {
			fmt.Fprintf(&b, "Concerns: %s\n", strings.Join(intent.Concerns, ", "))
		}
	}
	b.WriteString("Metrics:\n")
	b.WriteString(g.metricLines(stats, ids))
	return b.String()
}

func (g *Generator) metricLines(stats model.Statistics, ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		def, ok := g.cat.Get(id)
		if !ok {
			continue
		}
		if v, ok := stats.Value(id); ok {
			fmt.Fprintf(&b, "- %s: %s\n", def.Name, formatValue(v, def.Unit))
		} else {
			fmt.Fprintf(&b, "- %s: no data\n", def.Name)
		}
	}
	return b.String()
}

// Template renders the deterministic fallback summary used when the model
// is unavailable.
func Template(cat *catalog.Catalog, address string, stats model.Statistics, ids []string) string {
	var parts []string
	for _, id := range ids {
		def, ok := cat.Get(id)
		if !ok {
			continue
		}
		v, ok := stats.Value(id)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(def.Name), formatValue(v, def.Unit)))
	}

	where := address
	if where == "" {
		where = "the requested location"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No metric data could be computed for %s.", where)
	}
	return fmt.Sprintf("Around %s: %s.", where, strings.Join(parts, "; "))
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "count":
		return fmt.Sprintf("%.0f", v)
	case "km", "km²", "ratio":
		return fmt.Sprintf("%.2f %s", v, unit)
	default:
		return fmt.Sprintf("%.1f %s", v, unit)
	}
}
