package oracle

import (
	"fmt"
	"strings"

	"github.com/marketproof/attribution-cli/internal/model"
)

// Prompt is the identical structured context every provider receives.
type Prompt struct {
	System      string
	User        string
	SearchQuery string
}

const systemPrompt = `You are an attribution auditor for a 3D asset marketplace.
You judge whether the manufacturer, designer, collection and year claimed for
an asset are plausible real-world attribution, or fabricated, self-promotional
or placeholder metadata.

You may perform at most one web search to verify the claims.

Respond with a single JSON object and nothing else:
{"valid": <true|false>, "reason": "<one short sentence>"}

"valid" is true when the attribution is plausibly genuine. Do not add any
other keys, prose, or markdown.`

// BuildPrompt assembles the provider-agnostic judgment context from the
// sanitized row and the heuristic findings. Deterministic: the same row and
// scores always produce the same prompt.
func BuildPrompt(row model.NormalizedRow, heuristics model.SuspicionResult) Prompt {
	query := buildSearchQuery(row)

	var sb strings.Builder
	sb.WriteString("Asset under review:\n")
	writeField(&sb, "name", row.Get(model.KeyName))
	writeField(&sb, "description", row.Get(model.KeyDescription))
	writeField(&sb, "author", row.Get(model.KeyAuthor))
	writeField(&sb, "manufacturer", row.Get(model.KeyManufacturer))
	writeField(&sb, "designer", row.Get(model.KeyDesigner))
	writeField(&sb, "collection", row.Get(model.KeyCollection))
	writeField(&sb, "variant", row.Get(model.KeyVariant))
	writeField(&sb, "year", row.Get(model.KeyYear))

	fmt.Fprintf(&sb, "\nHeuristic suspicion score: %d (manufacturer %d, designer %d, collection %d, year %d)\n",
		heuristics.Aggregate(), heuristics.Manufacturer, heuristics.Designer,
		heuristics.Collection, heuristics.Year)

	if len(heuristics.Reasons) > 0 {
		sb.WriteString("Heuristic findings:\n")
		for _, r := range heuristics.Reasons {
			sb.WriteString("- " + r + "\n")
		}
	}

	fmt.Fprintf(&sb, "\nIf you search, use this query: %q\n", query)
	sb.WriteString("\nIs this attribution trustworthy? Answer with the JSON object only.")

	return Prompt{
		System:      systemPrompt,
		User:        sb.String(),
		SearchQuery: query,
	}
}

func writeField(sb *strings.Builder, key, value string) {
	if value == "" {
		value = "(blank)"
	}
	fmt.Fprintf(sb, "  %s: %s\n", key, value)
}

// buildSearchQuery joins the attribution tokens into a deterministic search
// query, falling back to the asset name when every claim field is blank.
func buildSearchQuery(row model.NormalizedRow) string {
	var parts []string
	for _, key := range []string{model.KeyManufacturer, model.KeyDesigner, model.KeyCollection, model.KeyYear} {
		if v := row.Get(key); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return row.Get(model.KeyName)
	}
	return strings.Join(parts, " ")
}
