package interpret

import (
	"fmt"
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

const systemPrompt = `You translate product-catalog questions into structured search instructions. Respond with a single JSON object and nothing else.`

const responseFormat = `{
  "filters": [{"column": "<column name>", "operator": "contains|eq|neq|gt|gte|lt|lte", "value": "<value>"}],
  "searchType": "all|any",
  "questionType": "list|comparison|analytical|specific",
  "limit": <number or null>,
  "orderBy": {"column": "<column name>", "direction": "asc|desc"} or null,
  "keywords": ["<search term>"],
  "compareProducts": ["<product identifier>"],
  "extract": {"sku": "<product identifier>", "question": "<what to extract>"} or null
}`

const classificationGuide = `Question types:
- "list": the user wants matching products (default).
- "comparison": the user names two or more specific products to compare; fill compareProducts.
- "analytical": the user asks for a recommendation, ranking, or open-ended analysis; fill keywords with the salient terms.
- "specific": the user asks for one attribute of one product; fill extract with the product identifier and the attribute question.`

// buildPrompt assembles the interpretation prompt from the discovered
// catalog shape, the active facets, and the user's question.
func buildPrompt(query string, sch schema.Schema, summary string, filters facet.Filter) string {
	var sb strings.Builder

	sb.WriteString("Catalog columns: ")
	if sch.IsEmpty() {
		sb.WriteString("(none discovered)")
	} else {
		sb.WriteString(strings.Join(sch.Columns(), ", "))
	}
	sb.WriteString("\n\n")

	if summary != "" {
		sb.WriteString("Sample data:\n")
		sb.WriteString(summary)
		sb.WriteString("\n")
	}

	if sels := filters.Selections(); len(sels) > 0 {
		sb.WriteString("The user has already constrained the results to:\n")
		for _, sel := range sels {
			fmt.Fprintf(&sb, "- %s: %s\n", sel.Attr, sel.Value)
		}
		sb.WriteString("Do not repeat these constraints as filters.\n\n")
	}

	sb.WriteString(classificationGuide)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- Only use column names that appear in the catalog columns above.\n")
	sb.WriteString("- Use \"contains\" for text matching and comparison operators only for numeric values.\n")
	sb.WriteString("- Use \"eq\" only when the user gives an exact, well-formed identifier; prefer \"contains\" for anything ambiguous or partial.\n")
	sb.WriteString("- Use \"all\" searchType when every filter must hold, \"any\" when one match suffices.\n")
	sb.WriteString("- Omit limit unless the user asks for a specific number of results.\n")
	sb.WriteString("- For analytical questions, keep limit small (around 10) so the analysis stays focused.\n")
	sb.WriteString("\nRespond with exactly this JSON shape:\n")
	sb.WriteString(responseFormat)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)

	return sb.String()
}
