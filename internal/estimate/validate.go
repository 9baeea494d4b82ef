package estimate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// resultSchema is the structural contract the generation provider is asked to
// honor. Structured-output enforcement upstream is best effort, so every
// candidate result is re-checked here before it can reach a caller.
const resultSchema = `{
  "type": "object",
  "required": ["projectSummary", "paymentTerms", "items", "insights", "marketConfidence", "regionalMultiplier"],
  "properties": {
    "projectSummary": {"type": "string"},
    "paymentTerms": {"type": "string"},
    "items": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "qty", "unit", "rate", "total", "category", "csi_division", "retailerName", "storeLink"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "qty": {"type": "number"},
          "unit": {"type": "string"},
          "rate": {"type": "number"},
          "total": {"type": "number"},
          "category": {"type": "string", "enum": ["Material", "Labor", "Permit", "Sub", "Equipment"]},
          "csi_division": {"type": "string"},
          "retailerName": {"type": "string"},
          "storeLink": {"type": "string"},
          "logic": {"type": "string"}
        }
      }
    },
    "insights": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "title", "text", "impact"],
        "properties": {
          "type": {"type": "string", "enum": ["risk", "market", "compliance"]},
          "title": {"type": "string"},
          "text": {"type": "string"},
          "impact": {"type": "string"}
        }
      }
    },
    "marketConfidence": {"type": "number", "minimum": 0, "maximum": 1},
    "regionalMultiplier": {"type": "number", "exclusiveMinimum": 0},
    "suggestedAgenda": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledResultSchema = gojsonschema.NewStringLoader(resultSchema)

// ValidateResult checks a raw candidate against the EstimateResult contract
// and returns a fully validated result or a typed failure. It fails closed:
// any missing field, wrong type or out-of-enum value yields a *SchemaError
// naming the offending path, never a partial result.
func ValidateResult(raw json.RawMessage) (*EstimateResult, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: %.80s", ErrMalformedOutput, string(raw))
	}

	verdict, err := gojsonschema.Validate(compiledResultSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !verdict.Valid() {
		first := verdict.Errors()[0]
		return nil, &SchemaError{Path: first.Field(), Reason: first.Description()}
	}

	var out EstimateResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	// The schema already bounds the enums; these checks keep the policy local
	// and cover impact, which is case-normalized rather than schema-enforced.
	for i := range out.Items {
		if !out.Items[i].Category.Valid() {
			return nil, &SchemaError{
				Path:   fmt.Sprintf("items.%d.category", i),
				Reason: fmt.Sprintf("unknown category %q", out.Items[i].Category),
			}
		}
		if strings.TrimSpace(out.Items[i].ID) == "" {
			out.Items[i].ID = uuid.NewString()
		}
	}
	for i := range out.Insights {
		if !out.Insights[i].Type.Valid() {
			return nil, &SchemaError{
				Path:   fmt.Sprintf("insights.%d.type", i),
				Reason: fmt.Sprintf("unknown insight type %q", out.Insights[i].Type),
			}
		}
		out.Insights[i].Impact = Impact(strings.ToLower(string(out.Insights[i].Impact)))
		if !out.Insights[i].Impact.Valid() {
			return nil, &SchemaError{
				Path:   fmt.Sprintf("insights.%d.impact", i),
				Reason: fmt.Sprintf("unknown impact %q", out.Insights[i].Impact),
			}
		}
	}

	out.Items = RecomputeTotals(out.Items)
	return &out, nil
}

// RecomputeTotals rederives every total as qty*rate, discarding whatever the
// generator supplied. Arithmetic hallucination is the one generation defect
// that is cheap to correct deterministically, so the generated value is
// never trusted.
func RecomputeTotals(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.Total = it.Qty * it.Rate
		out[i] = it
	}
	return out
}
