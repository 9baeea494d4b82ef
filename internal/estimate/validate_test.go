package estimate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validPayload(t *testing.T, mutate func(m map[string]any)) json.RawMessage {
	t.Helper()
	m := map[string]any{
		"projectSummary": "Garage conversion — Austin, TX",
		"paymentTerms":   "Net 15 progress draws.",
		"items": []any{
			map[string]any{
				"id": "a", "name": "Lumber", "qty": 10.0, "unit": "ea",
				"rate": 8.0, "total": 80.0, "category": "Material",
				"csi_division": "Div 06 00 00", "retailerName": "Depot",
				"storeLink": "https://example.com",
			},
		},
		"insights": []any{
			map[string]any{"type": "risk", "title": "t", "text": "x", "impact": "high"},
		},
		"marketConfidence":   0.9,
		"regionalMultiplier": 1.1,
	}
	if mutate != nil {
		mutate(m)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestValidateResult_RecomputesTotals(t *testing.T) {
	raw := validPayload(t, func(m map[string]any) {
		items := m["items"].([]any)
		item := items[0].(map[string]any)
		item["qty"] = 7.0
		item["rate"] = 12.5
		item["total"] = 999999.0 // generated arithmetic is discarded
	})
	out, err := ValidateResult(raw)
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if got, want := out.Items[0].Total, 7.0*12.5; got != want {
		t.Fatalf("total: got=%v want=%v", got, want)
	}
}

func TestValidateResult_InvalidJSON(t *testing.T) {
	_, err := ValidateResult(json.RawMessage("{not json"))
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("want ErrMalformedOutput, got %v", err)
	}
}

func TestValidateResult_SchemaFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(m map[string]any)
		pathSub string
	}{
		{"missing summary", func(m map[string]any) { delete(m, "projectSummary") }, "(root)"},
		{"items wrong type", func(m map[string]any) { m["items"] = "not-an-array" }, "items"},
		{"empty items", func(m map[string]any) { m["items"] = []any{} }, "items"},
		{"bad category", func(m map[string]any) {
			m["items"].([]any)[0].(map[string]any)["category"] = "Misc"
		}, "category"},
		{"bad insight type", func(m map[string]any) {
			m["insights"].([]any)[0].(map[string]any)["type"] = "rumor"
		}, "type"},
		{"confidence out of range", func(m map[string]any) { m["marketConfidence"] = 1.5 }, "marketConfidence"},
		{"zero multiplier", func(m map[string]any) { m["regionalMultiplier"] = 0.0 }, "regionalMultiplier"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateResult(validPayload(t, tc.mutate))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("want *SchemaError, got %v", err)
			}
			if !strings.Contains(schemaErr.Path, tc.pathSub) {
				t.Fatalf("path %q does not mention %q", schemaErr.Path, tc.pathSub)
			}
		})
	}
}

func TestValidateResult_ImpactCaseNormalized(t *testing.T) {
	raw := validPayload(t, func(m map[string]any) {
		m["insights"].([]any)[0].(map[string]any)["impact"] = "HIGH"
	})
	out, err := ValidateResult(raw)
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if out.Insights[0].Impact != ImpactHigh {
		t.Fatalf("impact: got=%q want=%q", out.Insights[0].Impact, ImpactHigh)
	}
}

func TestValidateResult_UnknownImpactRejected(t *testing.T) {
	raw := validPayload(t, func(m map[string]any) {
		m["insights"].([]any)[0].(map[string]any)["impact"] = "severe"
	})
	_, err := ValidateResult(raw)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want *SchemaError, got %v", err)
	}
}

func TestValidateResult_FillsMissingItemIDs(t *testing.T) {
	raw := validPayload(t, func(m map[string]any) {
		m["items"].([]any)[0].(map[string]any)["id"] = ""
	})
	out, err := ValidateResult(raw)
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if strings.TrimSpace(out.Items[0].ID) == "" {
		t.Fatalf("item id was not assigned")
	}
}

func TestProjectRequestValidate(t *testing.T) {
	req := ProjectRequest{Scope: "s", Location: "l", Description: "d"}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := ProjectRequest{Location: "l", Description: "d"}
	var invalid *InvalidRequestError
	if err := bad.Validate(); !errors.As(err, &invalid) || invalid.Field != "scope" {
		t.Fatalf("want InvalidRequestError{scope}, got %v", err)
	}

	noMIME := ProjectRequest{Scope: "s", Location: "l", Description: "d", Attachment: &Attachment{Data: []byte{1}}}
	if err := noMIME.Validate(); !errors.As(err, &invalid) || invalid.Field != "attachment.mimeType" {
		t.Fatalf("want InvalidRequestError{attachment.mimeType}, got %v", err)
	}
}
