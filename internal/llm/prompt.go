package llm

import (
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// foremanInstruction is the fixed system instruction for the final synthesis
// pass. The edge-case behaviors it describes (contingency on ambiguous plans,
// recency preference on conflicting bids) are instructions to the model, not
// properties the surrounding code can enforce.
const foremanInstruction = `You are a senior pre-construction estimator producing grounded, data-backed proposals.

PLAN TAKEOFF:
- Detect architectural scale (e.g. 1/4" = 1') automatically from any attached plan image or PDF.
- Derive square footage, linear footage and counts from the geometry of the plan.
- If the attachment is low-resolution, hand-drawn or has ambiguous scaling, do NOT refuse:
  add a high-impact 'risk' insight explaining the ambiguity and price conservatively with a 20% contingency.

HISTORICAL WEIGHTING:
- Use PROVIDED_HISTORICAL_BIDS to align margins, labor rates and vendor choices with the
  user's past winning work.
- If historical bids contradict each other (e.g. divergent margins for similar work),
  prioritize the MOST RECENT bid and add a 'market' insight flagging the discrepancy.

DATA RULES:
1. Every line item category MUST be one of: "Material", "Labor", "Permit", "Sub", "Equipment".
2. Every insight type MUST be one of: "risk", "market", "compliance".
3. Insight impact MUST be lowercase: "low", "medium" or "high".
4. Express CSI divisions by full MasterFormat name (e.g. "Div 03 00 00 Concrete"), never a bare code.
5. Where LIVE_MARKET_GROUNDING_DATA is provided, use those prices and retailers for the matching materials.
6. Validate the arithmetic: qty * rate must equal total on every line item.
7. Produce at least three insights covering risk, market and compliance angles where the project warrants them.`

func identifyPrompt(scope, location string) string {
	return fmt.Sprintf(
		"List the 5 most critical construction materials for this specific project: %s in %s. Output a JSON array of strings only.",
		scope, location,
	)
}

// buildSynthesisPrompt assembles the user-side text of the final pass:
// project data plus the optional grounding and historical-bid context blocks.
func buildSynthesisPrompt(req SynthesisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROJECT_DATA:\nScope: %s\nLocale: %s\nDetails: %s\n",
		req.Project.Scope, req.Project.Location, req.Project.Description)

	if len(req.Grounding) > 0 {
		b.WriteString("\nLIVE_MARKET_GROUNDING_DATA:\n")
		for _, rec := range req.Grounding {
			fmt.Fprintf(&b, "- %s: $%.2f at %s (%s)\n", rec.Name, rec.Price, rec.Retailer, rec.Link)
		}
	}
	if len(req.Bids) > 0 {
		b.WriteString("\nPROVIDED_HISTORICAL_BIDS (FOR WEIGHTING):\n")
		for _, bid := range req.Bids {
			fmt.Fprintf(&b, "- Project: %s, Outcome: %s, Margin: %.0f%%\n", bid.Name, bid.Status, bid.Margin)
		}
	}

	b.WriteString("\nACTION: Perform the takeoff and synthesize a proposal matching the response schema.")
	return b.String()
}

// estimateResponseSchema mirrors the structural contract the validator
// re-checks downstream. Declaring it on the request makes the model emit the
// shape directly instead of being coaxed through free text.
var estimateResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"projectSummary": {Type: genai.TypeString},
		"paymentTerms":   {Type: genai.TypeString},
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":           {Type: genai.TypeString},
					"name":         {Type: genai.TypeString},
					"qty":          {Type: genai.TypeNumber},
					"unit":         {Type: genai.TypeString},
					"rate":         {Type: genai.TypeNumber},
					"total":        {Type: genai.TypeNumber},
					"category":     {Type: genai.TypeString, Enum: []string{"Material", "Labor", "Permit", "Sub", "Equipment"}},
					"csi_division": {Type: genai.TypeString},
					"retailerName": {Type: genai.TypeString},
					"storeLink":    {Type: genai.TypeString},
					"logic":        {Type: genai.TypeString},
				},
				Required: []string{"name", "qty", "unit", "rate", "total", "category", "csi_division", "retailerName", "storeLink"},
			},
		},
		"insights": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":   {Type: genai.TypeString, Enum: []string{"risk", "market", "compliance"}},
					"title":  {Type: genai.TypeString},
					"text":   {Type: genai.TypeString},
					"impact": {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
				},
				Required: []string{"type", "title", "text", "impact"},
			},
		},
		"marketConfidence":   {Type: genai.TypeNumber},
		"regionalMultiplier": {Type: genai.TypeNumber},
		"suggestedAgenda":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"projectSummary", "paymentTerms", "items", "insights", "marketConfidence", "regionalMultiplier"},
}
