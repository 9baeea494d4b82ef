package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	genai "google.golang.org/genai"

	"bidforge/internal/estimate"
	"bidforge/internal/util/jsonutil"
)

// placeholderSource keeps the citation list non-empty when the model reports
// no grounding metadata. Presentation fallback only, not a correctness
// signal.
var placeholderSource = estimate.GroundingSource{Title: "AI Market Reasoning (General)", URI: "#"}

// GeminiGenerator implements Generator on the official genai client.
type GeminiGenerator struct {
	cli    *genai.Client
	model  string
	logger *log.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, logger *log.Logger) (*GeminiGenerator, error) {
	if logger == nil {
		logger = log.Default()
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{cli: cli, model: model, logger: logger}, nil
}

func (g *GeminiGenerator) Name() string { return "Gemini:" + g.model }
func (g *GeminiGenerator) Close() error { return nil }

// IdentifyMaterials runs the short first pass. Transport errors surface to
// the caller (which absorbs them); a response that cannot be parsed as a
// string list degrades to an empty list here.
func (g *GeminiGenerator) IdentifyMaterials(ctx context.Context, scope, location string) ([]string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: identifyPrompt(scope, location)}}}},
		nil,
	)
	if err != nil {
		return nil, err
	}
	text := firstText(resp)
	if text == "" {
		return nil, nil
	}
	materials, err := jsonutil.UnmarshalStringList(text)
	if err != nil {
		g.logger.Printf("material identification unparseable, proceeding ungrounded: %v", err)
		return nil, nil
	}
	return materials, nil
}

// Synthesize runs the final pass with structured output, web-search
// grounding and the optional inline plan image. Transport failure wraps
// ErrGenerationUnavailable; a non-JSON body wraps ErrMalformedOutput with no
// attempt at partial recovery.
func (g *GeminiGenerator) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResponse, error) {
	parts := []*genai.Part{{Text: buildSynthesisPrompt(req)}}
	if att := req.Project.Attachment; att != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: att.Data},
		})
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: foremanInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    estimateResponseSchema,
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		MaxOutputTokens:   8192,
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: parts}}, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", estimate.ErrGenerationUnavailable, err)
	}
	text := firstText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", estimate.ErrGenerationUnavailable)
	}
	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: %.120s", estimate.ErrMalformedOutput, text)
	}

	return &SynthesisResponse{Raw: raw, Citations: extractCitations(resp)}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// extractCitations maps the model's grounding metadata to {title, uri}
// pairs, substituting the generic placeholder when nothing was reported.
func extractCitations(resp *genai.GenerateContentResponse) []estimate.GroundingSource {
	var out []estimate.GroundingSource
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
				continue
			}
			out = append(out, estimate.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	if len(out) == 0 {
		out = []estimate.GroundingSource{placeholderSource}
	}
	return out
}
