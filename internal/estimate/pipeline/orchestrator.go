// Package pipeline sequences one estimate-synthesis request through its
// stages: input validation, material identification, market grounding,
// historical context, final synthesis and schema validation.
//
// The staging policy is the central design decision: the optimization stages
// (identification, grounding, history) degrade to "absent" on failure because
// they only improve estimate quality, while the two stages that define
// correctness (synthesis, validation) fail the whole request. A structurally
// invalid estimate never reaches a caller silently.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"bidforge/internal/estimate"
	"bidforge/internal/history"
	"bidforge/internal/llm"
	"bidforge/internal/market"
)

// ProgressFunc observes stage transitions. Used by the gateway to stream
// progress to the processing screen; nil is fine.
type ProgressFunc func(stage estimate.Stage)

// Orchestrator drives estimate synthesis. Each call owns only its own
// in-flight data; one orchestrator serves concurrent requests.
type Orchestrator struct {
	gen     llm.Generator
	prices  market.Source
	history *history.ContextBuilder
	logger  *log.Logger
}

// New wires the pipeline. prices and bids may be nil, in which case the
// corresponding stages simply contribute nothing.
func New(gen llm.Generator, prices market.Source, bids history.BidSource, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		gen:     gen,
		prices:  prices,
		history: history.NewContextBuilder(bids, logger),
		logger:  logger,
	}
}

// Synthesize runs the full pipeline for one request. On success the returned
// result is validated, has recomputed totals and carries the aggregated
// grounding sources. On failure the error is a *estimate.PipelineError naming
// the stage that stopped the run.
func (o *Orchestrator) Synthesize(ctx context.Context, req estimate.ProjectRequest, userID string) (*estimate.EstimateResult, error) {
	return o.run(ctx, req, userID, nil)
}

// SynthesizeWithProgress is Synthesize with per-stage notifications.
func (o *Orchestrator) SynthesizeWithProgress(ctx context.Context, req estimate.ProjectRequest, userID string, progress ProgressFunc) (*estimate.EstimateResult, error) {
	return o.run(ctx, req, userID, progress)
}

func (o *Orchestrator) run(ctx context.Context, req estimate.ProjectRequest, userID string, progress ProgressFunc) (*estimate.EstimateResult, error) {
	step := func(s estimate.Stage) {
		if progress != nil {
			progress(s)
		}
	}

	step(estimate.StageReceived)
	if err := req.Validate(); err != nil {
		step(estimate.StageFailed)
		return nil, &estimate.PipelineError{Stage: estimate.StageReceived, Err: err}
	}

	step(estimate.StageIdentifying)
	materials, err := o.gen.IdentifyMaterials(ctx, req.Scope, req.Location)
	if err != nil {
		// Grounding is best effort; an unreachable identification pass only
		// costs estimate quality.
		o.logger.Printf("material identification failed, proceeding ungrounded: %v", err)
		materials = nil
	}

	step(estimate.StageGrounding)
	grounding := market.GroundMaterials(ctx, o.prices, materials, req.Location)

	step(estimate.StageContextBuilding)
	bids := o.history.Build(ctx, userID)

	step(estimate.StageSynthesizing)
	resp, err := o.gen.Synthesize(ctx, llm.SynthesisRequest{
		Project:   req,
		Grounding: grounding,
		Bids:      bids,
	})
	if err != nil {
		step(estimate.StageFailed)
		return nil, &estimate.PipelineError{Stage: estimate.StageSynthesizing, Err: err}
	}

	step(estimate.StageValidating)
	result, err := estimate.ValidateResult(resp.Raw)
	if err != nil {
		step(estimate.StageFailed)
		return nil, &estimate.PipelineError{Stage: estimate.StageValidating, Err: err}
	}

	result.GroundingSources = mergeSources(grounding, resp.Citations)
	step(estimate.StageDone)
	return result, nil
}

// mergeSources turns live price records into citations, appends the model's
// own, and drops duplicate URIs while preserving order.
func mergeSources(grounding []market.PriceRecord, citations []estimate.GroundingSource) []estimate.GroundingSource {
	out := make([]estimate.GroundingSource, 0, len(grounding)+len(citations))
	seen := make(map[string]struct{}, len(grounding)+len(citations))
	add := func(s estimate.GroundingSource) {
		if _, dup := seen[s.URI]; dup && s.URI != "" {
			return
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	for _, rec := range grounding {
		add(estimate.GroundingSource{
			Title: fmt.Sprintf("%s: %s", rec.Retailer, rec.Name),
			URI:   rec.Link,
		})
	}
	for _, c := range citations {
		add(c)
	}
	return out
}
