package estimate

import (
	"errors"
	"fmt"
)

// Stage names the pipeline state that produced an error.
type Stage string

const (
	StageReceived        Stage = "received"
	StageIdentifying     Stage = "identifying"
	StageGrounding       Stage = "grounding"
	StageContextBuilding Stage = "context_building"
	StageSynthesizing    Stage = "synthesizing"
	StageValidating      Stage = "validating"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Sentinel causes for the fatal pipeline failures. Soft stages (grounding,
// history) absorb their own errors and never surface past the orchestrator.
var (
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
	ErrMalformedOutput       = errors.New("generation output is not valid JSON")
)

// InvalidRequestError reports a ProjectRequest that failed presence
// validation. It is user-correctable and reaches no external provider.
type InvalidRequestError struct {
	Field string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: field %q is required", e.Field)
}

// SchemaError reports generated output that parsed as JSON but failed
// structural validation. Path points at the offending field.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("schema violation at %s", e.Path)
	}
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

// PipelineError is the single typed failure returned by the orchestrator.
// Stage identifies where the run stopped; Err carries the underlying cause
// and unwraps to the sentinels/typed errors above.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("estimate pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
