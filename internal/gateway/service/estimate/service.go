// Package estimatesvc is the business layer between the HTTP handlers and
// the synthesis pipeline: it resolves stored blueprints, runs the pipeline
// with progress reporting, and manages the accepted-estimate ledger.
package estimatesvc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidforge/internal/estimate"
	"bidforge/internal/estimate/pipeline"
	"bidforge/internal/gateway/entity"
	"bidforge/internal/gateway/repository/blueprint"
	"bidforge/internal/gateway/repository/ledger"
)

type Service struct {
	pipe       *pipeline.Orchestrator
	ledger     ledger.Store
	blueprints blueprint.Store
	progress   *ProgressHub
	logger     *log.Logger
}

func New(pipe *pipeline.Orchestrator, led ledger.Store, blueprints blueprint.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		pipe:       pipe,
		ledger:     led,
		blueprints: blueprints,
		progress:   NewProgressHub(),
		logger:     logger,
	}
}

// Progress exposes the stage-event hub for the websocket handler.
func (s *Service) Progress() *ProgressHub { return s.progress }

// SynthesizeInput is one estimate request from the dashboard. A blueprint
// may arrive inline or as a reference to a previously uploaded file; inline
// wins when both are present.
type SynthesizeInput struct {
	Scope         string
	Location      string
	Description   string
	Attachment    *estimate.Attachment
	BlueprintID   string
	ProgressToken string
}

func (s *Service) Synthesize(ctx context.Context, user entity.UserID, in SynthesizeInput) (*estimate.EstimateResult, error) {
	req := estimate.ProjectRequest{
		Scope:       in.Scope,
		Location:    in.Location,
		Description: in.Description,
		Attachment:  in.Attachment,
	}
	if req.Attachment == nil && strings.TrimSpace(in.BlueprintID) != "" {
		f, err := s.blueprints.Get(ctx, user.String(), in.BlueprintID)
		if err != nil {
			return nil, fmt.Errorf("load blueprint %s: %w", in.BlueprintID, err)
		}
		req.Attachment = &estimate.Attachment{MIMEType: f.MIMEType, Data: f.Data}
	}

	token := strings.TrimSpace(in.ProgressToken)
	result, err := s.pipe.SynthesizeWithProgress(ctx, req, user.String(), func(stage estimate.Stage) {
		s.progress.Publish(token, stage)
	})
	if err != nil {
		s.logger.Printf("synthesis failed for user %s: %v", user, err)
		return nil, err
	}
	return result, nil
}

// UploadBlueprint stores a plan file and returns its reference ID.
func (s *Service) UploadBlueprint(ctx context.Context, user entity.UserID, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("blueprint data is empty")
	}
	id := uuid.NewString()
	err := s.blueprints.Put(ctx, user.String(), id, blueprint.File{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AcceptInput persists a synthesized estimate into the user's ledger with
// the chosen markup/overhead.
type AcceptInput struct {
	EstimateID string
	Scope      string
	Location   string
	Result     estimate.EstimateResult
	Markup     float64
	Overhead   float64
}

func (s *Service) Accept(ctx context.Context, user entity.UserID, in AcceptInput) (ledger.Record, error) {
	summary, err := estimate.Summarize(in.Result.Items, in.Markup, in.Overhead)
	if err != nil {
		return ledger.Record{}, err
	}
	id := strings.TrimSpace(in.EstimateID)
	if id == "" {
		id = uuid.NewString()
	}
	rec := ledger.Record{
		ID:        id,
		UserID:    user.String(),
		Scope:     in.Scope,
		Location:  in.Location,
		Status:    ledger.StatusPending,
		Margin:    in.Markup,
		Result:    in.Result,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.Save(ctx, rec); err != nil {
		return ledger.Record{}, err
	}
	return rec, nil
}

func (s *Service) History(ctx context.Context, user entity.UserID) ([]ledger.Record, error) {
	return s.ledger.History(ctx, user.String())
}

func (s *Service) UpdateStatus(ctx context.Context, user entity.UserID, id, status string, margin float64) error {
	return s.ledger.UpdateStatus(ctx, user.String(), id, status, margin)
}

func (s *Service) Delete(ctx context.Context, user entity.UserID, id string) error {
	return s.ledger.Delete(ctx, user.String(), id)
}
