package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"bidforge/internal/estimate"
	"bidforge/internal/gateway/repository/ledger"
	estimatesvc "bidforge/internal/gateway/service/estimate"
)

// EstimateHandler serves the estimate synthesis and ledger endpoints.
type EstimateHandler struct {
	svc    *estimatesvc.Service
	logger *log.Logger
}

func NewEstimateHandler(svc *estimatesvc.Service, logger *log.Logger) *EstimateHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &EstimateHandler{svc: svc, logger: logger}
}

type attachmentPayload struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (p *attachmentPayload) toAttachment() *estimate.Attachment {
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	return &estimate.Attachment{MIMEType: p.MIMEType, Data: p.Data}
}

// HandleSynthesize runs the full pipeline for one project request.
func (h *EstimateHandler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Scope         string             `json:"scope"`
		Location      string             `json:"location"`
		Description   string             `json:"description"`
		Attachment    *attachmentPayload `json:"attachment"`
		BlueprintID   string             `json:"blueprintId"`
		ProgressToken string             `json:"progressToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	result, err := h.svc.Synthesize(r.Context(), user, estimatesvc.SynthesizeInput{
		Scope:         in.Scope,
		Location:      in.Location,
		Description:   in.Description,
		Attachment:    in.Attachment.toAttachment(),
		BlueprintID:   strings.TrimSpace(in.BlueprintID),
		ProgressToken: strings.TrimSpace(in.ProgressToken),
	})
	if err != nil {
		h.writeSynthesisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeSynthesisError maps pipeline failures to the caller-facing envelope.
// Generation failures keep a generic message; the detail goes to the log only.
func (h *EstimateHandler) writeSynthesisError(w http.ResponseWriter, err error) {
	var invalid *estimate.InvalidRequestError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, "invalid_argument", invalid.Error())
		return
	}
	h.logger.Printf("estimate synthesis failed: %v", err)
	if errors.Is(err, estimate.ErrGenerationUnavailable) {
		writeError(w, http.StatusBadGateway, "generation_unavailable", "estimate generation is temporarily unavailable, please retry")
		return
	}
	var schemaErr *estimate.SchemaError
	if errors.Is(err, estimate.ErrMalformedOutput) || errors.As(err, &schemaErr) {
		writeError(w, http.StatusBadGateway, "malformed_output", "the generated estimate could not be validated, please retry")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", "estimate synthesis failed")
}

// HandleAccept books a synthesized estimate into the ledger.
func (h *EstimateHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var in struct {
		EstimateID string                   `json:"estimateId"`
		Scope      string                   `json:"scope"`
		Location   string                   `json:"location"`
		Result     *estimate.EstimateResult `json:"result"`
		Markup     float64                  `json:"markup"`
		Overhead   float64                  `json:"overhead"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if in.Result == nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "result is required")
		return
	}
	rec, err := h.svc.Accept(r.Context(), user, estimatesvc.AcceptInput{
		EstimateID: strings.TrimSpace(in.EstimateID),
		Scope:      in.Scope,
		Location:   in.Location,
		Result:     *in.Result,
		Markup:     in.Markup,
		Overhead:   in.Overhead,
	})
	if err != nil {
		if errors.Is(err, estimate.ErrMarginBlocked) {
			writeError(w, http.StatusUnprocessableEntity, "margin_blocked", "markup and overhead leave no room for cost")
			return
		}
		h.logger.Printf("estimate accept failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not save estimate")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleHistory lists the caller's booked estimates, newest first.
func (h *EstimateHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	records, err := h.svc.History(r.Context(), user)
	if err != nil {
		h.logger.Printf("estimate history failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimates": records})
}

// HandleStatus updates the outcome of a booked estimate.
func (h *EstimateHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var in struct {
		ID     string  `json:"id"`
		Status string  `json:"status"`
		Margin float64 `json:"margin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	id := strings.TrimSpace(in.ID)
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if id == "" || status == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "id and status are required")
		return
	}
	switch status {
	case ledger.StatusPending, ledger.StatusWon, ledger.StatusLost:
	default:
		writeError(w, http.StatusBadRequest, "invalid_argument", "status must be pending, won or lost")
		return
	}
	if err := h.svc.UpdateStatus(r.Context(), user, id, status, in.Margin); err != nil {
		h.writeLedgerError(w, err, "could not update estimate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleDelete removes a booked estimate by id.
func (h *EstimateHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "id is required")
		return
	}
	if err := h.svc.Delete(r.Context(), user, id); err != nil {
		h.writeLedgerError(w, err, "could not delete estimate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *EstimateHandler) writeLedgerError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "estimate not found")
		return
	}
	h.logger.Printf("estimate ledger op failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal", fallback)
}

// HandleUploadBlueprint stores a plan image for later synthesis requests.
func (h *EstimateHandler) HandleUploadBlueprint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var in attachmentPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if len(in.Data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "data is required")
		return
	}
	id, err := h.svc.UploadBlueprint(r.Context(), user, in.MIMEType, in.Data)
	if err != nil {
		h.logger.Printf("blueprint upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not store blueprint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blueprintId": id})
}

// HandleFinanceSummary applies markup and overhead on top of raw line items.
func (h *EstimateHandler) HandleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Items    []estimate.LineItem `json:"items"`
		Markup   float64             `json:"markup"`
		Overhead float64             `json:"overhead"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	summary, err := estimate.Summarize(in.Items, in.Markup, in.Overhead)
	if err != nil {
		if errors.Is(err, estimate.ErrMarginBlocked) {
			writeError(w, http.StatusUnprocessableEntity, "margin_blocked", "markup and overhead leave no room for cost")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
