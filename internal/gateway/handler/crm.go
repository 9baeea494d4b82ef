package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidforge/internal/gateway/repository/crm"
)

// CRMHandler serves the lead pipeline and waitlist endpoints.
type CRMHandler struct {
	store  crm.Store
	logger *log.Logger
}

func NewCRMHandler(store crm.Store, logger *log.Logger) *CRMHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CRMHandler{store: store, logger: logger}
}

// HandleLeads dispatches the lead collection endpoint by method.
func (h *CRMHandler) HandleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listLeads(w, r)
	case http.MethodPost:
		h.saveLead(w, r)
	case http.MethodDelete:
		h.deleteLead(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CRMHandler) listLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	leads, err := h.store.Leads(r.Context(), user.String())
	if err != nil {
		h.logger.Printf("lead list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not load leads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *CRMHandler) saveLead(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var lead crm.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if strings.TrimSpace(lead.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "name is required")
		return
	}
	switch lead.Status {
	case "":
		lead.Status = crm.LeadWarm
	case crm.LeadHot, crm.LeadWarm, crm.LeadCold:
	default:
		writeError(w, http.StatusBadRequest, "invalid_argument", "status must be Hot, Warm or Cold")
		return
	}
	lead.UserID = user.String()
	if strings.TrimSpace(lead.ID) == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if err := h.store.SaveLead(r.Context(), lead); err != nil {
		h.logger.Printf("lead save failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not save lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *CRMHandler) deleteLead(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "id is required")
		return
	}
	if err := h.store.DeleteLead(r.Context(), user.String(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "lead not found")
			return
		}
		h.logger.Printf("lead delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not delete lead")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleWaitlist records marketing-site signups. No auth header required;
// the form is public.
func (h *CRMHandler) HandleWaitlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var in struct {
			Email string `json:"email"`
			Trade string `json:"trade"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
			return
		}
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if email == "" || !strings.Contains(email, "@") {
			writeError(w, http.StatusBadRequest, "invalid_argument", "a valid email is required")
			return
		}
		entry := crm.WaitlistEntry{Email: email, Trade: strings.TrimSpace(in.Trade), CreatedAt: time.Now().UTC()}
		if err := h.store.AddWaitlist(r.Context(), entry); err != nil {
			h.logger.Printf("waitlist add failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal", "could not join waitlist")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case http.MethodGet:
		if _, ok := requestUser(w, r); !ok {
			return
		}
		entries, err := h.store.Waitlist(r.Context())
		if err != nil {
			h.logger.Printf("waitlist list failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal", "could not load waitlist")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"waitlist": entries})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
