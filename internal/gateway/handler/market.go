package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"bidforge/internal/market"
)

// MarketHandler exposes single-material price lookups.
type MarketHandler struct {
	src    market.Source
	logger *log.Logger
}

func NewMarketHandler(src market.Source, logger *log.Logger) *MarketHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &MarketHandler{src: src, logger: logger}
}

func (h *MarketHandler) HandlePriceLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requestUser(w, r); !ok {
		return
	}
	var in struct {
		Material string `json:"material"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	material := strings.TrimSpace(in.Material)
	if material == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "material is required")
		return
	}
	if h.src == nil {
		writeError(w, http.StatusServiceUnavailable, "market_unavailable", "live pricing is not configured")
		return
	}
	rec, err := h.src.LookupPrice(r.Context(), material, strings.TrimSpace(in.Location))
	if err != nil {
		h.logger.Printf("price lookup failed for %q: %v", material, err)
		if errors.Is(err, market.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "market_unavailable", "live pricing is temporarily unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "price lookup failed")
		return
	}
	// rec is nil when the provider answered with no offers for the material.
	writeJSON(w, http.StatusOK, map[string]any{"result": rec})
}
