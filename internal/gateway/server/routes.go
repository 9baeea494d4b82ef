package server

import (
	"net/http"

	"bidforge/internal/gateway/handler"
	"bidforge/internal/gateway/middleware"
)

func NewMux(
	estimateHandler *handler.EstimateHandler,
	marketHandler *handler.MarketHandler,
	crmHandler *handler.CRMHandler,
	progressHandler *handler.ProgressHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Estimate pipeline and ledger
	mux.HandleFunc("/api/estimates/synthesize", estimateHandler.HandleSynthesize)
	mux.HandleFunc("/api/estimates/accept", estimateHandler.HandleAccept)
	mux.HandleFunc("/api/estimates/history", estimateHandler.HandleHistory)
	mux.HandleFunc("/api/estimates/status", estimateHandler.HandleStatus)
	mux.HandleFunc("/api/estimates", estimateHandler.HandleDelete)
	mux.HandleFunc("/api/estimates/progress", progressHandler.HandleProgressWS)
	mux.HandleFunc("/api/finance/summary", estimateHandler.HandleFinanceSummary)
	mux.HandleFunc("/api/blueprints", estimateHandler.HandleUploadBlueprint)

	// Market pricing
	mux.HandleFunc("/api/market/price", marketHandler.HandlePriceLookup)

	// CRM
	mux.HandleFunc("/api/leads", crmHandler.HandleLeads)
	mux.HandleFunc("/api/waitlist", crmHandler.HandleWaitlist)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
