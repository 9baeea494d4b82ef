package handler

import (
	"encoding/json"
	"net/http"

	"bidforge/internal/gateway/entity"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the standard error envelope. The message must already be
// safe to show to callers; provider details stay in the server log.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestUser resolves the caller identity from the X-User-Id header set by
// the fronting proxy. An empty header rejects the request.
func requestUser(w http.ResponseWriter, r *http.Request) (entity.UserID, bool) {
	uid := entity.NormalizeUserID(r.Header.Get("X-User-Id"))
	if uid.IsZero() {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "X-User-Id header is required")
		return "", false
	}
	return uid, true
}
