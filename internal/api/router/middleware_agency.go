package router

import (
	"net/http"
	"strings"

	"github.com/wolfman30/propdesk-ai-platform/internal/tenancy"
)

const (
	agencyHeader = "X-Agency-Id"
	// Browsers cannot set headers on websocket upgrades.
	agencyQuery = "agency"
)

// requireAgencyID resolves the agency embedding the widget and stores it in the request context.
func requireAgencyID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agencyID := strings.TrimSpace(r.Header.Get(agencyHeader))
		if agencyID == "" {
			agencyID = strings.TrimSpace(r.URL.Query().Get(agencyQuery))
		}
		if agencyID == "" {
			http.Error(w, "missing X-Agency-Id", http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithAgencyID(r.Context(), agencyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
