package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/propdesk-ai-platform/internal/tenancy"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// CreateWebLead handles POST /leads/web requests (contact forms on the agency site).
func (h *Handler) CreateWebLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	agencyID, ok := tenancy.AgencyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing agency context", http.StatusBadRequest)
		return
	}
	req.AgencyID = agencyID
	if req.Source == "" {
		req.Source = "web_form"
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", "error", err, "agency_id", agencyID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("lead created", "id", lead.ID, "agency_id", agencyID, "source", lead.Source)
	writeJSON(w, http.StatusCreated, lead)
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /admin/agencies/{agencyID}/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	agencyID := chi.URLParam(r, "agencyID")
	if agencyID == "" {
		http.Error(w, "missing agency_id", http.StatusBadRequest)
		return
	}

	filter := ListLeadsFilter{
		Limit:  50,
		Offset: 0,
		Status: r.URL.Query().Get("status"),
		Source: r.URL.Query().Get("source"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	leads, err := h.repo.ListByAgency(r.Context(), agencyID, filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "agency_id", agencyID)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// GetLead handles GET /admin/agencies/{agencyID}/leads/{leadID}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	agencyID := chi.URLParam(r, "agencyID")
	leadID := chi.URLParam(r, "leadID")
	if agencyID == "" || leadID == "" {
		http.Error(w, "missing agency_id or lead_id", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.GetByID(r.Context(), agencyID, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get lead", "error", err, "agency_id", agencyID, "lead_id", leadID)
		http.Error(w, "failed to get lead", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
