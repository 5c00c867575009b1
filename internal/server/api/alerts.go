package api

import (
	"net/http"

	"github.com/ayusman/handsignal/internal/store"
)

// AlertHandler serves the alert history at /api/alerts.
type AlertHandler struct {
	store *store.Store
}

// NewAlertHandler creates a new AlertHandler with the given store.
func NewAlertHandler(s *store.Store) *AlertHandler {
	return &AlertHandler{store: s}
}

type alertResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	TriggeredAt string `json:"triggered_at"`
	Delivered   bool   `json:"delivered"`
	Error       string `json:"error,omitempty"`
}

type listAlertsResponse struct {
	Alerts []alertResponse `json:"alerts"`
}

func toAlertResponse(a *store.AlertRecord) alertResponse {
	return alertResponse{
		ID:          a.ID,
		SessionID:   a.SessionID,
		TriggeredAt: a.TriggeredAt.UTC().Format(timeFormat),
		Delivered:   a.Delivered,
		Error:       a.Error,
	}
}

func toAlertsResponse(records []*store.AlertRecord) listAlertsResponse {
	response := listAlertsResponse{
		Alerts: make([]alertResponse, 0, len(records)),
	}
	for _, a := range records {
		response.Alerts = append(response.Alerts, toAlertResponse(a))
	}
	return response
}

// ServeHTTP handles GET /api/alerts?limit=N, newest first.
func (h *AlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.store.Alerts().List(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, toAlertsResponse(records))
}
