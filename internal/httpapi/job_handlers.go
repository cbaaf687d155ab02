package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"empregozap-engine/internal/domain"
)

type JobsHandler struct {
	Deps
}

// ListByPath returns everything ever matched to a user. Path: /api/jobs/{userId}.
func (h JobsHandler) ListByPath(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if userID == "" || strings.Contains(userID, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_path", "expected /api/jobs/{userId}")
		return
	}

	listings, err := h.Store.ListingsByUser(r.Context(), userID)
	if err != nil {
		h.Log.Errorw("list jobs failed", "user_id", userID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, "list_failed", "could not load jobs")
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	WriteJSON(w, http.StatusOK, listings)
}

type markSentRequest struct {
	UserID flexID  `json:"user_id"`
	JobIDs []int64 `json:"jobIds"`
}

// MarkSent stamps listings as delivered out-of-band, for operators replaying
// or squelching a backlog.
func (h JobsHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	var req markSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	if req.UserID == "" || len(req.JobIDs) == 0 {
		WriteError(w, r, http.StatusBadRequest, "validation", "user_id and jobIds are required")
		return
	}

	if err := h.Store.MarkDelivered(r.Context(), string(req.UserID), req.JobIDs); err != nil {
		h.Log.Errorw("mark sent failed", "user_id", req.UserID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, "mark_failed", "could not mark jobs as sent")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type ScrapeHandler struct {
	Deps
}

// Run queues a full scrape cycle. The request returns immediately; progress
// is visible in logs and metrics.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	err := h.Pool.Submit("manual-scrape", func(ctx context.Context) error {
		return h.RunDue(ctx)
	})
	if err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "queue_full", "a scrape is already queued")
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"message": "Scraping queued"})
}
