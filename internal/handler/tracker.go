package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/habit-tracker/internal/service"
)

// TrackerHandler exposes the complete/uncomplete toggles and the per-habit
// history views.
type TrackerHandler struct {
	tracker *service.TrackerService
}

func NewTrackerHandler(tracker *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{tracker: tracker}
}

// dateRequest is the optional body of the toggle endpoints. An empty or
// missing body means "today".
type dateRequest struct {
	Date string `json:"date"`
}

// HandleComplete marks a habit done for a date. Completing an
// already-completed date succeeds without changing anything.
//
// HTTP: POST /api/habits/{id}/complete
func (h *TrackerHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	req, err := decodeDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	date, err := h.tracker.Complete(r.Context(), userID, chi.URLParam(r, "id"), req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "habit marked as completed", Date: date})
}

// HandleUncomplete removes a habit's completion for a date. Removing a date
// that was never completed succeeds without changing anything.
//
// HTTP: POST /api/habits/{id}/uncomplete
func (h *TrackerHandler) HandleUncomplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	req, err := decodeDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	date, err := h.tracker.Uncomplete(r.Context(), userID, chi.URLParam(r, "id"), req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "habit unmarked as completed", Date: date})
}

// HandleHistory returns a habit's day-by-day completion status, oldest
// first.
//
// HTTP: GET /api/habits/{id}/history?days=21
func (h *TrackerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	history, err := h.tracker.History(r.Context(), userID, chi.URLParam(r, "id"), queryInt(r, "days"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleCompletionsForDate reports, for every habit, whether it was
// completed on the given date (default today).
//
// HTTP: GET /api/user/habits/completions?date=2024-03-10
func (h *TrackerHandler) HandleCompletionsForDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	completions, err := h.tracker.CompletionsForDate(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completions)
}

// decodeDate reads the optional {"date": "..."} body. A missing body is
// fine; malformed JSON is not.
func decodeDate(r *http.Request) (dateRequest, error) {
	var req dateRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err == io.EOF {
		return dateRequest{}, nil
	}
	return req, err
}

// queryInt parses an integer query parameter, returning 0 (the "use the
// default" signal) when absent or malformed.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
