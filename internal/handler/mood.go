package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/service"
)

// MoodHandler exposes the daily mood/focus check-in.
type MoodHandler struct {
	moods *service.MoodService
}

func NewMoodHandler(moods *service.MoodService) *MoodHandler {
	return &MoodHandler{moods: moods}
}

type moodRequest struct {
	Date       string `json:"date"`
	Mood       string `json:"mood"`
	FocusLevel int    `json:"focusLevel"`
}

// HandleSave records the mood/focus entry for a date (default today),
// replacing any earlier entry for that day.
//
// HTTP: POST /api/user/mood
func (h *MoodHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	entry, err := h.moods.Save(r.Context(), userID, req.Date, req.Mood, req.FocusLevel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "mood/focus saved", Date: entry.Date})
}

// HandleGet returns the entry for a date (default today). A day with no
// check-in answers 200 with an empty object rather than 404, so the widget
// can render its blank state without special-casing errors.
//
// HTTP: GET /api/user/mood?date=2024-03-10
func (h *MoodHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	entry, err := h.moods.Get(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleHistory returns the user's recent entries, oldest first.
//
// HTTP: GET /api/user/mood/history?days=21
func (h *MoodHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	history, err := h.moods.History(r.Context(), userID, queryInt(r, "days"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
