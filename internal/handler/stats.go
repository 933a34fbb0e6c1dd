package handler

import (
	"net/http"

	"github.com/sakif/habit-tracker/internal/service"
)

// StatsHandler exposes the cross-habit dashboard aggregates.
type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleUserStats returns the dashboard aggregate: active habits, distinct
// active days, mean success rate, best/current streak, and the
// best-performing habit.
//
// HTTP: GET /api/user/stats
func (h *StatsHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.UserStats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleTrend returns the day-by-day aggregate success-rate series for the
// line chart, oldest first.
//
// HTTP: GET /api/user/stats/trend?days=30
func (h *StatsHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	trend, err := h.stats.Trend(r.Context(), userID, queryInt(r, "days"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
