package handlers

import (
	"context"
	"net/http"
	"time"

	"lifeQuestAPI/middleware"
	"lifeQuestAPI/services"
)

type StatsHandler struct {
	weeklyService *services.WeeklyService
}

func NewStatsHandler(weeklyService *services.WeeklyService) *StatsHandler {
	return &StatsHandler{
		weeklyService: weeklyService,
	}
}

func (h *StatsHandler) GetWeeklyBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	balance, err := h.weeklyService.GetWeeklyBalance(ctx, clerkID, r.URL.Query().Get("weekStart"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, balance)
}

func (h *StatsHandler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	daily, err := h.weeklyService.GetDailyStats(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, daily)
}
