package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/agents"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// AnalyticsController serves the daily conversation stats.
type AnalyticsController struct {
	store store.Store
}

func NewAnalyticsController(st store.Store) *AnalyticsController {
	return &AnalyticsController{store: st}
}

// Daily returns message volume, average confidence, intent distribution
// and escalation count for one date. Defaults to today (UTC).
func (c *AnalyticsController) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = agents.DateBucket(time.Now().UTC())
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	stats, err := c.store.StatsForDate(r.Context(), date)
	if err != nil {
		log.Printf("[Analytics] Error getting stats for %s: %v", date, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get analytics"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Daily analytics",
		Data:    stats,
	})
}
