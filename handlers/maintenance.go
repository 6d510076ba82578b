// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/class-reps/coordinator"
	"github.com/danielhkuo/class-reps/middleware"
	"github.com/danielhkuo/class-reps/models"
)

type MaintenanceHandler struct {
	coord *coordinator.Coordinator
}

func NewMaintenanceHandler(coord *coordinator.Coordinator) *MaintenanceHandler {
	return &MaintenanceHandler{coord: coord}
}

// Sweep handles POST /maintenance/sweep
// Runs the rate-limited roster sweep. Deployments without a scheduler can
// point a cron job here; the cooldown makes over-calling harmless.
func (h *MaintenanceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coord.EnsureActiveElectionsForAllCohorts()
	if err != nil {
		slog.Error("roster sweep failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Sweep failed")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SweepResponse{
		Ran:              stats.Ran,
		CohortsChecked:   stats.CohortsChecked,
		ElectionsCreated: stats.ElectionsCreated,
		ExpiredResolved:  stats.ExpiredResolved,
	})
}
