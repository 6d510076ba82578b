// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/coordinator"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/election"
	"github.com/danielhkuo/class-reps/middleware"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/notify"
	"github.com/danielhkuo/class-reps/roster"
)

type ElectionHandler struct {
	elections *election.Repository
	coord     *coordinator.Coordinator
	roster    roster.Roster
	notifier  notify.Notifier
	cfg       cliparse.Config
}

func NewElectionHandler(elections *election.Repository, coord *coordinator.Coordinator, ros roster.Roster, notifier notify.Notifier, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{elections: elections, coord: coord, roster: ros, notifier: notifier, cfg: cfg}
}

// EnsureElection handles POST /elections
// Returns the cohort's active seat-1 election, creating it when absent.
func (h *ElectionHandler) EnsureElection(w http.ResponseWriter, r *http.Request) {
	var req models.EnsureElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Department == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "department is required")
		return
	}
	if req.Stage < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stage must be at least 1")
		return
	}

	e, err := h.coord.EnsureActiveElection(req.Department, req.Stage, req.TotalStudents)
	if err != nil {
		slog.Error("failed to ensure election", "error", err, "department", req.Department, "stage", req.Stage)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to ensure election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// GetCurrent handles GET /elections/current
func (h *ElectionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	department, stage, seat, ok := cohortParams(w, r)
	if !ok {
		return
	}

	e, err := h.elections.GetActive(department, stage, seat)
	if err != nil {
		slog.Error("failed to query active election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if e == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// GetLatest handles GET /elections/latest
func (h *ElectionHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	department, stage, seat, ok := cohortParams(w, r)
	if !ok {
		return
	}

	e, err := h.elections.GetLatest(department, stage, seat)
	if err != nil {
		slog.Error("failed to query latest election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if e == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No election found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// GetByID handles GET /elections/{id}
func (h *ElectionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	e, err := h.elections.GetByID(electionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to load election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// GetRepresentatives handles GET /representatives
func (h *ElectionHandler) GetRepresentatives(w http.ResponseWriter, r *http.Request) {
	department, stage, _, ok := cohortParams(w, r)
	if !ok {
		return
	}

	reps, err := h.elections.GetRepresentatives(department, stage)
	if err != nil {
		slog.Error("failed to query representatives", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if reps == nil {
		reps = []models.Representative{}
	}
	middleware.JSONResponse(w, http.StatusOK, reps)
}

// GetNextOpenSeat handles GET /representatives/next-seat
func (h *ElectionHandler) GetNextOpenSeat(w http.ResponseWriter, r *http.Request) {
	department, stage, _, ok := cohortParams(w, r)
	if !ok {
		return
	}

	seat, open, err := h.elections.GetNextOpenSeat(department, stage)
	if err != nil {
		slog.Error("failed to compute next open seat", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.NextOpenSeatResponse{
		SeatNumber: seat,
		AllFilled:  !open,
	})
}

// Finalize handles POST /elections/{id}/finalize
func (h *ElectionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.FinalizeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.elections.Finalize(electionID, req.WinnerID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to finalize election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finalize election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// Resolve handles POST /elections/{id}/resolve
// Applies the timer-expiry transition if the round has run out.
func (h *ElectionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	e, err := h.coord.ResolveIfExpired(electionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to resolve election expiry", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// RequestReselection handles POST /elections/{id}/reselection
func (h *ElectionHandler) RequestReselection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	student, err := currentStudent(r, h.cfg, h.roster)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token header required")
		return
	}

	size, err := h.cohortSize(electionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to size cohort for reselection", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	result, err := h.elections.RequestReselection(electionID, student.ID, size)
	if err != nil {
		slog.Error("failed to request reselection", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to request reselection")
		return
	}
	if result.Triggered {
		h.notifyReselection(result.Election, student)
	}
	middleware.JSONResponse(w, http.StatusOK, models.RequestOutcomeResponse{
		Election:             result.Election,
		ReselectionTriggered: result.Triggered,
		AlreadyRequested:     result.AlreadyRequested,
	})
}

// RequestNextSeat handles POST /elections/{id}/next-seat
func (h *ElectionHandler) RequestNextSeat(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	student, err := currentStudent(r, h.cfg, h.roster)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token header required")
		return
	}

	size, err := h.cohortSize(electionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to size cohort for next seat", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	result, err := h.elections.RequestNextSeatElection(electionID, student.ID, size)
	if err != nil {
		slog.Error("failed to request next seat", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to request next seat")
		return
	}
	if result.Reason == election.ReasonMaxReps {
		middleware.ErrorResponse(w, http.StatusConflict, "Maximum representatives reached")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RequestOutcomeResponse{
		Election:          result.Election,
		NextSeatTriggered: result.Triggered,
		AlreadyRequested:  result.AlreadyRequested,
	})
}

// notifyReselection tells the cohort a reselection round opened. Best-effort:
// failures are logged, never surfaced to the requester.
func (h *ElectionHandler) notifyReselection(e *models.Election, requester models.Student) {
	students, err := h.roster.ClassStudents(e.Department, e.Stage)
	if err != nil {
		slog.Warn("failed to load cohort for reselection notifications", "election_id", e.ID, "error", err)
		return
	}
	for _, s := range students {
		if s.ID == requester.ID {
			continue
		}
		err := h.notifier.Notify(s.ID, requester.ID, requester.Name, notify.TypeReselection, map[string]any{
			"election_id": e.ID,
			"department":  e.Department,
			"stage":       e.Stage,
			"seat_number": e.SeatNumber,
		})
		if err != nil {
			slog.Warn("failed to send reselection notification", "election_id", e.ID, "user_id", s.ID, "error", err)
		}
	}
}

// cohortSize counts the election's cohort for threshold recomputation.
func (h *ElectionHandler) cohortSize(electionID string) (int, error) {
	e, err := h.elections.GetByID(electionID)
	if err != nil {
		return 0, err
	}
	students, err := h.roster.ClassStudents(e.Department, e.Stage)
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		// empty roster snapshot: keep the election's own sizing
		return e.TotalStudents, nil
	}
	return len(students), nil
}

// cohortParams reads the department/stage (and optional seat) query
// parameters shared by the read endpoints.
func cohortParams(w http.ResponseWriter, r *http.Request) (department string, stage, seat int, ok bool) {
	department = r.URL.Query().Get("department")
	if department == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "department is required")
		return "", 0, 0, false
	}

	stageStr := r.URL.Query().Get("stage")
	stage, err := strconv.Atoi(stageStr)
	if err != nil || stage < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stage must be a positive integer")
		return "", 0, 0, false
	}

	if seatStr := r.URL.Query().Get("seat"); seatStr != "" {
		seat, err = strconv.Atoi(seatStr)
		if err != nil || seat < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "seat must be a positive integer")
			return "", 0, 0, false
		}
	}
	return department, stage, seat, true
}
