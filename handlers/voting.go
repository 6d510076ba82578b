// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/middleware"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/roster"
	"github.com/danielhkuo/class-reps/vote"
)

type VoteHandler struct {
	ledger *vote.Ledger
	roster roster.Roster
	cfg    cliparse.Config
}

func NewVoteHandler(ledger *vote.Ledger, ros roster.Roster, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{ledger: ledger, roster: ros, cfg: cfg}
}

// Cast handles POST /elections/{id}/votes
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	student, err := currentStudent(r, h.cfg, h.roster)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token header required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	v, err := h.ledger.Cast(electionID, student, req.CandidateID)
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrSelfVote):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Cannot vote for yourself")
		case errors.Is(err, vote.ErrElectionClosed):
			middleware.ErrorResponse(w, http.StatusConflict, "Election is closed")
		case errors.Is(err, vote.ErrVotingExpired):
			middleware.ErrorResponse(w, http.StatusConflict, "Voting time has expired")
		case errors.Is(err, vote.ErrIneligibleCandidate):
			middleware.ErrorResponse(w, http.StatusConflict, "Candidate is not in the tiebreaker round")
		case errors.Is(err, docstore.ErrNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		default:
			slog.Error("failed to cast vote", "error", err, "election_id", electionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		}
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, v)
}

// Remove handles DELETE /elections/{id}/votes
func (h *VoteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	student, err := currentStudent(r, h.cfg, h.roster)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token header required")
		return
	}

	removed, err := h.ledger.Remove(electionID, student.ID)
	if err != nil {
		slog.Error("failed to remove vote", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RemoveVoteResponse{Removed: removed})
}

// Tally handles GET /elections/{id}/tally
// Anonymous callers get the standings without a my_vote entry.
func (h *VoteHandler) Tally(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	voterID := ""
	if student, err := currentStudent(r, h.cfg, h.roster); err == nil {
		voterID = student.ID
	}

	result, err := h.ledger.Tally(electionID, voterID)
	if err != nil {
		slog.Error("failed to tally votes", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to tally votes")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

// MyVote handles GET /elections/{id}/my-vote
func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	student, err := currentStudent(r, h.cfg, h.roster)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token header required")
		return
	}

	v, err := h.ledger.MyVote(electionID, student.ID)
	if err != nil {
		slog.Error("failed to load vote", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if v == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vote cast in this election")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, v)
}
