// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election status constants
const (
	StatusActive             = "active"
	StatusCompleted          = "completed"
	StatusReselectionPending = "reselection_pending"
	StatusTiebreaker         = "tiebreaker"
)

// MaxSeats is the number of representative seats per (department, stage).
const MaxSeats = 3

// Request types

type EnsureElectionRequest struct {
	Department    string `json:"department"`
	Stage         int    `json:"stage"`
	TotalStudents int    `json:"total_students,omitempty"`
}

type FinalizeRequest struct {
	WinnerID *string `json:"winner_id"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Response types

type RequestOutcomeResponse struct {
	Election             *Election `json:"election,omitempty"`
	ReselectionTriggered bool      `json:"reselection_triggered,omitempty"`
	NextSeatTriggered    bool      `json:"next_seat_triggered,omitempty"`
	AlreadyRequested     bool      `json:"already_requested,omitempty"`
	Reason               string    `json:"reason,omitempty"`
}

type RemoveVoteResponse struct {
	Removed bool `json:"removed"`
}

type NextOpenSeatResponse struct {
	SeatNumber int  `json:"seat_number,omitempty"`
	AllFilled  bool `json:"all_filled"`
}

type SweepResponse struct {
	Ran              bool `json:"ran"`
	CohortsChecked   int  `json:"cohorts_checked,omitempty"`
	ElectionsCreated int  `json:"elections_created,omitempty"`
	ExpiredResolved  int  `json:"expired_resolved,omitempty"`
}

// Domain types

// Election is one voting round for one seat in one (department, stage) cohort.
//
// ReselectionVoters is status-dependent: while the election is active or
// completed it holds the users requesting reselection / next-seat
// progression; while the election is in tiebreaker it instead holds the tied
// candidate IDs eligible to receive further votes.
type Election struct {
	ID                   string     `json:"id"`
	Department           string     `json:"department"`
	Stage                int        `json:"stage"`
	SeatNumber           int        `json:"seat_number"`
	Status               string     `json:"status"`
	Winner               *string    `json:"winner,omitempty"`
	TotalStudents        int        `json:"total_students"`
	ReselectionThreshold int        `json:"reselection_threshold"`
	ReselectionVoters    []string   `json:"reselection_voters"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Vote is one voter's current choice in one election. Department and stage
// are denormalized from the parent election for filtering.
type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Department  string    `json:"department"`
	Stage       int       `json:"stage"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Student is the roster view of a user, enough to vote and be voted for.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Stage      int    `json:"stage"`
}

// Representative is a filled seat.
type Representative struct {
	UserID     string `json:"user_id"`
	SeatNumber int    `json:"seat_number"`
}

// CandidateTally is one candidate's vote count within a tally. Tallies are
// ordered descending by count; equal counts keep first-seen ledger order.
type CandidateTally struct {
	CandidateID string `json:"candidate_id"`
	Count       int    `json:"count"`
}

// TallyResult is a full recomputed tally for one election.
type TallyResult struct {
	Candidates []CandidateTally `json:"candidates"`
	TotalVotes int              `json:"total_votes"`
	MyVote     *Vote            `json:"my_vote,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
