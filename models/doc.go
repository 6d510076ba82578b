// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - EnsureElectionRequest: department, stage, total_students
  - FinalizeRequest: winner_id
  - CastVoteRequest: candidate_id

# Response Types

Types for JSON responses:

  - RequestOutcomeResponse: election, reselection_triggered,
    next_seat_triggered, already_requested
  - RemoveVoteResponse: removed
  - NextOpenSeatResponse: seat_number, all_filled
  - SweepResponse: ran, cohorts_checked, elections_created, expired_resolved
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Election: one voting round for one seat in one cohort
  - Vote: a voter's current choice in an election
  - Student: roster view of a user
  - Representative: a filled seat
  - CandidateTally, TallyResult: recomputed standings

# Constants

Status values:

	StatusActive             = "active"
	StatusCompleted          = "completed"
	StatusReselectionPending = "reselection_pending"
	StatusTiebreaker         = "tiebreaker"

Seat cap:

	MaxSeats = 3
*/
package models
