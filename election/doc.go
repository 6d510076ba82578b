// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the election lifecycle state machine.

# Lifecycle

Each election belongs to one (department, stage) cohort and one seat, and
moves through these statuses:

	active ──────────────┬─> completed
	                     ├─> tiebreaker ──> completed
	                     └─> reselection_pending (replaced by a fresh active round)

Active rounds run for 24 hours and tiebreakers for 1 hour, measured from
StartedAt. The clock is re-anchored when the first vote lands (see
MarkFirstVote) and again when a round enters the tiebreaker.

# Timer Expiry

ResolveTimerExpiry applies the expiry transition given the current tally:

  - clear leader: finalize the leader as winner
  - top-two tie with votes: enter a 1-hour tiebreaker between the tied pair
  - zero votes (or an all-zero tally): complete with no winner
  - tiebreaker expiry: finalize the tiebreaker leader, falling back to the
    first tied candidate if nobody voted again

The method is a no-op inside the window and for settled elections, so it is
safe to call opportunistically on every read.

# Reselection and Seat Progression

Cohort members petition against a sitting result with RequestReselection.
Requests accumulate in ReselectionVoters; when they reach the threshold of
half the cohort rounded up, the election flips to reselection_pending and a
fresh active round opens for the same seat.

RequestNextSeatElection works the same way but opens the next seat, capped
at MaxSeats. While a round is in tiebreaker, ReselectionVoters instead
holds the tied candidate IDs.

# Reads

GetActive, GetLatest, GetCompleted, GetRepresentatives, and GetNextOpenSeat
are tolerant reads: a backend ErrUnauthorized degrades to "nothing found"
rather than an error.
*/
package election
