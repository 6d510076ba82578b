// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote implements the vote ledger: casting, re-voting, removal, and
tallying.

# Casting

Cast validates the vote against the election state before writing:

	v, err := ledger.Cast(electionID, voter, candidateID)

Rules enforced:

  - no self-votes (ErrSelfVote)
  - the election must be active or in tiebreaker (ErrElectionClosed)
  - the round's timer must not have expired (ErrVotingExpired)
  - tiebreaker rounds only accept the tied candidates (ErrIneligibleCandidate)

A re-vote replaces the voter's previous choice; each voter holds at most
one vote per election.

The first vote of a round re-anchors the election clock and notifies the
rest of the cohort. Both are best-effort: a notification failure is logged
and never fails the cast.

# Tallying

Tally recomputes standings from the raw ledger, paginating through the
store. Candidates are ordered by count descending; ties keep the order in
which each candidate first received a vote. When a voter ID is supplied the
result includes that voter's current vote.
*/
package vote
