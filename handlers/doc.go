// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Class Reps API.

# Handler Types

Each handler is a struct with its engine dependencies injected via a
constructor:

  - ElectionHandler: Election lifecycle (ensure, reads, finalize, resolve,
    reselection, next seat)
  - VoteHandler: Casting, removal, tallies, my-vote
  - MaintenanceHandler: The roster sweep

	electionHandler := handlers.NewElectionHandler(elections, coord, ros, notifier, cfg)
	voteHandler := handlers.NewVoteHandler(ledger, ros, cfg)

# Identity

Mutating endpoints identify the caller from the X-Session-Token header: an
HMAC-signed token minted by the auth package and resolved against the
roster. A missing or forged token yields 401.

# Error Mapping

Engine errors map onto HTTP statuses:

  - validation failures (bad JSON, self-vote, missing fields): 400
  - missing or invalid session: 401
  - unknown election: 404
  - state conflicts (closed election, expired round, ineligible
    tiebreaker candidate, all seats filled): 409

Responses always use the JSON envelope from the middleware package.
*/
package handlers
