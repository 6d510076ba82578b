// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Class Reps API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, notifier, cfg)

# Endpoints

Health:

	GET /health

Election lifecycle:

	POST /elections                    - Ensure a cohort's seat-1 election
	GET  /elections/current            - Active election for a cohort/seat
	GET  /elections/latest             - Most recent election regardless of status
	GET  /elections/{id}               - Election by ID
	POST /elections/{id}/finalize      - Seal a winner
	POST /elections/{id}/resolve       - Apply timer expiry if the round ran out
	POST /elections/{id}/reselection   - Petition to re-run a sitting result
	POST /elections/{id}/next-seat     - Petition to open the next seat

Seats and representatives:

	GET /representatives           - Filled seats for a cohort
	GET /representatives/next-seat - Lowest open seat number

Voting (requires X-Session-Token except tally):

	POST   /elections/{id}/votes   - Cast or replace a vote
	DELETE /elections/{id}/votes   - Remove the caller's vote
	GET    /elections/{id}/tally   - Current standings
	GET    /elections/{id}/my-vote - The caller's current vote

Maintenance:

	POST /maintenance/sweep - Run the rate-limited roster sweep

# Handler Initialization

The router wires the engine and creates handler instances with dependency
injection:

	elections := election.NewRepository(store)
	ledger := vote.NewLedger(store, elections, ros, notifier)
	coord := coordinator.New(store, elections, ledger, ros)
*/
package router
