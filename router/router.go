// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/coordinator"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/election"
	"github.com/danielhkuo/class-reps/handlers"
	"github.com/danielhkuo/class-reps/middleware"
	"github.com/danielhkuo/class-reps/notify"
	"github.com/danielhkuo/class-reps/roster"
	"github.com/danielhkuo/class-reps/vote"
)

func NewRouter(store docstore.Store, notifier notify.Notifier, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire the engine
	ros := roster.NewStoreRoster(store)
	elections := election.NewRepository(store)
	ledger := vote.NewLedger(store, elections, ros, notifier)
	coord := coordinator.New(store, elections, ledger, ros)

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(elections, coord, ros, notifier, cfg)
	voteHandler := handlers.NewVoteHandler(ledger, ros, cfg)
	maintenanceHandler := handlers.NewMaintenanceHandler(coord)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election lifecycle
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.EnsureElection))
	mux.HandleFunc("GET /elections/current", middleware.WithLogging(electionHandler.GetCurrent))
	mux.HandleFunc("GET /elections/latest", middleware.WithLogging(electionHandler.GetLatest))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetByID))
	mux.HandleFunc("POST /elections/{id}/finalize", middleware.WithLogging(electionHandler.Finalize))
	mux.HandleFunc("POST /elections/{id}/resolve", middleware.WithLogging(electionHandler.Resolve))
	mux.HandleFunc("POST /elections/{id}/reselection", middleware.WithLogging(electionHandler.RequestReselection))
	mux.HandleFunc("POST /elections/{id}/next-seat", middleware.WithLogging(electionHandler.RequestNextSeat))

	// Seats and representatives
	mux.HandleFunc("GET /representatives", middleware.WithLogging(electionHandler.GetRepresentatives))
	mux.HandleFunc("GET /representatives/next-seat", middleware.WithLogging(electionHandler.GetNextOpenSeat))

	// Voting
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(voteHandler.Cast))
	mux.HandleFunc("DELETE /elections/{id}/votes", middleware.WithLogging(voteHandler.Remove))
	mux.HandleFunc("GET /elections/{id}/tally", middleware.WithLogging(voteHandler.Tally))
	mux.HandleFunc("GET /elections/{id}/my-vote", middleware.WithLogging(voteHandler.MyVote))

	// Maintenance
	mux.HandleFunc("POST /maintenance/sweep", middleware.WithLogging(maintenanceHandler.Sweep))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("class-reps API v1"))
	})

	return mux
}
