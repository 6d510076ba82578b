// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/class-reps/coordinator"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/election"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/roster"
	"github.com/danielhkuo/class-reps/testutil"
	"github.com/danielhkuo/class-reps/vote"
)

type testEnv struct {
	store              *docstore.MemoryStore
	elections          *election.Repository
	ledger             *vote.Ledger
	coord              *coordinator.Coordinator
	notifier           *testutil.RecordingNotifier
	electionHandler    *ElectionHandler
	voteHandler        *VoteHandler
	maintenanceHandler *MaintenanceHandler
	students           []models.Student
}

// newTestEnv wires the full handler stack over an in-memory store with one
// seeded CS/stage-2 cohort.
func newTestEnv(t *testing.T, cohortSize int) *testEnv {
	t.Helper()

	store := testutil.NewStore()
	cfg := testutil.GetTestConfig()
	notifier := &testutil.RecordingNotifier{}

	ros := roster.NewStoreRoster(store)
	elections := election.NewRepository(store)
	ledger := vote.NewLedger(store, elections, ros, notifier)
	coord := coordinator.New(store, elections, ledger, ros)

	return &testEnv{
		store:              store,
		elections:          elections,
		ledger:             ledger,
		coord:              coord,
		notifier:           notifier,
		electionHandler:    NewElectionHandler(elections, coord, ros, notifier, cfg),
		voteHandler:        NewVoteHandler(ledger, ros, cfg),
		maintenanceHandler: NewMaintenanceHandler(coord),
		students:           testutil.SeedStudents(t, store, "CS", 2, cohortSize),
	}
}

func (env *testEnv) createElection(t *testing.T, seat int) *models.Election {
	t.Helper()
	e, err := env.elections.Create("CS", 2, len(env.students), seat)
	if err != nil {
		t.Fatalf("Failed to create election: %v", err)
	}
	return e
}

func TestEnsureElection(t *testing.T) {
	env := newTestEnv(t, 5)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid request",
			body:           `{"department":"CS","stage":2}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing department",
			body:           `{"stage":2}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "stage below 1",
			body:           `{"department":"CS","stage":0}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           `{not json}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/elections", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			env.electionHandler.EnsureElection(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var e models.Election
				if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
					t.Fatalf("Failed to decode election: %v", err)
				}
				if e.Status != models.StatusActive || e.SeatNumber != 1 {
					t.Errorf("Expected active seat-1 election, got %+v", e)
				}
				if e.TotalStudents != 5 || e.ReselectionThreshold != 3 {
					t.Errorf("Expected cohort 5/threshold 3, got %d/%d", e.TotalStudents, e.ReselectionThreshold)
				}
			}
		})
	}
}

func TestEnsureElectionIdempotent(t *testing.T) {
	env := newTestEnv(t, 5)
	body := `{"department":"CS","stage":2}`

	ids := make([]string, 2)
	for i := range ids {
		req := httptest.NewRequest("POST", "/elections", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		env.electionHandler.EnsureElection(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Ensure %d failed: %d %s", i, w.Code, w.Body.String())
		}
		var e models.Election
		json.NewDecoder(w.Body).Decode(&e)
		ids[i] = e.ID
	}

	if ids[0] != ids[1] {
		t.Errorf("Expected same election on repeat ensure, got %s then %s", ids[0], ids[1])
	}
}

func TestGetCurrent(t *testing.T) {
	env := newTestEnv(t, 5)

	t.Run("missing params", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/current", nil)
		w := httptest.NewRecorder()
		env.electionHandler.GetCurrent(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("no active election", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/current?department=CS&stage=2", nil)
		w := httptest.NewRecorder()
		env.electionHandler.GetCurrent(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("active election found", func(t *testing.T) {
		created := env.createElection(t, 1)

		req := httptest.NewRequest("GET", "/elections/current?department=CS&stage=2", nil)
		w := httptest.NewRecorder()
		env.electionHandler.GetCurrent(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var e models.Election
		json.NewDecoder(w.Body).Decode(&e)
		if e.ID != created.ID {
			t.Errorf("Expected election %s, got %s", created.ID, e.ID)
		}
	})
}

func TestGetLatest(t *testing.T) {
	env := newTestEnv(t, 5)
	created := env.createElection(t, 1)

	// finalize so there's no active election left
	winner := env.students[1].ID
	if _, err := env.elections.Finalize(created.ID, &winner); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/elections/latest?department=CS&stage=2", nil)
	w := httptest.NewRecorder()
	env.electionHandler.GetLatest(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var e models.Election
	json.NewDecoder(w.Body).Decode(&e)
	if e.ID != created.ID || e.Status != models.StatusCompleted {
		t.Errorf("Expected completed election %s, got %+v", created.ID, e)
	}
}

func TestGetByID(t *testing.T) {
	env := newTestEnv(t, 5)
	created := env.createElection(t, 1)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/"+created.ID, nil)
		req.SetPathValue("id", created.ID)
		w := httptest.NewRecorder()
		env.electionHandler.GetByID(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections/nonexistent", nil)
		req.SetPathValue("id", "nonexistent")
		w := httptest.NewRecorder()
		env.electionHandler.GetByID(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestGetRepresentatives(t *testing.T) {
	env := newTestEnv(t, 5)

	t.Run("empty when no seats filled", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/representatives?department=CS&stage=2", nil)
		w := httptest.NewRecorder()
		env.electionHandler.GetRepresentatives(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var reps []models.Representative
		if err := json.NewDecoder(w.Body).Decode(&reps); err != nil {
			t.Fatalf("Failed to decode representatives: %v", err)
		}
		if reps == nil || len(reps) != 0 {
			t.Errorf("Expected empty array, got %v", reps)
		}
	})

	t.Run("filled seat appears", func(t *testing.T) {
		e := env.createElection(t, 1)
		winner := env.students[0].ID
		if _, err := env.elections.Finalize(e.ID, &winner); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}

		req := httptest.NewRequest("GET", "/representatives?department=CS&stage=2", nil)
		w := httptest.NewRecorder()
		env.electionHandler.GetRepresentatives(w, req)

		var reps []models.Representative
		json.NewDecoder(w.Body).Decode(&reps)
		if len(reps) != 1 || reps[0].UserID != winner || reps[0].SeatNumber != 1 {
			t.Errorf("Expected winner in seat 1, got %v", reps)
		}
	})
}

func TestGetNextOpenSeat(t *testing.T) {
	env := newTestEnv(t, 5)

	// fill seat 1
	e := env.createElection(t, 1)
	winner := env.students[0].ID
	if _, err := env.elections.Finalize(e.ID, &winner); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/representatives/next-seat?department=CS&stage=2", nil)
	w := httptest.NewRecorder()
	env.electionHandler.GetNextOpenSeat(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp models.NextOpenSeatResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.AllFilled || resp.SeatNumber != 2 {
		t.Errorf("Expected open seat 2, got %+v", resp)
	}
}

func TestFinalizeHandler(t *testing.T) {
	env := newTestEnv(t, 5)
	e := env.createElection(t, 1)
	winner := env.students[2].ID

	body, _ := json.Marshal(models.FinalizeRequest{WinnerID: &winner})
	req := httptest.NewRequest("POST", "/elections/"+e.ID+"/finalize", bytes.NewReader(body))
	req.SetPathValue("id", e.ID)
	w := httptest.NewRecorder()
	env.electionHandler.Finalize(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var finalized models.Election
	json.NewDecoder(w.Body).Decode(&finalized)
	if finalized.Status != models.StatusCompleted || finalized.Winner == nil || *finalized.Winner != winner {
		t.Errorf("Expected completed with winner %s, got %+v", winner, finalized)
	}
	if finalized.EndedAt == nil {
		t.Error("Expected ended_at to be set")
	}

	t.Run("unknown election", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/elections/nope/finalize", bytes.NewReader([]byte(`{}`)))
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		env.electionHandler.Finalize(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestResolveHandler(t *testing.T) {
	env := newTestEnv(t, 5)
	e := env.createElection(t, 1)

	// not expired yet: resolve is a no-op
	req := httptest.NewRequest("POST", "/elections/"+e.ID+"/resolve", nil)
	req.SetPathValue("id", e.ID)
	w := httptest.NewRecorder()
	env.electionHandler.Resolve(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resolved models.Election
	json.NewDecoder(w.Body).Decode(&resolved)
	if resolved.Status != models.StatusActive {
		t.Errorf("Expected still active inside the window, got %q", resolved.Status)
	}

	// expired with zero votes: completes with no winner
	testutil.SetStartedAt(t, env.store, e.ID, time.Now().Add(-25*time.Hour))
	req = httptest.NewRequest("POST", "/elections/"+e.ID+"/resolve", nil)
	req.SetPathValue("id", e.ID)
	w = httptest.NewRecorder()
	env.electionHandler.Resolve(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&resolved)
	if resolved.Status != models.StatusCompleted || resolved.Winner != nil {
		t.Errorf("Expected completed with no winner, got %+v", resolved)
	}
}

func TestRequestReselectionHandler(t *testing.T) {
	env := newTestEnv(t, 5) // threshold 3
	e := env.createElection(t, 1)

	request := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/elections/"+e.ID+"/reselection", nil)
		req.SetPathValue("id", e.ID)
		if userID != "" {
			req.Header.Set("X-Session-Token", testutil.SessionToken(userID))
		}
		w := httptest.NewRecorder()
		env.electionHandler.RequestReselection(w, req)
		return w
	}

	t.Run("requires session", func(t *testing.T) {
		if w := request(""); w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("forged token rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/elections/"+e.ID+"/reselection", nil)
		req.SetPathValue("id", e.ID)
		req.Header.Set("X-Session-Token", "bm9wZQ.forged")
		w := httptest.NewRecorder()
		env.electionHandler.RequestReselection(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("below threshold accumulates", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := request(env.students[i].ID)
			if w.Code != http.StatusOK {
				t.Fatalf("Request %d failed: %d %s", i, w.Code, w.Body.String())
			}
			var resp models.RequestOutcomeResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.ReselectionTriggered {
				t.Errorf("Request %d should not trigger reselection", i)
			}
		}
	})

	t.Run("repeat request flagged", func(t *testing.T) {
		w := request(env.students[0].ID)
		var resp models.RequestOutcomeResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if !resp.AlreadyRequested {
			t.Error("Expected already_requested on repeat")
		}
	})

	t.Run("threshold triggers new election", func(t *testing.T) {
		w := request(env.students[2].ID)
		if w.Code != http.StatusOK {
			t.Fatalf("Triggering request failed: %d %s", w.Code, w.Body.String())
		}
		var resp models.RequestOutcomeResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if !resp.ReselectionTriggered {
			t.Fatal("Expected reselection to trigger at threshold")
		}
		if resp.Election == nil || resp.Election.ID == e.ID || resp.Election.Status != models.StatusActive {
			t.Errorf("Expected a fresh active election, got %+v", resp.Election)
		}

		old, err := env.elections.GetByID(e.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if old.Status != models.StatusReselectionPending {
			t.Errorf("Expected old election reselection_pending, got %q", old.Status)
		}

		// the rest of the cohort is told a reselection round opened
		events := env.notifier.Events()
		if len(events) != len(env.students)-1 {
			t.Fatalf("Expected %d notifications, got %d", len(env.students)-1, len(events))
		}
		for _, ev := range events {
			if ev.UserID == env.students[2].ID {
				t.Error("The triggering requester must not be notified")
			}
		}
	})
}

func TestRequestNextSeatHandler(t *testing.T) {
	env := newTestEnv(t, 5) // threshold 3

	// seat 1 filled; requests arrive against the completed election
	e := env.createElection(t, 1)
	winner := env.students[0].ID
	if _, err := env.elections.Finalize(e.ID, &winner); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	request := func(electionID, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/elections/"+electionID+"/next-seat", nil)
		req.SetPathValue("id", electionID)
		req.Header.Set("X-Session-Token", testutil.SessionToken(userID))
		w := httptest.NewRecorder()
		env.electionHandler.RequestNextSeat(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		w := request(e.ID, env.students[i].ID)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d failed: %d %s", i, w.Code, w.Body.String())
		}
		var resp models.RequestOutcomeResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.NextSeatTriggered {
			t.Fatalf("Request %d should not trigger next seat yet", i)
		}
	}

	w := request(e.ID, env.students[2].ID)
	if w.Code != http.StatusOK {
		t.Fatalf("Triggering request failed: %d %s", w.Code, w.Body.String())
	}
	var resp models.RequestOutcomeResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.NextSeatTriggered || resp.Election == nil || resp.Election.SeatNumber != 2 {
		t.Errorf("Expected a seat-2 election, got %+v", resp)
	}

	t.Run("max seats rejected", func(t *testing.T) {
		seat3 := env.createElection(t, 3)
		w := request(seat3.ID, env.students[0].ID)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409 at max seats, got %d", w.Code)
		}
	})
}

func TestSweepHandler(t *testing.T) {
	env := newTestEnv(t, 4)

	req := httptest.NewRequest("POST", "/maintenance/sweep", nil)
	w := httptest.NewRecorder()
	env.maintenanceHandler.Sweep(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.SweepResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Ran || resp.CohortsChecked != 1 || resp.ElectionsCreated != 1 {
		t.Errorf("Unexpected sweep stats: %+v", resp)
	}

	// seat 1 election now exists for the cohort
	e, err := env.elections.GetActive("CS", 2, 1)
	if err != nil || e == nil {
		t.Fatalf("Expected active election after sweep, got (%v, %v)", e, err)
	}
	if e.SeatNumber != 1 {
		t.Errorf("Expected seat 1, got %d", e.SeatNumber)
	}
}
