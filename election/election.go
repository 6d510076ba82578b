// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/models"
)

// Voting round durations. The clock anchors on StartedAt, which is reset by
// the first cast vote and again on entering tiebreaker.
const (
	ActiveDuration     = 24 * time.Hour
	TiebreakerDuration = time.Hour
)

var ErrInvalidSeat = errors.New("maximum representatives reached")

// Repository owns the Election lifecycle: lookup, creation, and every
// status transition.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// RequestResult reports the outcome of a reselection or next-seat request.
type RequestResult struct {
	Election         *models.Election
	Triggered        bool
	AlreadyRequested bool
	Reason           string
}

// ReasonMaxReps is the soft-failure reason when no further seat exists.
const ReasonMaxReps = "max_reps_reached"

// GetByID loads one election.
func (r *Repository) GetByID(electionID string) (*models.Election, error) {
	doc, err := r.store.Get(docstore.CollectionElections, electionID)
	if err != nil {
		return nil, err
	}
	return fromDoc(doc), nil
}

// GetActive returns the most recently created active election for the
// scope, or nil. seatNumber 0 matches any seat. Store authorization
// failures degrade to "none found".
func (r *Repository) GetActive(department string, stage, seatNumber int) (*models.Election, error) {
	return r.latestByStatus(department, stage, seatNumber, models.StatusActive)
}

// GetLatest returns the most recent election for the scope regardless of
// status, or nil. seatNumber 0 matches any seat.
func (r *Repository) GetLatest(department string, stage, seatNumber int) (*models.Election, error) {
	return r.latestByStatus(department, stage, seatNumber, "")
}

func (r *Repository) latestByStatus(department string, stage, seatNumber int, status string) (*models.Election, error) {
	filters := []docstore.Filter{
		docstore.Equal("department", department),
		docstore.Equal("stage", stage),
	}
	if seatNumber > 0 {
		filters = append(filters, docstore.Equal("seat_number", seatNumber))
	}
	if status != "" {
		filters = append(filters, docstore.Equal("status", status))
	}

	docs, err := r.store.Query(docstore.CollectionElections, docstore.Query{
		Filters:            filters,
		OrderByCreatedDesc: true,
		Limit:              1,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrUnauthorized) || errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return fromDoc(docs[0]), nil
}

// GetCompleted returns the latest completed election per seat number, at
// most MaxSeats results.
func (r *Repository) GetCompleted(department string, stage int) ([]*models.Election, error) {
	docs, err := r.store.Query(docstore.CollectionElections, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Equal("department", department),
			docstore.Equal("stage", stage),
			docstore.Equal("status", models.StatusCompleted),
		},
		OrderByCreatedDesc: true,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrUnauthorized) || errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	seen := make(map[int]bool)
	var latest []*models.Election
	for _, doc := range docs {
		e := fromDoc(doc)
		if seen[e.SeatNumber] {
			continue
		}
		seen[e.SeatNumber] = true
		latest = append(latest, e)
		if len(latest) == models.MaxSeats {
			break
		}
	}
	return latest, nil
}

// GetRepresentatives maps completed elections with a winner to the users
// currently holding seats.
func (r *Repository) GetRepresentatives(department string, stage int) ([]models.Representative, error) {
	completed, err := r.GetCompleted(department, stage)
	if err != nil {
		return nil, err
	}
	var reps []models.Representative
	for _, e := range completed {
		if e.Winner != nil {
			reps = append(reps, models.Representative{UserID: *e.Winner, SeatNumber: e.SeatNumber})
		}
	}
	return reps, nil
}

// GetNextOpenSeat returns the first seat number in [1, MaxSeats] not held
// by a current representative; ok is false when every seat is filled.
func (r *Repository) GetNextOpenSeat(department string, stage int) (int, bool, error) {
	reps, err := r.GetRepresentatives(department, stage)
	if err != nil {
		return 0, false, err
	}
	held := make(map[int]bool, len(reps))
	for _, rep := range reps {
		held[rep.SeatNumber] = true
	}
	for seat := 1; seat <= models.MaxSeats; seat++ {
		if !held[seat] {
			return seat, true, nil
		}
	}
	return 0, false, nil
}

// Create starts a new active election for the given seat. Idempotent: an
// existing active election for the scope is returned unchanged.
func (r *Repository) Create(department string, stage, totalStudents, seatNumber int) (*models.Election, error) {
	if seatNumber < 1 || seatNumber > models.MaxSeats {
		return nil, ErrInvalidSeat
	}

	existing, err := r.GetActive(department, stage, seatNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	doc, err := r.store.Create(docstore.CollectionElections, "", map[string]any{
		"department":            department,
		"stage":                 stage,
		"seat_number":           seatNumber,
		"status":                models.StatusActive,
		"total_students":        totalStudents,
		"reselection_threshold": reselectionThreshold(totalStudents),
		"reselection_voters":    []string{},
		"started_at":            now,
	})
	if err != nil {
		return nil, fmt.Errorf("create election: %w", err)
	}

	slog.Info("election created",
		"election_id", doc.ID,
		"department", department,
		"stage", stage,
		"seat", seatNumber,
	)
	return fromDoc(doc), nil
}

// Finalize completes an election. Re-finalizing a completed election
// succeeds without changes.
func (r *Repository) Finalize(electionID string, winnerID *string) (*models.Election, error) {
	e, err := r.GetByID(electionID)
	if err != nil {
		return nil, err
	}
	if e.Status == models.StatusCompleted {
		return e, nil
	}

	fields := map[string]any{
		"status":   models.StatusCompleted,
		"ended_at": time.Now().UTC(),
	}
	if winnerID != nil {
		fields["winner"] = *winnerID
	}
	doc, err := r.store.Update(docstore.CollectionElections, electionID, fields)
	if err != nil {
		return nil, fmt.Errorf("finalize election: %w", err)
	}

	winner := "<none>"
	if winnerID != nil {
		winner = *winnerID
	}
	slog.Info("election finalized", "election_id", electionID, "winner", winner)
	return fromDoc(doc), nil
}

// IsTimerExpired reports whether the election's current round has run out.
// Elections with no start timestamp never expire.
func (r *Repository) IsTimerExpired(e *models.Election) bool {
	if e.StartedAt == nil {
		return false
	}
	duration := ActiveDuration
	if e.Status == models.StatusTiebreaker {
		duration = TiebreakerDuration
	}
	return !time.Now().Before(e.StartedAt.Add(duration))
}

// ResolveTimerExpiry drives an expired election through its terminal
// transition given the current tally (ordered descending by count). It is
// a no-op for completed or superseded elections and for elections whose
// timer has not yet run out.
func (r *Repository) ResolveTimerExpiry(electionID string, tally []models.CandidateTally) (*models.Election, error) {
	e, err := r.GetByID(electionID)
	if err != nil {
		return nil, err
	}
	if e.Status == models.StatusCompleted || e.Status == models.StatusReselectionPending {
		return e, nil
	}
	if !r.IsTimerExpired(e) {
		return e, nil
	}

	if e.Status == models.StatusTiebreaker {
		// tally order already favors the candidate ahead; exact ties keep
		// first-seen order, so index 0 is the first tied candidate
		var winner *string
		if len(tally) > 0 {
			winner = &tally[0].CandidateID
		} else if len(e.ReselectionVoters) > 0 {
			winner = &e.ReselectionVoters[0]
		}
		return r.Finalize(electionID, winner)
	}

	// active
	if len(tally) == 0 || tally[0].Count == 0 {
		return r.Finalize(electionID, nil)
	}
	if len(tally) >= 2 && tally[0].Count == tally[1].Count {
		now := time.Now().UTC()
		doc, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
			"status":             models.StatusTiebreaker,
			"reselection_voters": []string{tally[0].CandidateID, tally[1].CandidateID},
			"started_at":         now,
		})
		if err != nil {
			return nil, fmt.Errorf("enter tiebreaker: %w", err)
		}
		slog.Info("election entered tiebreaker",
			"election_id", electionID,
			"candidates", []string{tally[0].CandidateID, tally[1].CandidateID},
		)
		return fromDoc(doc), nil
	}
	return r.Finalize(electionID, &tally[0].CandidateID)
}

// MarkFirstVote resets the expiry clock when the first vote of a round
// lands, arming the 24-hour window from first engagement.
func (r *Repository) MarkFirstVote(electionID string) (*models.Election, error) {
	doc, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
		"started_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("reset election clock: %w", err)
	}
	return fromDoc(doc), nil
}

// RequestReselection records one user's recall request. Crossing the
// threshold retires the election to reselection_pending and immediately
// opens a fresh active election for the same seat, sized by totalStudents.
func (r *Repository) RequestReselection(electionID, userID string, totalStudents int) (*RequestResult, error) {
	e, err := r.GetByID(electionID)
	if err != nil {
		return nil, err
	}
	if contains(e.ReselectionVoters, userID) {
		return &RequestResult{Election: e, AlreadyRequested: true}, nil
	}

	voters := append(e.ReselectionVoters, userID)
	if len(voters) < e.ReselectionThreshold {
		doc, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
			"reselection_voters": voters,
		})
		if err != nil {
			return nil, fmt.Errorf("record reselection request: %w", err)
		}
		return &RequestResult{Election: fromDoc(doc)}, nil
	}

	// threshold reached: retire this round, open a fresh one
	if _, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
		"status":             models.StatusReselectionPending,
		"reselection_voters": voters,
	}); err != nil {
		return nil, fmt.Errorf("retire election for reselection: %w", err)
	}

	fresh, err := r.Create(e.Department, e.Stage, totalStudents, e.SeatNumber)
	if err != nil {
		return nil, err
	}
	slog.Info("reselection triggered",
		"retired_election_id", electionID,
		"new_election_id", fresh.ID,
		"seat", e.SeatNumber,
	)
	return &RequestResult{Election: fresh, Triggered: true}, nil
}

// RequestNextSeatElection records one user's request to open the next seat.
// Crossing the threshold creates an active election for seatNumber+1 and
// clears the request set. If the next seat's election already runs, it is
// returned without consuming the request.
func (r *Repository) RequestNextSeatElection(electionID, userID string, totalStudents int) (*RequestResult, error) {
	e, err := r.GetByID(electionID)
	if err != nil {
		return nil, err
	}
	nextSeat := e.SeatNumber + 1
	if nextSeat > models.MaxSeats {
		return &RequestResult{Election: e, Reason: ReasonMaxReps}, nil
	}

	if existing, err := r.GetActive(e.Department, e.Stage, nextSeat); err != nil {
		return nil, err
	} else if existing != nil {
		return &RequestResult{Election: existing}, nil
	}

	if contains(e.ReselectionVoters, userID) {
		return &RequestResult{Election: e, AlreadyRequested: true}, nil
	}

	voters := append(e.ReselectionVoters, userID)
	if len(voters) < e.ReselectionThreshold {
		doc, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
			"reselection_voters": voters,
		})
		if err != nil {
			return nil, fmt.Errorf("record next-seat request: %w", err)
		}
		return &RequestResult{Election: fromDoc(doc)}, nil
	}

	if _, err := r.store.Update(docstore.CollectionElections, electionID, map[string]any{
		"reselection_voters": []string{},
	}); err != nil {
		return nil, fmt.Errorf("clear next-seat requests: %w", err)
	}

	fresh, err := r.Create(e.Department, e.Stage, totalStudents, nextSeat)
	if err != nil {
		return nil, err
	}
	slog.Info("next-seat election triggered",
		"from_election_id", electionID,
		"new_election_id", fresh.ID,
		"seat", nextSeat,
	)
	return &RequestResult{Election: fresh, Triggered: true}, nil
}

// reselectionThreshold is a strict majority of the cohort, never below 1.
func reselectionThreshold(totalStudents int) int {
	t := (totalStudents + 1) / 2
	if t < 1 {
		t = 1
	}
	return t
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func fromDoc(doc docstore.Document) *models.Election {
	e := &models.Election{
		ID:                   doc.ID,
		Department:           docstore.String(doc.Fields, "department"),
		Stage:                docstore.Int(doc.Fields, "stage"),
		SeatNumber:           docstore.Int(doc.Fields, "seat_number"),
		Status:               docstore.String(doc.Fields, "status"),
		TotalStudents:        docstore.Int(doc.Fields, "total_students"),
		ReselectionThreshold: docstore.Int(doc.Fields, "reselection_threshold"),
		ReselectionVoters:    docstore.StringSlice(doc.Fields, "reselection_voters"),
		CreatedAt:            doc.CreatedAt,
	}
	if e.ReselectionVoters == nil {
		e.ReselectionVoters = []string{}
	}
	if w := docstore.String(doc.Fields, "winner"); w != "" {
		e.Winner = &w
	}
	if t := docstore.Time(doc.Fields, "started_at"); !t.IsZero() {
		e.StartedAt = &t
	}
	if t := docstore.Time(doc.Fields, "ended_at"); !t.IsZero() {
		e.EndedAt = &t
	}
	return e
}
