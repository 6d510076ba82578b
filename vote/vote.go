// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/election"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/notify"
	"github.com/danielhkuo/class-reps/roster"
)

var (
	ErrSelfVote            = errors.New("cannot vote for yourself")
	ErrElectionClosed      = errors.New("election is closed")
	ErrVotingExpired       = errors.New("voting time has expired")
	ErrIneligibleCandidate = errors.New("candidate is not in the tiebreaker round")
)

// pageSize bounds each store round-trip when reading a full election's votes.
const pageSize = 100

// Ledger owns Vote documents: cast, replace, remove, and tally. A voter
// holds at most one vote per election; re-voting deletes the old vote and
// inserts a new one, so no vote history is retained.
type Ledger struct {
	store     docstore.Store
	elections *election.Repository
	roster    roster.Roster
	notifier  notify.Notifier
}

func NewLedger(store docstore.Store, elections *election.Repository, r roster.Roster, notifier notify.Notifier) *Ledger {
	return &Ledger{store: store, elections: elections, roster: r, notifier: notifier}
}

// Cast records the voter's choice, replacing any prior vote by the same
// voter in this election. The first vote ever cast in an election resets
// the election clock and notifies the cohort; those side effects never
// fail the cast.
func (l *Ledger) Cast(electionID string, voter models.Student, candidateID string) (*models.Vote, error) {
	if voter.ID == candidateID {
		return nil, ErrSelfVote
	}

	e, err := l.elections.GetByID(electionID)
	if err != nil {
		return nil, err
	}

	switch e.Status {
	case models.StatusCompleted, models.StatusReselectionPending:
		return nil, ErrElectionClosed
	}
	if l.elections.IsTimerExpired(e) {
		return nil, ErrVotingExpired
	}
	if e.Status == models.StatusTiebreaker && len(e.ReselectionVoters) > 0 {
		if !containsString(e.ReselectionVoters, candidateID) {
			return nil, ErrIneligibleCandidate
		}
	}

	// Pre-check before the insert: is this the election's very first vote?
	firstVote, err := l.hasNoVotes(electionID)
	if err != nil {
		return nil, err
	}

	if err := l.deleteVotes(electionID, voter.ID); err != nil {
		return nil, err
	}

	doc, err := l.store.Create(docstore.CollectionVotes, "", map[string]any{
		"election_id":  electionID,
		"department":   e.Department,
		"stage":        e.Stage,
		"voter_id":     voter.ID,
		"candidate_id": candidateID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist vote: %w", err)
	}

	slog.Info("vote cast",
		"election_id", electionID,
		"voter_id", voter.ID,
		"candidate_id", candidateID,
		"first_vote", firstVote,
	)

	if firstVote {
		l.armClockAndNotify(e, voter)
	}
	return fromDoc(doc), nil
}

// Remove deletes the voter's vote in the election if one exists. It reports
// success even when no vote was present.
func (l *Ledger) Remove(electionID, voterID string) (bool, error) {
	if err := l.deleteVotes(electionID, voterID); err != nil {
		return false, err
	}
	return true, nil
}

// Tally recomputes the election's standings from the raw votes: counts per
// candidate ordered descending (equal counts keep first-seen order), the
// caller's own vote, and the total. Nothing is cached or persisted.
func (l *Ledger) Tally(electionID, voterID string) (models.TallyResult, error) {
	votes, err := l.allVotes(electionID)
	if err != nil {
		return models.TallyResult{}, err
	}

	counts := make(map[string]int)
	var order []string
	result := models.TallyResult{TotalVotes: len(votes)}
	for _, v := range votes {
		if counts[v.CandidateID] == 0 {
			order = append(order, v.CandidateID)
		}
		counts[v.CandidateID]++
		if voterID != "" && v.VoterID == voterID {
			vv := v
			result.MyVote = &vv
		}
	}

	result.Candidates = make([]models.CandidateTally, 0, len(order))
	for _, candidateID := range order {
		result.Candidates = append(result.Candidates, models.CandidateTally{
			CandidateID: candidateID,
			Count:       counts[candidateID],
		})
	}
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Count > result.Candidates[j].Count
	})
	return result, nil
}

// MyVote returns the voter's current vote in the election, or nil.
func (l *Ledger) MyVote(electionID, voterID string) (*models.Vote, error) {
	docs, err := l.store.Query(docstore.CollectionVotes, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Equal("election_id", electionID),
			docstore.Equal("voter_id", voterID),
		},
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

func (l *Ledger) hasNoVotes(electionID string) (bool, error) {
	docs, err := l.store.Query(docstore.CollectionVotes, docstore.Query{
		Filters: []docstore.Filter{docstore.Equal("election_id", electionID)},
		Limit:   1,
	})
	if err != nil {
		return false, fmt.Errorf("check existing votes: %w", err)
	}
	return len(docs) == 0, nil
}

func (l *Ledger) deleteVotes(electionID, voterID string) error {
	docs, err := l.store.Query(docstore.CollectionVotes, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Equal("election_id", electionID),
			docstore.Equal("voter_id", voterID),
		},
	})
	if err != nil {
		return fmt.Errorf("find prior votes: %w", err)
	}
	for _, doc := range docs {
		if err := l.store.Delete(docstore.CollectionVotes, doc.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("delete prior vote: %w", err)
		}
	}
	return nil
}

func (l *Ledger) allVotes(electionID string) ([]models.Vote, error) {
	var votes []models.Vote
	for offset := 0; ; offset += pageSize {
		docs, err := l.store.Query(docstore.CollectionVotes, docstore.Query{
			Filters: []docstore.Filter{docstore.Equal("election_id", electionID)},
			Limit:   pageSize,
			Offset:  offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list votes: %w", err)
		}
		for _, doc := range docs {
			votes = append(votes, *fromDoc(doc))
		}
		if len(docs) < pageSize {
			return votes, nil
		}
	}
}

// armClockAndNotify resets the election clock on first engagement and tells
// the rest of the cohort a vote has started. Best-effort: failures are
// logged, never returned.
func (l *Ledger) armClockAndNotify(e *models.Election, voter models.Student) {
	if _, err := l.elections.MarkFirstVote(e.ID); err != nil {
		slog.Warn("failed to reset election clock on first vote", "election_id", e.ID, "error", err)
	}

	students, err := l.roster.ClassStudents(e.Department, e.Stage)
	if err != nil {
		slog.Warn("failed to load cohort for vote notifications", "election_id", e.ID, "error", err)
		return
	}
	for _, s := range students {
		if s.ID == voter.ID {
			continue
		}
		err := l.notifier.Notify(s.ID, voter.ID, voter.Name, notify.TypeVoteStarted, map[string]any{
			"election_id": e.ID,
			"department":  e.Department,
			"stage":       e.Stage,
			"seat_number": e.SeatNumber,
		})
		if err != nil {
			slog.Warn("failed to send vote notification", "election_id", e.ID, "user_id", s.ID, "error", err)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func fromDoc(doc docstore.Document) *models.Vote {
	return &models.Vote{
		ID:          doc.ID,
		ElectionID:  docstore.String(doc.Fields, "election_id"),
		Department:  docstore.String(doc.Fields, "department"),
		Stage:       docstore.Int(doc.Fields, "stage"),
		VoterID:     docstore.String(doc.Fields, "voter_id"),
		CandidateID: docstore.String(doc.Fields, "candidate_id"),
		CreatedAt:   doc.CreatedAt,
	}
}
