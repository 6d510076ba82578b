// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/election"
	"github.com/danielhkuo/class-reps/models"
	"github.com/danielhkuo/class-reps/roster"
	"github.com/danielhkuo/class-reps/vote"
)

// SweepCooldown rate-limits the full-roster maintenance sweep.
const SweepCooldown = 6 * time.Hour

// sweepStateID is the fixed maintenance document recording the last sweep.
const sweepStateID = "roster_sweep"

// Coordinator orchestrates seat progression and maintenance on top of the
// election repository and the vote ledger.
type Coordinator struct {
	store     docstore.Store
	elections *election.Repository
	ledger    *vote.Ledger
	roster    roster.Roster
}

func New(store docstore.Store, elections *election.Repository, ledger *vote.Ledger, r roster.Roster) *Coordinator {
	return &Coordinator{store: store, elections: elections, ledger: ledger, roster: r}
}

// SweepStats summarizes one maintenance sweep.
type SweepStats struct {
	Ran              bool
	CohortsChecked   int
	ElectionsCreated int
	ExpiredResolved  int
}

// EnsureActiveElection returns the cohort's active seat-1 election, lazily
// creating one if absent. totalStudents <= 0 means "count the cohort".
func (c *Coordinator) EnsureActiveElection(department string, stage, totalStudents int) (*models.Election, error) {
	existing, err := c.elections.GetActive(department, stage, 1)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if totalStudents <= 0 {
		students, err := c.roster.ClassStudents(department, stage)
		if err != nil {
			return nil, fmt.Errorf("count cohort: %w", err)
		}
		totalStudents = len(students)
	}
	return c.elections.Create(department, stage, totalStudents, 1)
}

// ResolveIfExpired reads the current tally and drives the election through
// its timer-expiry transition when the round has run out. Elections still
// inside their window are returned unchanged.
func (c *Coordinator) ResolveIfExpired(electionID string) (*models.Election, error) {
	tally, err := c.ledger.Tally(electionID, "")
	if err != nil {
		return nil, err
	}
	return c.elections.ResolveTimerExpiry(electionID, tally.Candidates)
}

// EnsureActiveElectionsForAllCohorts walks the whole roster, groups it into
// (department, stage) cohorts, and opens a seat-1 election for every cohort
// lacking one. Expired rounds found along the way are resolved. The sweep
// is best-effort maintenance: per-cohort failures are logged and skipped,
// and a persisted cooldown keeps it from re-scanning more than once per
// SweepCooldown.
func (c *Coordinator) EnsureActiveElectionsForAllCohorts() (SweepStats, error) {
	if !c.cooldownElapsed() {
		return SweepStats{}, nil
	}

	students, err := c.roster.AllStudents()
	if err != nil {
		return SweepStats{}, fmt.Errorf("walk roster: %w", err)
	}

	type cohortKey struct {
		department string
		stage      int
	}
	cohorts := make(map[cohortKey]int)
	for _, s := range students {
		if s.Department == "" || s.Stage < 1 {
			continue
		}
		cohorts[cohortKey{s.Department, s.Stage}]++
	}

	stats := SweepStats{Ran: true, CohortsChecked: len(cohorts)}
	for key, size := range cohorts {
		created, resolved, err := c.sweepCohort(key.department, key.stage, size)
		if err != nil {
			slog.Warn("cohort sweep failed",
				"department", key.department,
				"stage", key.stage,
				"error", err,
			)
			continue
		}
		if created {
			stats.ElectionsCreated++
		}
		stats.ExpiredResolved += resolved
	}

	c.recordSweep()
	slog.Info("roster sweep finished",
		"cohorts", stats.CohortsChecked,
		"created", stats.ElectionsCreated,
		"resolved", stats.ExpiredResolved,
	)
	return stats, nil
}

func (c *Coordinator) sweepCohort(department string, stage, size int) (created bool, resolved int, err error) {
	// settle expired rounds first so a stale active election doesn't mask
	// the need for a fresh one
	docs, err := c.store.Query(docstore.CollectionElections, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Equal("department", department),
			docstore.Equal("stage", stage),
		},
		OrderByCreatedDesc: true,
	})
	if err != nil {
		return false, 0, err
	}
	for _, doc := range docs {
		e, err := c.elections.GetByID(doc.ID)
		if err != nil {
			continue
		}
		if e.Status != models.StatusActive && e.Status != models.StatusTiebreaker {
			continue
		}
		if !c.elections.IsTimerExpired(e) {
			continue
		}
		if _, err := c.ResolveIfExpired(e.ID); err != nil {
			slog.Warn("failed to resolve expired election", "election_id", e.ID, "error", err)
			continue
		}
		resolved++
	}

	active, err := c.elections.GetActive(department, stage, 1)
	if err != nil {
		return false, resolved, err
	}
	if active != nil {
		return false, resolved, nil
	}
	if _, err := c.elections.Create(department, stage, size, 1); err != nil {
		return false, resolved, err
	}
	return true, resolved, nil
}

func (c *Coordinator) cooldownElapsed() bool {
	doc, err := c.store.Get(docstore.CollectionMaintenance, sweepStateID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return true
		}
		slog.Warn("failed to read sweep cooldown state", "error", err)
		return true
	}
	lastRun := docstore.Time(doc.Fields, "last_run_at")
	return time.Since(lastRun) >= SweepCooldown
}

func (c *Coordinator) recordSweep() {
	now := time.Now().UTC()
	_, err := c.store.Update(docstore.CollectionMaintenance, sweepStateID, map[string]any{
		"last_run_at": now,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		_, err = c.store.Create(docstore.CollectionMaintenance, sweepStateID, map[string]any{
			"last_run_at": now,
		})
	}
	if err != nil {
		slog.Warn("failed to record sweep cooldown state", "error", err)
	}
}
