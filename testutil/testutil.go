// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/class-reps/auth"
	"github.com/danielhkuo/class-reps/cliparse"
	"github.com/danielhkuo/class-reps/docstore"
	"github.com/danielhkuo/class-reps/models"
)

// TestSessionSalt signs session tokens in tests.
const TestSessionSalt = "test-session-salt"

// GetTestConfig returns a config suitable for in-memory tests.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             0,
		StoreType:        cliparse.StoreMemory,
		SessionTokenSalt: TestSessionSalt,
		NotifyExchange:   "notifications",
	}
}

// NewStore returns a fresh in-memory document store.
func NewStore() *docstore.MemoryStore {
	return docstore.NewMemoryStore()
}

// SessionToken mints a valid session token for a user.
func SessionToken(userID string) string {
	return auth.GenerateSessionToken(userID, TestSessionSalt)
}

// SeedStudents writes n students for one cohort and returns them in order.
func SeedStudents(t *testing.T, store docstore.Store, department string, stage, n int) []models.Student {
	t.Helper()

	students := make([]models.Student, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-s%d-student-%02d", department, stage, i+1)
		name := fmt.Sprintf("Student %02d", i+1)
		_, err := store.Create(docstore.CollectionStudents, id, map[string]any{
			"name":       name,
			"department": department,
			"stage":      stage,
		})
		if err != nil {
			t.Fatalf("Failed to seed student: %v", err)
		}
		students[i] = models.Student{ID: id, Name: name, Department: department, Stage: stage}
	}
	return students
}

// SetStartedAt rewrites an election's clock anchor, e.g. to the past to
// force timer expiry.
func SetStartedAt(t *testing.T, store docstore.Store, electionID string, at time.Time) {
	t.Helper()

	_, err := store.Update(docstore.CollectionElections, electionID, map[string]any{
		"started_at": at,
	})
	if err != nil {
		t.Fatalf("Failed to set started_at: %v", err)
	}
}

// NotifyEvent is one recorded notification.
type NotifyEvent struct {
	UserID     string
	SenderID   string
	SenderName string
	Type       string
	Payload    map[string]any
}

// RecordingNotifier captures notifications for assertions. Safe for
// concurrent use.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []NotifyEvent
}

func (n *RecordingNotifier) Notify(userID, senderID, senderName, notifType string, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, NotifyEvent{
		UserID:     userID,
		SenderID:   senderID,
		SenderName: senderName,
		Type:       notifType,
		Payload:    payload,
	})
	return nil
}

func (n *RecordingNotifier) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (n *RecordingNotifier) Events() []NotifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotifyEvent, len(n.events))
	copy(out, n.events)
	return out
}
