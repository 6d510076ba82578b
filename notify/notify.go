// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

// Notification type constants
const (
	TypeVoteStarted = "election_vote_started"
	TypeReselection = "election_reselection"
)

// Notifier delivers one in-app/push notification. Delivery is best-effort;
// callers log and swallow errors rather than failing their own operation.
type Notifier interface {
	Notify(userID, senderID, senderName, notifType string, payload map[string]any) error
	Close() error
}

// Noop discards every notification. Used when no broker is configured and
// in tests that don't assert on delivery.
type Noop struct{}

func (Noop) Notify(userID, senderID, senderName, notifType string, payload map[string]any) error {
	return nil
}

func (Noop) Close() error { return nil }
