package matching

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/matchmaker/internal/profile"
)

// Ledger is the append-only swipe history. Records are never changed or
// removed; mutuality is derived from the existence of likes only, so a later
// reject does not revoke an earlier like.
type Ledger struct {
	mu      sync.RWMutex
	records []profile.Swipe
	now     func() time.Time
}

func NewLedger(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Record appends a swipe. Self swipes and repeated swipes are accepted.
func (l *Ledger) Record(userID, targetID string, action profile.Action) (profile.Swipe, error) {
	if !action.Valid() {
		return profile.Swipe{}, fmt.Errorf("%w: %q", profile.ErrInvalidAction, action)
	}

	now := time.Now
	if l.now != nil {
		now = l.now
	}

	swipe := profile.Swipe{
		ID:        uuid.NewString(),
		UserID:    userID,
		TargetID:  targetID,
		Action:    action,
		Timestamp: now().UTC(),
	}

	l.mu.Lock()
	l.records = append(l.records, swipe)
	l.mu.Unlock()

	return swipe, nil
}

// CheckMatch reports whether both users liked each other at least once.
func (l *Ledger) CheckMatch(user1ID, user2ID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var forward, backward bool
	for _, r := range l.records {
		if r.Action != profile.ActionLike {
			continue
		}
		if r.UserID == user1ID && r.TargetID == user2ID {
			forward = true
		}
		if r.UserID == user2ID && r.TargetID == user1ID {
			backward = true
		}
		if forward && backward {
			return true
		}
	}
	return false
}

// UserMatches returns the users that userID liked and that liked userID back,
// in the order of userID's first like.
func (l *Ledger) UserMatches(userID string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	likedBy := make(map[string]struct{})
	var likes []string
	for _, r := range l.records {
		if r.Action != profile.ActionLike {
			continue
		}
		if r.UserID == userID && !slices.Contains(likes, r.TargetID) {
			likes = append(likes, r.TargetID)
		}
		if r.TargetID == userID {
			likedBy[r.UserID] = struct{}{}
		}
	}

	matches := make([]string, 0, len(likes))
	for _, id := range likes {
		if _, ok := likedBy[id]; ok {
			matches = append(matches, id)
		}
	}
	return matches
}

// Swiped returns every target userID acted on, once each, in ledger order.
func (l *Ledger) Swiped(userID string) []string {
	return l.distinct(func(r profile.Swipe) (string, bool) {
		return r.TargetID, r.UserID == userID
	})
}

// LikedBy returns the users who liked userID, once each, in ledger order.
func (l *Ledger) LikedBy(userID string) []string {
	return l.distinct(func(r profile.Swipe) (string, bool) {
		return r.UserID, r.TargetID == userID && r.Action == profile.ActionLike
	})
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a copy of the history.
func (l *Ledger) Records() []profile.Swipe {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records)
}

func (l *Ledger) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}

func (l *Ledger) restore(records []profile.Swipe) error {
	for i, r := range records {
		if !r.Action.Valid() {
			return fmt.Errorf("swipe %d (%s): %w: %q", i, r.ID, profile.ErrInvalidAction, r.Action)
		}
	}

	l.mu.Lock()
	l.records = slices.Clone(records)
	l.mu.Unlock()
	return nil
}

func (l *Ledger) distinct(pick func(profile.Swipe) (string, bool)) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, r := range l.records {
		id, ok := pick(r)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
