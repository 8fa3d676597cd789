package matching

import (
	"errors"
	"fmt"

	"github.com/spigell/matchmaker/internal/profile"
)

var ErrSwipeLimit = errors.New("daily swipe limit reached")

// Swipe records a swipe between two stored users and charges it to the
// swiper's daily quota. It reports whether the swipe completed a mutual match.
func (s *Store) Swipe(userID, targetID string, action profile.Action) (profile.Swipe, bool, error) {
	if !action.Valid() {
		return profile.Swipe{}, false, fmt.Errorf("%w: %q", profile.ErrInvalidAction, action)
	}
	if _, err := s.Get(targetID); err != nil {
		return profile.Swipe{}, false, err
	}
	if err := s.reserveSwipe(userID); err != nil {
		return profile.Swipe{}, false, err
	}

	swipe, err := s.RecordSwipe(userID, targetID, action)
	if err != nil {
		s.updateAll(userID, func(p *profile.Profile) { p.DailySwipes-- })
		return swipe, false, err
	}

	return swipe, action == profile.ActionLike && s.CheckMatch(userID, targetID), nil
}

// reserveSwipe checks the quota and charges one swipe under a single lock.
func (s *Store) reserveSwipe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.find(id)
	if !ok {
		return errUnknown(id)
	}
	if !user.CanSwipe() {
		return fmt.Errorf("%w: %s used %d of %d", ErrSwipeLimit, id, user.DailySwipes, user.MaxDailySwipes)
	}

	s.apply(id, func(p *profile.Profile) { p.DailySwipes++ })
	return nil
}

// ResetDailySwipes zeroes every user's swipe counter.
func (s *Store) ResetDailySwipes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.buckets {
		for i := range s.buckets[key] {
			s.buckets[key][i].DailySwipes = 0
		}
	}
}

func (s *Store) updateAll(id string, fn func(*profile.Profile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(id, fn)
}

// apply runs fn on every bucket copy of id. The caller holds s.mu.
func (s *Store) apply(id string, fn func(*profile.Profile)) {
	for _, key := range s.memberships[id] {
		for i := range s.buckets[key] {
			if s.buckets[key][i].ID == id {
				fn(&s.buckets[key][i])
			}
		}
	}
}
