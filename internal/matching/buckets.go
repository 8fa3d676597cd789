package matching

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

// AgeGroup maps an age to its bucket label. Each band includes its lower bound.
func AgeGroup(age int) string {
	switch {
	case age < 23:
		return "18-22"
	case age < 28:
		return "23-27"
	case age < 33:
		return "28-32"
	case age < 38:
		return "33-37"
	case age < 43:
		return "38-42"
	case age < 48:
		return "43-47"
	default:
		return "48+"
	}
}

// BucketKeys returns the keys a profile is filed under, most specific first:
// age+location+goal, age+goal, location+goal.
func BucketKeys(p *profile.Profile) []string {
	group := AgeGroup(p.Age)
	return []string{
		fmt.Sprintf("%s-%s-%s", group, p.Location, p.RelationshipGoal),
		fmt.Sprintf("%s-%s", group, p.RelationshipGoal),
		fmt.Sprintf("%s-%s", p.Location, p.RelationshipGoal),
	}
}

// Assign files the profile under its bucket keys. An entry with the same id is
// replaced in place; buckets the profile no longer belongs to are purged.
func (s *Store) Assign(p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p = p.Normalized()
	p.MatchScore = 0
	keys := BucketKeys(&p)

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string
	for _, key := range s.memberships[p.ID] {
		if !slices.Contains(keys, key) {
			s.removeFromBucket(key, p.ID)
			stale = append(stale, key)
		}
	}

	for _, key := range keys {
		s.upsert(key, p)
	}
	s.memberships[p.ID] = keys

	if len(stale) > 0 {
		s.logger.Debug("profile moved between buckets",
			zap.String("user_id", p.ID),
			zap.Strings("removed_from", stale),
			zap.Strings("assigned_to", keys),
		)
	}
	return nil
}

// AssignAll assigns every profile and stops at the first invalid one.
func (s *Store) AssignAll(profiles []profile.Profile) error {
	for _, p := range profiles {
		if err := s.Assign(p); err != nil {
			return err
		}
	}
	s.logger.Debug("profiles assigned", zap.Int("count", len(profiles)))
	return nil
}

// Remove drops the profile from every bucket. It does not touch the ledger.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.memberships[id]
	if !ok {
		return false
	}
	for _, key := range keys {
		s.removeFromBucket(key, id)
	}
	delete(s.memberships, id)
	return true
}

// Buckets returns the size of every bucket keyed by bucket key.
func (s *Store) Buckets() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sizes := make(map[string]int, len(s.buckets))
	for key, bucket := range s.buckets {
		sizes[key] = len(bucket)
	}
	return sizes
}

// Bucket returns copies of the profiles filed under key, in bucket order.
func (s *Store) Bucket(key string) []profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.buckets[key]
	result := make([]profile.Profile, 0, len(bucket))
	for _, p := range bucket {
		result = append(result, p.Clone())
	}
	return result
}

func (s *Store) upsert(key string, p profile.Profile) {
	bucket, ok := s.buckets[key]
	if !ok {
		s.order = append(s.order, key)
	}
	for i := range bucket {
		if bucket[i].ID == p.ID {
			bucket[i] = p
			return
		}
	}
	s.buckets[key] = append(bucket, p)
}

func (s *Store) removeFromBucket(key, id string) {
	bucket := s.buckets[key]
	idx := slices.IndexFunc(bucket, func(p profile.Profile) bool { return p.ID == id })
	if idx == -1 {
		return
	}

	bucket = slices.Delete(bucket, idx, idx+1)
	if len(bucket) > 0 {
		s.buckets[key] = bucket
		return
	}

	delete(s.buckets, key)
	if i := slices.Index(s.order, key); i != -1 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}
