package matching

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

// FindMatches ranks the candidates sharing a bucket with current. Buckets are
// read most specific first and the first occurrence of an id wins, so equal
// scores keep that order. A non-positive maxResults means DefaultMaxResults.
func (s *Store) FindMatches(current *profile.Profile, maxResults int) []profile.Profile {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	s.mu.RLock()
	seen := map[string]struct{}{current.ID: {}}
	var candidates []profile.Profile
	for _, key := range BucketKeys(current) {
		for _, p := range s.buckets[key] {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}

			c := p.Clone()
			c.MatchScore = Score(current, &c)
			candidates = append(candidates, c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	s.logger.Debug("matches found",
		zap.String("user_id", current.ID),
		zap.Int("count", len(candidates)),
	)
	return candidates
}

// RandomChatMatches picks up to count profiles sharing current's relationship
// goal, uniformly shuffled. A non-positive count means DefaultChatCount.
func (s *Store) RandomChatMatches(current *profile.Profile, count int) []profile.Profile {
	if count <= 0 {
		count = DefaultChatCount
	}

	pool := s.collect(func(p *profile.Profile) bool {
		return p.ID != current.ID && p.RelationshipGoal == current.RelationshipGoal
	})

	s.randMu.Lock()
	s.rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.randMu.Unlock()

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// AllUsers returns every indexed profile once, walking buckets in creation order.
func (s *Store) AllUsers() []profile.Profile {
	return s.collect(func(*profile.Profile) bool { return true })
}

func (s *Store) collect(keep func(*profile.Profile) bool) []profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(keep)
}

// collectLocked is collect for callers that already hold s.mu.
func (s *Store) collectLocked(keep func(*profile.Profile) bool) []profile.Profile {
	seen := make(map[string]struct{}, len(s.memberships))
	var result []profile.Profile
	for _, key := range s.order {
		for i := range s.buckets[key] {
			p := &s.buckets[key][i]
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			if keep(p) {
				result = append(result, p.Clone())
			}
		}
	}
	return result
}
