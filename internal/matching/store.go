package matching

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/profile"
	"github.com/spigell/matchmaker/internal/snapshot"
)

const (
	DefaultMaxResults = 20
	DefaultChatCount  = 3
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrBadSnapshot    = errors.New("inconsistent snapshot")
)

// Store owns the bucket index and the swipe ledger. All methods are safe for
// concurrent use.
type Store struct {
	mu sync.RWMutex
	// buckets holds value copies; order is the bucket creation order.
	buckets map[string][]profile.Profile
	order   []string
	// memberships is the reverse index id -> bucket keys.
	memberships map[string][]string

	ledger *Ledger
	logger *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger.WithFields(l, zap.String("component", "matching"))
	}
}

// WithRand replaces the source used to shuffle chat matches.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithClock sets the clock used to timestamp swipes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.ledger.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		buckets:     make(map[string][]profile.Profile),
		memberships: make(map[string][]string),
		ledger:      NewLedger(nil),
		logger:      zap.NewNop(),
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset drops every profile and swipe.
func (s *Store) Reset() {
	s.mu.Lock()
	s.buckets = make(map[string][]profile.Profile)
	s.order = nil
	s.memberships = make(map[string][]string)
	s.mu.Unlock()

	s.ledger.Reset()
}

// Len returns the number of distinct indexed profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memberships)
}

func (s *Store) Ledger() *Ledger {
	return s.ledger
}

// Profile returns a copy of the stored profile with the given id.
func (s *Store) Profile(id string) (profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.find(id)
	if !ok {
		return profile.Profile{}, false
	}
	return p.Clone(), true
}

// find returns the stored entry for id. The caller holds s.mu.
func (s *Store) find(id string) (*profile.Profile, bool) {
	keys, ok := s.memberships[id]
	if !ok || len(keys) == 0 {
		return nil, false
	}
	bucket := s.buckets[keys[0]]
	for i := range bucket {
		if bucket[i].ID == id {
			return &bucket[i], true
		}
	}
	return nil, false
}

// Get is Profile with ErrUnknownProfile for a missing id.
func (s *Store) Get(id string) (profile.Profile, error) {
	p, ok := s.Profile(id)
	if !ok {
		return p, errUnknown(id)
	}
	return p, nil
}

func (s *Store) RecordSwipe(userID, targetID string, action profile.Action) (profile.Swipe, error) {
	swipe, err := s.ledger.Record(userID, targetID, action)
	if err != nil {
		return swipe, err
	}

	log := logger.WithPair(s.logger, userID, targetID)
	log.Debug("swipe recorded", zap.String("action", string(action)))

	if action == profile.ActionLike && s.ledger.CheckMatch(userID, targetID) {
		log.Info("mutual match")
	}
	return swipe, nil
}

func (s *Store) CheckMatch(user1ID, user2ID string) bool {
	return s.ledger.CheckMatch(user1ID, user2ID)
}

func (s *Store) UserMatches(userID string) []string {
	return s.ledger.UserMatches(userID)
}

func (s *Store) Swiped(userID string) []string {
	return s.ledger.Swiped(userID)
}

func (s *Store) LikedBy(userID string) []string {
	return s.ledger.LikedBy(userID)
}

func (s *Store) SwipeCount() int {
	return s.ledger.Len()
}

// Snapshot captures the current profiles, bucket layout and ledger.
func (s *Store) Snapshot() *snapshot.Snapshot {
	s.mu.RLock()
	profiles := s.collectLocked(func(*profile.Profile) bool { return true })
	buckets := make([]snapshot.Bucket, 0, len(s.order))
	for _, key := range s.order {
		ids := make([]string, 0, len(s.buckets[key]))
		for _, p := range s.buckets[key] {
			ids = append(ids, p.ID)
		}
		buckets = append(buckets, snapshot.Bucket{Key: key, IDs: ids})
	}
	s.mu.RUnlock()

	return &snapshot.Snapshot{
		Profiles: profiles,
		Buckets:  buckets,
		Swipes:   s.ledger.Records(),
	}
}

// Restore replaces the store contents with the snapshot. When the snapshot
// carries a bucket layout it is rebuilt as saved, so candidate order survives a
// restart; older snapshots without one are reassigned profile by profile.
func (s *Store) Restore(snap *snapshot.Snapshot) error {
	s.Reset()
	if snap == nil {
		return nil
	}

	var err error
	if len(snap.Buckets) == 0 {
		err = s.AssignAll(snap.Profiles)
	} else {
		err = s.restoreBuckets(snap.Profiles, snap.Buckets)
	}
	if err == nil {
		err = s.ledger.restore(snap.Swipes)
	}
	if err != nil {
		s.Reset()
		return err
	}

	s.logger.Debug("store restored",
		zap.Int("profiles", len(snap.Profiles)),
		zap.Int("buckets", len(snap.Buckets)),
		zap.Int("swipes", len(snap.Swipes)),
	)
	return nil
}

func (s *Store) restoreBuckets(profiles []profile.Profile, buckets []snapshot.Bucket) error {
	byID := make(map[string]profile.Profile, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		p = p.Normalized()
		p.MatchScore = 0
		byID[p.ID] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range buckets {
		if _, ok := s.buckets[b.Key]; ok {
			return fmt.Errorf("%w: bucket %q listed twice", ErrBadSnapshot, b.Key)
		}
		bucket := make([]profile.Profile, 0, len(b.IDs))
		for _, id := range b.IDs {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: bucket %q: %w", ErrBadSnapshot, b.Key, errUnknown(id))
			}
			if !slices.Contains(BucketKeys(&p), b.Key) {
				return fmt.Errorf("%w: profile %s does not belong in bucket %q", ErrBadSnapshot, id, b.Key)
			}
			if slices.ContainsFunc(bucket, func(q profile.Profile) bool { return q.ID == id }) {
				return fmt.Errorf("%w: profile %s listed twice in bucket %q", ErrBadSnapshot, id, b.Key)
			}
			bucket = append(bucket, p)
		}
		if len(bucket) == 0 {
			continue
		}
		s.buckets[b.Key] = bucket
		s.order = append(s.order, b.Key)
	}

	for id, p := range byID {
		keys := BucketKeys(&p)
		for _, key := range keys {
			if !slices.ContainsFunc(s.buckets[key], func(q profile.Profile) bool { return q.ID == id }) {
				return fmt.Errorf("%w: profile %s missing from bucket %q", ErrBadSnapshot, id, key)
			}
		}
		s.memberships[id] = keys
	}
	return nil
}

func errUnknown(id string) error {
	return fmt.Errorf("%w: %s", ErrUnknownProfile, id)
}
