package matching

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/spigell/matchmaker/internal/profile"
)

func sampleStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s := NewStore(opts...)
	if _, err := LoadSampleUsers(s); err != nil {
		t.Fatalf("load sample users: %v", err)
	}
	return s
}

func ids(profiles []profile.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

func TestFindMatchesWithSampleUsers(t *testing.T) {
	t.Parallel()

	s := sampleStore(t)
	current, err := s.Get("1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	matches := s.FindMatches(&current, 0)
	got := ids(matches)
	slices.Sort(got)
	if !slices.Equal(got, []string{"10", "2", "3"}) {
		t.Fatalf("unexpected candidates: %v", got)
	}

	for i, m := range matches {
		if m.ID == current.ID {
			t.Fatal("current user returned as candidate")
		}
		if m.MatchScore != Score(&current, &m) {
			t.Fatalf("candidate %s carries score %v", m.ID, m.MatchScore)
		}
		if i > 0 && matches[i-1].MatchScore < m.MatchScore {
			t.Fatalf("results not sorted descending: %v", matches)
		}
	}

	stored, _ := s.Profile(matches[0].ID)
	if stored.MatchScore != 0 {
		t.Fatal("stored profile was mutated by search")
	}
}

func TestFindMatchesKeepsUnionOrderOnTies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	base := profile.Profile{Age: 30, Location: "Austin", RelationshipGoal: profile.GoalFriendship}
	for _, id := range []string{"me", "c", "a", "b"} {
		p := base
		p.ID = id
		if err := s.Assign(p); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	current, _ := s.Profile("me")
	if got := ids(s.FindMatches(&current, 10)); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Fatalf("expected insertion order on equal scores, got %v", got)
	}
	if got := ids(s.FindMatches(&current, 2)); !slices.Equal(got, []string{"c", "a"}) {
		t.Fatalf("expected results capped at 2, got %v", got)
	}
}

func TestFindMatchesCapDefaultsToTwenty(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for i := range 30 {
		p := profile.Profile{ID: string(rune('A' + i)), Age: 40, Location: "Oslo", RelationshipGoal: profile.GoalNetworking}
		if err := s.Assign(p); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	current := profile.Profile{ID: "outsider", Age: 40, Location: "Oslo", RelationshipGoal: profile.GoalNetworking}
	if got := len(s.FindMatches(&current, -1)); got != DefaultMaxResults {
		t.Fatalf("expected %d results, got %d", DefaultMaxResults, got)
	}
}

func TestRandomChatMatches(t *testing.T) {
	t.Parallel()

	s := sampleStore(t, WithRand(rand.New(rand.NewPCG(1, 2))))
	current, _ := s.Profile("1")

	picked := s.RandomChatMatches(&current, 0)
	if len(picked) != DefaultChatCount {
		t.Fatalf("expected %d picks, got %d", DefaultChatCount, len(picked))
	}
	for _, p := range picked {
		if p.ID == current.ID || p.RelationshipGoal != current.RelationshipGoal {
			t.Fatalf("unexpected pick %+v", p)
		}
	}

	all := s.RandomChatMatches(&current, 50)
	got := ids(all)
	slices.Sort(got)
	if !slices.Equal(got, []string{"10", "2", "3", "7", "8"}) {
		t.Fatalf("expected every dater except current, got %v", got)
	}

	again := sampleStore(t, WithRand(rand.New(rand.NewPCG(1, 2))))
	if !slices.Equal(ids(again.RandomChatMatches(&current, 0)), ids(picked)) {
		t.Fatal("expected the same seed to give the same picks")
	}
}

func TestAllUsersListsEachProfileOnce(t *testing.T) {
	t.Parallel()

	s := sampleStore(t)
	users := s.AllUsers()
	if len(users) != 10 {
		t.Fatalf("expected 10 users, got %d", len(users))
	}

	seen := make(map[string]bool)
	for _, u := range users {
		if seen[u.ID] {
			t.Fatalf("duplicate user %s", u.ID)
		}
		seen[u.ID] = true
	}
	if users[0].ID != "1" {
		t.Fatalf("expected first bucket walk to start with user 1, got %s", users[0].ID)
	}
}

func TestAllUsersWalksBucketsInCreationOrder(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if err := s.AssignAll([]profile.Profile{
		{ID: "z", Age: 40, Location: "Zurich", RelationshipGoal: profile.GoalNetworking},
		{ID: "a", Age: 20, Location: "Amsterdam", RelationshipGoal: profile.GoalDating},
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if got := ids(s.AllUsers()); !slices.Equal(got, []string{"z", "a"}) {
		t.Fatalf("expected creation order [z a], got %v", got)
	}
}
