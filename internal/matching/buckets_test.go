package matching

import (
	"errors"
	"slices"
	"testing"

	"github.com/spigell/matchmaker/internal/profile"
)

func TestAgeGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		age  int
		want string
	}{
		{0, "18-22"},
		{18, "18-22"},
		{22, "18-22"},
		{23, "23-27"},
		{27, "23-27"},
		{28, "28-32"},
		{33, "33-37"},
		{38, "38-42"},
		{43, "43-47"},
		{47, "43-47"},
		{48, "48+"},
		{90, "48+"},
	}

	for _, tt := range tests {
		if got := AgeGroup(tt.age); got != tt.want {
			t.Errorf("AgeGroup(%d) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestBucketKeys(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{ID: "1", Age: 25, Location: "New York", RelationshipGoal: profile.GoalDating}
	want := []string{"23-27-New York-dating", "23-27-dating", "New York-dating"}
	if got := BucketKeys(p); !slices.Equal(got, want) {
		t.Fatalf("BucketKeys = %v, want %v", got, want)
	}

	// Missing optional data still yields three keys.
	empty := BucketKeys(&profile.Profile{ID: "2"})
	if len(empty) != 3 || empty[0] != "18-22--" {
		t.Fatalf("unexpected keys for empty profile: %v", empty)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	p := profile.Profile{ID: "1", Age: 25, Location: "New York", RelationshipGoal: profile.GoalDating}

	for range 3 {
		if err := s.Assign(p); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	if s.Len() != 1 {
		t.Fatalf("expected 1 profile, got %d", s.Len())
	}
	sizes := s.Buckets()
	if len(sizes) != 3 {
		t.Fatalf("expected 3 buckets, got %v", sizes)
	}
	for key, n := range sizes {
		if n != 1 {
			t.Fatalf("bucket %q holds %d entries", key, n)
		}
	}
}

func TestAssignOverwritesInPlace(t *testing.T) {
	t.Parallel()

	s := NewStore()
	first := profile.Profile{ID: "1", Name: "Old", Age: 25, Location: "Boston", RelationshipGoal: profile.GoalDating}
	second := profile.Profile{ID: "2", Age: 26, Location: "Boston", RelationshipGoal: profile.GoalDating}
	for _, p := range []profile.Profile{first, second} {
		if err := s.Assign(p); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	first.Name = "New"
	if err := s.Assign(first); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	bucket := s.Bucket("Boston-dating")
	if len(bucket) != 2 || bucket[0].ID != "1" || bucket[0].Name != "New" {
		t.Fatalf("expected updated profile to keep its slot, got %+v", bucket)
	}
}

func TestAssignMovesBetweenBuckets(t *testing.T) {
	t.Parallel()

	s := NewStore()
	p := profile.Profile{ID: "1", Age: 25, Location: "New York", RelationshipGoal: profile.GoalDating}
	if err := s.Assign(p); err != nil {
		t.Fatalf("assign: %v", err)
	}

	p.Age = 35
	p.Location = "San Francisco"
	if err := s.Assign(p); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	sizes := s.Buckets()
	for _, stale := range []string{"23-27-New York-dating", "23-27-dating", "New York-dating"} {
		if _, ok := sizes[stale]; ok {
			t.Fatalf("stale bucket %q still present: %v", stale, sizes)
		}
	}
	if sizes["33-37-San Francisco-dating"] != 1 {
		t.Fatalf("expected profile in new bucket, got %v", sizes)
	}

	got, ok := s.Profile("1")
	if !ok || got.Age != 35 {
		t.Fatalf("expected moved profile, got %+v (ok=%v)", got, ok)
	}
}

func TestAssignRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for _, p := range []profile.Profile{{ID: "  "}, {ID: "x", Age: -1}} {
		if err := s.Assign(p); !errors.Is(err, profile.ErrInvalidProfile) {
			t.Fatalf("expected ErrInvalidProfile for %+v, got %v", p, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestAssignStoresCopies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	p := profile.Profile{ID: "1", Interests: []string{"jazz", "jazz", "coffee"}}
	if err := s.Assign(p); err != nil {
		t.Fatalf("assign: %v", err)
	}
	p.Interests[0] = "mutated"

	got, _ := s.Profile("1")
	if !slices.Equal(got.Interests, []string{"jazz", "coffee"}) {
		t.Fatalf("expected deduplicated private copy, got %v", got.Interests)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if err := s.AssignAll([]profile.Profile{
		{ID: "1", Age: 25, Location: "New York", RelationshipGoal: profile.GoalDating},
		{ID: "2", Age: 26, Location: "New York", RelationshipGoal: profile.GoalDating},
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if !s.Remove("1") {
		t.Fatal("expected profile to be removed")
	}
	if s.Remove("1") {
		t.Fatal("expected second remove to report false")
	}
	if _, ok := s.Profile("1"); ok {
		t.Fatal("removed profile is still reachable")
	}
	if s.Buckets()["New York-dating"] != 1 {
		t.Fatalf("unexpected bucket sizes: %v", s.Buckets())
	}
}
