package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/matchmaker/internal/profile"
)

type historyStub map[string][]string

func (h historyStub) Swiped(userID string) []string { return h[userID] }

func candidates() *profile.Profiles {
	return profile.FromSlice([]profile.Profile{
		{ID: "2", MatchScore: 90, ProfileCompleteness: 95},
		{ID: "3", MatchScore: 60, ProfileCompleteness: 40},
		{ID: "4", MatchScore: 30, ProfileCompleteness: 80},
		{ID: "5", MatchScore: 75, ProfileCompleteness: 70},
	})
}

func TestRunFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocklist := filepath.Join(dir, "blocked.json")
	if err := AppendBlock(blocklist, "5", "1"); err != nil {
		t.Fatalf("append block: %v", err)
	}

	core, observed := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	steps := []Filter{
		NewSwipedHistory(&SwipedHistoryConfig{UserID: "1"}, &SwipedHistoryDeps{
			History: historyStub{"1": {"3"}},
			Logger:  logger,
		}),
		NewExcludeFile(blocklist, "1", logger),
		NewMinimumScore(50, logger),
		NewMinimumCompleteness(50, logger),
	}

	got, err := New(steps, logger).RunFilters(context.Background(), candidates())
	if err != nil {
		t.Fatalf("run filters: %v", err)
	}

	if ids := got.IDs(); !slices.Equal(ids, []string{"2"}) {
		t.Fatalf("expected only candidate 2 to survive, got %v", ids)
	}

	if n := observed.FilterMessage("filter step").Len(); n != len(steps) {
		t.Fatalf("expected %d step logs, got %d", len(steps), n)
	}
}

func TestRunFiltersSkipsDisabledSteps(t *testing.T) {
	t.Parallel()

	steps := []Filter{
		NewMinimumScore(80, nil),
		// Invalid but disabled, so never validated.
		NewSwipedHistory(nil, nil),
	}
	DisableByName(steps, "swiped_history", "no user selected")

	f := New(steps, nil)
	got, err := f.RunFilters(context.Background(), candidates())
	if err != nil {
		t.Fatalf("run filters: %v", err)
	}
	if ids := got.IDs(); !slices.Equal(ids, []string{"2"}) {
		t.Fatalf("unexpected survivors: %v", ids)
	}

	statuses := f.Describe()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Details["minimum"] != "80.00" || !statuses[0].Enabled {
		t.Fatalf("unexpected minimum_score status: %+v", statuses[0])
	}
	if statuses[1].Enabled || statuses[1].Reason != "no user selected" {
		t.Fatalf("unexpected swiped_history status: %+v", statuses[1])
	}
}

func TestRunFiltersValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step Filter
	}{
		{name: "history without deps", step: NewSwipedHistory(&SwipedHistoryConfig{UserID: "1"}, nil)},
		{name: "history without user", step: NewSwipedHistory(nil, &SwipedHistoryDeps{History: historyStub{}})},
		{name: "exclude file without user", step: NewExcludeFile("blocked.json", "", nil)},
		{name: "score above max", step: NewMinimumScore(101, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New([]Filter{tt.step}, nil).RunFilters(context.Background(), candidates()); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRunFiltersStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New([]Filter{NewMinimumScore(10, nil)}, nil).RunFilters(ctx, candidates())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSwipedHistoryIgnore(t *testing.T) {
	t.Parallel()

	f := NewSwipedHistory(&SwipedHistoryConfig{UserID: "1", Ignore: true}, &SwipedHistoryDeps{History: historyStub{"1": {"2", "3"}}})
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, step, err := f.Apply(context.Background(), candidates())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Len() != 4 || step.Dropped != 0 {
		t.Fatalf("expected nothing dropped, got %v (%+v)", got.IDs(), step)
	}
}

func TestBlocklist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "blocked.json")

	empty, err := ReadBlocklist(path)
	if err != nil || len(empty.Items) != 0 {
		t.Fatalf("expected empty blocklist for missing file, got %+v, %v", empty, err)
	}

	for _, pair := range [][2]string{{"1", "2"}, {"3", "1"}, {"1", "2"}} {
		if err := AppendBlock(path, pair[0], pair[1]); err != nil {
			t.Fatalf("append block: %v", err)
		}
	}

	blocklist, err := ReadBlocklist(path)
	if err != nil {
		t.Fatalf("read blocklist: %v", err)
	}
	if len(blocklist.Items) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(blocklist.Items))
	}
	if got := blocklist.Blocked("1"); !slices.Equal(got, []string{"2", "3"}) {
		t.Fatalf("Blocked(1) = %v", got)
	}
	if got := blocklist.Blocked("2"); !slices.Equal(got, []string{"1"}) {
		t.Fatalf("Blocked(2) = %v", got)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadBlocklist(path); err == nil {
		t.Fatal("expected decode error")
	}
}
