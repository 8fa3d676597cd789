package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/filtering"
	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/profile"
	"github.com/spigell/matchmaker/internal/snapshot"
)

// engine holds the seeded store together with its state backend.
type engine struct {
	config    *Config
	store     *matching.Store
	snapshots snapshot.Store
	logger    *zap.Logger
}

// setup builds the logger and the engine and aborts the process on failure.
func setup() *engine {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	e, err := newEngine(config, l)
	if err != nil {
		l.Fatal("preparing the store", zap.Error(err))
	}
	return e
}

func newEngine(config *Config, l *zap.Logger) (*engine, error) {
	snapshots, err := snapshot.Open(config.State.Driver, config.State.Path)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	e := &engine{
		config:    config,
		store:     matching.NewStore(matching.WithLogger(l)),
		snapshots: snapshots,
		logger:    l,
	}

	snap, err := snapshots.Load()
	switch {
	case err == nil:
		if err := e.store.Restore(snap); err != nil {
			snapshots.Close()
			return nil, fmt.Errorf("restoring state: %w", err)
		}
		l.Debug("state restored",
			zap.Time("saved_at", snap.SavedAt),
			zap.Int("profiles", e.store.Len()),
			zap.Int("swipes", e.store.SwipeCount()),
		)
	case errors.Is(err, snapshot.ErrNotFound):
		if err := e.seed(); err != nil {
			snapshots.Close()
			return nil, err
		}
	default:
		snapshots.Close()
		return nil, fmt.Errorf("loading state: %w", err)
	}

	return e, nil
}

func (e *engine) seed() error {
	roster := strings.TrimSpace(e.config.Roster)
	if roster == "" {
		users, err := matching.LoadSampleUsers(e.store)
		if err != nil {
			return err
		}
		e.logger.Debug("sample users loaded", zap.Int("count", len(users)))
		return nil
	}

	users, err := profile.LoadRoster(roster)
	if err != nil {
		return err
	}
	if err := e.store.AssignAll(users); err != nil {
		return fmt.Errorf("assigning roster %s: %w", roster, err)
	}
	e.logger.Debug("roster loaded", zap.String("path", roster), zap.Int("count", len(users)))
	return nil
}

func (e *engine) save() error {
	if err := e.snapshots.Save(e.store.Snapshot()); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func (e *engine) close() {
	if err := e.snapshots.Close(); err != nil {
		e.logger.Warn("closing state", zap.Error(err))
	}
}

func (e *engine) user(id string) profile.Profile {
	p, err := e.store.Get(strings.TrimSpace(id))
	if err != nil {
		e.fatal("looking up user", zap.Error(err))
	}
	return p
}

// fatal closes the state backend and exits. Deferred calls do not run after
// it.
func (e *engine) fatal(msg string, fields ...zap.Field) {
	e.close()
	e.logger.Fatal(msg, fields...)
}

// candidates ranks every match for current, runs them through the discovery
// filters and caps what is left at matching.max-results.
func (e *engine) candidates(ctx context.Context, current *profile.Profile, ignoreSwiped bool) (*profile.Profiles, error) {
	cfg := e.config.Matching
	found := profile.FromSlice(e.store.FindMatches(current, max(e.store.Len(), 1)))

	steps := []filtering.Filter{
		filtering.NewSwipedHistory(
			&filtering.SwipedHistoryConfig{UserID: current.ID, Ignore: ignoreSwiped},
			&filtering.SwipedHistoryDeps{History: e.store, Logger: e.logger},
		),
		filtering.NewExcludeFile(cfg.ExcludeFile, current.ID, e.logger),
		filtering.NewMinimumScore(cfg.MinimumScore, e.logger),
		filtering.NewMinimumCompleteness(cfg.MinimumCompleteness, e.logger),
	}
	if !cfg.ExcludeSwiped {
		filtering.DisableByName(steps, "swiped_history", "matching.exclude-swiped is false")
	}

	candidates, err := filtering.New(steps, e.logger).RunFilters(ctx, found)
	if err != nil {
		return nil, err
	}

	limit := cfg.MaxResults
	if limit <= 0 {
		limit = matching.DefaultMaxResults
	}
	if candidates.Len() > limit {
		candidates.Items = candidates.Items[:limit]
	}
	return candidates, nil
}
