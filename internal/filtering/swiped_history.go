package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

// SwipeHistory lists the targets a user has already acted on.
type SwipeHistory interface {
	Swiped(userID string) []string
}

type SwipedHistoryConfig struct {
	UserID string
	Ignore bool
}

type SwipedHistoryDeps struct {
	History SwipeHistory
	Logger  *zap.Logger
}

type swipedHistoryFilter struct {
	toggle
	userID string
	ignore bool
	deps   *SwipedHistoryDeps
}

// NewSwipedHistory creates a filter that removes candidates the user already swiped.
func NewSwipedHistory(cfg *SwipedHistoryConfig, deps *SwipedHistoryDeps) Filter {
	f := &swipedHistoryFilter{deps: deps}
	if cfg != nil {
		f.userID = cfg.UserID
		f.ignore = cfg.Ignore
	}
	return f
}

func (f *swipedHistoryFilter) Name() string { return "swiped_history" }

func (f *swipedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.History == nil {
		return errors.New("swipe history is required")
	}
	if f.deps.Logger == nil {
		f.deps.Logger = zap.NewNop()
	}
	if f.userID == "" {
		return errors.New("user id is required")
	}
	return nil
}

func (f *swipedHistoryFilter) Apply(_ context.Context, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	if f.ignore {
		f.deps.Logger.Debug("keeping already swiped candidates", zap.String("reason", "ignore requested"))
		return candidates, unchanged(candidates), nil
	}

	excluded := candidates.Exclude(f.deps.History.Swiped(f.userID))
	if len(excluded) > 0 {
		f.deps.Logger.Debug("excluding already swiped candidates",
			zap.String("user_id", f.userID),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", candidates.Len()),
		)
	}

	return candidates, Step{Initial: initial, Dropped: len(excluded), Left: candidates.Len()}, nil
}

func (f *swipedHistoryFilter) Status() Status {
	reason := f.reason
	if reason == "" && f.ignore {
		reason = "skip requested via flag"
	}
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  reason,
		Details: map[string]string{"exclude_swiped": strconv.FormatBool(!f.ignore)},
	}
}
