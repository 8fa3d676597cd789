package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

// threshold drops candidates whose measured value is below minimum. A
// non-positive minimum keeps everyone.
type threshold struct {
	toggle
	name    string
	minimum float64
	measure func(*profile.Profile) float64
	logger  *zap.Logger
}

// NewMinimumScore drops candidates whose MatchScore is below minimum.
func NewMinimumScore(minimum float64, logger *zap.Logger) Filter {
	return newThreshold("minimum_score", minimum, func(p *profile.Profile) float64 { return p.MatchScore }, logger)
}

// NewMinimumCompleteness drops candidates whose profile completeness is below minimum.
func NewMinimumCompleteness(minimum float64, logger *zap.Logger) Filter {
	return newThreshold("minimum_completeness", minimum, func(p *profile.Profile) float64 { return p.ProfileCompleteness }, logger)
}

func newThreshold(name string, minimum float64, measure func(*profile.Profile) float64, logger *zap.Logger) *threshold {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &threshold{name: name, minimum: minimum, measure: measure, logger: logger}
}

func (f *threshold) Name() string { return f.name }

func (f *threshold) Validate() error {
	if f.minimum > 100 {
		return fmt.Errorf("minimum %.2f is above 100", f.minimum)
	}
	return nil
}

func (f *threshold) Apply(_ context.Context, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	if f.minimum <= 0 {
		return candidates, unchanged(candidates), nil
	}

	excluded := candidates.ExcludeFunc(func(p *profile.Profile) bool {
		return f.measure(p) < f.minimum
	})
	if len(excluded) > 0 {
		f.logger.Debug("excluding candidates below threshold",
			zap.String("filter", f.name),
			zap.Float64("minimum", f.minimum),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", candidates.Len()),
		)
	}

	return candidates, Step{Initial: initial, Dropped: len(excluded), Left: candidates.Len()}, nil
}

func (f *threshold) Status() Status {
	return Status{
		Name:    f.name,
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.FormatFloat(f.minimum, 'f', 2, 64)},
	}
}
