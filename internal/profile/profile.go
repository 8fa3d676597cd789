package profile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	GoalDating     = "dating"
	GoalFriendship = "friendship"
	GoalNetworking = "networking"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Profile is a candidate in the matching system. Interests and Skills behave as
// sets for scoring but keep their insertion order for display.
type Profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender,omitempty"`
	Interests        []string `json:"interests,omitempty"`
	Location         string   `json:"location,omitempty"`
	RelationshipGoal string   `json:"relationshipGoal,omitempty"`
	Language         string   `json:"language,omitempty"`

	ActivityScore       float64  `json:"activityScore,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	ProfileCompleteness float64  `json:"profileCompleteness,omitempty"`

	ImageURL       string `json:"imageUrl,omitempty"`
	Bio            string `json:"bio,omitempty"`
	DailySwipes    int    `json:"dailySwipes,omitempty"`
	MaxDailySwipes int    `json:"maxDailySwipes,omitempty"`

	// MatchScore is only set on copies returned by candidate search.
	MatchScore float64 `json:"matchScore,omitempty"`
}

func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age %d of %q is negative", ErrInvalidProfile, p.Age, p.ID)
	}
	return nil
}

// Normalized returns a copy with duplicate interests and skills dropped and
// its own backing arrays, so the copy never aliases the receiver.
func (p Profile) Normalized() Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Interests = uniq(p.Interests)
	p.Skills = uniq(p.Skills)
	return p
}

// Clone returns a shallow copy with fresh slices.
func (p Profile) Clone() Profile {
	p.Interests = append([]string(nil), p.Interests...)
	p.Skills = append([]string(nil), p.Skills...)
	return p
}

// CanSwipe reports whether the daily quota allows another swipe. A zero max means unlimited.
func (p *Profile) CanSwipe() bool {
	return p.MaxDailySwipes <= 0 || p.DailySwipes < p.MaxDailySwipes
}

func uniq(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

type Profiles struct {
	Items []*Profile
}

// FromSlice wraps copies of the given values.
func FromSlice(items []Profile) *Profiles {
	ps := &Profiles{Items: make([]*Profile, 0, len(items))}
	for i := range items {
		p := items[i]
		ps.Items = append(ps.Items, &p)
	}
	return ps
}

func (ps *Profiles) Len() int {
	return len(ps.Items)
}

func (ps *Profiles) IDs() []string {
	ids := make([]string, 0, len(ps.Items))
	for _, p := range ps.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

func (ps *Profiles) FindByID(id string) *Profile {
	for _, p := range ps.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Values returns the profiles as plain values in their current order.
func (ps *Profiles) Values() []Profile {
	values := make([]Profile, 0, len(ps.Items))
	for _, p := range ps.Items {
		values = append(values, *p)
	}
	return values
}

// Exclude removes profiles whose id is in targets and returns the removed ids.
// The remaining profiles keep their order.
func (ps *Profiles) Exclude(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		drop[id] = struct{}{}
	}
	return ps.ExcludeFunc(func(p *Profile) bool {
		_, ok := drop[p.ID]
		return ok
	})
}

// ExcludeFunc removes every profile for which fn returns true.
func (ps *Profiles) ExcludeFunc(fn func(*Profile) bool) []string {
	var excluded []string
	kept := ps.Items[:0]
	for _, p := range ps.Items {
		if fn(p) {
			excluded = append(excluded, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(ps.Items); i++ {
		ps.Items[i] = nil
	}
	ps.Items = kept
	return excluded
}
