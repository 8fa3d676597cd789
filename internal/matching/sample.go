package matching

import (
	"fmt"

	"github.com/spigell/matchmaker/internal/profile"
)

// LoadSampleUsers seeds the store with the built-in roster and returns it.
func LoadSampleUsers(s *Store) ([]profile.Profile, error) {
	users := profile.SampleUsers()
	if err := s.AssignAll(users); err != nil {
		return nil, fmt.Errorf("loading sample users: %w", err)
	}
	return users, nil
}
