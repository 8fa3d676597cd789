package ai

import (
	"context"

	"github.com/spigell/matchmaker/internal/profile"
)

// Icebreaker is a suggested first message between two matched users.
type Icebreaker struct {
	Opener string
	Topics []string
	Raw    string
}

// Writer drafts the first message from one user to a mutual match.
type Writer interface {
	Icebreaker(ctx context.Context, from, to *profile.Profile) (*Icebreaker, error)
}
