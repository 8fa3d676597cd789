package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Action string

const (
	ActionLike   Action = "like"
	ActionReject Action = "reject"
)

var ErrInvalidAction = errors.New("invalid swipe action")

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionLike, ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

func (a Action) Valid() bool {
	return a == ActionLike || a == ActionReject
}

// Swipe is an immutable ledger fact.
type Swipe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TargetID  string    `json:"targetId"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
