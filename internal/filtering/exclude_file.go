package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

// BlockedPair hides TargetID from UserID and UserID from TargetID.
type BlockedPair struct {
	UserID    string
	TargetID  string
	BlockedAt time.Time
}

type Blocklist struct {
	Items []*BlockedPair
}

// ReadBlocklist reads a blocklist file. A missing or empty file is an empty list.
func ReadBlocklist(path string) (*Blocklist, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Blocklist{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Blocklist{}, nil
	}

	var blocklist Blocklist
	if err := json.NewDecoder(file).Decode(&blocklist); err != nil {
		return nil, err
	}
	return &blocklist, nil
}

func (b *Blocklist) Append(s *Blocklist) {
	b.Items = append(b.Items, s.Items...)
}

// Blocked returns the ids hidden from userID, once each.
func (b *Blocklist) Blocked(userID string) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, pair := range b.Items {
		switch userID {
		case pair.UserID:
			add(pair.TargetID)
		case pair.TargetID:
			add(pair.UserID)
		}
	}
	return ids
}

func (b *Blocklist) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// AppendBlock adds a pair to the blocklist file, creating the file when needed.
func AppendBlock(path, userID, targetID string) error {
	blocklist, err := ReadBlocklist(path)
	if err != nil {
		return fmt.Errorf("reading blocklist: %w", err)
	}

	blocklist.Append(&Blocklist{Items: []*BlockedPair{{
		UserID:    userID,
		TargetID:  targetID,
		BlockedAt: time.Now().UTC(),
	}}})

	return blocklist.ToFile(path)
}

type excludeFileFilter struct {
	toggle
	path   string
	userID string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes candidates blocked in the given file.
func NewExcludeFile(path, userID string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   strings.TrimSpace(path),
		userID: userID,
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error {
	if f.path != "" && f.userID == "" {
		return errors.New("user id is required")
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	if f.path == "" {
		return candidates, unchanged(candidates), nil
	}

	blocklist, err := ReadBlocklist(f.path)
	if err != nil {
		return candidates, Step{}, fmt.Errorf("getting blocked users from file: %w", err)
	}

	removed := candidates.Exclude(blocklist.Blocked(f.userID))
	if len(removed) > 0 {
		f.logger.Debug("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", candidates.Len()),
		)
	}

	return candidates, Step{Initial: initial, Dropped: len(removed), Left: candidates.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
