package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/matchmaker/internal/profile"
)

const (
	DriverNone = "none"
	DriverFile = "file"
	DriverBolt = "bolt"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the durable form of a matching store.
type Snapshot struct {
	SavedAt  time.Time         `json:"savedAt"`
	Profiles []profile.Profile `json:"profiles"`
	// Buckets keeps bucket membership in creation order, members in
	// insertion order. Restoring from it reproduces candidate order.
	Buckets  []Bucket          `json:"buckets,omitempty"`
	Swipes   []profile.Swipe   `json:"swipes"`
}

type Bucket struct {
	Key string   `json:"key"`
	IDs []string `json:"ids"`
}

// Store persists snapshots. Load returns ErrNotFound when nothing was saved yet.
type Store interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}

// Open returns the store for the given driver. The none driver keeps nothing.
func Open(driver, path string) (Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverNone
	}

	if driver != DriverNone && strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required for the %s driver", driver)
	}

	switch driver {
	case DriverNone:
		return nopStore{}, nil
	case DriverFile:
		return NewFileStore(path), nil
	case DriverBolt:
		store, err := NewBoltStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported state driver: %s", driver)
	}
}

type nopStore struct{}

func (nopStore) Save(*Snapshot) error { return nil }

func (nopStore) Load() (*Snapshot, error) { return nil, ErrNotFound }

func (nopStore) Close() error { return nil }
