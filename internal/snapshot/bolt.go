package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/spigell/matchmaker/internal/profile"
)

var (
	bucketProfiles = []byte("profiles")
	bucketSwipes   = []byte("swipes")
	bucketBuckets  = []byte("buckets")
	bucketMeta     = []byte("meta")

	keySavedAt = []byte("saved_at")
)

// BoltStore keeps profiles, swipes and bucket membership in separate bbolt
// buckets keyed by position, so all come back in the order they were saved.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt state %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketProfiles, bucketSwipes, bucketBuckets, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *BoltStore) Save(snap *Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketProfiles, bucketSwipes, bucketBuckets} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		profiles, err := tx.CreateBucket(bucketProfiles)
		if err != nil {
			return err
		}
		for i, p := range snap.Profiles {
			if err := putJSON(profiles, i, p); err != nil {
				return fmt.Errorf("profile %s: %w", p.ID, err)
			}
		}

		swipes, err := tx.CreateBucket(bucketSwipes)
		if err != nil {
			return err
		}
		for i, sw := range snap.Swipes {
			if err := putJSON(swipes, i, sw); err != nil {
				return fmt.Errorf("swipe %s: %w", sw.ID, err)
			}
		}

		buckets, err := tx.CreateBucket(bucketBuckets)
		if err != nil {
			return err
		}
		for i, b := range snap.Buckets {
			if err := putJSON(buckets, i, b); err != nil {
				return fmt.Errorf("bucket %s: %w", b.Key, err)
			}
		}

		stamp, err := snap.SavedAt.MarshalText()
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySavedAt, stamp)
	})
}

func (s *BoltStore) Load() (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		stamp := tx.Bucket(bucketMeta).Get(keySavedAt)
		if stamp == nil {
			return ErrNotFound
		}

		snap = &Snapshot{}
		if err := snap.SavedAt.UnmarshalText(stamp); err != nil {
			return fmt.Errorf("decode saved_at: %w", err)
		}

		err := tx.Bucket(bucketProfiles).ForEach(func(_, v []byte) error {
			var p profile.Profile
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			snap.Profiles = append(snap.Profiles, p)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode profiles: %w", err)
		}

		err = tx.Bucket(bucketSwipes).ForEach(func(_, v []byte) error {
			var sw profile.Swipe
			if err := json.Unmarshal(v, &sw); err != nil {
				return err
			}
			snap.Swipes = append(snap.Swipes, sw)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode swipes: %w", err)
		}

		err = tx.Bucket(bucketBuckets).ForEach(func(_, v []byte) error {
			var b Bucket
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			snap.Buckets = append(snap.Buckets, b)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode buckets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// putJSON stores v under a zero-padded position so ForEach keeps insertion order.
func putJSON(b *bbolt.Bucket, pos int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(fmt.Sprintf("%012d", pos)), data)
}
