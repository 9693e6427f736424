package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"flight-offers-api/internal/provider"
)

const snapshotBucket = "offer_snapshots"

type boltRecord struct {
	SearchID  string                 `json:"searchId"`
	ExpiresAt time.Time              `json:"expiresAt"`
	Snapshot  provider.OfferSnapshot `json:"snapshot"`
}

// BoltStore is the BoltDB snapshot store. All data lives in one file.
type BoltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// NewBoltStore opens (or creates) a BoltDB file and ensures the bucket exists.
func NewBoltStore(path string, ttl time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveSnapshots writes all snapshots of one search in a single transaction.
func (s *BoltStore) SaveSnapshots(ctx context.Context, searchID string, snaps []provider.OfferSnapshot) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	expiresAt := s.now().UTC().Add(s.ttl)
	saved := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(snapshotBucket))
		for _, snap := range snaps {
			data, err := json.Marshal(boltRecord{SearchID: searchID, ExpiresAt: expiresAt, Snapshot: snap})
			if err != nil {
				return fmt.Errorf("failed to encode offer %s: %w", snap.Offer.ID, err)
			}
			if err := b.Put([]byte(snap.Offer.ID), data); err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// GetSnapshot returns the live snapshot of an offer or ErrNotFound.
func (s *BoltStore) GetSnapshot(ctx context.Context, offerID string) (*provider.OfferSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec boltRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(snapshotBucket)).Get([]byte(offerID))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &rec.Snapshot, nil
}

// PurgeExpired deletes expired snapshots and returns how many were removed.
func (s *BoltStore) PurgeExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	purged := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(snapshotBucket))
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if !now.Before(rec.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
			purged++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
