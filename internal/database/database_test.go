package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"flight-offers-api/internal/provider"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func setupStores(t *testing.T) (map[string]SnapshotStore, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)}
	dir := t.TempDir()

	db, err := NewDB(filepath.Join(dir, "snapshots.db"), time.Hour)
	if err != nil {
		t.Fatalf("Failed to create sqlite store: %v", err)
	}
	db.now = clock.now
	t.Cleanup(func() { db.Close() })

	bs, err := NewBoltStore(filepath.Join(dir, "snapshots.bolt"), time.Hour)
	if err != nil {
		t.Fatalf("Failed to create bolt store: %v", err)
	}
	bs.now = clock.now
	t.Cleanup(func() { bs.Close() })

	return map[string]SnapshotStore{DriverSQLite: db, DriverBolt: bs}, clock
}

func snapshot(id, total string) provider.OfferSnapshot {
	return provider.OfferSnapshot{
		Offer: provider.FlightOffer{
			ID:    id,
			Price: &provider.OfferPrice{Currency: "USD", GrandTotal: total},
			Itineraries: []provider.Itinerary{{
				Duration: "PT2H0M",
				Segments: []provider.WireSegment{{
					ID:        "1",
					Departure: &provider.Endpoint{IataCode: "JFK", At: "2030-06-10T08:00:00"},
					Arrival:   &provider.Endpoint{IataCode: "BOS", At: "2030-06-10T10:00:00"},
				}},
			}},
		},
		Carriers: map[string]string{"AA": "AMERICAN AIRLINES"},
	}
}

func TestSnapshotStore_SaveAndGet(t *testing.T) {
	stores, _ := setupStores(t)
	ctx := context.Background()

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			n, err := s.SaveSnapshots(ctx, "search-1", []provider.OfferSnapshot{snapshot("1", "100.00"), snapshot("2", "200.00")})
			if err != nil {
				t.Fatalf("SaveSnapshots failed: %v", err)
			}
			if n != 2 {
				t.Errorf("Expected 2 saved, got %d", n)
			}

			got, err := s.GetSnapshot(ctx, "2")
			if err != nil {
				t.Fatalf("GetSnapshot failed: %v", err)
			}
			if got.Offer.Price.GrandTotal != "200.00" {
				t.Errorf("Expected total 200.00, got %s", got.Offer.Price.GrandTotal)
			}
			if got.Carriers["AA"] != "AMERICAN AIRLINES" {
				t.Errorf("Expected carriers to round trip, got %v", got.Carriers)
			}
			if got.Offer.Itineraries[0].Segments[0].Arrival.IataCode != "BOS" {
				t.Errorf("Expected segment arrival BOS")
			}

			if _, err := s.GetSnapshot(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSnapshotStore_LaterSaveReplaces(t *testing.T) {
	stores, _ := setupStores(t)
	ctx := context.Background()

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := s.SaveSnapshots(ctx, "a", []provider.OfferSnapshot{snapshot("1", "100.00")}); err != nil {
				t.Fatalf("SaveSnapshots failed: %v", err)
			}
			if _, err := s.SaveSnapshots(ctx, "b", []provider.OfferSnapshot{snapshot("1", "150.00")}); err != nil {
				t.Fatalf("SaveSnapshots failed: %v", err)
			}
			got, err := s.GetSnapshot(ctx, "1")
			if err != nil {
				t.Fatalf("GetSnapshot failed: %v", err)
			}
			if got.Offer.Price.GrandTotal != "150.00" {
				t.Errorf("Expected latest total 150.00, got %s", got.Offer.Price.GrandTotal)
			}
		})
	}
}

func TestSnapshotStore_Expiry(t *testing.T) {
	stores, clock := setupStores(t)
	ctx := context.Background()

	for _, s := range stores {
		if _, err := s.SaveSnapshots(ctx, "a", []provider.OfferSnapshot{snapshot("1", "100.00"), snapshot("2", "100.00")}); err != nil {
			t.Fatalf("SaveSnapshots failed: %v", err)
		}
	}

	clock.t = clock.t.Add(2 * time.Hour)

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := s.GetSnapshot(ctx, "1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected expired snapshot to be not found, got %v", err)
			}
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				t.Fatalf("PurgeExpired failed: %v", err)
			}
			if n != 2 {
				t.Errorf("Expected 2 purged, got %d", n)
			}
			n, err = s.PurgeExpired(ctx)
			if err != nil {
				t.Fatalf("PurgeExpired failed: %v", err)
			}
			if n != 0 {
				t.Errorf("Expected nothing left to purge, got %d", n)
			}
		})
	}
}

func TestSnapshotStore_EmptySave(t *testing.T) {
	stores, _ := setupStores(t)
	for name, s := range stores {
		n, err := s.SaveSnapshots(context.Background(), "a", nil)
		if err != nil || n != 0 {
			t.Errorf("%s: expected (0, nil), got (%d, %v)", name, n, err)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(DriverBolt, filepath.Join(dir, "x.bolt"), time.Minute)
	if err != nil {
		t.Fatalf("Open bolt failed: %v", err)
	}
	s.Close()

	s, err = Open(DriverSQLite, filepath.Join(dir, "x.db"), time.Minute)
	if err != nil {
		t.Fatalf("Open sqlite failed: %v", err)
	}
	s.Close()

	if _, err := Open("postgres", "", time.Minute); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}
