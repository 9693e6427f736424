package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-offers-api/internal/models"
)

func TestInMemoryCache_SetGetExpire(t *testing.T) {
	c := NewInMemoryCache()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 0, c.Len(), "expired entries are evicted on read")
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := AirportNameKey(string(rune('A' + i%26)))
			_ = c.Set(ctx, key, []byte("x"), time.Minute)
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, c.Len())
}

func TestJSONHelpers(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	in := []models.AirportSuggestion{{Code: "JFK", Name: "JOHN F KENNEDY INTL"}}
	require.NoError(t, SetJSON(ctx, c, SuggestionsKey(" jf "), in, time.Minute))

	var out []models.AirportSuggestion
	require.NoError(t, GetJSON(ctx, c, SuggestionsKey("JF"), &out))
	assert.Equal(t, in, out)

	assert.ErrorIs(t, GetJSON(ctx, c, SuggestionsKey("zz"), &out), ErrNotFound)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "airport:name:JFK", AirportNameKey("jfk"))

	a := SearchKey(models.SearchParams{Origin: "jfk", Destination: "LAX", DepartureDate: "2030-06-10", Adults: 1, Currency: "usd"})
	b := SearchKey(models.SearchParams{Origin: "JFK", Destination: "lax", DepartureDate: "2030-06-10", Adults: 1, Currency: "USD"})
	assert.Equal(t, a, b)

	c := SearchKey(models.SearchParams{Origin: "JFK", Destination: "LAX", DepartureDate: "2030-06-10", ReturnDate: "2030-06-17", Adults: 1, Currency: "USD"})
	assert.NotEqual(t, a, c)
}
