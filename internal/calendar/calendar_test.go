package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	d, ok := DateOf("2025-10-26T23:40:00")
	require.True(t, ok)
	assert.Equal(t, "2025-10-26", d)

	// offsets are kept as written, not converted to UTC
	d, ok = DateOf("2025-10-26T23:40:00-05:00")
	require.True(t, ok)
	assert.Equal(t, "2025-10-26", d)

	_, ok = DateOf("not a date")
	assert.False(t, ok)
}

func TestSameDay(t *testing.T) {
	same, ok := SameDay("2025-10-26T23:40:00", "2025-10-27T01:10:00")
	assert.True(t, ok)
	assert.False(t, same)

	same, ok = SameDay("2025-10-26T08:00:00", "2025-10-26T11:15:00")
	assert.True(t, ok)
	assert.True(t, same)

	_, ok = SameDay("", "2025-10-26T11:15:00")
	assert.False(t, ok)
}
