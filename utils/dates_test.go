package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	// the caller's calendar date wins over the UTC instant
	got, err = ParseDate("2025-06-01T00:30:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)
}

func TestNightsBetween(t *testing.T) {
	in := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NightsBetween(in, in.AddDate(0, 0, 3)))
	assert.Equal(t, 1, NightsBetween(in, in.Add(5*time.Hour)))
	assert.Equal(t, 0, NightsBetween(in, in))
}
