package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizes(t *testing.T) {
	assert.Equal(t, New(2025, 3, 1), New(2025, 2, 29))
	assert.Equal(t, "2024-02-29", New(2024, 2, 29).String())
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-7-1")
	require.NoError(t, err)
	assert.Equal(t, New(2025, time.July, 1), d)

	_, err = Parse("01/07/2025")
	require.Error(t, err)
}

func TestParseFlexible(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-03-15", New(2024, 3, 15)},
		{"15/03/2024", New(2024, 3, 15)},
		{"15-3-24", New(2024, 3, 15)},
		{"15.03.2024", New(2024, 3, 15)},
		{"15 03 2024", New(2024, 3, 15)},
		{"2024/3/5", New(2024, 3, 5)},
		{" 01/01/2025 ", New(2025, 1, 1)},
	}
	for _, tt := range tests {
		got, err := ParseFlexible(tt.in)
		require.NoError(t, err, "ParseFlexible(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseFlexible(%q)", tt.in)
	}
}

func TestParseFlexible_Invalid(t *testing.T) {
	for _, in := range []string{"", "2024-03", "31/02/2024", "15/13/2024", "abc"} {
		_, err := ParseFlexible(in)
		assert.Error(t, err, "ParseFlexible(%q) should fail", in)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		start  Date
		months int
		want   Date
	}{
		{New(2025, 1, 15), 1, New(2025, 2, 15)},
		{New(2025, 11, 10), 3, New(2026, 2, 10)},
		{New(2025, 7, 1), 6, New(2026, 1, 1)},
		{New(2025, 1, 1), 12, New(2026, 1, 1)},
		{New(2025, 12, 1), 12, New(2026, 12, 1)},
		{New(2025, 1, 31), 1, New(2025, 2, 28)},
		{New(2024, 1, 31), 1, New(2024, 2, 29)},
		{New(2025, 3, 15), -3, New(2024, 12, 15)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.start.AddMonths(tt.months), "%s + %d months", tt.start, tt.months)
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 365, New(2025, 1, 1).DaysUntil(New(2026, 1, 1)))
	assert.Equal(t, 366, New(2024, 1, 1).DaysUntil(New(2025, 1, 1)))
	assert.Equal(t, -1, New(2025, 1, 2).DaysUntil(New(2025, 1, 1)))
}

func TestScanValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-04-30"))
	assert.Equal(t, New(2025, 4, 30), d)

	require.NoError(t, d.Scan([]byte("2025-05-01")))
	assert.Equal(t, New(2025, 5, 1), d)

	require.NoError(t, d.Scan(time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, New(2025, 6, 2), d)

	require.NoError(t, d.Scan("2025-06-03 00:00:00"))
	assert.Equal(t, New(2025, 6, 3), d)

	require.Error(t, d.Scan(42))

	v, err := New(2025, 1, 9).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(New(2025, 8, 7))
	require.NoError(t, err)
	assert.Equal(t, `"2025-08-07"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, New(2025, 8, 7), d)
}
