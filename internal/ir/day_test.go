package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Day(20240305), DayOf(ts))
}

func TestDayOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	ts := time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, Day(20240306), DayOf(ts))
}

func TestParseDay(t *testing.T) {
	for _, in := range []string{"20240102", "2024-01-02", "2024/01/02"} {
		d, err := ParseDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, Day(20240102), d)
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "2024012", "2024-02-30", "20241301", "abcdefgh"} {
		_, err := ParseDay(in)
		assert.Error(t, err, in)
	}
}

func TestDay_AddDays(t *testing.T) {
	assert.Equal(t, Day(20231102), Day(20240101).AddDays(-60))
	assert.Equal(t, Day(20240301), Day(20240229).AddDays(1))
	assert.Equal(t, Day(20231231), Day(20240101).AddDays(-1))
}

func TestDay_Parts(t *testing.T) {
	d := Day(20241207)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.December, d.Month())
	assert.Equal(t, 7, d.Date())
	assert.Equal(t, "20241207", d.String())
	assert.Equal(t, "", Day(0).String())
}

func TestDay_Valid(t *testing.T) {
	assert.True(t, Day(20240229).Valid())
	assert.False(t, Day(20230229).Valid())
	assert.False(t, Day(0).Valid())
	assert.False(t, Day(-20240101).Valid())
}
