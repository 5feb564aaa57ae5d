package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, value)
	require.NoError(t, err)
	return d
}

func TestComputeWindowNextIteration(t *testing.T) {
	inception := date(t, "2025-01-06")
	asOf := date(t, "2025-01-20")

	current := ComputeWindow(inception, SelectCurrent, asOf)
	next := ComputeWindow(inception, SelectNext, asOf)

	assert.Equal(t, 2, current.Index)
	assert.Equal(t, 3, next.Index)
	assert.Equal(t, "2025-01-27", next.Label)
	assert.Equal(t, "2025-02-03", next.End.Format(DateLayout))
}

func TestComputeWindowIndexIsFloorOfWeeks(t *testing.T) {
	inception := date(t, "2022-06-06")
	for days := 0; days < 120; days++ {
		asOf := inception.AddDate(0, 0, days)
		current := ComputeWindow(inception, SelectCurrent, asOf)
		next := ComputeWindow(inception, SelectNext, asOf)
		if current.Index != days/7 {
			t.Fatalf("day %d: index %d, want %d", days, current.Index, days/7)
		}
		if next.Index != current.Index+1 {
			t.Fatalf("day %d: next index %d, current %d", days, next.Index, current.Index)
		}
		if asOf.Before(current.Start) || !asOf.Before(current.End) {
			t.Fatalf("day %d: %s outside window %s", days, asOf.Format(DateLayout), current)
		}
	}
}

func TestComputeWindowBeforeInceptionClamps(t *testing.T) {
	w := ComputeWindow(date(t, "2025-01-06"), SelectCurrent, date(t, "2024-12-01"))
	assert.Equal(t, 0, w.Index)
	assert.Equal(t, "2025-01-06", w.Label)
}

func TestComputeWindowIgnoresTimeOfDay(t *testing.T) {
	inception := date(t, "2025-01-06")
	late := time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 0, ComputeWindow(inception, SelectCurrent, late).Index)
	assert.Equal(t, 1, ComputeWindow(inception, SelectCurrent, late.Add(time.Second)).Index)
}

func TestComputeWindowUsesUTCDate(t *testing.T) {
	inception := date(t, "2025-01-06")
	pacific := time.FixedZone("PST", -8*60*60)
	// 2025-01-13 04:00 UTC.
	evening := time.Date(2025, 1, 12, 20, 0, 0, 0, pacific)

	w := ComputeWindow(inception, SelectCurrent, evening)
	assert.Equal(t, 1, w.Index)
	assert.Equal(t, "2025-01-13", w.Label)
}

func TestComputeWindowDistantInception(t *testing.T) {
	inception := date(t, "1700-01-04")
	asOf := date(t, "2025-01-20")

	w := ComputeWindow(inception, SelectCurrent, asOf)
	if asOf.Before(w.Start) || !asOf.Before(w.End) {
		t.Fatalf("%s outside window %s", asOf.Format(DateLayout), w)
	}
	assert.Greater(t, w.Index, 16000)
}

func TestParseSelector(t *testing.T) {
	sel, err := ParseSelector("@next")
	require.NoError(t, err)
	assert.Equal(t, SelectNext, sel)

	sel, err = ParseSelector("@current")
	require.NoError(t, err)
	assert.Equal(t, SelectCurrent, sel)

	_, err = ParseSelector("Iteration 4")
	assert.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, Cadence, s.Cadence)

	_, err = ParseSchedule("06/01/2025")
	assert.Error(t, err)
}
