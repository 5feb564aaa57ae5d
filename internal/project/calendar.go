package project

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the label format of iteration windows and dates in titles.
	DateLayout = "2006-01-02"

	// Cadence is the length of one iteration in days.
	Cadence = 7
)

type IterationSelector int

const (
	SelectCurrent IterationSelector = iota
	SelectNext
)

func ParseSelector(value string) (IterationSelector, error) {
	switch value {
	case "@current":
		return SelectCurrent, nil
	case "@next":
		return SelectNext, nil
	default:
		return 0, fmt.Errorf("iteration must be @current or @next, got %q", value)
	}
}

func (s IterationSelector) String() string {
	if s == SelectNext {
		return "@next"
	}
	return "@current"
}

// Schedule is a run of consecutive fixed-length iterations starting at Inception.
type Schedule struct {
	Inception time.Time
	Cadence   int
}

func NewSchedule(inception time.Time) Schedule {
	return Schedule{Inception: civil(inception), Cadence: Cadence}
}

// ParseSchedule builds a weekly schedule from a YYYY-MM-DD inception date.
func ParseSchedule(inception string) (Schedule, error) {
	t, err := time.Parse(DateLayout, inception)
	if err != nil {
		return Schedule{}, fmt.Errorf("inception must be a YYYY-MM-DD date: %w", err)
	}
	return NewSchedule(t), nil
}

// Window is one iteration of a schedule. End is exclusive.
type Window struct {
	Index int
	Start time.Time
	End   time.Time
	Label string
}

func (w Window) String() string {
	return fmt.Sprintf("#%d %s..%s", w.Index, w.Label, w.End.AddDate(0, 0, -1).Format(DateLayout))
}

// ComputeWindow returns the iteration the selector refers to as of asOf,
// with weekly iterations starting at inception.
func ComputeWindow(inception time.Time, sel IterationSelector, asOf time.Time) Window {
	return NewSchedule(inception).Window(sel, asOf)
}

func (s Schedule) Window(sel IterationSelector, asOf time.Time) Window {
	index := s.Index(asOf)
	if sel == SelectNext {
		index++
	}
	return s.At(index)
}

// Index is the zero-based iteration containing asOf. Dates before the
// inception clamp to the first iteration.
func (s Schedule) Index(asOf time.Time) int {
	days := (civil(asOf).Unix() - civil(s.Inception).Unix()) / secondsPerDay
	if days < 0 {
		return 0
	}
	return int(days / int64(s.cadence()))
}

func (s Schedule) At(index int) Window {
	start := s.Inception.AddDate(0, 0, index*s.cadence())
	return Window{
		Index: index,
		Start: start,
		End:   start.AddDate(0, 0, s.cadence()),
		Label: start.Format(DateLayout),
	}
}

func (s Schedule) cadence() int {
	if s.Cadence <= 0 {
		return Cadence
	}
	return s.Cadence
}

const secondsPerDay = 24 * 60 * 60

// civil truncates t to midnight of its UTC calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
