package daterange

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

var ErrInvalidRange = errors.New("daterange: until must not precede from")

const day = 24 * time.Hour

// Normalize truncates t to midnight UTC so comparisons never depend on
// time-of-day or the caller's zone.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateRange is a closed interval of calendar days: both From and Until are
// part of the stay.
type DateRange struct {
	From  time.Time
	Until time.Time
}

func New(from, until time.Time) (DateRange, error) {
	dr := DateRange{From: Normalize(from), Until: Normalize(until)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.From.IsZero() || dr.Until.IsZero() {
		return ErrInvalidRange
	}
	if dr.Until.Before(dr.From) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts calendar days inclusive of both endpoints, so a single-day
// range is one night.
func (dr DateRange) Nights() int {
	return int(dr.Until.Sub(dr.From)/day) + 1
}

// Overlaps reports whether the closed intervals share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.From.After(other.Until) && !other.From.After(dr.Until)
}

// Contains reports whether other lies fully inside the receiver.
func (dr DateRange) Contains(other DateRange) bool {
	return !dr.From.After(other.From) && !dr.Until.Before(other.Until)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Normalize(t)
	return !t.Before(dr.From) && !t.After(dr.Until)
}

// Adjacent reports ranges that touch without sharing a day. Adjacent ranges
// do not overlap.
func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.Until.Add(day).Equal(other.From) || other.Until.Add(day).Equal(dr.From)
}

// Days yields every day of the range in order. The sequence is finite and
// restartable.
func (dr DateRange) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := dr.From; !d.After(dr.Until); d = d.Add(day) {
			if !yield(d) {
				return
			}
		}
	}
}

// Intersect returns the days shared by both ranges.
func (dr DateRange) Intersect(other DateRange) (DateRange, bool) {
	from := dr.From
	if other.From.After(from) {
		from = other.From
	}
	until := dr.Until
	if other.Until.Before(until) {
		until = other.Until
	}
	if until.Before(from) {
		return DateRange{}, false
	}
	return DateRange{From: from, Until: until}, true
}

func (dr DateRange) String() string {
	return fmt.Sprintf("%s..%s", dr.From.Format(time.DateOnly), dr.Until.Format(time.DateOnly))
}
