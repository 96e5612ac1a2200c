package availability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
)

// Calculator is a pure read over current booking state: it holds no store of
// its own. Expiry is re-evaluated eagerly against the injected clock so a
// stale PENDING booking never blocks dates past its payment window.
type Calculator struct {
	offers   offer.Repository
	bookings booking.Repository
	clock    clock.Clock
}

func NewCalculator(offers offer.Repository, bookings booking.Repository, clk clock.Clock) *Calculator {
	return &Calculator{offers: offers, bookings: bookings, clock: clk}
}

// ActiveRanges returns the date ranges of every booking still consuming
// availability for the offer.
func (c *Calculator) ActiveRanges(ctx context.Context, offerID offer.OfferID) ([]daterange.DateRange, error) {
	all, err := c.bookings.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	ranges := make([]daterange.DateRange, 0, len(all))
	for _, b := range all {
		if b.Active(now) {
			ranges = append(ranges, b.Range)
		}
	}
	return ranges, nil
}

// BlockedDates returns the sorted union of days covered by active bookings.
func (c *Calculator) BlockedDates(ctx context.Context, offerID offer.OfferID) ([]time.Time, error) {
	if _, err := c.offers.ByID(ctx, offerID); err != nil {
		return nil, err
	}
	ranges, err := c.ActiveRanges(ctx, offerID)
	if err != nil {
		return nil, err
	}
	seen := make(map[time.Time]struct{})
	for _, r := range ranges {
		for d := range r.Days() {
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// IsRangeFree reports whether r shares no day with any active booking and
// lies fully inside the offer's active window. Ranges that merely abut an
// existing booking are free.
func (c *Calculator) IsRangeFree(ctx context.Context, offerID offer.OfferID, r daterange.DateRange) (bool, error) {
	o, err := c.offers.ByID(ctx, offerID)
	if err != nil {
		return false, err
	}
	if !o.ContainsRange(r) {
		return false, nil
	}
	conflicts, err := c.Conflicts(ctx, offerID, r)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns the sub-ranges of r already held by active bookings,
// sorted by start date. Used to populate DateRangeUnavailableError.
func (c *Calculator) Conflicts(ctx context.Context, offerID offer.OfferID, r daterange.DateRange) ([]daterange.DateRange, error) {
	ranges, err := c.ActiveRanges(ctx, offerID)
	if err != nil {
		return nil, err
	}
	var conflicts []daterange.DateRange
	for _, held := range ranges {
		if shared, ok := r.Intersect(held); ok {
			conflicts = append(conflicts, shared)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].From.Before(conflicts[j].From) })
	return conflicts, nil
}

// DateRangeUnavailableError reports an admission conflict, naming the
// overlapping sub-ranges so the caller can suggest alternatives. The
// conflict is a logical fact, not a transient failure: retrying the same
// range is pointless.
type DateRangeUnavailableError struct {
	OfferID   offer.OfferID
	Requested daterange.DateRange
	Conflicts []daterange.DateRange
}

func (e *DateRangeUnavailableError) Error() string {
	spans := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		spans = append(spans, c.String())
	}
	return fmt.Sprintf("offer %s: range %s unavailable, conflicts: %s", e.OfferID, e.Requested, strings.Join(spans, ", "))
}
