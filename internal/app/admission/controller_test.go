package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/availability"
	"staybook/internal/app/locks"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, until time.Time) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(from, until)
	require.NoError(t, err)
	return r
}

type capturedEvents struct {
	mu   sync.Mutex
	evts []events.DomainEvent
}

func (c *capturedEvents) PublishEvents(ctx context.Context, evts []events.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evts = append(c.evts, evts...)
	return nil
}

func (c *capturedEvents) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.evts))
	for _, e := range c.evts {
		out = append(out, e.EventName())
	}
	return out
}

type fixture struct {
	offers     *memory.OfferRepository
	bookings   *memory.BookingRepository
	clock      *clock.Fake
	published  *capturedEvents
	controller *Controller
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	offers := memory.NewOfferRepository()
	bookings := memory.NewBookingRepository()
	clk := clock.NewFake(date(2024, 5, 1))
	published := &capturedEvents{}

	o, err := offer.New("o-1", daterange.DateRange{From: date(2024, 6, 1), Until: date(2024, 6, 30)}, money.Must(10000, "USD"))
	require.NoError(t, err)
	require.NoError(t, offers.Save(context.Background(), o))

	calc := availability.NewCalculator(offers, bookings, clk)
	controller := NewController(Config{
		Offers:    offers,
		Bookings:  bookings,
		Calc:      calc,
		Locks:     locks.NewKeyed(),
		Publisher: published,
		Clock:     clk,
		Backoff:   []time.Duration{time.Millisecond, time.Millisecond},
	})
	return fixture{offers: offers, bookings: bookings, clock: clk, published: published, controller: controller}
}

func TestAdmit_CreatesPendingBooking(t *testing.T) {
	f := newFixture(t)
	r := mustRange(t, date(2024, 6, 1), date(2024, 6, 3))

	b, err := f.controller.Admit(context.Background(), "o-1", "guest-1", r)
	require.NoError(t, err)

	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, money.Must(30000, "USD"), b.Price, "three inclusive nights at 100")
	assert.Equal(t, f.clock.Now().Add(booking.PaymentWindow), b.ExpiresAt)
	assert.NotEmpty(t, b.ID)

	stored, err := f.bookings.ByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, stored.Status)

	assert.Equal(t, []string{"booking.created"}, f.published.names())
}

func TestAdmit_UnknownOffer(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Admit(context.Background(), "missing", "guest-1", mustRange(t, date(2024, 6, 1), date(2024, 6, 2)))
	require.ErrorIs(t, err, offer.ErrNotFound)
}

func TestAdmit_OutOfWindow(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Admit(context.Background(), "o-1", "guest-1", mustRange(t, date(2024, 5, 30), date(2024, 6, 2)))

	var oow *offer.OutOfWindowError
	require.ErrorAs(t, err, &oow)
	assert.Equal(t, date(2024, 6, 1), oow.Window.From)
	assert.Equal(t, date(2024, 5, 30), oow.Requested.From)
}

func TestAdmit_ConflictNamesSpans(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Admit(context.Background(), "o-1", "guest-1", mustRange(t, date(2024, 6, 5), date(2024, 6, 10)))
	require.NoError(t, err)

	_, err = f.controller.Admit(context.Background(), "o-1", "guest-2", mustRange(t, date(2024, 6, 8), date(2024, 6, 12)))

	var unavailable *availability.DateRangeUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Len(t, unavailable.Conflicts, 1)
	assert.Equal(t, date(2024, 6, 8), unavailable.Conflicts[0].From)
	assert.Equal(t, date(2024, 6, 10), unavailable.Conflicts[0].Until)
}

func TestAdmit_AdjacentRangesBothAdmitted(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Admit(context.Background(), "o-1", "guest-1", mustRange(t, date(2024, 6, 5), date(2024, 6, 10)))
	require.NoError(t, err)

	_, err = f.controller.Admit(context.Background(), "o-1", "guest-2", mustRange(t, date(2024, 6, 11), date(2024, 6, 14)))
	require.NoError(t, err, "adjacency without day overlap is allowed")
}

func TestAdmit_ConcurrentOverlap_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	r := mustRange(t, date(2024, 6, 5), date(2024, 6, 10))

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.controller.Admit(context.Background(), "o-1", "guest", r)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var unavailable *availability.DateRangeUnavailableError
		require.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, wins)

	// The no-overlap invariant holds in storage too.
	all, err := f.bookings.ListByOffer(context.Background(), "o-1")
	require.NoError(t, err)
	now := f.clock.Now()
	var active []*booking.Booking
	for _, b := range all {
		if b.Active(now) {
			active = append(active, b)
		}
	}
	require.Len(t, active, 1)
}

func TestAdmit_IndependentOffersInParallel(t *testing.T) {
	f := newFixture(t)
	o2, err := offer.New("o-2", daterange.DateRange{From: date(2024, 6, 1), Until: date(2024, 6, 30)}, money.Must(5000, "USD"))
	require.NoError(t, err)
	require.NoError(t, f.offers.Save(context.Background(), o2))

	r := mustRange(t, date(2024, 6, 5), date(2024, 6, 10))
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []offer.OfferID{"o-1", "o-2"} {
		wg.Add(1)
		go func(i int, id offer.OfferID) {
			defer wg.Done()
			_, errs[i] = f.controller.Admit(context.Background(), id, "guest", r)
		}(i, id)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
}
