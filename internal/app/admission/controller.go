package admission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/availability"
	"staybook/internal/app/locks"
	"staybook/internal/app/policies"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
)

// ErrUnavailable is surfaced when the admission section stays contended
// past the bounded retry budget. Unlike a date conflict this is transient.
var ErrUnavailable = errors.New("admission: temporarily unavailable, retry later")

// Controller turns a booking request into a PENDING booking, or rejects it.
// The per-offer lock is the single synchronization point that keeps
// "read availability → write new booking" atomic, so two concurrent requests
// can never both observe a free range and create overlapping bookings.
type Controller struct {
	offers    offer.Repository
	bookings  booking.Repository
	calc      *availability.Calculator
	locks     *locks.Keyed
	publisher policies.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
	backoff   []time.Duration
}

type Config struct {
	Offers    offer.Repository
	Bookings  booking.Repository
	Calc      *availability.Calculator
	Locks     *locks.Keyed
	Publisher policies.EventPublisher
	Clock     clock.Clock
	Logger    *slog.Logger
	// Backoff bounds the local retries on storage write contention.
	Backoff []time.Duration
}

func NewController(cfg Config) *Controller {
	return &Controller{
		offers:    cfg.Offers,
		bookings:  cfg.Bookings,
		calc:      cfg.Calc,
		locks:     cfg.Locks,
		publisher: cfg.Publisher,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		backoff:   cfg.Backoff,
	}
}

// Admit validates the request, checks availability under the per-offer
// admission section and persists a PENDING booking with a fresh payment
// window. The stored price is fixed here and never recomputed.
func (c *Controller) Admit(ctx context.Context, offerID offer.OfferID, requesterID string, r daterange.DateRange) (*booking.Booking, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	o, err := c.offers.ByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.ContainsRange(r) {
		return nil, &offer.OutOfWindowError{OfferID: o.ID, Window: o.Window, Requested: r}
	}

	unlock := c.locks.Lock(string(offerID))
	b, err := c.admitLocked(ctx, o, requesterID, r)
	unlock()
	if err != nil {
		return nil, err
	}

	c.publish(ctx, b)
	return b, nil
}

func (c *Controller) admitLocked(ctx context.Context, o *offer.Offer, requesterID string, r daterange.DateRange) (*booking.Booking, error) {
	conflicts, err := c.calc.Conflicts(ctx, o.ID, r)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &availability.DateRangeUnavailableError{OfferID: o.ID, Requested: r, Conflicts: conflicts}
	}

	price, err := pricing.Quote(r, o.PricePerNight)
	if err != nil {
		return nil, err
	}

	b, err := booking.New(booking.CreateParams{
		ID:          booking.BookingID(uuid.NewString()),
		OfferID:     o.ID,
		RequesterID: requesterID,
		Range:       r,
		Price:       price,
		CreatedAt:   c.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := c.saveWithRetry(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// saveWithRetry absorbs bounded storage write contention. Date conflicts are
// never retried here: they are decided before the save, under the lock.
func (c *Controller) saveWithRetry(ctx context.Context, b *booking.Booking) error {
	err := c.bookings.Save(ctx, b)
	for attempt := 0; errors.Is(err, booking.ErrConcurrentUpdate) && attempt < len(c.backoff); attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff[attempt]):
		}
		if c.logger != nil {
			c.logger.Warn("admission save contended", "booking_id", b.ID, "attempt", attempt+1)
		}
		err = c.bookings.Save(ctx, b)
	}
	if errors.Is(err, booking.ErrConcurrentUpdate) {
		return ErrUnavailable
	}
	return err
}

func (c *Controller) publish(ctx context.Context, b *booking.Booking) {
	if c.publisher == nil {
		return
	}
	pending := b.PendingEvents()
	b.ClearEvents()
	if err := c.publisher.PublishEvents(ctx, pending); err != nil && c.logger != nil {
		c.logger.Warn("admission event publish failed", "booking_id", b.ID, "error", err)
	}
}
