package lifecycle

import (
	"context"
	"errors"
	"log/slog"

	"staybook/internal/app/locks"
	"staybook/internal/app/policies"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/clock"
)

// Manager owns the per-booking state machine after admission: pay, cancel
// and the passive expiry. Cancellation shares the per-offer admission lock
// so freeing a range is serialized with any admission for the same offer.
type Manager struct {
	bookings  booking.Repository
	locks     *locks.Keyed
	publisher policies.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewManager(bookings booking.Repository, keyed *locks.Keyed, publisher policies.EventPublisher, clk clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{bookings: bookings, locks: keyed, publisher: publisher, clock: clk, logger: logger}
}

// Pay settles a PENDING booking while its payment window is open. The whole
// decide-and-persist step runs inside the per-offer admission section with
// the clock read taken under the lock, so a payment straddling its deadline
// and a concurrent admission for an overlapping range serialize: whichever
// enters first decides, and the other observes the outcome. A booking past
// the window is expired in place and the payment rejected with
// booking.ErrPaymentWindowClosed; the returned booking then carries the
// EXPIRED status for the caller to render.
func (m *Manager) Pay(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	b, err := m.bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(string(b.OfferID))
	defer unlock()

	for reloaded := false; ; {
		payErr := b.Pay(m.clock.Now())
		if payErr != nil && !errors.Is(payErr, booking.ErrPaymentWindowClosed) {
			return b, payErr
		}
		// Persist either the PAID transition or the lazily detected expiry.
		saveErr := m.bookings.Save(ctx, b)
		if saveErr == nil {
			m.publish(ctx, b)
			return b, payErr
		}
		if !errors.Is(saveErr, booking.ErrConcurrentUpdate) || reloaded {
			return nil, saveErr
		}
		// Lost a version race, typically to the sweep. Reload once and let
		// the state machine decide against the current record.
		reloaded = true
		if b, err = m.bookings.ByID(ctx, id); err != nil {
			return nil, err
		}
	}
}

// Cancel voids a PENDING booking and frees its range before returning. It
// runs inside the per-offer admission section, so the freed range is visible
// to the next admission for the same offer.
func (m *Manager) Cancel(ctx context.Context, id booking.BookingID) error {
	b, err := m.bookings.ByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := m.locks.Lock(string(b.OfferID))
	defer unlock()

	for reloaded := false; ; {
		cancelErr := b.Cancel(m.clock.Now())
		if cancelErr != nil && len(b.PendingEvents()) == 0 {
			return cancelErr
		}
		// Either the cancellation or a lazily detected expiry changed state.
		saveErr := m.bookings.Save(ctx, b)
		if saveErr == nil {
			m.publish(ctx, b)
			return cancelErr
		}
		if !errors.Is(saveErr, booking.ErrConcurrentUpdate) || reloaded {
			return saveErr
		}
		reloaded = true
		if b, err = m.bookings.ByID(ctx, id); err != nil {
			return err
		}
	}
}

// ListByRequester returns the requester's bookings, applying lazy expiry so
// the statuses are current even between sweeps.
func (m *Manager) ListByRequester(ctx context.Context, requesterID string) ([]*booking.Booking, error) {
	items, err := m.bookings.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	for _, b := range items {
		if b.ExpireIfDue(now) {
			if err := m.bookings.Save(ctx, b); err != nil {
				if errors.Is(err, booking.ErrConcurrentUpdate) {
					continue // someone else already persisted a transition
				}
				return nil, err
			}
			m.publish(ctx, b)
		}
	}
	return items, nil
}

// Get returns one booking with lazy expiry applied and persisted.
func (m *Manager) Get(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	b, err := m.bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ExpireIfDue(m.clock.Now()) {
		if err := m.bookings.Save(ctx, b); err != nil && !errors.Is(err, booking.ErrConcurrentUpdate) {
			return nil, err
		}
		m.publish(ctx, b)
	}
	return b, nil
}

// SweepExpired applies the passive timeout to every due PENDING booking.
// Idempotent: a booking already transitioned by a concurrent pay, cancel or
// lazy read is skipped via the version check.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	due, err := m.bookings.ListDuePending(ctx, m.clock.Now())
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, b := range due {
		if !b.ExpireIfDue(m.clock.Now()) {
			continue
		}
		if err := m.bookings.Save(ctx, b); err != nil {
			if errors.Is(err, booking.ErrConcurrentUpdate) {
				continue
			}
			return expired, err
		}
		expired++
		m.publish(ctx, b)
	}
	return expired, nil
}

func (m *Manager) publish(ctx context.Context, b *booking.Booking) {
	if m.publisher == nil {
		return
	}
	pending := b.PendingEvents()
	b.ClearEvents()
	if len(pending) == 0 {
		return
	}
	if err := m.publisher.PublishEvents(ctx, pending); err != nil && m.logger != nil {
		m.logger.Warn("lifecycle event publish failed", "booking_id", b.ID, "error", err)
	}
}
