package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidState        = errors.New("booking: invalid state transition")
	ErrPaymentWindowClosed = errors.New("booking: payment window closed")
	ErrNotFound            = errors.New("booking: not found")
	// ErrConcurrentUpdate is returned by repositories when a versioned save
	// loses a write race. Callers may retry after reloading.
	ErrConcurrentUpdate = errors.New("booking: concurrent update detected")
)

// PaymentWindow is the fixed interval after creation during which a PENDING
// booking may be paid. There is no renewal or extension.
const PaymentWindow = 60 * time.Minute

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusExpired
}

// Booking is one reservation attempt and its outcome. The price is computed
// once at admission and never recomputed.
type Booking struct {
	ID          BookingID
	OfferID     offer.OfferID
	RequesterID string
	Range       daterange.DateRange
	Price       money.Money
	Status      Status
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Version     int64
	events.Recorder
}

type CreateParams struct {
	ID          BookingID
	OfferID     offer.OfferID
	RequesterID string
	Range       daterange.DateRange
	Price       money.Money
	CreatedAt   time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.ID == "" {
		return nil, errors.New("booking: id required")
	}
	if params.OfferID == "" {
		return nil, errors.New("booking: offer id required")
	}
	if params.RequesterID == "" {
		return nil, errors.New("booking: requester id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		OfferID:     params.OfferID,
		RequesterID: params.RequesterID,
		Range:       params.Range,
		Price:       params.Price,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(PaymentWindow),
	}
	b.Record(BookingCreated{BookingID: b.ID, OfferID: b.OfferID, RequesterID: b.RequesterID, Range: b.Range, Price: b.Price, At: now})
	return b, nil
}

// Pay transitions PENDING to PAID while the payment window is open. A
// PENDING booking past its deadline is expired in place and the payment
// rejected, so callers observe the expiry even before the sweep runs.
func (b *Booking) Pay(now time.Time) error {
	if b.Status != StatusPending {
		return &InvalidTransitionError{Action: "pay", Status: b.Status}
	}
	if !now.Before(b.ExpiresAt) {
		b.expire(now)
		return ErrPaymentWindowClosed
	}
	b.Status = StatusPaid
	b.Record(BookingPaid{BookingID: b.ID, OfferID: b.OfferID, At: now.UTC()})
	return nil
}

// Cancel transitions PENDING to CANCELLED. Paid and terminal bookings are
// rejected; a PENDING booking past its deadline is treated as already
// expired.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status == StatusPending && !now.Before(b.ExpiresAt) {
		b.expire(now)
		return &InvalidTransitionError{Action: "cancel", Status: b.Status}
	}
	if b.Status != StatusPending {
		return &InvalidTransitionError{Action: "cancel", Status: b.Status}
	}
	b.Status = StatusCancelled
	b.Record(BookingCancelled{BookingID: b.ID, OfferID: b.OfferID, Range: b.Range, At: now.UTC()})
	return nil
}

// ExpireIfDue applies the passive timeout. It reports whether a transition
// happened; applying it to an already terminal booking is a no-op, never an
// error.
func (b *Booking) ExpireIfDue(now time.Time) bool {
	if b.Status != StatusPending || now.Before(b.ExpiresAt) {
		return false
	}
	b.expire(now)
	return true
}

func (b *Booking) expire(now time.Time) {
	b.Status = StatusExpired
	b.Record(BookingExpired{BookingID: b.ID, OfferID: b.OfferID, Range: b.Range, At: now.UTC()})
}

// Active reports whether the booking still consumes availability: PAID, or
// PENDING with an open payment window. Expiry is evaluated eagerly here so
// readers never see phantom unavailability from a stale PENDING record.
func (b *Booking) Active(now time.Time) bool {
	switch b.Status {
	case StatusPaid:
		return true
	case StatusPending:
		return now.Before(b.ExpiresAt)
	default:
		return false
	}
}

// RemainingToPay returns the non-negative time left in the payment window,
// zero for anything not awaiting payment.
func (b *Booking) RemainingToPay(now time.Time) time.Duration {
	if b.Status != StatusPending {
		return 0
	}
	remaining := b.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByOffer(ctx context.Context, offerID offer.OfferID) ([]*Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*Booking, error)
	// ListDuePending returns PENDING bookings whose payment window closed
	// at or before asOf. Used by the expiry sweep.
	ListDuePending(ctx context.Context, asOf time.Time) ([]*Booking, error)
}

// InvalidTransitionError names the rejected action and the status that
// rejected it, so the caller can explain the failure.
type InvalidTransitionError struct {
	Action string
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking: cannot %s a %s booking", e.Action, e.Status)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidState }
