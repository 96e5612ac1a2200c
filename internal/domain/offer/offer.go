package offer

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var (
	ErrNotFound     = errors.New("offer: not found")
	ErrNegativeRate = errors.New("offer: nightly rate must not be negative")
)

type OfferID string

// Offer is a bookable unit published by the offer-management collaborator.
// The engine treats it as read-only: a fixed active window and a nightly rate.
type Offer struct {
	ID            OfferID
	Window        daterange.DateRange
	PricePerNight money.Money
}

func New(id OfferID, window daterange.DateRange, pricePerNight money.Money) (*Offer, error) {
	if id == "" {
		return nil, errors.New("offer: id required")
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if pricePerNight.Amount < 0 {
		return nil, ErrNegativeRate
	}
	return &Offer{ID: id, Window: window, PricePerNight: pricePerNight}, nil
}

// ContainsRange reports whether a requested stay lies fully inside the
// offer's active window.
func (o *Offer) ContainsRange(r daterange.DateRange) bool {
	return o.Window.Contains(r)
}

type Repository interface {
	ByID(ctx context.Context, id OfferID) (*Offer, error)
	Save(ctx context.Context, offer *Offer) error
}

// OutOfWindowError reports a requested range that escapes the offer's
// active window. It carries both ranges so the caller can render the
// violation without extra lookups.
type OutOfWindowError struct {
	OfferID   OfferID
	Window    daterange.DateRange
	Requested daterange.DateRange
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("offer %s: range %s outside active window %s", e.OfferID, e.Requested, e.Window)
}
