package booking

import (
	"time"

	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID   BookingID           `json:"booking_id"`
	OfferID     offer.OfferID       `json:"offer_id"`
	RequesterID string              `json:"requester_id"`
	Range       daterange.DateRange `json:"range"`
	Price       money.Money         `json:"price"`
	At          time.Time           `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingPaid struct {
	BookingID BookingID     `json:"booking_id"`
	OfferID   offer.OfferID `json:"offer_id"`
	At        time.Time     `json:"at"`
}

func (e BookingPaid) EventName() string     { return "booking.paid" }
func (e BookingPaid) AggregateID() string   { return string(e.BookingID) }
func (e BookingPaid) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID           `json:"booking_id"`
	OfferID   offer.OfferID       `json:"offer_id"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingExpired struct {
	BookingID BookingID           `json:"booking_id"`
	OfferID   offer.OfferID       `json:"offer_id"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e BookingExpired) EventName() string     { return "booking.expired" }
func (e BookingExpired) AggregateID() string   { return string(e.BookingID) }
func (e BookingExpired) OccurredAt() time.Time { return e.At }
