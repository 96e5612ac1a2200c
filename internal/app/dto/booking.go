package dto

import (
	"fmt"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// WireDateLayout is the MM.DD.YYYY textual date format the surrounding
// system exchanges. Internally everything is a calendar date at midnight UTC.
const WireDateLayout = "01.02.2006"

// TimeToPayExpired is the literal rendered once the payment window is past.
const TimeToPayExpired = "Expired"

func ParseWireDate(s string) (time.Time, error) {
	t, err := time.Parse(WireDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a %s date", daterange.ErrInvalidRange, s, "MM.DD.YYYY")
	}
	return daterange.Normalize(t), nil
}

func FormatWireDate(t time.Time) string {
	return t.Format(WireDateLayout)
}

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type BookingDTO struct {
	ID          string    `json:"id"`
	OfferID     string    `json:"offer_id"`
	RequesterID string    `json:"requester_id"`
	DateFrom    string    `json:"date_from"`
	DateUntil   string    `json:"date_until"`
	Status      string    `json:"status"`
	Price       MoneyDTO  `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	TimeToPay   string    `json:"time_to_pay,omitempty"`
}

type BookingCollection struct {
	Items []BookingDTO `json:"items"`
}

// MapBooking renders a booking for the wire. TimeToPay is the remaining
// payment window floored to whole minutes, the literal "Expired" once past,
// and omitted for settled bookings.
func MapBooking(b *booking.Booking, now time.Time) BookingDTO {
	return BookingDTO{
		ID:          string(b.ID),
		OfferID:     string(b.OfferID),
		RequesterID: b.RequesterID,
		DateFrom:    FormatWireDate(b.Range.From),
		DateUntil:   FormatWireDate(b.Range.Until),
		Status:      string(b.Status),
		Price:       MapMoney(b.Price),
		CreatedAt:   b.CreatedAt,
		ExpiresAt:   b.ExpiresAt,
		TimeToPay:   timeToPay(b, now),
	}
}

func MapBookingCollection(items []*booking.Booking, now time.Time) BookingCollection {
	out := BookingCollection{Items: make([]BookingDTO, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b, now))
	}
	return out
}

func timeToPay(b *booking.Booking, now time.Time) string {
	switch b.Status {
	case booking.StatusExpired:
		return TimeToPayExpired
	case booking.StatusPending:
		if !now.Before(b.ExpiresAt) {
			return TimeToPayExpired
		}
		return fmt.Sprintf("%dm", int(b.RemainingToPay(now).Minutes()))
	default:
		return ""
	}
}
