package dto

import (
	"time"

	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
)

type Calendar struct {
	OfferID      string   `json:"offer_id"`
	BlockedDates []string `json:"blocked_dates"`
}

// MapCalendar renders blocked dates as wire strings, optionally clipped to a
// display window for the disabled-date calendar.
func MapCalendar(offerID offer.OfferID, dates []time.Time, window *daterange.DateRange) Calendar {
	out := Calendar{OfferID: string(offerID), BlockedDates: make([]string, 0, len(dates))}
	for _, d := range dates {
		if window != nil && !window.ContainsDate(d) {
			continue
		}
		out.BlockedDates = append(out.BlockedDates, FormatWireDate(d))
	}
	return out
}
