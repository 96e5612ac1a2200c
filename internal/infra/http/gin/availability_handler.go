package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/availability"
	"staybook/internal/app/dto"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Calc *availability.Calculator
}

// Calendar returns the offer's blocked dates for a disabled-date calendar.
// Optional from/until query params clip the result to a display window.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	offerID := offer.OfferID(c.Param("id"))
	dates, err := h.Calc.BlockedDates(c.Request.Context(), offerID)
	if err != nil {
		respondError(c, err)
		return
	}

	var window *daterange.DateRange
	if fromStr, untilStr := c.Query("from"), c.Query("until"); fromStr != "" && untilStr != "" {
		from, err := dto.ParseWireDate(fromStr)
		if err != nil {
			respondError(c, err)
			return
		}
		until, err := dto.ParseWireDate(untilStr)
		if err != nil {
			respondError(c, err)
			return
		}
		w, err := daterange.New(from, until)
		if err != nil {
			respondError(c, err)
			return
		}
		window = &w
	}

	c.JSON(http.StatusOK, dto.MapCalendar(offerID, dates, window))
}

var _ AvailabilityHTTP = AvailabilityHandler{}
