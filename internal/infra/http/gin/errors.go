package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/admission"
	"staybook/internal/app/availability"
	"staybook/internal/app/dto"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
)

// respondError maps engine errors to HTTP statuses with structured detail,
// so the UI can explain a failure without free-text parsing.
func respondError(c *gin.Context, err error) {
	var (
		outOfWindow *offer.OutOfWindowError
		unavailable *availability.DateRangeUnavailableError
		badState    *booking.InvalidTransitionError
	)
	switch {
	case errors.Is(err, offer.ErrNotFound), errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.As(err, &outOfWindow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        "out_of_window",
			"window_from":  dto.FormatWireDate(outOfWindow.Window.From),
			"window_until": dto.FormatWireDate(outOfWindow.Window.Until),
		})
	case errors.As(err, &unavailable):
		conflicts := make([]gin.H, 0, len(unavailable.Conflicts))
		for _, span := range unavailable.Conflicts {
			conflicts = append(conflicts, gin.H{
				"from":  dto.FormatWireDate(span.From),
				"until": dto.FormatWireDate(span.Until),
			})
		}
		c.JSON(http.StatusConflict, gin.H{"error": "date_range_unavailable", "conflicts": conflicts})
	case errors.Is(err, daterange.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range", "detail": err.Error()})
	case errors.Is(err, booking.ErrPaymentWindowClosed):
		c.JSON(http.StatusGone, gin.H{"error": "booking_expired"})
	case errors.As(err, &badState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state_transition", "status": string(badState.Status)})
	case errors.Is(err, admission.ErrUnavailable), errors.Is(err, booking.ErrConcurrentUpdate):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
