package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/admission"
	"staybook/internal/app/dto"
	"staybook/internal/app/lifecycle"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
)

// requesterHeader carries the caller identity. Authentication itself lives
// with a collaborator service; the engine only needs a stable requester id.
const requesterHeader = "X-Requester-ID"

type BookingHandler struct {
	Admission *admission.Controller
	Lifecycle *lifecycle.Manager
	Clock     clock.Clock
}

type createBookingRequest struct {
	OfferID   string `json:"offer_id" binding:"required"`
	DateFrom  string `json:"date_from" binding:"required"`
	DateUntil string `json:"date_until" binding:"required"`
}

func (h BookingHandler) Create(c *gin.Context) {
	requesterID, ok := requireRequester(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}
	from, err := dto.ParseWireDate(req.DateFrom)
	if err != nil {
		respondError(c, err)
		return
	}
	until, err := dto.ParseWireDate(req.DateUntil)
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := daterange.New(from, until)
	if err != nil {
		respondError(c, err)
		return
	}
	b, err := h.Admission.Admit(c.Request.Context(), offer.OfferID(req.OfferID), requesterID, r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(b, h.Clock.Now()))
}

func (h BookingHandler) Get(c *gin.Context) {
	id := booking.BookingID(c.Param("id"))
	b, err := h.Lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(b, h.Clock.Now()))
}

func (h BookingHandler) Pay(c *gin.Context) {
	id := booking.BookingID(c.Param("id"))
	b, err := h.Lifecycle.Pay(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(b, h.Clock.Now()))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	id := booking.BookingID(c.Param("id"))
	if err := h.Lifecycle.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	requesterID, ok := requireRequester(c)
	if !ok {
		return
	}
	items, err := h.Lifecycle.ListByRequester(c.Request.Context(), requesterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingCollection(items, h.Clock.Now()))
}

func requireRequester(c *gin.Context) (string, bool) {
	id := c.GetHeader(requesterHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "requester_required"})
		return "", false
	}
	return id, true
}

var _ BookingHTTP = BookingHandler{}
