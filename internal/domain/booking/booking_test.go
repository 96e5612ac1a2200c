package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	r, err := daterange.New(
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := New(CreateParams{
		ID:          "b-1",
		OfferID:     "o-1",
		RequesterID: "guest-1",
		Range:       r,
		Price:       money.Must(30000, "USD"),
		CreatedAt:   t0,
	})
	require.NoError(t, err)
	return b
}

func TestNew_StartsPendingWithPaymentWindow(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, t0.Add(PaymentWindow), b.ExpiresAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.created", events[0].EventName())
}

func TestNew_RequiresRequester(t *testing.T) {
	r, err := daterange.New(t0, t0)
	require.NoError(t, err)
	_, err = New(CreateParams{ID: "b", OfferID: "o", Range: r, CreatedAt: t0})
	require.Error(t, err)
}

func TestPay_InsideWindow(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Pay(b.ExpiresAt.Add(-time.Second)))
	assert.Equal(t, StatusPaid, b.Status)
}

func TestPay_AfterWindow_ExpiresInPlace(t *testing.T) {
	b := newTestBooking(t)
	err := b.Pay(b.ExpiresAt.Add(time.Second))
	require.ErrorIs(t, err, ErrPaymentWindowClosed)
	assert.Equal(t, StatusExpired, b.Status, "caller must observe the expiry before any sweep runs")
}

func TestPay_AtExactDeadline_Rejected(t *testing.T) {
	b := newTestBooking(t)
	require.ErrorIs(t, b.Pay(b.ExpiresAt), ErrPaymentWindowClosed)
}

func TestPay_Terminal_InvalidTransition(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel(t0.Add(time.Minute)))

	err := b.Pay(t0.Add(2 * time.Minute))
	require.ErrorIs(t, err, ErrInvalidState)

	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, StatusCancelled, transition.Status)
}

func TestCancel_WhilePending(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel(t0.Add(30*time.Minute)))
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestCancel_AfterPaid_Rejected(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Pay(t0.Add(time.Minute)))
	require.ErrorIs(t, b.Cancel(t0.Add(2*time.Minute)), ErrInvalidState)
	assert.Equal(t, StatusPaid, b.Status)
}

func TestCancel_AfterDeadline_TreatedAsExpired(t *testing.T) {
	b := newTestBooking(t)
	err := b.Cancel(b.ExpiresAt.Add(time.Second))
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusExpired, b.Status)
}

func TestExpireIfDue_Idempotent(t *testing.T) {
	b := newTestBooking(t)
	past := b.ExpiresAt.Add(time.Minute)

	assert.True(t, b.ExpireIfDue(past))
	assert.Equal(t, StatusExpired, b.Status)

	// Second application is a no-op, never an error.
	assert.False(t, b.ExpireIfDue(past))
	assert.Equal(t, StatusExpired, b.Status)
}

func TestExpireIfDue_NotYetDue(t *testing.T) {
	b := newTestBooking(t)
	assert.False(t, b.ExpireIfDue(b.ExpiresAt.Add(-time.Second)))
	assert.Equal(t, StatusPending, b.Status)
}

func TestActive(t *testing.T) {
	b := newTestBooking(t)
	assert.True(t, b.Active(t0.Add(time.Minute)))
	assert.False(t, b.Active(b.ExpiresAt), "stale PENDING must not block availability")

	paid := newTestBooking(t)
	require.NoError(t, paid.Pay(t0.Add(time.Minute)))
	assert.True(t, paid.Active(paid.ExpiresAt.Add(time.Hour)), "paid bookings stay active past the window")

	cancelled := newTestBooking(t)
	require.NoError(t, cancelled.Cancel(t0.Add(time.Minute)))
	assert.False(t, cancelled.Active(t0.Add(2*time.Minute)))
}

func TestRemainingToPay(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, 30*time.Minute, b.RemainingToPay(t0.Add(30*time.Minute)))
	assert.Equal(t, time.Duration(0), b.RemainingToPay(b.ExpiresAt.Add(time.Minute)))
}
