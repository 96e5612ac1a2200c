package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseWireDate(t *testing.T) {
	parsed, err := ParseWireDate("06.15.2024")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 15), parsed)
}

func TestParseWireDate_Invalid(t *testing.T) {
	for _, s := range []string{"15.06.2024", "2024-06-15", "06/15/2024", ""} {
		_, err := ParseWireDate(s)
		require.ErrorIs(t, err, daterange.ErrInvalidRange, "input %q", s)
	}
}

func TestFormatWireDate_RoundTrip(t *testing.T) {
	assert.Equal(t, "01.02.2024", FormatWireDate(date(2024, 1, 2)))
}

func testBooking(t *testing.T, createdAt time.Time) *booking.Booking {
	t.Helper()
	r, err := daterange.New(date(2024, 6, 10), date(2024, 6, 12))
	require.NoError(t, err)
	b, err := booking.New(booking.CreateParams{
		ID:          "b-1",
		OfferID:     "o-1",
		RequesterID: "guest-1",
		Range:       r,
		Price:       money.Must(30000, "USD"),
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return b
}

func TestMapBooking_PendingTimeToPayFlooredToMinutes(t *testing.T) {
	createdAt := date(2024, 6, 1)
	b := testBooking(t, createdAt)

	// 12m30s remaining renders as 12m, never rounded up.
	now := b.ExpiresAt.Add(-12*time.Minute - 30*time.Second)
	out := MapBooking(b, now)

	assert.Equal(t, "12m", out.TimeToPay)
	assert.Equal(t, "06.10.2024", out.DateFrom)
	assert.Equal(t, "06.12.2024", out.DateUntil)
	assert.Equal(t, string(booking.StatusPending), out.Status)
	assert.Equal(t, int64(30000), out.Price.Amount)
}

func TestMapBooking_PastDeadlineRendersExpired(t *testing.T) {
	b := testBooking(t, date(2024, 6, 1))

	// Still PENDING in storage, but the window is gone.
	out := MapBooking(b, b.ExpiresAt)
	assert.Equal(t, TimeToPayExpired, out.TimeToPay)

	require.True(t, b.ExpireIfDue(b.ExpiresAt.Add(time.Minute)))
	out = MapBooking(b, b.ExpiresAt.Add(time.Minute))
	assert.Equal(t, TimeToPayExpired, out.TimeToPay)
	assert.Equal(t, string(booking.StatusExpired), out.Status)
}

func TestMapBooking_SettledStatesOmitTimeToPay(t *testing.T) {
	paid := testBooking(t, date(2024, 6, 1))
	require.NoError(t, paid.Pay(paid.CreatedAt.Add(time.Minute)))
	assert.Empty(t, MapBooking(paid, paid.CreatedAt.Add(2*time.Minute)).TimeToPay)

	cancelled := testBooking(t, date(2024, 6, 1))
	require.NoError(t, cancelled.Cancel(cancelled.CreatedAt.Add(time.Minute)))
	assert.Empty(t, MapBooking(cancelled, cancelled.CreatedAt.Add(2*time.Minute)).TimeToPay)
}

func TestMapBookingCollection_EmptyIsNotNil(t *testing.T) {
	out := MapBookingCollection(nil, date(2024, 6, 1))
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestMapCalendar(t *testing.T) {
	dates := []time.Time{date(2024, 6, 1), date(2024, 6, 2), date(2024, 6, 10)}
	out := MapCalendar(offer.OfferID("o-1"), dates, nil)
	assert.Equal(t, []string{"06.01.2024", "06.02.2024", "06.10.2024"}, out.BlockedDates)
}

func TestMapCalendar_ClipsToWindow(t *testing.T) {
	dates := []time.Time{date(2024, 6, 1), date(2024, 6, 2), date(2024, 6, 10)}
	window, err := daterange.New(date(2024, 6, 2), date(2024, 6, 9))
	require.NoError(t, err)

	out := MapCalendar(offer.OfferID("o-1"), dates, &window)
	assert.Equal(t, []string{"06.02.2024"}, out.BlockedDates)
}
