package pricing

import (
	"errors"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrNegativeRate = errors.New("pricing: nightly rate must not be negative")

// Quote prices a stay as nights × nightly rate, where nights counts calendar
// days inclusive of both endpoints. Pure function; the result is stored on
// the booking at admission and never recomputed.
func Quote(r daterange.DateRange, nightly money.Money) (money.Money, error) {
	if err := r.Validate(); err != nil {
		return money.Money{}, err
	}
	if nightly.Amount < 0 {
		return money.Money{}, ErrNegativeRate
	}
	return nightly.Multiply(int64(r.Nights())), nil
}
