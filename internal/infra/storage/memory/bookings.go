package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
)

// BookingRepository is an in-memory booking store. Saves are versioned the
// same way the mongo repository versions them, so the expiry sweep and a
// concurrent pay or cancel can never both win the same transition.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[booking.BookingID]*booking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[booking.BookingID]*booking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[b.ID]
	if ok && stored.Version != b.Version {
		return booking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) ListByOffer(ctx context.Context, offerID offer.OfferID) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.OfferID == offerID {
			out = append(out, cloneBooking(b))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.RequesterID == requesterID {
			out = append(out, cloneBooking(b))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *BookingRepository) ListDuePending(ctx context.Context, asOf time.Time) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.Status == booking.StatusPending && !asOf.Before(b.ExpiresAt) {
			out = append(out, cloneBooking(b))
		}
	}
	sortByCreation(out)
	return out, nil
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	clone := *b
	clone.ClearEvents()
	return &clone
}

func sortByCreation(items []*booking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
