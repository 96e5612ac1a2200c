package memory

import (
	"context"
	"sync"

	"staybook/internal/domain/offer"
)

// OfferRepository is an in-memory offer store for dev and tests.
type OfferRepository struct {
	mu    sync.RWMutex
	items map[offer.OfferID]*offer.Offer
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{items: make(map[offer.OfferID]*offer.Offer)}
}

func (r *OfferRepository) ByID(ctx context.Context, id offer.OfferID) (*offer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *OfferRepository) Save(ctx context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *o
	r.items[o.ID] = &clone
	return nil
}
