package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type OfferRepository struct {
	col *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{col: db.Collection("offers")}
}

func (r *OfferRepository) ByID(ctx context.Context, id offer.OfferID) (*offer.Offer, error) {
	var doc offerDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, offer.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OfferRepository) Save(ctx context.Context, o *offer.Offer) error {
	doc := offerDocument{
		ID:            string(o.ID),
		ActiveFrom:    o.Window.From.UnixMilli(),
		ActiveUntil:   o.Window.Until.UnixMilli(),
		PricePerNight: o.PricePerNight,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type offerDocument struct {
	ID            string      `bson:"_id"`
	ActiveFrom    int64       `bson:"active_from"`
	ActiveUntil   int64       `bson:"active_until"`
	PricePerNight money.Money `bson:"price_per_night"`
}

func (d offerDocument) toAggregate() *offer.Offer {
	return &offer.Offer{
		ID:            offer.OfferID(d.ID),
		Window:        daterange.DateRange{From: msToTime(d.ActiveFrom), Until: msToTime(d.ActiveUntil)},
		PricePerNight: d.PricePerNight,
	}
}
