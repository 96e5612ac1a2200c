package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/offer"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs a versioned upsert: the filter matches the version the
// aggregate was loaded with, so a lost write race surfaces as
// booking.ErrConcurrentUpdate instead of silently overwriting a transition.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByOffer(ctx context.Context, offerID offer.OfferID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"offer_id": string(offerID)})
}

func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"requester_id": requesterID})
}

func (r *BookingRepository) ListDuePending(ctx context.Context, asOf time.Time) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status":     string(domainbooking.StatusPending),
		"expires_at": bson.M{"$lte": asOf.UnixMilli()},
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID          string      `bson:"_id"`
	OfferID     string      `bson:"offer_id"`
	RequesterID string      `bson:"requester_id"`
	Range       rangeDoc    `bson:"range"`
	Price       money.Money `bson:"price"`
	Status      string      `bson:"status"`
	CreatedAt   int64       `bson:"created_at"`
	ExpiresAt   int64       `bson:"expires_at"`
	Version     int64       `bson:"version"`
}

type rangeDoc struct {
	From  int64 `bson:"from"`
	Until int64 `bson:"until"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:          string(b.ID),
		OfferID:     string(b.OfferID),
		RequesterID: b.RequesterID,
		Range:       rangeDoc{From: b.Range.From.UnixMilli(), Until: b.Range.Until.UnixMilli()},
		Price:       b.Price,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.UnixMilli(),
		ExpiresAt:   b.ExpiresAt.UnixMilli(),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:          domainbooking.BookingID(d.ID),
		OfferID:     offer.OfferID(d.OfferID),
		RequesterID: d.RequesterID,
		Range:       daterange.DateRange{From: msToTime(d.Range.From), Until: msToTime(d.Range.Until)},
		Price:       d.Price,
		Status:      domainbooking.Status(d.Status),
		CreatedAt:   msToTime(d.CreatedAt),
		ExpiresAt:   msToTime(d.ExpiresAt),
		Version:     d.Version,
	}
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
