package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

// usageRetries bounds RecordUsage when two writers race to create the
// same day's ledger entry.
const usageRetries = 3

// SubscriptionRepository stores subscriptions in the store_subscriptions
// collection. A partial unique index on store_id for ACTIVE documents backs
// the single-active-subscription rule.
type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	if db == nil {
		panic("subscription: database is required")
	}
	return &SubscriptionRepository{coll: db.Collection(CollectionSubscriptions)}
}

func byID(id uuid.UUID) bson.D {
	return bson.D{{Key: "_id", Value: id.String()}}
}

func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, s *core.Subscription) error {
	_, err := r.coll.InsertOne(ctx, toSubscriptionDoc(s))
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrActiveSubscriptionExists
	}
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetSubscription(ctx context.Context, id uuid.UUID) (*core.Subscription, error) {
	return r.findOne(ctx, byID(id))
}

func (r *SubscriptionRepository) FindActiveByStore(ctx context.Context, storeID uuid.UUID) (*core.Subscription, error) {
	return r.findOne(ctx, bson.D{
		{Key: "store_id", Value: storeID.String()},
		{Key: "status", Value: string(core.StatusActive)},
	})
}

func (r *SubscriptionRepository) findOne(ctx context.Context, filter bson.D) (*core.Subscription, error) {
	var doc subscriptionDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return doc.subscription()
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

func (r *SubscriptionRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]core.Subscription, error) {
	return r.find(ctx, bson.D{{Key: "store_id", Value: storeID.String()}}, options.Find().SetSort(newestFirst))
}

func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context, f core.ListFilter) ([]core.Subscription, int64, error) {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.StoreID != uuid.Nil {
		filter = append(filter, bson.E{Key: "store_id", Value: f.StoreID.String()})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	opts := options.Find().SetSort(newestFirst)
	if f.Limit > 0 {
		opts.SetSkip(int64(max(f.Page-1, 0) * f.Limit)).SetLimit(int64(f.Limit))
	}
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SubscriptionRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]core.Subscription, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	var docs []subscriptionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	out := make([]core.Subscription, 0, len(docs))
	for _, d := range docs {
		s, err := d.subscription()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// UpdateSubscription sets only the selected fields, so concurrent updates
// of different fields do not overwrite each other.
func (r *SubscriptionRepository) UpdateSubscription(ctx context.Context, s *core.Subscription, expected core.Status, fields core.Fields) error {
	d := toSubscriptionDoc(s)
	filter := append(byID(s.ID), bson.E{Key: "status", Value: string(expected)})
	set := bson.D{{Key: "updated_at", Value: d.UpdatedAt}}
	if fields.Has(core.FieldStatus) {
		set = append(set,
			bson.E{Key: "status", Value: d.Status},
			bson.E{Key: "cancelled_by", Value: d.CancelledBy},
			bson.E{Key: "cancelled_at", Value: d.CancelledAt},
			bson.E{Key: "cancellation_reason", Value: d.CancellationReason})
	}
	if fields.Has(core.FieldEndDate) {
		set = append(set, bson.E{Key: "end_date", Value: d.EndDate})
	}
	if fields.Has(core.FieldAutoRenew) {
		set = append(set, bson.E{Key: "auto_renew", Value: d.AutoRenew})
	}
	if fields.Has(core.FieldNotes) {
		set = append(set, bson.E{Key: "notes", Value: d.Notes})
	}
	update := bson.D{{Key: "$set", Value: set}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrActiveSubscriptionExists
	}
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, s.ID)
	}
	return nil
}

func (r *SubscriptionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to core.Status, at time.Time) (bool, error) {
	filter := append(byID(id), bson.E{Key: "status", Value: string(from)})
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(to)},
		{Key: "updated_at", Value: at},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("transition subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		err := r.missOrConflict(ctx, id)
		if errors.Is(err, core.ErrConcurrentModification) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// missOrConflict explains a conditional write that matched nothing.
func (r *SubscriptionRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	n, err := r.coll.CountDocuments(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("count subscription: %w", err)
	}
	if n == 0 {
		return core.ErrSubscriptionNotFound
	}
	return core.ErrConcurrentModification
}

// RecordUsage increments the day's entry in place when it exists and pushes
// a new entry otherwise. Both updates are single-document atomic writes, so
// concurrent publishes never lose a count.
func (r *SubscriptionRepository) RecordUsage(ctx context.Context, id uuid.UUID, day string, at time.Time) (*core.Subscription, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	inc := bson.D{
		{Key: "$inc", Value: bson.D{
			{Key: "daily_usage.$.products_published", Value: 1},
			{Key: "total_products_published", Value: 1},
		}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: at}}},
	}
	push := bson.D{
		{Key: "$push", Value: bson.D{{Key: "daily_usage", Value: usageDoc{Date: day, ProductsPublished: 1}}}},
		{Key: "$inc", Value: bson.D{{Key: "total_products_published", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: at}}},
	}

	for range usageRetries {
		var doc subscriptionDoc
		err := r.coll.FindOneAndUpdate(ctx,
			append(byID(id), bson.E{Key: "daily_usage.date", Value: day}), inc, after).Decode(&doc)
		if err == nil {
			return doc.subscription()
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("increment usage: %w", err)
		}

		err = r.coll.FindOneAndUpdate(ctx,
			append(byID(id), bson.E{Key: "daily_usage.date", Value: bson.D{{Key: "$ne", Value: day}}}), push, after).Decode(&doc)
		if err == nil {
			return doc.subscription()
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("append usage: %w", err)
		}

		// either the subscription is gone or another writer created the entry
		if n, err := r.coll.CountDocuments(ctx, byID(id)); err != nil {
			return nil, fmt.Errorf("count subscription: %w", err)
		} else if n == 0 {
			return nil, core.ErrSubscriptionNotFound
		}
	}
	return nil, fmt.Errorf("record usage for %s: %w", id, core.ErrConcurrentModification)
}

func (r *SubscriptionRepository) FindActiveEndingBefore(ctx context.Context, t time.Time) ([]core.Subscription, error) {
	return r.find(ctx, bson.D{
		{Key: "status", Value: string(core.StatusActive)},
		{Key: "end_date", Value: bson.D{{Key: "$lte", Value: t}}},
	}, options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}}))
}

func (r *SubscriptionRepository) FindActiveEndingBetween(ctx context.Context, from, to time.Time) ([]core.Subscription, error) {
	return r.find(ctx, bson.D{
		{Key: "status", Value: string(core.StatusActive)},
		{Key: "end_date", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
	}, options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}}))
}

func (r *SubscriptionRepository) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "plan_id", Value: planID.String()}})
	if err != nil {
		return 0, fmt.Errorf("count subscriptions by plan: %w", err)
	}
	return n, nil
}

var _ core.SubscriptionRepository = (*SubscriptionRepository)(nil)
