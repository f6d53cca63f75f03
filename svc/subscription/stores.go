package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

// StoreRepository reads and writes the subscription fields of documents in
// the store_profiles collection. Other profile fields are never touched.
type StoreRepository struct {
	coll *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	if db == nil {
		panic("subscription: database is required")
	}
	return &StoreRepository{coll: db.Collection(CollectionStores)}
}

var snapshotProjection = bson.D{
	{Key: "has_active_subscription", Value: 1},
	{Key: "current_plan_id", Value: 1},
	{Key: "subscription_expires_at", Value: 1},
	{Key: "daily_product_limit", Value: 1},
	{Key: "max_images_per_product", Value: 1},
	{Key: "max_variants_per_product", Value: 1},
}

func (r *StoreRepository) GetSnapshot(ctx context.Context, storeID uuid.UUID) (*core.StoreSnapshot, error) {
	var doc storeDoc
	err := r.coll.FindOne(ctx, byID(storeID), options.FindOne().SetProjection(snapshotProjection)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find store: %w", err)
	}
	return doc.snapshot()
}

func (r *StoreRepository) SaveSnapshot(ctx context.Context, snap core.StoreSnapshot) error {
	set := bson.D{
		{Key: "has_active_subscription", Value: snap.HasActiveSubscription},
		{Key: "daily_product_limit", Value: snap.DailyProductLimit},
		{Key: "max_images_per_product", Value: snap.MaxImagesPerProduct},
		{Key: "max_variants_per_product", Value: snap.MaxVariantsPerProduct},
	}
	unset := bson.D{}
	if snap.CurrentPlanID != nil {
		set = append(set, bson.E{Key: "current_plan_id", Value: snap.CurrentPlanID.String()})
	} else {
		unset = append(unset, bson.E{Key: "current_plan_id", Value: ""})
	}
	if snap.SubscriptionExpiresAt != nil {
		set = append(set, bson.E{Key: "subscription_expires_at", Value: *snap.SubscriptionExpiresAt})
	} else {
		unset = append(unset, bson.E{Key: "subscription_expires_at", Value: ""})
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	res, err := r.coll.UpdateOne(ctx, byID(snap.StoreID), update)
	if err != nil {
		return fmt.Errorf("update store snapshot: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) StoresWithActiveSnapshot(ctx context.Context) ([]uuid.UUID, error) {
	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "has_active_subscription", Value: true}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find stores: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stores: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("store id %q: %w", d.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var _ core.StoreRepository = (*StoreRepository)(nil)
