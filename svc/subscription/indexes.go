package subscription

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

const (
	CollectionPlans         = "subscription_plans"
	CollectionSubscriptions = "store_subscriptions"
	CollectionStores        = "store_profiles"
	CollectionSettings      = "system_settings"
)

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollectionPlans: {
			{
				Keys: bson.D{{Key: "tier", Value: 1}},
				Options: options.Index().
					SetName("uniq_active_tier").
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "is_active", Value: true}}),
			},
		},
		CollectionSubscriptions: {
			{
				Keys: bson.D{{Key: "store_id", Value: 1}},
				Options: options.Index().
					SetName("uniq_active_store").
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "status", Value: string(core.StatusActive)}}),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}},
				Options: options.Index().SetName("status_end_date"),
			},
			{
				Keys:    bson.D{{Key: "store_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("store_created"),
			},
			{
				Keys:    bson.D{{Key: "plan_id", Value: 1}},
				Options: options.Index().SetName("plan"),
			},
		},
		CollectionStores: {
			{
				Keys: bson.D{{Key: "has_active_subscription", Value: 1}},
				Options: options.Index().
					SetName("active_subscription").
					SetPartialFilterExpression(bson.D{{Key: "has_active_subscription", Value: true}}),
			},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
