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

// PlanRepository stores the plan catalog in the plans collection.
type PlanRepository struct {
	coll *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	if db == nil {
		panic("subscription: database is required")
	}
	return &PlanRepository{coll: db.Collection(CollectionPlans)}
}

func (r *PlanRepository) GetPlan(ctx context.Context, id uuid.UUID) (*core.Plan, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *PlanRepository) FindActivePlanByTier(ctx context.Context, tier core.Tier) (*core.Plan, error) {
	return r.findOne(ctx, bson.D{{Key: "tier", Value: string(tier)}, {Key: "is_active", Value: true}})
}

func (r *PlanRepository) findOne(ctx context.Context, filter bson.D) (*core.Plan, error) {
	var doc planDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return doc.plan()
}

func (r *PlanRepository) ListPlans(ctx context.Context, activeOnly bool) ([]core.Plan, error) {
	filter := bson.D{}
	if activeOnly {
		filter = bson.D{{Key: "is_active", Value: true}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "name", Value: 1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	var docs []planDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	plans := make([]core.Plan, 0, len(docs))
	for _, d := range docs {
		p, err := d.plan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

func (r *PlanRepository) CreatePlan(ctx context.Context, p *core.Plan) error {
	_, err := r.coll.InsertOne(ctx, toPlanDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrTierTaken
	}
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) UpdatePlan(ctx context.Context, p *core.Plan) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID.String()}}, toPlanDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrTierTaken
	}
	if err != nil {
		return fmt.Errorf("replace plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrPlanNotFound
	}
	return nil
}

var _ core.PlanRepository = (*PlanRepository)(nil)
