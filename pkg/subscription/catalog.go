package subscription

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// Catalog manages subscription plans.
type Catalog struct {
	plans PlanRepository
	subs  SubscriptionRepository
	now   func() time.Time
	log   *slog.Logger
}

// NewCatalog panics when a repository is nil. Only WithLogger and WithClock
// affect a Catalog.
func NewCatalog(plans PlanRepository, subs SubscriptionRepository, opts ...Option) *Catalog {
	if plans == nil || subs == nil {
		panic("subscription: plan and subscription repositories are required")
	}
	o := newOptions(opts)
	return &Catalog{
		plans: plans,
		subs:  subs,
		now:   o.now,
		log:   o.log.With(logger.Component("plan_catalog")),
	}
}

// Create validates and stores a new plan. A zero ID is generated.
func (c *Catalog) Create(ctx context.Context, p Plan) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Active {
		if err := c.ensureTierFree(ctx, p.Tier, uuid.Nil); err != nil {
			return nil, err
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := c.now()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := c.plans.CreatePlan(ctx, &p); err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "plan created", logger.PlanID(p.ID), slog.String("tier", string(p.Tier)))
	return &p, nil
}

// Update replaces the editable fields of an existing plan. Changes apply to
// new activations; existing snapshots keep the limits they were created with
// until the next reconciliation.
func (c *Catalog) Update(ctx context.Context, p Plan) (*Plan, error) {
	existing, err := c.plans.GetPlan(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Active {
		if err := c.ensureTierFree(ctx, p.Tier, p.ID); err != nil {
			return nil, err
		}
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = c.now()
	if err := c.plans.UpdatePlan(ctx, &p); err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "plan updated", logger.PlanID(p.ID))
	return &p, nil
}

// SetActive toggles whether the plan is offered for new activations.
func (c *Catalog) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Plan, error) {
	p, err := c.plans.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Active = active
	return c.Update(ctx, *p)
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return c.plans.GetPlan(ctx, id)
}

// List returns plans ordered by DisplayOrder, then name.
func (c *Catalog) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	plans, err := c.plans.ListPlans(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(plans, func(a, b Plan) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.Name, b.Name))
	})
	return plans, nil
}

// Delete removes a plan that no subscription has ever referenced.
func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := c.plans.GetPlan(ctx, id); err != nil {
		return err
	}
	n, err := c.subs.CountByPlan(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrPlanInUse
	}
	if err := c.plans.DeletePlan(ctx, id); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "plan deleted", logger.PlanID(id))
	return nil
}

// Seed upserts plans. An entry with an ID targets that plan. Otherwise an
// active entry replaces the active plan of its tier and an inactive entry
// replaces the inactive plan with the same tier and name, so reseeding a
// draft never touches the live plan. Unmatched entries are created.
func (c *Catalog) Seed(ctx context.Context, plans []Plan) (created, updated int, err error) {
	for _, p := range plans {
		existing, err := c.seedTarget(ctx, p)
		switch {
		case err == nil:
			p.ID = existing.ID
			if _, err := c.Update(ctx, p); err != nil {
				return created, updated, err
			}
			updated++
		case errors.Is(err, ErrPlanNotFound):
			if _, err := c.Create(ctx, p); err != nil {
				return created, updated, err
			}
			created++
		default:
			return created, updated, err
		}
	}
	return created, updated, nil
}

func (c *Catalog) seedTarget(ctx context.Context, p Plan) (*Plan, error) {
	if p.ID != uuid.Nil {
		return c.plans.GetPlan(ctx, p.ID)
	}
	if p.Active {
		return c.plans.FindActivePlanByTier(ctx, p.Tier)
	}
	all, err := c.plans.ListPlans(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, other := range all {
		if !other.Active && other.Tier == p.Tier && other.Name == p.Name {
			return &other, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (c *Catalog) ensureTierFree(ctx context.Context, tier Tier, self uuid.UUID) error {
	other, err := c.plans.FindActivePlanByTier(ctx, tier)
	switch {
	case errors.Is(err, ErrPlanNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return ErrTierTaken
	}
	return nil
}
