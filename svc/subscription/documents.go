package subscription

import (
	"time"

	"github.com/google/uuid"

	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

// Identifiers are stored as canonical UUID strings.

type moneyDoc struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

type planDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Tier         string    `bson:"tier"`
	PricePrimary moneyDoc  `bson:"price_primary"`
	PriceSecond  moneyDoc  `bson:"price_secondary"`
	DurationDays int       `bson:"duration_days"`
	Features     featDoc   `bson:"features"`
	Active       bool      `bson:"is_active"`
	DisplayOrder int       `bson:"display_order"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type featDoc struct {
	DailyProductLimit     int  `bson:"daily_product_limit"`
	MaxImagesPerProduct   int  `bson:"max_images_per_product"`
	MaxVariantsPerProduct int  `bson:"max_variants_per_product"`
	PrioritySupport       bool `bson:"priority_support"`
	AnalyticsAccess       bool `bson:"analytics_access"`
	CustomDomain          bool `bson:"custom_domain"`
}

func toPlanDoc(p *core.Plan) planDoc {
	return planDoc{
		ID:           p.ID.String(),
		Name:         p.Name,
		Tier:         string(p.Tier),
		PricePrimary: moneyDoc(p.Price.Primary),
		PriceSecond:  moneyDoc(p.Price.Secondary),
		DurationDays: p.DurationDays,
		Features:     featDoc(p.Features),
		Active:       p.Active,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d planDoc) plan() (*core.Plan, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &core.Plan{
		ID:   id,
		Name: d.Name,
		Tier: core.Tier(d.Tier),
		Price: core.Price{
			Primary:   core.Money(d.PricePrimary),
			Secondary: core.Money(d.PriceSecond),
		},
		DurationDays: d.DurationDays,
		Features:     core.Features(d.Features),
		Active:       d.Active,
		DisplayOrder: d.DisplayOrder,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type usageDoc struct {
	Date              string `bson:"date"`
	ProductsPublished int    `bson:"products_published"`
}

type subscriptionDoc struct {
	ID                     string     `bson:"_id"`
	StoreID                string     `bson:"store_id"`
	PlanID                 string     `bson:"plan_id"`
	Status                 string     `bson:"status"`
	StartDate              time.Time  `bson:"start_date"`
	EndDate                time.Time  `bson:"end_date"`
	PaymentMethod          string     `bson:"payment_method"`
	AmountPaid             *moneyDoc  `bson:"amount_paid,omitempty"`
	PaymentReference       string     `bson:"payment_reference,omitempty"`
	ActivatedBy            string     `bson:"activated_by,omitempty"`
	ActivatedAt            *time.Time `bson:"activated_at,omitempty"`
	CancelledBy            string     `bson:"cancelled_by,omitempty"`
	CancelledAt            *time.Time `bson:"cancelled_at,omitempty"`
	CancellationReason     string     `bson:"cancellation_reason,omitempty"`
	DailyUsage             []usageDoc `bson:"daily_usage"`
	TotalProductsPublished int        `bson:"total_products_published"`
	AutoRenew              bool       `bson:"auto_renew"`
	Notes                  string     `bson:"notes,omitempty"`
	CreatedAt              time.Time  `bson:"created_at"`
	UpdatedAt              time.Time  `bson:"updated_at"`
}

func toSubscriptionDoc(s *core.Subscription) subscriptionDoc {
	d := subscriptionDoc{
		ID:                     s.ID.String(),
		StoreID:                s.StoreID.String(),
		PlanID:                 s.PlanID.String(),
		Status:                 string(s.Status),
		StartDate:              s.StartDate,
		EndDate:                s.EndDate,
		PaymentMethod:          string(s.PaymentMethod),
		PaymentReference:       s.PaymentReference,
		ActivatedBy:            idString(s.ActivatedBy),
		ActivatedAt:            s.ActivatedAt,
		CancelledBy:            idString(s.CancelledBy),
		CancelledAt:            s.CancelledAt,
		CancellationReason:     s.CancellationReason,
		DailyUsage:             make([]usageDoc, 0, len(s.DailyUsage)),
		TotalProductsPublished: s.TotalProductsPublished,
		AutoRenew:              s.AutoRenew,
		Notes:                  s.Notes,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	if s.AmountPaid != nil {
		m := moneyDoc(*s.AmountPaid)
		d.AmountPaid = &m
	}
	for _, e := range s.DailyUsage {
		d.DailyUsage = append(d.DailyUsage, usageDoc(e))
	}
	return d
}

func (d subscriptionDoc) subscription() (*core.Subscription, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	storeID, err := uuid.Parse(d.StoreID)
	if err != nil {
		return nil, err
	}
	planID, err := uuid.Parse(d.PlanID)
	if err != nil {
		return nil, err
	}

	s := &core.Subscription{
		ID:                     id,
		StoreID:                storeID,
		PlanID:                 planID,
		Status:                 core.Status(d.Status),
		StartDate:              d.StartDate,
		EndDate:                d.EndDate,
		PaymentMethod:          core.PaymentMethod(d.PaymentMethod),
		PaymentReference:       d.PaymentReference,
		ActivatedBy:            parseOptionalID(d.ActivatedBy),
		ActivatedAt:            d.ActivatedAt,
		CancelledBy:            parseOptionalID(d.CancelledBy),
		CancelledAt:            d.CancelledAt,
		CancellationReason:     d.CancellationReason,
		DailyUsage:             make([]core.UsageEntry, 0, len(d.DailyUsage)),
		TotalProductsPublished: d.TotalProductsPublished,
		AutoRenew:              d.AutoRenew,
		Notes:                  d.Notes,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
	if d.AmountPaid != nil {
		m := core.Money(*d.AmountPaid)
		s.AmountPaid = &m
	}
	for _, e := range d.DailyUsage {
		s.DailyUsage = append(s.DailyUsage, core.UsageEntry(e))
	}
	return s, nil
}

// storeDoc holds only the subscription fields of a store profile.
type storeDoc struct {
	ID                    string     `bson:"_id"`
	HasActiveSubscription bool       `bson:"has_active_subscription"`
	CurrentPlanID         string     `bson:"current_plan_id,omitempty"`
	SubscriptionExpiresAt *time.Time `bson:"subscription_expires_at,omitempty"`
	DailyProductLimit     int        `bson:"daily_product_limit"`
	MaxImagesPerProduct   int        `bson:"max_images_per_product"`
	MaxVariantsPerProduct int        `bson:"max_variants_per_product"`
}

func (d storeDoc) snapshot() (*core.StoreSnapshot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &core.StoreSnapshot{
		StoreID:               id,
		HasActiveSubscription: d.HasActiveSubscription,
		CurrentPlanID:         parseOptionalID(d.CurrentPlanID),
		SubscriptionExpiresAt: d.SubscriptionExpiresAt,
		DailyProductLimit:     d.DailyProductLimit,
		MaxImagesPerProduct:   d.MaxImagesPerProduct,
		MaxVariantsPerProduct: d.MaxVariantsPerProduct,
	}, nil
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
