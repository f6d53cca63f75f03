package subscription

import (
	"time"

	"github.com/google/uuid"
)

// StoreSnapshot is the subscription summary denormalised onto the store
// profile. Enforcement reads "has subscription" and the numeric limits from
// here, never from the plan.
type StoreSnapshot struct {
	StoreID               uuid.UUID  `json:"storeId"`
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
	CurrentPlanID         *uuid.UUID `json:"currentPlanId,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	DailyProductLimit     int        `json:"dailyProductLimit"`
	MaxImagesPerProduct   int        `json:"maxImagesPerProduct"`
	MaxVariantsPerProduct int        `json:"maxVariantsPerProduct"`
}

// SnapshotFor projects an active subscription and its plan.
func SnapshotFor(storeID uuid.UUID, plan *Plan, sub *Subscription) StoreSnapshot {
	planID := plan.ID
	expires := sub.EndDate
	return StoreSnapshot{
		StoreID:               storeID,
		HasActiveSubscription: true,
		CurrentPlanID:         &planID,
		SubscriptionExpiresAt: &expires,
		DailyProductLimit:     plan.Features.DailyProductLimit,
		MaxImagesPerProduct:   plan.Features.MaxImagesPerProduct,
		MaxVariantsPerProduct: plan.Features.MaxVariantsPerProduct,
	}
}

// EmptySnapshot is the snapshot of a store without a subscription.
func EmptySnapshot(storeID uuid.UUID) StoreSnapshot {
	return StoreSnapshot{StoreID: storeID}
}
