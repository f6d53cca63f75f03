package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type usageCounter struct {
	subs  SubscriptionRepository
	clock clock
}

// record counts one published product against today's ledger entry.
func (u *usageCounter) record(ctx context.Context, subscriptionID uuid.UUID) (*Subscription, error) {
	now := u.clock.Now()
	return u.subs.RecordUsage(ctx, subscriptionID, u.clock.Day(now), now)
}

// UsageSummary describes where a store stands against its daily limit.
type UsageSummary struct {
	StoreID        uuid.UUID `json:"storeId"`
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	PlanID         uuid.UUID `json:"planId"`
	Date           string    `json:"date"`
	TodayUsage     int       `json:"todayUsage"`
	DailyLimit     int       `json:"dailyLimit"`
	Remaining      int       `json:"remaining"`
	TotalPublished int       `json:"totalPublished"`
	ExpiresAt      time.Time `json:"expiresAt"`
	DaysLeft       int       `json:"daysLeft"`
}

func (u *usageCounter) summary(sub *Subscription, snap *StoreSnapshot) *UsageSummary {
	now := u.clock.Now()
	day := u.clock.Day(now)
	used := sub.UsageOn(day)
	return &UsageSummary{
		StoreID:        sub.StoreID,
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Date:           day,
		TodayUsage:     used,
		DailyLimit:     snap.DailyProductLimit,
		Remaining:      max(snap.DailyProductLimit-used, 0),
		TotalPublished: sub.TotalProductsPublished,
		ExpiresAt:      sub.EndDate,
		DaysLeft:       sub.DaysLeftAt(now),
	}
}
