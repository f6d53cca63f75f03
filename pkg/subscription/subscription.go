package subscription

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// UsageEntry counts products published on one calendar day.
type UsageEntry struct {
	Date              string `json:"date"`
	ProductsPublished int    `json:"productsPublished"`
}

// Subscription binds a store to a plan for a period of time.
type Subscription struct {
	ID                     uuid.UUID     `json:"id"`
	StoreID                uuid.UUID     `json:"storeId"`
	PlanID                 uuid.UUID     `json:"planId"`
	Status                 Status        `json:"status"`
	StartDate              time.Time     `json:"startDate"`
	EndDate                time.Time     `json:"endDate"`
	PaymentMethod          PaymentMethod `json:"paymentMethod"`
	AmountPaid             *Money        `json:"amountPaid,omitempty"`
	PaymentReference       string        `json:"paymentReference,omitempty"`
	ActivatedBy            *uuid.UUID    `json:"activatedBy,omitempty"`
	ActivatedAt            *time.Time    `json:"activatedAt,omitempty"`
	CancelledBy            *uuid.UUID    `json:"cancelledBy,omitempty"`
	CancelledAt            *time.Time    `json:"cancelledAt,omitempty"`
	CancellationReason     string        `json:"cancellationReason,omitempty"`
	DailyUsage             []UsageEntry  `json:"dailyUsage"`
	TotalProductsPublished int           `json:"totalProductsPublished"`
	AutoRenew              bool          `json:"autoRenew"`
	Notes                  string        `json:"notes,omitempty"`
	CreatedAt              time.Time     `json:"createdAt"`
	UpdatedAt              time.Time     `json:"updatedAt"`
}

// UsageOn returns the number of products published on day (DayLayout).
func (s *Subscription) UsageOn(day string) int {
	for _, e := range s.DailyUsage {
		if e.Date == day {
			return e.ProductsPublished
		}
	}
	return 0
}

// AddUsage increments the ledger entry for day, appending it when absent,
// and the running total.
func (s *Subscription) AddUsage(day string) {
	s.TotalProductsPublished++
	for i := range s.DailyUsage {
		if s.DailyUsage[i].Date == day {
			s.DailyUsage[i].ProductsPublished++
			return
		}
	}
	s.DailyUsage = append(s.DailyUsage, UsageEntry{Date: day, ProductsPublished: 1})
}

// ExpiredAt reports whether the end date lies strictly before now.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return s.EndDate.Before(now)
}

// DaysLeftAt returns the whole days until the end date, rounded up.
func (s *Subscription) DaysLeftAt(now time.Time) int {
	d := s.EndDate.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	c := *s
	c.DailyUsage = slices.Clone(s.DailyUsage)
	if s.AmountPaid != nil {
		m := *s.AmountPaid
		c.AmountPaid = &m
	}
	c.ActivatedBy = cloneID(s.ActivatedBy)
	c.CancelledBy = cloneID(s.CancelledBy)
	c.ActivatedAt = cloneTime(s.ActivatedAt)
	c.CancelledAt = cloneTime(s.CancelledAt)
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// idPtr returns nil for uuid.Nil.
func idPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
