package subscription

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Features are the entitlements and limits a plan grants.
type Features struct {
	DailyProductLimit     int  `json:"dailyProductLimit"`
	MaxImagesPerProduct   int  `json:"maxImagesPerProduct"`
	MaxVariantsPerProduct int  `json:"maxVariantsPerProduct"`
	PrioritySupport       bool `json:"prioritySupport"`
	AnalyticsAccess       bool `json:"analyticsAccess"`
	CustomDomain          bool `json:"customDomain"`
}

// Plan is an entry of the subscription catalog.
type Plan struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Tier         Tier      `json:"tier"`
	Price        Price     `json:"price"`
	DurationDays int       `json:"durationDays"`
	Features     Features  `json:"features"`
	Active       bool      `json:"active"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the plan's own fields. Tier uniqueness needs the catalog
// and is checked by Catalog.
func (p Plan) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !p.Tier.Valid() {
		errs = append(errs, errors.New("tier must be basic, standard or premium"))
	}
	if p.DurationDays <= 0 {
		errs = append(errs, errors.New("duration days must be positive"))
	}
	f := p.Features
	if f.DailyProductLimit < 0 || f.MaxImagesPerProduct < 0 || f.MaxVariantsPerProduct < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if p.Price.Primary.Amount < 0 || p.Price.Secondary.Amount < 0 {
		errs = append(errs, errors.New("price must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidPlan}, errs...)...)
}

// EndDateFrom returns start plus DurationDays whole days.
func (p Plan) EndDateFrom(start time.Time) time.Time {
	return start.Add(time.Duration(p.DurationDays) * 24 * time.Hour)
}
