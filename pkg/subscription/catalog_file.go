package subscription

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlanFile is returned for unreadable or malformed seed files.
var ErrInvalidPlanFile = errors.New("invalid plan seed file")

type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type moneyEntry struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

type planEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Tier         Tier   `yaml:"tier"`
	DurationDays int    `yaml:"duration_days"`
	DisplayOrder int    `yaml:"display_order"`
	Active       *bool  `yaml:"active"`
	Price        struct {
		Primary   moneyEntry `yaml:"primary"`
		Secondary moneyEntry `yaml:"secondary"`
	} `yaml:"price"`
	Features struct {
		DailyProductLimit     int  `yaml:"daily_product_limit"`
		MaxImagesPerProduct   int  `yaml:"max_images_per_product"`
		MaxVariantsPerProduct int  `yaml:"max_variants_per_product"`
		PrioritySupport       bool `yaml:"priority_support"`
		AnalyticsAccess       bool `yaml:"analytics_access"`
		CustomDomain          bool `yaml:"custom_domain"`
	} `yaml:"features"`
}

// LoadPlansYAML decodes a plan seed document:
//
//	plans:
//	  - name: Basic
//	    tier: basic
//	    duration_days: 30
//	    price:
//	      primary: {amount: 5000000, currency: SYP}
//	      secondary: {amount: 500, currency: USD}
//	    features:
//	      daily_product_limit: 5
//	      max_images_per_product: 3
//
// Plans are active unless active: false is given. Every plan is validated.
func LoadPlansYAML(r io.Reader) ([]Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc planFile
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidPlanFile, err)
	}

	plans := make([]Plan, 0, len(doc.Plans))
	for i, e := range doc.Plans {
		p := Plan{
			Name:         e.Name,
			Tier:         e.Tier,
			DurationDays: e.DurationDays,
			DisplayOrder: e.DisplayOrder,
			Active:       e.Active == nil || *e.Active,
			Price: Price{
				Primary:   Money(e.Price.Primary),
				Secondary: Money(e.Price.Secondary),
			},
			Features: Features(e.Features),
		}
		if e.ID != "" {
			id, err := uuid.Parse(e.ID)
			if err != nil {
				return nil, errors.Join(ErrInvalidPlanFile, fmt.Errorf("plan %d: %w", i, err))
			}
			p.ID = id
		}
		if err := p.Validate(); err != nil {
			return nil, errors.Join(ErrInvalidPlanFile, fmt.Errorf("plan %d (%s): %w", i, e.Name, err))
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// LoadPlansFile reads a seed file from disk.
func LoadPlansFile(path string) ([]Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidPlanFile, err)
	}
	defer f.Close()
	return LoadPlansYAML(f)
}
