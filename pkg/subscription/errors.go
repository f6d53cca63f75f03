package subscription

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSettingsNotFound     = errors.New("subscription settings not found")

	ErrActiveSubscriptionExists = errors.New("store already has an active subscription")
	ErrTierTaken                = errors.New("an active plan with this tier already exists")
	ErrPlanInUse                = errors.New("subscription plan is referenced by subscriptions")
	ErrConcurrentModification   = errors.New("subscription was modified concurrently")

	ErrInvalidID               = errors.New("invalid identifier")
	ErrInvalidPlan             = errors.New("invalid subscription plan")
	ErrPlanInactive            = errors.New("subscription plan is not active")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidStatus           = errors.New("invalid subscription status")
	ErrInvalidTransition       = errors.New("subscription status transition not allowed")
	ErrUnsupportedStatusChange = errors.New("only cancellation can be requested through a status change")
	ErrInvalidEndDate          = errors.New("end date must not be before start date")
	ErrInvalidImageCount       = errors.New("image count must not be negative")

	ErrLockUnavailable = errors.New("could not acquire subscription lock")
)

// ErrQuotaDenied is joined with one of the reason errors below whenever
// enforcement refuses an action.
var (
	ErrQuotaDenied = errors.New("subscription quota denied")

	ErrSubscriptionInactive = errors.New("store has no active subscription")
	ErrNoActiveSubscription = errors.New("no active subscription found for store")
	ErrSubscriptionExpired  = errors.New("subscription has expired")
	ErrDailyLimitReached    = errors.New("daily product limit reached")
	ErrImageLimitExceeded   = errors.New("too many images for this plan")
)

// DenyReason is a stable code a client can switch on.
type DenyReason string

const (
	ReasonSubscriptionInactive DenyReason = "subscription_inactive"
	ReasonNoActiveSubscription DenyReason = "no_active_subscription"
	ReasonSubscriptionExpired  DenyReason = "subscription_expired"
	ReasonDailyLimitReached    DenyReason = "daily_limit_reached"
	ReasonImageLimitExceeded   DenyReason = "image_limit_exceeded"
)

var denyReasons = []struct {
	err    error
	reason DenyReason
}{
	{ErrSubscriptionInactive, ReasonSubscriptionInactive},
	{ErrNoActiveSubscription, ReasonNoActiveSubscription},
	{ErrSubscriptionExpired, ReasonSubscriptionExpired},
	{ErrDailyLimitReached, ReasonDailyLimitReached},
	{ErrImageLimitExceeded, ReasonImageLimitExceeded},
}

func deny(reason error) error {
	return errors.Join(ErrQuotaDenied, reason)
}

// DenyReasonOf extracts the reason of a quota denial.
func DenyReasonOf(err error) (DenyReason, bool) {
	if !errors.Is(err, ErrQuotaDenied) {
		return "", false
	}
	for _, r := range denyReasons {
		if errors.Is(err, r.err) {
			return r.reason, true
		}
	}
	return "", false
}

// Kind is the outward classification of an error, used to pick a transport
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	}
	return "internal"
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindForbidden, []error{ErrQuotaDenied}},
	{KindNotFound, []error{ErrPlanNotFound, ErrStoreNotFound, ErrSubscriptionNotFound}},
	{KindConflict, []error{ErrActiveSubscriptionExists, ErrTierTaken, ErrPlanInUse, ErrConcurrentModification}},
	{KindBadRequest, []error{
		ErrInvalidID, ErrInvalidPlan, ErrPlanInactive, ErrInvalidPaymentMethod, ErrInvalidStatus,
		ErrInvalidTransition, ErrUnsupportedStatusChange, ErrInvalidEndDate, ErrInvalidImageCount,
	}},
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInternal
}

// ParseID parses a textual identifier, reporting ErrInvalidID on malformed input.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.Join(ErrInvalidID, err)
	}
	return id, nil
}
