package subscription

// Status is the lifecycle state of a store subscription.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusActive         Status = "ACTIVE"
	StatusExpired        Status = "EXPIRED"
	StatusCancelled      Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod records how an activation was paid for.
type PaymentMethod string

const (
	PaymentManual    PaymentMethod = "MANUAL"
	PaymentOnline    PaymentMethod = "ONLINE"
	PaymentFreeGrant PaymentMethod = "FREE_GRANT"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentManual, PaymentOnline, PaymentFreeGrant:
		return true
	}
	return false
}

// Tier ranks plans. At most one active plan exists per tier.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierStandard, TierPremium:
		return true
	}
	return false
}

// Money is an amount in minor units of Currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Price lists a plan's cost in the two currencies the marketplace accepts.
type Price struct {
	Primary   Money `json:"primary"`
	Secondary Money `json:"secondary"`
}

// DayLayout formats the calendar-day keys of the usage ledger.
const DayLayout = "2006-01-02"
