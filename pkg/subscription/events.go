package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/broadcast"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// EventName identifies a lifecycle notification.
type EventName string

const (
	EventActivated         EventName = "subscription.activated"
	EventCancelled         EventName = "subscription.cancelled"
	EventExtended          EventName = "subscription.extended"
	EventExpired           EventName = "subscription.expired"
	EventExpiryWarning     EventName = "subscription.expiryWarning"
	EventDailyLimitReached EventName = "subscription.dailyLimitReached"
)

// Event is published after the state change it describes has been persisted.
type Event struct {
	Name           EventName  `json:"name"`
	StoreID        uuid.UUID  `json:"storeId"`
	SubscriptionID uuid.UUID  `json:"subscriptionId"`
	PlanName       string     `json:"planName,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	DaysLeft       int        `json:"daysLeft,omitempty"`
	ExpiresOn      string     `json:"expiresOn,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	OccurredAt     time.Time  `json:"occurredAt"`
}

// Publisher delivers events to the notification side.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// NopPublisher discards events.
var NopPublisher Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

type multiPublisher []Publisher

// MultiPublisher publishes to every publisher and joins their errors.
func MultiPublisher(publishers ...Publisher) Publisher {
	return multiPublisher(publishers)
}

func (m multiPublisher) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BroadcastPublisher fans events out in process, using the event name as topic.
type BroadcastPublisher struct {
	b broadcast.Broadcaster[Event]
}

func NewBroadcastPublisher(b broadcast.Broadcaster[Event]) *BroadcastPublisher {
	if b == nil {
		panic("subscription: broadcaster is required")
	}
	return &BroadcastPublisher{b: b}
}

func (p *BroadcastPublisher) Publish(ctx context.Context, ev Event) error {
	return p.b.Broadcast(ctx, broadcast.Message[Event]{Topic: string(ev.Name), Data: ev})
}

// emitter stamps and publishes events. Publish failures are logged and
// never surface to the caller.
type emitter struct {
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

func (e *emitter) emit(ctx context.Context, ev Event) {
	ev.OccurredAt = e.now()
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.log.WarnContext(ctx, "failed to publish subscription event",
			logger.Event(string(ev.Name)),
			logger.StoreID(ev.StoreID),
			logger.SubscriptionID(ev.SubscriptionID),
			logger.Error(err))
	}
}
