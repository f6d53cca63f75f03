package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// StoreID records the store identifier under the key "store_id".
func StoreID(id any) slog.Attr {
	return optional("store_id", id)
}

// SubscriptionID records the subscription identifier under the key "subscription_id".
func SubscriptionID(id any) slog.Attr {
	return optional("subscription_id", id)
}

// PlanID records the plan identifier under the key "plan_id".
func PlanID(id any) slog.Attr {
	return optional("plan_id", id)
}

// ActorID records who performed an administrative action under the key "actor_id".
func ActorID(id any) slog.Attr {
	return optional("actor_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Job records the scheduled job name under the key "job".
func Job(name string) slog.Attr {
	return slog.String("job", name)
}

// Count records a numeric counter under the given key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func optional(key string, v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any(key, v)
}
