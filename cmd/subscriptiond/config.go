package main

import (
	"errors"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/httpserver"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/mongo"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/redis"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

type appConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Service      string `env:"APP_SERVICE" envDefault:"subscriptiond"`
	LogLevel     string `env:"LOG_LEVEL"`
	EventChannel string `env:"SUBSCRIPTION_EVENT_CHANNEL" envDefault:"events:subscription"`
}

// settings is the full process configuration.
type settings struct {
	App          appConfig
	HTTP         httpserver.Config
	Mongo        mongo.Config
	Redis        redis.Config
	Subscription subscription.Config
}

func (c *settings) Validate() error {
	var errs []error
	if c.App.Service == "" {
		errs = append(errs, errors.New("APP_SERVICE must not be empty"))
	}
	if err := c.Subscription.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
