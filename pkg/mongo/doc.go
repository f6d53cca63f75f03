// Package mongo provides MongoDB connection management for the subscription
// service: environment-driven configuration, a retrying connect, a readiness
// check and a small transaction runner.
//
//	cfg := mongo.Config{}
//	config.MustLoad(&cfg)
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
//	tx := mongo.NewTransactor(client, cfg.Transactions)
//	err = tx.WithinTx(ctx, func(ctx context.Context) error {
//		// writes that must commit together
//		return nil
//	})
//
// Healthcheck returns a readiness probe for httpserver.Check.
package mongo
