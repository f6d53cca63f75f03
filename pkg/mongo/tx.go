package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Transactor runs a unit of work inside a multi-document transaction.
// When transactions are disabled (standalone servers) the function runs
// directly against the client without atomicity.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	if client == nil {
		panic("mongo: transactor requires a client")
	}
	return &Transactor{client: client, enabled: enabled}
}

// WithinTx executes fn in a transaction. The context passed to fn carries
// the session and must be used for every operation that belongs to it.
// Errors returned by fn are passed through unchanged.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return errors.Join(ErrTransactionFailed, err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}
