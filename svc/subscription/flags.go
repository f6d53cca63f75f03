package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/feature"
)

type flagDoc struct {
	Name        string    `bson:"_id"`
	Description string    `bson:"description,omitempty"`
	Enabled     bool      `bson:"enabled"`
	Value       int       `bson:"value"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// FlagStore keeps system settings as feature flags in the system_settings
// collection. The subscriptions toggle lives under the "subscriptions" key.
type FlagStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewFlagStore(db *mongo.Database) *FlagStore {
	if db == nil {
		panic("subscription: database is required")
	}
	return &FlagStore{coll: db.Collection(CollectionSettings), now: time.Now}
}

func (s *FlagStore) IsEnabled(ctx context.Context, name string) (bool, error) {
	f, err := s.GetFlag(ctx, name)
	if err != nil {
		return false, err
	}
	return f.Enabled, nil
}

func (s *FlagStore) GetFlag(ctx context.Context, name string) (*feature.Flag, error) {
	var doc flagDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, feature.ErrFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find flag %s: %w", name, err)
	}
	return &feature.Flag{
		Name:        doc.Name,
		Description: doc.Description,
		Enabled:     doc.Enabled,
		Value:       doc.Value,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (s *FlagStore) SetFlag(ctx context.Context, flag *feature.Flag) error {
	if flag == nil || flag.Name == "" {
		return feature.ErrInvalidFlag
	}
	doc := flagDoc{
		Name:        flag.Name,
		Description: flag.Description,
		Enabled:     flag.Enabled,
		Value:       flag.Value,
		UpdatedAt:   flag.UpdatedAt,
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = s.now()
	}

	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: flag.Name}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save flag %s: %w", flag.Name, err)
	}
	return nil
}

func (s *FlagStore) DeleteFlag(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}})
	if err != nil {
		return fmt.Errorf("delete flag %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return feature.ErrFlagNotFound
	}
	return nil
}

var _ feature.Provider = (*FlagStore)(nil)
