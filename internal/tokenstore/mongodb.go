package tokenstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoCollection is the collection MongoBackend uses when no other
	// collection is specified.
	DefaultMongoCollection = "sessions"
	// DefaultMongoSlotID is the _id of the document holding the token.
	DefaultMongoSlotID = "current"

	mongoOpTimeout = 5 * time.Second
)

type tokenDocument struct {
	ID    string `bson:"_id"`
	Token string `bson:"token"`
}

// MongoBackend persists the token in a single document of a MongoDB
// collection.
type MongoBackend struct {
	collection *mongo.Collection
	slotID     string
}

// NewMongoBackend returns a MongoBackend that stores the token in the
// document with the given _id or, if slotID is empty, DefaultMongoSlotID.
func NewMongoBackend(
	database *mongo.Database,
	collection string,
	slotID string,
) *MongoBackend {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	if slotID == "" {
		slotID = DefaultMongoSlotID
	}
	return &MongoBackend{
		collection: database.Collection(collection),
		slotID:     slotID,
	}
}

func (m *MongoBackend) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	doc := tokenDocument{}
	err := m.collection.FindOne(ctx, bson.M{"_id": m.slotID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "error finding token document %q", m.slotID)
	}
	return doc.Token, nil
}

func (m *MongoBackend) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	if _, err := m.collection.ReplaceOne(
		ctx,
		bson.M{"_id": m.slotID},
		tokenDocument{
			ID:    m.slotID,
			Token: token,
		},
		options.Replace().SetUpsert(true),
	); err != nil {
		return errors.Wrapf(err, "error upserting token document %q", m.slotID)
	}
	return nil
}

func (m *MongoBackend) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	if _, err :=
		m.collection.DeleteOne(ctx, bson.M{"_id": m.slotID}); err != nil {
		return errors.Wrapf(err, "error deleting token document %q", m.slotID)
	}
	return nil
}

// DeleteIf relies on the filtered delete being atomic: the document is only
// removed if it still holds the given token.
func (m *MongoBackend) DeleteIf(token string) (bool, error) {
	if token != "" {
		ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
		defer cancel()
		res, err := m.collection.DeleteOne(
			ctx,
			bson.M{
				"_id":   m.slotID,
				"token": token,
			},
		)
		if err != nil {
			return false, errors.Wrapf(
				err,
				"error conditionally deleting token document %q",
				m.slotID,
			)
		}
		if res.DeletedCount == 1 {
			return true, nil
		}
	}
	current, err := m.Load()
	if err != nil {
		return false, err
	}
	return current == "", nil
}
