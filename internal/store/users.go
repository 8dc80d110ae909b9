package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore implements policy.UserStore on a Mongo collection.
type UserStore struct {
	Coll *mongo.Collection
}

func (s *UserStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.Coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
