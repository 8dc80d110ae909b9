package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abijith-abs/Library-Management/internal/models"
	"github.com/Abijith-abs/Library-Management/internal/policy"
)

// BookStore implements policy.BookStore on a Mongo collection.
type BookStore struct {
	Coll *mongo.Collection
}

func (s *BookStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("book %s: %w", id.Hex(), policy.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookStatus) error {
	res, err := s.Coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("book %s: %w", id.Hex(), policy.ErrNotFound)
	}
	return nil
}
