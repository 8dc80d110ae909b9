package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abijith-abs/Library-Management/internal/models"
	"github.com/Abijith-abs/Library-Management/internal/policy"
)

// LoanStore implements policy.LoanStore on a Mongo collection. A unique
// partial index on {book} where is_returned == false (see db.EnsureIndexes)
// backs the duplicate-loan guarantee.
type LoanStore struct {
	Coll *mongo.Collection
}

func (s *LoanStore) Create(ctx context.Context, tx *models.Transaction) error {
	res, err := s.Coll.InsertOne(ctx, tx)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("book %s: %w", tx.Book.Hex(), policy.ErrAlreadyBorrowed)
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tx.ID = oid
	}
	return nil
}

func (s *LoanStore) FindActive(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.Coll.FindOne(ctx, bson.M{
		"user":        userID,
		"book":        bookID,
		"is_returned": false,
	}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, policy.ErrNoActiveLoan
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *LoanStore) ActiveExistsForBook(ctx context.Context, bookID primitive.ObjectID) (bool, error) {
	count, err := s.Coll.CountDocuments(ctx, bson.M{
		"book":        bookID,
		"is_returned": false,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *LoanStore) CountActive(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Coll.CountDocuments(ctx, bson.M{
		"user":        userID,
		"is_returned": false,
	})
}

func (s *LoanStore) MarkReturned(ctx context.Context, tx *models.Transaction) error {
	res, err := s.Coll.UpdateOne(ctx,
		bson.M{"_id": tx.ID, "is_returned": false},
		bson.M{"$set": bson.M{
			"return_date": tx.ReturnDate,
			"is_returned": true,
			"late_fee":    tx.LateFee,
			"status":      models.TxReturned,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return policy.ErrNoActiveLoan
	}
	return nil
}

func (s *LoanStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	cursor, err := s.Coll.Find(ctx,
		bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "borrow_date", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
