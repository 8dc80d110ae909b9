package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client

func Connect(uri string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	client = c
	log.Println("Connected to MongoDB")
}

func GetCollection(dbName, collName string) *mongo.Collection {
	return client.Database(dbName).Collection(collName)
}

func Disconnect(ctx context.Context) error {
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the application relies on. The unique
// partial index on unreturned transactions serializes concurrent borrows of
// the same book: at most one document with is_returned == false may
// reference a given book.
func EnsureIndexes(ctx context.Context, transactions *mongo.Collection) error {
	_, err := transactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "book", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_returned": false}),
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "borrow_date", Value: -1}},
		},
	})
	return err
}
