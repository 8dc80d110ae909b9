package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abijith-abs/Library-Management/internal/utils"
)

type StatsHandler struct {
	BookCol *mongo.Collection
	UserCol *mongo.Collection
	TxCol   *mongo.Collection
}

type TopBook struct {
	Title  string `bson:"title" json:"title"`
	Author string `bson:"author" json:"author"`
	Count  int64  `bson:"count" json:"count"`
}

type TopBorrower struct {
	Name        string `bson:"name" json:"name"`
	BorrowCount int64  `bson:"borrowCount" json:"borrowCount"`
}

// GET /api/admin
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalBooks, err := h.BookCol.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.JSONError(w, "Failed to fetch admin stats", http.StatusInternalServerError)
		return
	}
	totalUsers, _ := h.UserCol.CountDocuments(ctx, bson.M{})
	totalTransactions, _ := h.TxCol.CountDocuments(ctx, bson.M{})

	overdueBooks, _ := h.TxCol.CountDocuments(ctx, bson.M{
		"is_returned": false,
		"due_date":    bson.M{"$lt": time.Now()},
	})

	topBooks, err := h.topBorrowedBooks(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to fetch admin stats", http.StatusInternalServerError)
		return
	}

	monthly, err := h.monthlyTransactions(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to fetch admin stats", http.StatusInternalServerError)
		return
	}

	topBorrowers, err := h.topBorrowers(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to fetch admin stats", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"totalBooks":          totalBooks,
		"totalUsers":          totalUsers,
		"totalTransactions":   totalTransactions,
		"overdueBooks":        overdueBooks,
		"topBooks":            topBooks,
		"monthlyTransactions": monthly,
		"topBorrowers":        topBorrowers,
	})
}

func (h *StatsHandler) topBorrowedBooks(ctx context.Context) ([]TopBook, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_returned": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$book", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 5}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "books",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "bookDetails",
		}}},
		{{Key: "$unwind", Value: "$bookDetails"}},
		{{Key: "$project", Value: bson.M{
			"title":  "$bookDetails.title",
			"author": "$bookDetails.author",
			"count":  1,
		}}},
	}

	cursor, err := h.TxCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	topBooks := []TopBook{}
	if err := cursor.All(ctx, &topBooks); err != nil {
		return nil, err
	}
	return topBooks, nil
}

// monthlyTransactions buckets borrow activity by calendar month and returns
// a fixed 12-slot slice for the client's chart.
func (h *StatsHandler) monthlyTransactions(ctx context.Context) ([]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%m", "date": "$borrow_date"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := h.TxCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Month string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	buckets := make([]int64, 12)
	for _, row := range rows {
		var month int
		if _, err := fmt.Sscanf(row.Month, "%d", &month); err != nil {
			continue
		}
		if month >= 1 && month <= 12 {
			buckets[month-1] = row.Count
		}
	}
	return buckets, nil
}

func (h *StatsHandler) topBorrowers(ctx context.Context) ([]TopBorrower, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_returned": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$user", "borrowCount": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"borrowCount": -1}}},
		{{Key: "$limit", Value: 5}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "userDetails",
		}}},
		{{Key: "$unwind", Value: "$userDetails"}},
		{{Key: "$project", Value: bson.M{
			"name":        "$userDetails.username",
			"borrowCount": 1,
		}}},
	}

	cursor, err := h.TxCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	topBorrowers := []TopBorrower{}
	if err := cursor.All(ctx, &topBorrowers); err != nil {
		return nil, err
	}
	return topBorrowers, nil
}
