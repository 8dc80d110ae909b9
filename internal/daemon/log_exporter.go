package daemon

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abijith-abs/Library-Management/internal/models"
	"github.com/Abijith-abs/Library-Management/internal/utils"
)

// LogExporter periodically ships unexported audit logs and marks them
// exported.
type LogExporter struct {
	Coll     *mongo.Collection
	Interval time.Duration
}

func (l *LogExporter) Start(ctx context.Context) {
	interval := l.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.exportPending(ctx); err != nil {
					log.Printf("audit export failed: %v", err)
				}
			}
		}
	}()
}

func (l *LogExporter) exportPending(ctx context.Context) error {
	cursor, err := l.Coll.Find(ctx, bson.M{"exported": false})
	if err != nil {
		return err
	}

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	if err := utils.ExportData(logs); err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(logs))
	for _, entry := range logs {
		ids = append(ids, entry.ID)
	}
	_, err = l.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"exported": true}},
	)
	return err
}
