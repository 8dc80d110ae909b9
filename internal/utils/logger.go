package utils

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abijith-abs/Library-Management/internal/models"
)

// Logger writes audit entries to a Mongo collection. Entries start
// unexported; the daemon exporter picks them up later.
type Logger struct {
	Collection *mongo.Collection
}

func (l *Logger) Log(ctx context.Context, entity, action, performedBy string, data any) error {
	entry := models.AuditLog{
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
		Exported:    false,
	}
	_, err := l.Collection.InsertOne(ctx, entry)
	return err
}
