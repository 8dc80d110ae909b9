package utils

import (
	"log"

	"github.com/Abijith-abs/Library-Management/internal/models"
)

// ExportData ships audit logs to the external sink. Stdout placeholder until
// the sink is provisioned.
func ExportData(logs []models.AuditLog) error {
	for _, entry := range logs {
		log.Println("[AUDIT EXPORT]", entry.Timestamp, entry.Entity, entry.Action, entry.PerformedBy)
	}
	return nil
}
