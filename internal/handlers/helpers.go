package handlers

import (
	"net/http"

	"github.com/Abijith-abs/Library-Management/internal/middleware"
)

func performedBy(r *http.Request) string {
	id, _ := r.Context().Value(middleware.ContextUserID).(string)
	if id == "" {
		return "system"
	}
	return id
}
