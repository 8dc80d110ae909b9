package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abijith-abs/Library-Management/internal/constants"
	"github.com/Abijith-abs/Library-Management/internal/middleware"
	"github.com/Abijith-abs/Library-Management/internal/models"
	"github.com/Abijith-abs/Library-Management/internal/policy"
	"github.com/Abijith-abs/Library-Management/internal/utils"
)

type TransactionHandler struct {
	Engine      *policy.Engine
	AuditLogger utils.Logger
}

func NewTransactionHandler(engine *policy.Engine, logger utils.Logger) *TransactionHandler {
	return &TransactionHandler{Engine: engine, AuditLogger: logger}
}

type BorrowRequest struct {
	BookIDs []string `json:"book_ids"`
}

// POST /api/transactions/borrow
func (h *TransactionHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.JSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	bookIDs, ok := decodeBookIDs(w, r)
	if !ok {
		return
	}

	result, err := h.Engine.BorrowBooks(r.Context(), userID, bookIDs)
	if err != nil {
		h.writeEngineError(w, err, result)
		return
	}

	h.AuditLogger.Log(r.Context(), models.TransactionEntity, constants.Borrow, userID.Hex(), result)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"message":   "Books borrowed successfully!",
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
}

// POST /api/transactions/return
func (h *TransactionHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.JSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	bookIDs, ok := decodeBookIDs(w, r)
	if !ok {
		return
	}

	result, err := h.Engine.ReturnBooks(r.Context(), userID, bookIDs)
	if err != nil {
		h.writeEngineError(w, err, result)
		return
	}

	h.AuditLogger.Log(r.Context(), models.TransactionEntity, constants.Return, userID.Hex(), result)

	json.NewEncoder(w).Encode(map[string]any{
		"message":   "Books returned successfully.",
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
}

// GET /api/transactions/history
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.JSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	txs, err := h.Engine.GetLoanHistory(r.Context(), userID)
	if err != nil {
		utils.JSONError(w, "Failed to fetch loan history", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	json.NewEncoder(w).Encode(map[string]any{"transactions": txs})
}

// GET /api/transactions/latefee?dueDate=...&returnDate=...
// Pre-return estimation for the client; dates are RFC 3339. A missing
// returnDate estimates against the current time.
func (h *TransactionHandler) LateFee(w http.ResponseWriter, r *http.Request) {
	dueStr := r.URL.Query().Get("dueDate")
	dueDate, err := time.Parse(time.RFC3339, dueStr)
	if err != nil {
		utils.JSONError(w, "Invalid dueDate", http.StatusBadRequest)
		return
	}

	returnDate := time.Now()
	if retStr := r.URL.Query().Get("returnDate"); retStr != "" {
		returnDate, err = time.Parse(time.RFC3339, retStr)
		if err != nil {
			utils.JSONError(w, "Invalid returnDate", http.StatusBadRequest)
			return
		}
	}

	json.NewEncoder(w).Encode(policy.CalculateLateFee(dueDate, returnDate))
}

func (h *TransactionHandler) writeEngineError(w http.ResponseWriter, err error, result any) {
	switch {
	case errors.Is(err, policy.ErrInvalidRequest):
		utils.JSONError(w, "No books selected", http.StatusBadRequest)
	case errors.Is(err, policy.ErrNotFound):
		utils.JSONError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, policy.ErrLimitExceeded):
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, policy.ErrNoBooksProcessed):
		// Report the per-item failures so the caller can see why
		// nothing went through.
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "No books processed",
			"result":  result,
		})
	default:
		utils.JSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func requestUserID(r *http.Request) (primitive.ObjectID, bool) {
	hex, _ := r.Context().Value(middleware.ContextUserID).(string)
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func decodeBookIDs(w http.ResponseWriter, r *http.Request) ([]primitive.ObjectID, bool) {
	var req BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid input", http.StatusBadRequest)
		return nil, false
	}
	if len(req.BookIDs) == 0 {
		utils.JSONError(w, "No books selected to borrow", http.StatusBadRequest)
		return nil, false
	}

	ids := make([]primitive.ObjectID, 0, len(req.BookIDs))
	for _, hex := range req.BookIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			utils.JSONError(w, "Invalid book ID: "+hex, http.StatusBadRequest)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
