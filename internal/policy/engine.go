package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abijith-abs/Library-Management/internal/models"
)

// Reasons reported per failed batch item.
const (
	ReasonBookNotFound    = "book not found"
	ReasonAlreadyBorrowed = "already borrowed"
	ReasonNoActiveLoan    = "no active loan found"
)

type BorrowedItem struct {
	BookID  primitive.ObjectID `json:"book_id"`
	LoanID  primitive.ObjectID `json:"loan_id"`
	DueDate time.Time          `json:"due_date"`
}

type ReturnedItem struct {
	BookID     primitive.ObjectID `json:"book_id"`
	LateFee    float64            `json:"late_fee"`
	ReturnDate time.Time          `json:"return_date"`
}

type FailedItem struct {
	BookID primitive.ObjectID `json:"book_id"`
	Reason string             `json:"reason"`
}

// BorrowResult reports per-item outcomes of a borrow batch. Failures never
// roll back earlier successes; callers must treat the Failed list as
// authoritative per item.
type BorrowResult struct {
	Succeeded []BorrowedItem `json:"succeeded"`
	Failed    []FailedItem   `json:"failed"`
}

type ReturnResult struct {
	Succeeded []ReturnedItem `json:"succeeded"`
	Failed    []FailedItem   `json:"failed"`
}

// Engine decides borrow admission, computes due dates and late fees, and
// drives the loan record lifecycle. It is stateless; all state lives in the
// collaborator stores.
type Engine struct {
	Books BookStore
	Users UserStore
	Loans LoanStore

	BorrowLimit    int
	LoanPeriodDays int

	now func() time.Time
}

func NewEngine(books BookStore, users UserStore, loans LoanStore, borrowLimit, loanPeriodDays int) *Engine {
	return &Engine{
		Books:          books,
		Users:          users,
		Loans:          loans,
		BorrowLimit:    borrowLimit,
		LoanPeriodDays: loanPeriodDays,
		now:            time.Now,
	}
}

// BorrowBooks admits or rejects a borrow request for each book in order.
// Request-level failures (empty list, unknown user, cap exceeded) abort the
// whole call; per-item failures are collected and processing continues. If
// no item succeeds the call reports ErrNoBooksProcessed alongside the result.
func (e *Engine) BorrowBooks(ctx context.Context, userID primitive.ObjectID, bookIDs []primitive.ObjectID) (*BorrowResult, error) {
	if len(bookIDs) == 0 {
		return nil, ErrInvalidRequest
	}

	exists, err := e.Users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking user: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}

	active, err := e.Loans.CountActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting active loans: %w", err)
	}
	if active+int64(len(bookIDs)) > int64(e.BorrowLimit) {
		return nil, fmt.Errorf("%w: %d active loans, limit is %d", ErrLimitExceeded, active, e.BorrowLimit)
	}

	result := &BorrowResult{}
	for _, bookID := range bookIDs {
		item, reason, err := e.borrowOne(ctx, userID, bookID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			result.Failed = append(result.Failed, FailedItem{BookID: bookID, Reason: reason})
			continue
		}
		result.Succeeded = append(result.Succeeded, *item)
	}

	if len(result.Succeeded) == 0 {
		return result, ErrNoBooksProcessed
	}
	return result, nil
}

func (e *Engine) borrowOne(ctx context.Context, userID, bookID primitive.ObjectID) (*BorrowedItem, string, error) {
	book, err := e.Books.FindByID(ctx, bookID)
	if errors.Is(err, ErrNotFound) {
		return nil, ReasonBookNotFound, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("fetching book %s: %w", bookID.Hex(), err)
	}

	borrowed, err := e.Loans.ActiveExistsForBook(ctx, bookID)
	if err != nil {
		return nil, "", fmt.Errorf("checking active loan for book %s: %w", bookID.Hex(), err)
	}
	if borrowed || book.Status == models.StatusBorrowed {
		return nil, ReasonAlreadyBorrowed, nil
	}

	now := e.now()
	tx := &models.Transaction{
		User:       userID,
		Book:       bookID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, e.LoanPeriodDays),
		IsReturned: false,
		Status:     models.TxActive,
		LateFee:    0,
	}
	if err := e.Loans.Create(ctx, tx); err != nil {
		// The store's uniqueness invariant closes the check-then-act
		// race: a concurrent borrow that won loses us the insert.
		if errors.Is(err, ErrAlreadyBorrowed) {
			return nil, ReasonAlreadyBorrowed, nil
		}
		return nil, "", fmt.Errorf("creating loan for book %s: %w", bookID.Hex(), err)
	}

	if err := e.Books.UpdateStatus(ctx, bookID, models.StatusBorrowed); err != nil {
		return nil, "", fmt.Errorf("updating book %s status: %w", bookID.Hex(), err)
	}

	return &BorrowedItem{BookID: bookID, LoanID: tx.ID, DueDate: tx.DueDate}, "", nil
}

// ReturnBooks closes the unreturned loan for each (user, book) pair, stamps
// the return, computes the late fee, and frees the book. Same per-item,
// non-transactional semantics as BorrowBooks.
func (e *Engine) ReturnBooks(ctx context.Context, userID primitive.ObjectID, bookIDs []primitive.ObjectID) (*ReturnResult, error) {
	if len(bookIDs) == 0 {
		return nil, ErrInvalidRequest
	}

	result := &ReturnResult{}
	for _, bookID := range bookIDs {
		tx, err := e.Loans.FindActive(ctx, userID, bookID)
		if errors.Is(err, ErrNoActiveLoan) {
			result.Failed = append(result.Failed, FailedItem{BookID: bookID, Reason: ReasonNoActiveLoan})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("finding active loan for book %s: %w", bookID.Hex(), err)
		}

		now := e.now()
		tx.ReturnDate = &now
		tx.IsReturned = true
		tx.LateFee = CalculateLateFee(tx.DueDate, now).LateFee
		tx.Status = models.TxReturned

		if err := e.Loans.MarkReturned(ctx, tx); err != nil {
			return nil, fmt.Errorf("marking loan %s returned: %w", tx.ID.Hex(), err)
		}
		if err := e.Books.UpdateStatus(ctx, bookID, models.StatusAvailable); err != nil {
			return nil, fmt.Errorf("updating book %s status: %w", bookID.Hex(), err)
		}

		result.Succeeded = append(result.Succeeded, ReturnedItem{
			BookID:     bookID,
			LateFee:    tx.LateFee,
			ReturnDate: now,
		})
	}

	if len(result.Succeeded) == 0 {
		return result, ErrNoBooksProcessed
	}
	return result, nil
}

// GetLoanHistory lists the user's transactions newest-first, with the status
// field re-derived against the current clock so overdue loans show as
// overdue even if their stored status is stale.
func (e *Engine) GetLoanHistory(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	txs, err := e.Loans.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching loan history: %w", err)
	}
	now := e.now()
	for i := range txs {
		txs[i].Status = txs[i].DeriveStatus(now)
	}
	return txs, nil
}
