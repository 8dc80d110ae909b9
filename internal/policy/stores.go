package policy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abijith-abs/Library-Management/internal/models"
)

// BookStore is the catalog collaborator. The engine only reads books and
// flips their availability status.
type BookStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookStatus) error
}

// UserStore is the identity collaborator. Credentials live elsewhere; the
// engine only needs to know the borrower exists.
type UserStore interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// LoanStore persists transaction records. Create must enforce the "at most
// one unreturned loan per book" invariant (a unique partial index in the
// Mongo implementation) and report a violation as ErrAlreadyBorrowed, so
// that two concurrent borrows racing past the lookup cannot both succeed.
type LoanStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindActive(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Transaction, error)
	ActiveExistsForBook(ctx context.Context, bookID primitive.ObjectID) (bool, error)
	CountActive(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkReturned(ctx context.Context, tx *models.Transaction) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)
}
