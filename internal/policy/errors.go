package policy

import "errors"

var (
	// ErrInvalidRequest means the request was malformed (no books selected).
	ErrInvalidRequest = errors.New("no books selected")

	// ErrLimitExceeded means borrowing would exceed the per-user cap on
	// simultaneous unreturned loans.
	ErrLimitExceeded = errors.New("borrow limit exceeded")

	// ErrAlreadyBorrowed means the book currently has an unreturned loan.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrNoActiveLoan means no unreturned loan exists for the (user, book) pair.
	ErrNoActiveLoan = errors.New("no active loan found")

	// ErrNotFound means a referenced user, book, or loan does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoBooksProcessed is the whole-batch outcome when every item failed.
	ErrNoBooksProcessed = errors.New("no books processed")
)
