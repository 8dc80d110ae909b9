package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abijith-abs/Library-Management/internal/models"
)

type fakeBookStore struct {
	books map[primitive.ObjectID]*models.Book
}

func (f *fakeBookStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *book
	return &copied, nil
}

func (f *fakeBookStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.BookStatus) error {
	book, ok := f.books[id]
	if !ok {
		return ErrNotFound
	}
	book.Status = status
	return nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]bool
}

func (f *fakeUserStore) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return f.users[id], nil
}

type fakeLoanStore struct {
	loans []*models.Transaction
}

func (f *fakeLoanStore) Create(_ context.Context, tx *models.Transaction) error {
	for _, existing := range f.loans {
		if existing.Book == tx.Book && !existing.IsReturned {
			return ErrAlreadyBorrowed
		}
	}
	tx.ID = primitive.NewObjectID()
	copied := *tx
	f.loans = append(f.loans, &copied)
	return nil
}

func (f *fakeLoanStore) FindActive(_ context.Context, userID, bookID primitive.ObjectID) (*models.Transaction, error) {
	for _, tx := range f.loans {
		if tx.User == userID && tx.Book == bookID && !tx.IsReturned {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, ErrNoActiveLoan
}

func (f *fakeLoanStore) ActiveExistsForBook(_ context.Context, bookID primitive.ObjectID) (bool, error) {
	for _, tx := range f.loans {
		if tx.Book == bookID && !tx.IsReturned {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLoanStore) CountActive(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, tx := range f.loans {
		if tx.User == userID && !tx.IsReturned {
			count++
		}
	}
	return count, nil
}

func (f *fakeLoanStore) MarkReturned(_ context.Context, updated *models.Transaction) error {
	for _, tx := range f.loans {
		if tx.ID == updated.ID && !tx.IsReturned {
			tx.ReturnDate = updated.ReturnDate
			tx.IsReturned = true
			tx.LateFee = updated.LateFee
			tx.Status = models.TxReturned
			return nil
		}
	}
	return ErrNoActiveLoan
}

func (f *fakeLoanStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := len(f.loans) - 1; i >= 0; i-- {
		if f.loans[i].User == userID {
			out = append(out, *f.loans[i])
		}
	}
	return out, nil
}

type engineFixture struct {
	engine *Engine
	books  *fakeBookStore
	users  *fakeUserStore
	loans  *fakeLoanStore
	now    time.Time
}

func newFixture() *engineFixture {
	f := &engineFixture{
		books: &fakeBookStore{books: map[primitive.ObjectID]*models.Book{}},
		users: &fakeUserStore{users: map[primitive.ObjectID]bool{}},
		loans: &fakeLoanStore{},
		now:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	f.engine = NewEngine(f.books, f.users, f.loans, 4, 14)
	f.engine.now = func() time.Time { return f.now }
	return f
}

func (f *engineFixture) addUser() primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users.users[id] = true
	return id
}

func (f *engineFixture) addBook(status models.BookStatus) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.books.books[id] = &models.Book{ID: id, Title: "t", Status: status}
	return id
}

func TestBorrowBooksEmptyRequest(t *testing.T) {
	f := newFixture()
	_, err := f.engine.BorrowBooks(context.Background(), f.addUser(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBorrowBooksUnknownUser(t *testing.T) {
	f := newFixture()
	bookID := f.addBook(models.StatusAvailable)
	_, err := f.engine.BorrowBooks(context.Background(), primitive.NewObjectID(), []primitive.ObjectID{bookID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.loans.loans)
}

func TestBorrowBooksSuccess(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	result, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)
	assert.Empty(t, result.Failed)

	item := result.Succeeded[0]
	assert.Equal(t, bookID, item.BookID)
	assert.Equal(t, f.now.AddDate(0, 0, 14), item.DueDate)
	assert.False(t, item.LoanID.IsZero())

	assert.Equal(t, models.StatusBorrowed, f.books.books[bookID].Status)

	tx := f.loans.loans[0]
	assert.Equal(t, f.now, tx.BorrowDate)
	assert.False(t, tx.IsReturned)
	assert.Equal(t, models.TxActive, tx.Status)
	assert.Equal(t, 0.0, tx.LateFee)
}

func TestBorrowBooksLimitExceeded(t *testing.T) {
	f := newFixture()
	userID := f.addUser()

	for i := 0; i < 4; i++ {
		bookID := f.addBook(models.StatusAvailable)
		_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
		require.NoError(t, err)
	}

	bookID := f.addBook(models.StatusAvailable)
	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Len(t, f.loans.loans, 4)
	assert.Equal(t, models.StatusAvailable, f.books.books[bookID].Status)
}

func TestBorrowBooksLimitCountsWholeBatch(t *testing.T) {
	f := newFixture()
	userID := f.addUser()

	books := make([]primitive.ObjectID, 5)
	for i := range books {
		books[i] = f.addBook(models.StatusAvailable)
	}

	_, err := f.engine.BorrowBooks(context.Background(), userID, books)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Empty(t, f.loans.loans)
}

func TestBorrowBooksDuplicateLoan(t *testing.T) {
	f := newFixture()
	alice := f.addUser()
	bob := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), alice, []primitive.ObjectID{bookID})
	require.NoError(t, err)

	result, err := f.engine.BorrowBooks(context.Background(), bob, []primitive.ObjectID{bookID})
	assert.ErrorIs(t, err, ErrNoBooksProcessed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ReasonAlreadyBorrowed, result.Failed[0].Reason)

	// Still exactly one unreturned loan, book still borrowed.
	assert.Len(t, f.loans.loans, 1)
	assert.Equal(t, models.StatusBorrowed, f.books.books[bookID].Status)
}

func TestBorrowBooksPartialBatch(t *testing.T) {
	f := newFixture()
	alice := f.addUser()
	bob := f.addUser()
	bookA := f.addBook(models.StatusAvailable)
	bookB := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), alice, []primitive.ObjectID{bookA})
	require.NoError(t, err)

	result, err := f.engine.BorrowBooks(context.Background(), bob, []primitive.ObjectID{bookA, bookB})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, bookA, result.Failed[0].BookID)
	assert.Equal(t, ReasonAlreadyBorrowed, result.Failed[0].Reason)

	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, bookB, result.Succeeded[0].BookID)
	assert.Equal(t, models.StatusBorrowed, f.books.books[bookB].Status)
}

func TestBorrowBooksUnknownBook(t *testing.T) {
	f := newFixture()
	userID := f.addUser()

	result, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrNoBooksProcessed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ReasonBookNotFound, result.Failed[0].Reason)
}

func TestReturnBooksSuccess(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)

	// 20 days later: 14-day period, 2-day grace, 4 billable days.
	f.now = f.now.Add(20 * 24 * time.Hour)

	result, err := f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)

	item := result.Succeeded[0]
	assert.Equal(t, bookID, item.BookID)
	assert.Equal(t, 8.0, item.LateFee)
	assert.Equal(t, f.now, item.ReturnDate)

	tx := f.loans.loans[0]
	assert.True(t, tx.IsReturned)
	assert.Equal(t, models.TxReturned, tx.Status)
	require.NotNil(t, tx.ReturnDate)
	assert.Equal(t, f.now, *tx.ReturnDate)
	assert.Equal(t, 8.0, tx.LateFee)

	assert.Equal(t, models.StatusAvailable, f.books.books[bookID].Status)
}

func TestReturnBooksOnTimeNoFee(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)

	f.now = f.now.Add(10 * 24 * time.Hour)

	result, err := f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Succeeded[0].LateFee)
}

func TestReturnBooksTwiceFails(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)

	_, err = f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	require.NoError(t, err)

	result, err := f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	assert.ErrorIs(t, err, ErrNoBooksProcessed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ReasonNoActiveLoan, result.Failed[0].Reason)
}

func TestReturnBooksNoActiveLoan(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookID := f.addBook(models.StatusAvailable)

	result, err := f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookID})
	assert.ErrorIs(t, err, ErrNoBooksProcessed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ReasonNoActiveLoan, result.Failed[0].Reason)
}

func TestReturnBooksPartialBatch(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookA := f.addBook(models.StatusAvailable)
	bookB := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookA})
	require.NoError(t, err)

	result, err := f.engine.ReturnBooks(context.Background(), userID, []primitive.ObjectID{bookA, bookB})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, bookA, result.Succeeded[0].BookID)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bookB, result.Failed[0].BookID)
}

func TestGetLoanHistoryNewestFirstAndRederived(t *testing.T) {
	f := newFixture()
	userID := f.addUser()
	bookA := f.addBook(models.StatusAvailable)
	bookB := f.addBook(models.StatusAvailable)

	_, err := f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookA})
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.engine.BorrowBooks(context.Background(), userID, []primitive.ObjectID{bookB})
	require.NoError(t, err)

	// Past bookA's due date: stored status says active, live says overdue.
	f.now = f.now.Add(15 * 24 * time.Hour)

	history, err := f.engine.GetLoanHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, bookB, history[0].Book)
	assert.Equal(t, bookA, history[1].Book)
	assert.Equal(t, models.TxOverdue, history[1].Status)
}
