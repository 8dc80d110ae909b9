package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxActive    TransactionStatus = "active"
	TxOverdue   TransactionStatus = "overdue"
	TxReturned  TransactionStatus = "returned"
	TxCancelled TransactionStatus = "cancelled"

	TransactionEntity = "transaction"
)

// Transaction tracks one borrow-to-return cycle for one (user, book) pair.
type Transaction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	Book       primitive.ObjectID `bson:"book" json:"book"`
	BorrowDate time.Time          `bson:"borrow_date" json:"borrow_date"`
	DueDate    time.Time          `bson:"due_date" json:"due_date"`
	ReturnDate *time.Time         `bson:"return_date,omitempty" json:"return_date,omitempty"`
	IsReturned bool               `bson:"is_returned" json:"is_returned"`
	Status     TransactionStatus  `bson:"status" json:"status"`
	LateFee    float64            `bson:"late_fee" json:"late_fee"`
}

// DeriveStatus computes the loan status from the record's fields and the
// given clock reading. The stored Status field is only a cache of this
// function evaluated at last write; anything needing a live answer must
// re-derive instead of trusting the stored value.
func (t *Transaction) DeriveStatus(now time.Time) TransactionStatus {
	switch {
	case t.IsReturned:
		return TxReturned
	case now.After(t.DueDate):
		return TxOverdue
	case !t.BorrowDate.IsZero():
		return TxActive
	default:
		return TxPending
	}
}
