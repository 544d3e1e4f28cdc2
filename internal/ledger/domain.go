// Package ledger keeps the append-only transaction history that is the
// source of truth for customer balances. The cached customers.balance
// column is a denormalization of the latest transaction's balance
// snapshot and is mutated only here, atomically with the append.
package ledger

import (
	"errors"
	"math"
	"time"
)

// Kind classifies a monetary event.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindPayment Kind = "payment"
	KindReturn  Kind = "return"
)

// ValidKind reports whether k is a known transaction kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindInvoice, KindPayment, KindReturn:
		return true
	}
	return false
}

// ErrPartialWrite indicates the transaction append and the balance update
// did not both succeed. The enclosing database transaction is rolled back,
// so the ledger stays consistent; the sentinel lets callers distinguish
// this from plain persistence failures.
var ErrPartialWrite = errors.New("ledger: partial write")

// Transaction is one immutable ledger entry. Debit increases what the
// customer owes, credit decreases it. Balance is the running balance
// immediately after this entry.
type Transaction struct {
	ID          int64   `json:"id"`
	CustomerID  int64   `json:"customer_id"`
	Kind        Kind    `json:"kind"`
	Description string  `json:"description"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Balance     float64 `json:"balance"`
	// Date is the business date in ISO YYYY-MM-DD form. The fixed-width,
	// zero-padded format makes lexicographic comparison equivalent to
	// chronological comparison.
	Date        string    `json:"date"`
	ReferenceID int64     `json:"reference_id"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordInput describes a monetary event to post.
type RecordInput struct {
	CustomerID  int64
	Kind        Kind
	Description string
	Debit       float64
	Credit      float64
	Date        string
	ReferenceID int64
	Actor       int64
}

// StatementLine is one row of a customer statement with the running
// balance recomputed by replay, independent of the cached balance.
type StatementLine struct {
	Transaction
	Running float64 `json:"running"`
}

// Statement is a customer's replayed ledger over an inclusive date range.
type Statement struct {
	CustomerID     int64           `json:"customer_id"`
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	OpeningBalance float64         `json:"opening_balance"`
	ClosingBalance float64         `json:"closing_balance"`
	Lines          []StatementLine `json:"lines"`
}

// Drift reports a mismatch between the replayed and the cached balance
// for one customer.
type Drift struct {
	CustomerID int64   `json:"customer_id"`
	Cached     float64 `json:"cached"`
	Replayed   float64 `json:"replayed"`
}

// round2 normalizes currency amounts to cents. Applied consistently on
// every accumulation so replay and the cached balance agree bit for bit.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
