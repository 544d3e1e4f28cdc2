package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas/internal/shared"
)

func seedHistory(t *testing.T, repo *memoryLedgerRepo) {
	t.Helper()
	repo.balances[1] = 0
	rec := NewRecorder(repo, nil, nil, nil)
	events := []RecordInput{
		{CustomerID: 1, Kind: KindInvoice, Description: "invoice INV-1", Debit: 250, Date: "2025-01-05"},
		{CustomerID: 1, Kind: KindPayment, Description: "payment", Credit: 100, Date: "2025-01-20"},
		{CustomerID: 1, Kind: KindInvoice, Description: "invoice INV-2", Debit: 285, Date: "2025-02-03"},
		{CustomerID: 1, Kind: KindReturn, Description: "return RET-1", Credit: 85, Date: "2025-02-10"},
	}
	for _, e := range events {
		_, err := rec.Record(context.Background(), e)
		require.NoError(t, err)
	}
}

func TestStatementReplaysFullHistory(t *testing.T) {
	repo := newMemoryLedgerRepo()
	seedHistory(t, repo)
	reader := NewReader(repo)

	stmt, err := reader.Statement(context.Background(), 1, "", "")
	require.NoError(t, err)
	require.Len(t, stmt.Lines, 4)
	require.Equal(t, 0.0, stmt.OpeningBalance)
	require.Equal(t, 350.0, stmt.ClosingBalance)
	require.Equal(t, []float64{250, 150, 435, 350}, runnings(stmt))
	require.Equal(t, repo.balances[1], stmt.ClosingBalance)
}

func TestStatementBoundsAreInclusive(t *testing.T) {
	repo := newMemoryLedgerRepo()
	seedHistory(t, repo)
	reader := NewReader(repo)

	stmt, err := reader.Statement(context.Background(), 1, "2025-01-20", "2025-02-03")
	require.NoError(t, err)
	require.Len(t, stmt.Lines, 2)
	require.Equal(t, 250.0, stmt.OpeningBalance)
	require.Equal(t, "payment", stmt.Lines[0].Description)
	require.Equal(t, "invoice INV-2", stmt.Lines[1].Description)
	require.Equal(t, 435.0, stmt.ClosingBalance)
}

func TestStatementEmptyRangeCarriesOpeningBalance(t *testing.T) {
	repo := newMemoryLedgerRepo()
	seedHistory(t, repo)
	reader := NewReader(repo)

	stmt, err := reader.Statement(context.Background(), 1, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Empty(t, stmt.Lines)
	require.Equal(t, 350.0, stmt.OpeningBalance)
	require.Equal(t, 350.0, stmt.ClosingBalance)
}

func TestStatementRejectsBadBound(t *testing.T) {
	reader := NewReader(newMemoryLedgerRepo())

	_, err := reader.Statement(context.Background(), 1, "01-05-2025", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestVerifyCustomerDetectsDrift(t *testing.T) {
	repo := newMemoryLedgerRepo()
	seedHistory(t, repo)
	reader := NewReader(repo)

	drift, err := reader.VerifyCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, drift)

	// Simulate a cached balance written outside the recorder.
	repo.balances[1] = 999
	drift, err = reader.VerifyCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, drift)
	require.Equal(t, 999.0, drift.Cached)
	require.Equal(t, 350.0, drift.Replayed)
}

// txOnlyReadRepo rejects any read issued outside WithTx. Verification
// must snapshot the cached balance and the history in one unit, or a
// concurrent Record between the two reads shows up as false drift.
type txOnlyReadRepo struct {
	*memoryLedgerRepo
}

func (r *txOnlyReadRepo) GetBalanceForUpdate(context.Context, int64) (float64, error) {
	return 0, errors.New("balance read outside transaction")
}

func (r *txOnlyReadRepo) ListByCustomer(context.Context, int64) ([]Transaction, error) {
	return nil, errors.New("history read outside transaction")
}

func TestVerifyCustomerReadsInOneUnit(t *testing.T) {
	inner := newMemoryLedgerRepo()
	seedHistory(t, inner)
	reader := NewReader(&txOnlyReadRepo{memoryLedgerRepo: inner})

	drift, err := reader.VerifyCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, drift)
}

func TestVerifyAllReportsOnlyDrifted(t *testing.T) {
	repo := newMemoryLedgerRepo()
	seedHistory(t, repo)
	repo.balances[2] = 12.5
	reader := NewReader(repo)

	drifted, err := reader.VerifyAll(context.Background())
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	require.Equal(t, int64(2), drifted[0].CustomerID)
	require.Equal(t, 12.5, drifted[0].Cached)
	require.Equal(t, 0.0, drifted[0].Replayed)
}

func runnings(stmt *Statement) []float64 {
	out := make([]float64, 0, len(stmt.Lines))
	for _, l := range stmt.Lines {
		out = append(out, l.Running)
	}
	return out
}
