package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteSummaryCSV(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)
	summary, err := svc.Summary(context.Background(), Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, summary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "Metric,Value", lines[0])
	require.Contains(t, buf.String(), "Revenue,285.00")
	require.Contains(t, buf.String(), "Low Stock,1")
}

func TestWriteSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSalesCSV(&buf, testSnapshot().Invoices))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[1], "SO-A")
	require.Contains(t, lines[1], "285.00")
}

func TestWritePaymentsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePaymentsCSV(&buf, testSnapshot().Payments))

	require.Contains(t, buf.String(), "cash,100.00")
	require.Contains(t, buf.String(), "refund,bank,35.00")
}

func TestFormatAmountGrouping(t *testing.T) {
	require.Equal(t, "1,234,567.89", formatAmount(1234567.89))
	require.Equal(t, "0.00", formatAmount(0))
}
