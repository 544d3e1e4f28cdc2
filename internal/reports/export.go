package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/payments"
)

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// WriteSummaryCSV serialises the summary report as metric/value pairs.
func WriteSummaryCSV(w io.Writer, summary *Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Invoices", strconv.Itoa(summary.Invoices.Count)},
		{"Revenue", formatAmount(summary.Invoices.Revenue)},
		{"Payments", strconv.Itoa(summary.Payments.Count)},
		{"Received", formatAmount(summary.Payments.Received)},
		{"Refunded", formatAmount(summary.Payments.Refunded)},
		{"Customers", strconv.Itoa(summary.Customers.Count)},
		{"Outstanding", formatAmount(summary.Customers.Outstanding)},
		{"Products", strconv.Itoa(summary.Products.Count)},
		{"Low Stock", strconv.Itoa(summary.Products.LowStock)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSalesCSV emits one row per invoice.
func WriteSalesCSV(w io.Writer, rows []invoices.Invoice) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Order Number", "Date", "Customer", "Type", "Status", "Subtotal", "Discount", "Total"}); err != nil {
		return err
	}
	for _, inv := range rows {
		if err := writer.Write([]string{
			inv.OrderNumber,
			inv.Date,
			strconv.FormatInt(inv.CustomerID, 10),
			string(inv.Type),
			string(inv.Status),
			formatAmount(inv.Subtotal),
			formatAmount(inv.DiscountAmount),
			formatAmount(inv.Total),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCustomersCSV emits one row per customer.
func WriteCustomersCSV(w io.Writer, rows []customers.Customer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Name", "Category", "Discount Rate", "Balance"}); err != nil {
		return err
	}
	for _, c := range rows {
		if err := writer.Write([]string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			string(c.Category),
			formatAmount(c.DiscountRate),
			formatAmount(c.Balance),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteInventoryCSV emits one row per product.
func WriteInventoryCSV(w io.Writer, rows []ProductRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Name", "Category", "Price", "Stock", "Low Stock"}); err != nil {
		return err
	}
	for _, p := range rows {
		if err := writer.Write([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Category,
			formatAmount(p.Price),
			strconv.Itoa(p.Stock),
			strconv.FormatBool(p.LowStock),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePaymentsCSV emits one row per payment.
func WritePaymentsCSV(w io.Writer, rows []payments.Payment) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Date", "Customer", "Type", "Method", "Amount"}); err != nil {
		return err
	}
	for _, p := range rows {
		if err := writer.Write([]string{
			strconv.FormatInt(p.ID, 10),
			p.Date,
			strconv.FormatInt(p.CustomerID, 10),
			string(p.Type),
			p.Method,
			formatAmount(p.Amount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
