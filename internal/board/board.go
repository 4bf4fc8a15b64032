// Package board maps server invoices onto the fixed order-board columns.
// The columns are a display partition, not a workflow: nothing here enforces
// transitions between them.
package board

import (
	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

// Column is one of the five fixed board columns.
type Column string

const (
	ColumnReceived       Column = "Received"
	ColumnProcessing     Column = "Processing"
	ColumnPreparing      Column = "Preparing"
	ColumnOutForDelivery Column = "Out for Delivery"
	ColumnCompleted      Column = "Completed"
)

// Columns lists the board columns in display order.
var Columns = []Column{
	ColumnReceived,
	ColumnProcessing,
	ColumnPreparing,
	ColumnOutForDelivery,
	ColumnCompleted,
}

// DeriveColumn maps an invoice to its board column. The fine-grained
// sales_invoice_state wins when present; otherwise the coarse status field
// decides, defaulting to Received.
func DeriveColumn(inv erp.Invoice) Column {
	switch inv.SalesInvoiceState {
	case "Out for Delivery":
		return ColumnOutForDelivery
	case "Completed", "Paid":
		return ColumnCompleted
	case "Preparing":
		return ColumnPreparing
	case "Processing":
		return ColumnProcessing
	}

	switch inv.Status {
	case "Paid":
		return ColumnCompleted
	case "Submitted":
		return ColumnReceived
	default:
		return ColumnReceived
	}
}

// Group partitions invoices into the five columns, preserving list order
// within each column.
func Group(invoices []erp.Invoice) map[Column][]erp.Invoice {
	grouped := make(map[Column][]erp.Invoice, len(Columns))
	for _, col := range Columns {
		grouped[col] = nil
	}
	for _, inv := range invoices {
		col := DeriveColumn(inv)
		grouped[col] = append(grouped[col], inv)
	}
	return grouped
}
