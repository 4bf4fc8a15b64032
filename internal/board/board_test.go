package board

import (
	"testing"

	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

func TestDeriveColumn(t *testing.T) {
	tests := []struct {
		name string
		inv  erp.Invoice
		want Column
	}{
		{"fine-grained out for delivery", erp.Invoice{SalesInvoiceState: "Out for Delivery"}, ColumnOutForDelivery},
		{"fine-grained completed", erp.Invoice{SalesInvoiceState: "Completed"}, ColumnCompleted},
		{"fine-grained paid", erp.Invoice{SalesInvoiceState: "Paid"}, ColumnCompleted},
		{"fine-grained preparing", erp.Invoice{SalesInvoiceState: "Preparing"}, ColumnPreparing},
		{"fine-grained processing", erp.Invoice{SalesInvoiceState: "Processing"}, ColumnProcessing},
		{"coarse paid", erp.Invoice{Status: "Paid"}, ColumnCompleted},
		{"coarse submitted", erp.Invoice{Status: "Submitted"}, ColumnReceived},
		{"coarse unknown", erp.Invoice{Status: "Draft"}, ColumnReceived},
		{"neither field", erp.Invoice{}, ColumnReceived},
		{"fine-grained wins over coarse", erp.Invoice{SalesInvoiceState: "Preparing", Status: "Paid"}, ColumnPreparing},
		{"unknown fine-grained falls back", erp.Invoice{SalesInvoiceState: "Mystery", Status: "Paid"}, ColumnCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveColumn(tt.inv); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGroupFillsAllColumns(t *testing.T) {
	invoices := []erp.Invoice{
		{Name: "INV-1", Status: "Submitted"},
		{Name: "INV-2", SalesInvoiceState: "Preparing"},
		{Name: "INV-3", Status: "Paid"},
		{Name: "INV-4", Status: "Submitted"},
	}

	grouped := Group(invoices)

	if len(grouped) != len(Columns) {
		t.Fatalf("expected %d columns, got %d", len(Columns), len(grouped))
	}
	if len(grouped[ColumnReceived]) != 2 {
		t.Errorf("expected 2 received, got %d", len(grouped[ColumnReceived]))
	}
	if grouped[ColumnReceived][0].Name != "INV-1" {
		t.Errorf("expected list order preserved within column")
	}
	if len(grouped[ColumnPreparing]) != 1 || len(grouped[ColumnCompleted]) != 1 {
		t.Error("expected one preparing and one completed invoice")
	}
	if len(grouped[ColumnProcessing]) != 0 || len(grouped[ColumnOutForDelivery]) != 0 {
		t.Error("expected empty processing and out-for-delivery columns")
	}
}
