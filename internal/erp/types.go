package erp

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is an ERPNext customer record. The authoritative copy lives
// server-side; the client only caches what it has seen.
type Customer struct {
	ID              string          `json:"name"`
	CustomerName    string          `json:"customer_name"`
	MobileNo        string          `json:"mobile_no,omitempty"`
	PrimaryAddress  string          `json:"customer_primary_address,omitempty"`
	PrimaryContact  string          `json:"customer_primary_contact,omitempty"`
	Territory       string          `json:"territory,omitempty"`
	CustomerGroup   string          `json:"customer_group,omitempty"`
	CityID          string          `json:"city_id,omitempty"`
	DeliveryIncome  decimal.Decimal `json:"delivery_income,omitempty"`
	DeliveryExpense decimal.Decimal `json:"delivery_expense,omitempty"`
}

// City is a deliverable city with its default courier costs.
type City struct {
	ID              string          `json:"name"`
	CityName        string          `json:"city_name"`
	State           string          `json:"state,omitempty"`
	Country         string          `json:"country,omitempty"`
	DeliveryIncome  decimal.Decimal `json:"delivery_income,omitempty"`
	DeliveryExpense decimal.Decimal `json:"delivery_expense,omitempty"`
}

// CreateCustomerRequest is the payload for the quick-add customer form.
type CreateCustomerRequest struct {
	CustomerName   string `json:"customer_name"`
	MobileNo       string `json:"mobile_no"`
	PrimaryAddress string `json:"customer_primary_address"`
	Territory      string `json:"territory"`
}

// POSProfile scopes which products and bundles a terminal sells.
type POSProfile struct {
	Name string `json:"name"`
}

// Product is a sellable catalog item scoped by POS profile.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ItemGroup string          `json:"item_group,omitempty"`
}

// Bundle is a composite catalog item: the buyer picks an exact quantity of
// sub-items from each named group.
type Bundle struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Groups []BundleGroup   `json:"item_groups"`
}

// BundleGroup is one named group within a bundle requiring exactly Quantity
// selections from Items.
type BundleGroup struct {
	Name     string    `json:"group_name"`
	Quantity int       `json:"quantity"`
	Items    []Product `json:"items"`
}

// InvoiceItem is one line of an invoice submission.
type InvoiceItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	IsBundle   bool            `json:"is_bundle,omitempty"`
	SubItemIDs []string        `json:"sub_item_ids,omitempty"`
	IsDelivery bool            `json:"is_delivery,omitempty"`
}

// InvoiceSubmission is the checkout payload posted to the backend. It is
// also the shape persisted by the offline queue.
type InvoiceSubmission struct {
	SubmissionID    string          `json:"submission_id"`
	CustomerID      string          `json:"customer_id"`
	CityName        string          `json:"city_name"`
	DeliveryIncome  decimal.Decimal `json:"delivery_income"`
	DeliveryExpense decimal.Decimal `json:"delivery_expense"`
	Items           []InvoiceItem   `json:"cart_items"`
}

// InvoiceResult is the backend's answer to a submitted invoice.
type InvoiceResult struct {
	Name string `json:"name"`
}

// Invoice is a server invoice record as listed for the order board.
type Invoice struct {
	Name              string          `json:"name"`
	Status            string          `json:"status,omitempty"`
	SalesInvoiceState string          `json:"sales_invoice_state,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Items             int             `json:"items"`
	Courier           string          `json:"courier,omitempty"`
	Creation          string          `json:"creation,omitempty"`
}

// frappe timestamps come as "2006-01-02 15:04:05.000000"; the mock backend
// emits RFC 3339.
var creationFormats = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CreationTime parses the invoice creation timestamp. The zero time is
// returned for unknown formats.
func (inv *Invoice) CreationTime() time.Time {
	for _, layout := range creationFormats {
		if t, err := time.Parse(layout, inv.Creation); err == nil {
			return t
		}
	}
	return time.Time{}
}
