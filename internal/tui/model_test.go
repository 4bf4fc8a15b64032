package tui

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/poparab/jarz-pos-terminal/internal/board"
	"github.com/poparab/jarz-pos-terminal/internal/cart"
	"github.com/poparab/jarz-pos-terminal/internal/customer"
	"github.com/poparab/jarz-pos-terminal/internal/erp"
	"github.com/poparab/jarz-pos-terminal/internal/money"
	"github.com/poparab/jarz-pos-terminal/internal/offline"
)

func testModel(t *testing.T) Model {
	t.Helper()
	client := erp.NewClient("http://127.0.0.1:0")
	return NewModel(Options{
		Client:   client,
		Searcher: customer.NewSearcher(customer.NewCache(16, time.Minute), client),
		Queue:    offline.Open(filepath.Join(t.TempDir(), "queue.json")),
		Money:    money.NewFormatter("USD", "en-US"),
		CacheTTL: time.Minute,
		Debounce: 300 * time.Millisecond,
	})
}

func TestStaleSearchResultsDiscarded(t *testing.T) {
	m := testModel(t)
	m.viewState = ViewCustomerSearch

	first := m.searcher.Issue()
	second := m.searcher.Issue()

	updated, _ := m.Update(searchResultsMsg{
		seq:     first,
		results: []erp.Customer{{ID: "CUST-OLD", CustomerName: "Old"}},
	})
	m = updated.(Model)
	if len(m.searchResults) != 0 {
		t.Errorf("stale results applied: %+v", m.searchResults)
	}

	updated, _ = m.Update(searchResultsMsg{
		seq:     second,
		results: []erp.Customer{{ID: "CUST-NEW", CustomerName: "New"}},
	})
	m = updated.(Model)
	if len(m.searchResults) != 1 || m.searchResults[0].ID != "CUST-NEW" {
		t.Errorf("latest results not applied: %+v", m.searchResults)
	}
}

func TestDebounceShowsProvisionalResults(t *testing.T) {
	m := testModel(t)
	m.viewState = ViewCustomerSearch
	m.searcher.Cache().UpsertCustomers([]erp.Customer{
		{ID: "C-1", CustomerName: "Ahmed Hassan", MobileNo: "0100"},
		{ID: "C-2", CustomerName: "Mona Sami", MobileNo: "0111"},
	})
	m.searchInput.SetValue("ahmed")

	seq := m.searcher.Issue()
	updated, cmd := m.Update(searchDebounceMsg{seq: seq, query: "ahmed"})
	m = updated.(Model)

	// Known customers show at once; the network merge arrives later.
	if !m.searching {
		t.Error("searching flag not set while the lookup is in flight")
	}
	if cmd == nil {
		t.Error("network lookup not scheduled")
	}
	if len(m.searchResults) != 1 || m.searchResults[0].ID != "C-1" {
		t.Errorf("provisional results = %+v, want the fuzzy match", m.searchResults)
	}
}

func TestCatalogEnterAddsAndMerges(t *testing.T) {
	m := testModel(t)
	m.viewState = ViewCatalog
	m.products = []erp.Product{
		{ID: "P-1", Name: "Cola", Price: decimal.NewFromInt(3)},
	}

	for i := 0; i < 2; i++ {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(Model)
	}

	if m.localCart.Len() != 1 {
		t.Fatalf("lines = %d, want 1 merged line", m.localCart.Len())
	}
	if m.localCart.Items[0].Qty != 2 {
		t.Errorf("qty = %d, want 2", m.localCart.Items[0].Qty)
	}
}

func TestCatalogFilter(t *testing.T) {
	m := testModel(t)
	m.viewState = ViewCatalog
	m.products = []erp.Product{
		{ID: "P-1", Name: "Cola", Price: decimal.NewFromInt(3), ItemGroup: "Drinks"},
		{ID: "P-2", Name: "Margherita", Price: decimal.NewFromInt(12), ItemGroup: "Pizza"},
		{ID: "P-3", Name: "Pepperoni", Price: decimal.NewFromInt(14), ItemGroup: "Pizza"},
	}

	m.filterInput.SetValue("pizza")
	if got := len(m.visibleProducts()); got != 2 {
		t.Fatalf("visible = %d, want 2 pizza matches", got)
	}

	// Enter adds from the filtered list, not the full one.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.localCart.Len() != 1 || m.localCart.Items[0].ID != "P-2" {
		t.Errorf("added %+v, want filtered head P-2", m.localCart.Items)
	}

	m.filterInput.SetValue("")
	if got := len(m.visibleProducts()); got != 3 {
		t.Errorf("visible = %d after clearing filter, want 3", got)
	}
}

func TestBuildSubmission(t *testing.T) {
	m := testModel(t)
	m.localCart.AddItem(cart.LineItem{ID: "P-1", Name: "Cola", Price: decimal.NewFromInt(3), Qty: 2})
	m.localCart.AddItem(cart.LineItem{
		ID: "BNDL-1", Name: "Party Box", Price: decimal.NewFromInt(45), Qty: 1,
		IsBundle: true,
		SubItems: []cart.SubItem{{ID: "P-2", Name: "Chips"}, {ID: "P-3", Name: "Dip"}},
	})
	m.localCart.SetDeliveryDetails(cart.DeliveryDetails{
		Income:     decimal.NewFromInt(5),
		Expense:    decimal.NewFromInt(3),
		CustomerID: "CUST-001",
		CityName:   "Cairo",
	})

	sub := m.buildSubmission()

	if sub.SubmissionID == "" {
		t.Error("submission id not assigned")
	}
	if sub.CustomerID != "CUST-001" || sub.CityName != "Cairo" {
		t.Errorf("delivery context = %q/%q", sub.CustomerID, sub.CityName)
	}
	if !sub.DeliveryIncome.Equal(decimal.NewFromInt(5)) {
		t.Errorf("delivery income = %s", sub.DeliveryIncome)
	}
	if len(sub.Items) != 3 {
		t.Fatalf("items = %d, want product + bundle + delivery line", len(sub.Items))
	}
	var bundleItem *erp.InvoiceItem
	for i := range sub.Items {
		if sub.Items[i].IsBundle {
			bundleItem = &sub.Items[i]
		}
	}
	if bundleItem == nil {
		t.Fatal("bundle line missing")
	}
	if len(bundleItem.SubItemIDs) != 2 || bundleItem.SubItemIDs[0] != "P-2" {
		t.Errorf("sub item ids = %v", bundleItem.SubItemIDs)
	}
}

func TestQuickAddRejectionDoesNotResubmit(t *testing.T) {
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		http.Error(w, "customer already exists", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := erp.NewClient(srv.URL)
	m := NewModel(Options{
		Client:   client,
		Searcher: customer.NewSearcher(customer.NewCache(16, time.Minute), client),
		Queue:    offline.Open(filepath.Join(t.TempDir(), "queue.json")),
		Money:    money.NewFormatter("USD", "en-US"),
		CacheTTL: time.Minute,
		Debounce: 300 * time.Millisecond,
	})
	m.viewState = ViewNewCustomer
	m.newCustomer = newCustomerInfo{Name: "Karim Adel", Phone: "+20 100 555 0101"}
	m.initCustomerForm()
	m.customerForm.State = huh.StateCompleted

	// The completed form fires exactly one submission.
	updated, _ := m.Update(spinner.TickMsg{})
	m = updated.(Model)
	if !m.submitting || !m.formFired {
		t.Fatalf("completed form did not arm submission: submitting=%v fired=%v", m.submitting, m.formFired)
	}
	rejection := m.createCustomer()()
	if _, ok := rejection.(errMsg); !ok {
		t.Fatalf("rejected create returned %T, want errMsg", rejection)
	}
	if posts != 1 {
		t.Fatalf("posts = %d, want 1", posts)
	}

	// The rejection reopens an editable form with the entered values, and
	// nothing fires again without the operator confirming.
	updated, _ = m.Update(rejection)
	m = updated.(Model)
	if m.submitting || m.formFired {
		t.Errorf("still armed after rejection: submitting=%v fired=%v", m.submitting, m.formFired)
	}
	if m.customerForm == nil || m.customerForm.State == huh.StateCompleted {
		t.Error("form not returned to an editable state")
	}
	if m.newCustomer.Name != "Karim Adel" {
		t.Errorf("entered name lost: %q", m.newCustomer.Name)
	}

	for i := 0; i < 3; i++ {
		updated, _ = m.Update(spinner.TickMsg{})
		m = updated.(Model)
	}
	if m.submitting || m.formFired {
		t.Error("submission re-armed by spinner ticks alone")
	}
	if posts != 1 {
		t.Errorf("posts = %d after idle ticks, want 1", posts)
	}
}

func TestOfflineQueueTransition(t *testing.T) {
	m := testModel(t)
	m.viewState = ViewCheckout

	updated, _ := m.Update(invoiceQueuedMsg{pending: 2})
	m = updated.(Model)

	if m.GetViewState() != ViewConfirmation {
		t.Errorf("view = %v, want confirmation", m.GetViewState())
	}
	if !m.queuedOffline {
		t.Error("queuedOffline not set")
	}
	if m.pendingLen != 2 {
		t.Errorf("pendingLen = %d", m.pendingLen)
	}
	if !m.localCart.IsEmpty() {
		t.Error("cart not cleared after queueing")
	}
}

func TestBoardAdvanceTarget(t *testing.T) {
	m := testModel(t)
	m.grouped = board.Group([]erp.Invoice{
		{Name: "INV-1", Status: "Draft"},
		{Name: "INV-2", SalesInvoiceState: "Paid"},
	})

	m.boardCol = 0
	m.boardRow = 0
	inv, next, ok := m.selectedBoardInvoice()
	if !ok || inv.Name != "INV-1" || next != board.ColumnProcessing {
		t.Errorf("advance = %q -> %q (ok=%v)", inv.Name, next, ok)
	}

	// Completed invoices cannot advance further.
	m.boardCol = len(board.Columns) - 1
	m.boardRow = 0
	if _, _, ok := m.selectedBoardInvoice(); ok {
		t.Error("completed invoice reported as advanceable")
	}
}

func TestDeliveryLineRoundTripInCartView(t *testing.T) {
	m := testModel(t)
	m.localCart.AddItem(cart.LineItem{ID: "P-1", Name: "Cola", Price: decimal.NewFromInt(10), Qty: 2})
	m.localCart.SetDeliveryDetails(cart.DeliveryDetails{
		Income:     decimal.NewFromInt(5),
		CustomerID: "CUST-001",
		CityName:   "Giza",
	})

	totals := cart.ComputeTotals(m.localCart.Items, m.localCart.DeliveryIncome)
	if !totals.GrandTotal.Equal(decimal.NewFromInt(25)) {
		t.Errorf("grand total = %s, want 25", totals.GrandTotal)
	}

	m.localCart.RemoveDeliveryDetails()
	totals = cart.ComputeTotals(m.localCart.Items, m.localCart.DeliveryIncome)
	if !totals.GrandTotal.Equal(decimal.NewFromInt(20)) {
		t.Errorf("grand total after removal = %s, want 20", totals.GrandTotal)
	}
}
