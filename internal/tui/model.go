package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/poparab/jarz-pos-terminal/internal/board"
	"github.com/poparab/jarz-pos-terminal/internal/bundle"
	"github.com/poparab/jarz-pos-terminal/internal/cache"
	"github.com/poparab/jarz-pos-terminal/internal/cart"
	"github.com/poparab/jarz-pos-terminal/internal/customer"
	"github.com/poparab/jarz-pos-terminal/internal/erp"
	"github.com/poparab/jarz-pos-terminal/internal/money"
	"github.com/poparab/jarz-pos-terminal/internal/offline"
	"github.com/poparab/jarz-pos-terminal/internal/push"
)

// ViewState represents the current view in the application.
type ViewState int

const (
	ViewProfilePicker ViewState = iota
	ViewCatalog
	ViewBundlePicker
	ViewCart
	ViewCustomerSearch
	ViewNewCustomer
	ViewDelivery
	ViewCheckout
	ViewBoard
	ViewConfirmation
)

// CatalogTab selects which half of the catalog is listed.
type CatalogTab int

const (
	TabProducts CatalogTab = iota
	TabBundles
)

// CatalogPayload is the per-profile cached catalog fetch. The cache is
// shared across SSH sessions.
type CatalogPayload struct {
	Products []erp.Product
	Bundles  []erp.Bundle
}

// Model is the main Bubble Tea model for the POS TUI.
type Model struct {
	// Dependencies
	client       *erp.Client
	searcher     *customer.Searcher
	queue        *offline.Queue
	moneyFmt     *money.Formatter
	catalogCache *cache.Cache[string, CatalogPayload]
	pushEvents   <-chan push.Event
	debounce     time.Duration

	// View state
	viewState ViewState
	width     int
	height    int
	styles    Styles
	spin      spinner.Model

	// Profile picker
	profiles        []erp.POSProfile
	profileIdx      int
	loadingProfiles bool
	activeProfile   string

	// Catalog
	products       []erp.Product
	bundles        []erp.Bundle
	catalogTab     CatalogTab
	catalogIdx     int
	loadingCatalog bool
	filterInput    textinput.Model
	filtering      bool

	// Bundle picker
	bundleSel      *bundle.Selection
	bundleGroupIdx int
	bundleItemIdx  int

	// Cart
	localCart *cart.Cart
	cartIdx   int

	// Customer search
	searchInput    textinput.Model
	searchResults  []erp.Customer
	resultIdx      int
	searching      bool
	selectedTarget *erp.Customer

	// New customer form
	customerForm *huh.Form
	newCustomer  newCustomerInfo
	formFired    bool

	// Delivery
	cities        []erp.City
	cityIdx       int
	loadingCities bool

	// Checkout
	submitting bool
	pendingLen int

	// Confirmation
	confirmedName string
	queuedOffline bool

	// Board
	invoices       []erp.Invoice
	grouped        map[board.Column][]erp.Invoice
	boardCol       int
	boardRow       int
	loadingBoard   bool
	updatingStatus bool

	// Error handling
	err    error
	notice string
}

// newCustomerInfo backs the quick-add customer form.
type newCustomerInfo struct {
	Name      string
	Phone     string
	Address   string
	Territory string
	Confirmed bool
}

// Messages
type (
	profilesLoadedMsg struct {
		profiles []erp.POSProfile
	}
	catalogLoadedMsg struct {
		payload CatalogPayload
	}
	searchDebounceMsg struct {
		seq   uint64
		query string
	}
	searchResultsMsg struct {
		seq     uint64
		results []erp.Customer
	}
	customerCreatedMsg struct {
		customer *erp.Customer
	}
	citiesLoadedMsg struct {
		cities []erp.City
	}
	invoiceCreatedMsg struct {
		name string
	}
	invoiceQueuedMsg struct {
		pending int
	}
	flushDoneMsg struct {
		result offline.FlushResult
	}
	invoicesLoadedMsg struct {
		invoices []erp.Invoice
	}
	statusUpdatedMsg struct{}
	pushEventMsg     struct {
		event push.Event
	}
	errMsg struct {
		err error
	}
)

// Options carries the model's external dependencies. CatalogCache may be
// shared across sessions; when nil a private one is created from CacheTTL.
type Options struct {
	Client       *erp.Client
	Searcher     *customer.Searcher
	Queue        *offline.Queue
	Money        *money.Formatter
	CatalogCache *cache.Cache[string, CatalogPayload]
	CacheTTL     time.Duration
	Debounce     time.Duration
	PushEvents   <-chan push.Event
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorTeal)

	ti := textinput.New()
	ti.Placeholder = "Name or phone..."
	ti.CharLimit = 60
	ti.Width = 40

	fi := textinput.New()
	fi.Placeholder = "Filter..."
	fi.CharLimit = 40
	fi.Width = 30

	catalogCache := opts.CatalogCache
	if catalogCache == nil {
		catalogCache = cache.New[string, CatalogPayload](opts.CacheTTL)
	}

	return Model{
		client:       opts.Client,
		searcher:     opts.Searcher,
		queue:        opts.Queue,
		moneyFmt:     opts.Money,
		catalogCache: catalogCache,
		pushEvents:   opts.PushEvents,
		debounce:     opts.Debounce,
		viewState:    ViewProfilePicker,
		styles:       styles,
		spin:         sp,
		searchInput:  ti,
		filterInput:  fi,
		localCart:    cart.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spin.Tick,
		m.loadProfiles(),
		m.flushQueue(),
	}
	if m.pushEvents != nil {
		cmds = append(cmds, m.waitForPush())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case profilesLoadedMsg:
		m.loadingProfiles = false
		m.profiles = msg.profiles
		if len(m.profiles) == 1 {
			m.activeProfile = m.profiles[0].Name
			m.viewState = ViewCatalog
			m.loadingCatalog = true
			cmds = append(cmds, m.loadCatalog())
		}

	case catalogLoadedMsg:
		m.loadingCatalog = false
		m.products = msg.payload.Products
		m.bundles = msg.payload.Bundles
		m.catalogIdx = 0

	case searchDebounceMsg:
		// Only the latest issued sequence is still an effective query.
		// Fuzzy matches over already-seen customers show immediately;
		// the network merge replaces them when it lands.
		if m.searcher.IsLatest(msg.seq) && msg.query != "" {
			m.searching = true
			m.searchResults = m.searcher.Provisional(msg.query)
			m.resultIdx = 0
			cmds = append(cmds, m.runSearch(msg.seq, msg.query))
		}

	case searchResultsMsg:
		// A response for a superseded query is discarded outright.
		if m.searcher.IsLatest(msg.seq) {
			m.searching = false
			m.searchResults = msg.results
			m.resultIdx = 0
		}

	case customerCreatedMsg:
		m.submitting = false
		m.customerForm = nil
		m.formFired = false
		m.searcher.Cache().MarkUsed(*msg.customer)
		m.selectedTarget = msg.customer
		m.viewState = ViewDelivery
		m.loadingCities = true
		cmds = append(cmds, m.loadCities())

	case citiesLoadedMsg:
		m.loadingCities = false
		m.cities = msg.cities
		m.cityIdx = 0

	case invoiceCreatedMsg:
		m.submitting = false
		m.confirmedName = msg.name
		m.queuedOffline = false
		m.localCart.Clear()
		m.viewState = ViewConfirmation
		cmds = append(cmds, m.flushQueue())

	case invoiceQueuedMsg:
		m.submitting = false
		m.confirmedName = ""
		m.queuedOffline = true
		m.pendingLen = msg.pending
		m.localCart.Clear()
		m.viewState = ViewConfirmation

	case flushDoneMsg:
		m.pendingLen = msg.result.Remaining
		if msg.result.Submitted > 0 {
			m.notice = fmt.Sprintf("Synced %d queued invoice(s), %d remaining", msg.result.Submitted, msg.result.Remaining)
		}

	case invoicesLoadedMsg:
		m.loadingBoard = false
		m.invoices = msg.invoices
		m.grouped = board.Group(msg.invoices)
		m.clampBoardCursor()

	case statusUpdatedMsg:
		m.updatingStatus = false
		m.loadingBoard = true
		cmds = append(cmds, m.loadInvoices())

	case pushEventMsg:
		if m.viewState == ViewBoard {
			m.loadingBoard = true
			cmds = append(cmds, m.loadInvoices())
		}
		cmds = append(cmds, m.waitForPush(), m.flushQueue())

	case errMsg:
		m.err = msg.err
		m.loadingProfiles = false
		m.loadingCatalog = false
		m.loadingCities = false
		m.loadingBoard = false
		m.searching = false
		m.submitting = false
		m.updatingStatus = false
		// A rejected quick-add goes back to an editable form with the
		// entered values intact. Resubmission requires the operator to
		// confirm again; nothing retries on its own.
		if m.viewState == ViewNewCustomer && m.formFired {
			m.formFired = false
			m.newCustomer.Confirmed = false
			m.initCustomerForm()
			cmds = append(cmds, m.customerForm.Init())
		}
		return m, tea.Batch(cmds...)
	}

	if m.viewState == ViewNewCustomer && m.customerForm != nil {
		form, cmd := m.customerForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.customerForm = f
			// One-shot: a completed form submits exactly once.
			if m.customerForm.State == huh.StateCompleted && !m.formFired {
				m.formFired = true
				m.submitting = true
				cmds = append(cmds, m.createCustomer())
			}
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewProfilePicker:
		return m.handleProfilePickerKeys(key)
	case ViewCatalog:
		return m.handleCatalogKeys(msg)
	case ViewBundlePicker:
		return m.handleBundlePickerKeys(key)
	case ViewCart:
		return m.handleCartKeys(key)
	case ViewCustomerSearch:
		return m.handleCustomerSearchKeys(msg)
	case ViewNewCustomer:
		return m.handleNewCustomerKeys(msg)
	case ViewDelivery:
		return m.handleDeliveryKeys(key)
	case ViewCheckout:
		return m.handleCheckoutKeys(key)
	case ViewBoard:
		return m.handleBoardKeys(key)
	case ViewConfirmation:
		return m.handleConfirmationKeys(key)
	}

	return m, nil
}

func (m Model) handleProfilePickerKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.profileIdx > 0 {
			m.profileIdx--
		}

	case "down", "j":
		if m.profileIdx < len(m.profiles)-1 {
			m.profileIdx++
		}

	case "r":
		m.loadingProfiles = true
		m.err = nil
		return m, m.loadProfiles()

	case "enter":
		if len(m.profiles) > 0 {
			m.activeProfile = m.profiles[m.profileIdx].Name
			m.viewState = ViewCatalog
			m.loadingCatalog = true
			m.err = nil
			return m, m.loadCatalog()
		}
	}
	return m, nil
}

func (m Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.filtering {
		switch key {
		case "esc":
			m.filtering = false
			m.filterInput.SetValue("")
			m.filterInput.Blur()
			m.catalogIdx = 0
			return m, nil
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.catalogIdx = 0
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit

	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.catalogIdx = 0
		} else if len(m.profiles) > 1 {
			m.viewState = ViewProfilePicker
		}

	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case "tab":
		if m.catalogTab == TabProducts {
			m.catalogTab = TabBundles
		} else {
			m.catalogTab = TabProducts
		}
		m.catalogIdx = 0

	case "up", "k":
		if m.catalogIdx > 0 {
			m.catalogIdx--
		}

	case "down", "j":
		if m.catalogIdx < m.catalogLen()-1 {
			m.catalogIdx++
		}

	case "r":
		m.catalogCache.Delete(m.activeProfile)
		m.loadingCatalog = true
		m.err = nil
		return m, m.loadCatalog()

	case "c":
		m.viewState = ViewCart
		m.cartIdx = 0

	case "b":
		m.viewState = ViewBoard
		m.loadingBoard = true
		m.err = nil
		return m, m.loadInvoices()

	case "enter":
		if m.catalogTab == TabProducts {
			if visible := m.visibleProducts(); m.catalogIdx < len(visible) {
				p := visible[m.catalogIdx]
				m.localCart.AddItem(cart.LineItem{ID: p.ID, Name: p.Name, Price: p.Price, Qty: 1})
				m.notice = fmt.Sprintf("Added %s", p.Name)
			}
		} else if visible := m.visibleBundles(); m.catalogIdx < len(visible) {
			picked := visible[m.catalogIdx]
			m.bundleSel = bundle.NewSelection(&picked)
			m.bundleGroupIdx = 0
			m.bundleItemIdx = 0
			m.viewState = ViewBundlePicker
		}
	}
	return m, nil
}

func (m Model) handleBundlePickerKeys(key string) (tea.Model, tea.Cmd) {
	if m.bundleSel == nil {
		m.viewState = ViewCatalog
		return m, nil
	}
	groups := m.bundleSel.Bundle().Groups

	switch key {
	case "esc":
		m.bundleSel = nil
		m.viewState = ViewCatalog

	case "left", "h":
		if m.bundleGroupIdx > 0 {
			m.bundleGroupIdx--
			m.bundleItemIdx = 0
		}

	case "right", "l", "tab":
		if m.bundleGroupIdx < len(groups)-1 {
			m.bundleGroupIdx++
			m.bundleItemIdx = 0
		}

	case "up", "k":
		if m.bundleItemIdx > 0 {
			m.bundleItemIdx--
		}

	case "down", "j":
		if m.bundleGroupIdx < len(groups) && m.bundleItemIdx < len(groups[m.bundleGroupIdx].Items)-1 {
			m.bundleItemIdx++
		}

	case "+", "=", " ":
		if m.bundleGroupIdx < len(groups) {
			g := groups[m.bundleGroupIdx]
			if m.bundleItemIdx < len(g.Items) {
				m.bundleSel.ChangeQuantity(g.Name, g.Items[m.bundleItemIdx].ID, 1)
			}
		}

	case "-":
		if m.bundleGroupIdx < len(groups) {
			g := groups[m.bundleGroupIdx]
			if m.bundleItemIdx < len(g.Items) {
				m.bundleSel.ChangeQuantity(g.Name, g.Items[m.bundleItemIdx].ID, -1)
			}
		}

	case "enter":
		if selected := m.bundleSel.Confirm(); selected != nil {
			b := m.bundleSel.Bundle()
			subs := make([]cart.SubItem, len(selected))
			for i, item := range selected {
				subs[i] = cart.SubItem{ID: item.ID, Name: item.Name}
			}
			m.localCart.AddItem(cart.LineItem{
				ID:       b.ID,
				Name:     b.Name,
				Price:    b.Price,
				Qty:      1,
				IsBundle: true,
				SubItems: subs,
			})
			m.bundleSel = nil
			m.viewState = ViewCart
			m.cartIdx = 0
		}
	}
	return m, nil
}

func (m Model) handleCartKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "backspace", "s":
		m.viewState = ViewCatalog

	case "up", "k":
		if m.cartIdx > 0 {
			m.cartIdx--
		}

	case "down", "j":
		if m.cartIdx < m.localCart.Len()-1 {
			m.cartIdx++
		}

	case "+", "=":
		if item := m.selectedCartItem(); item != nil && !item.IsDelivery {
			m.localCart.UpdateQty(item.ID, item.Qty+1)
		}

	case "-":
		if item := m.selectedCartItem(); item != nil && !item.IsDelivery {
			if item.Qty > 1 {
				m.localCart.UpdateQty(item.ID, item.Qty-1)
			} else {
				m.localCart.RemoveItem(item.ID)
				m.clampCartCursor()
			}
		}

	case "d", "delete":
		if item := m.selectedCartItem(); item != nil {
			if item.IsDelivery {
				m.localCart.RemoveDeliveryDetails()
			} else {
				m.localCart.RemoveItem(item.ID)
			}
			m.clampCartCursor()
		}

	case "o", "enter":
		if !m.localCart.IsEmpty() {
			m.viewState = ViewCustomerSearch
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			m.searchResults = nil
			m.resultIdx = 0
			m.err = nil
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m Model) handleCustomerSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.viewState = ViewCart
		return m, nil

	case "up":
		if m.resultIdx > 0 {
			m.resultIdx--
		}
		return m, nil

	case "down":
		if m.resultIdx < len(m.visibleCustomers())-1 {
			m.resultIdx++
		}
		return m, nil

	case "ctrl+n":
		m.newCustomer = newCustomerInfo{}
		m.initCustomerForm()
		m.viewState = ViewNewCustomer
		return m, m.customerForm.Init()

	case "enter":
		visible := m.visibleCustomers()
		if m.resultIdx < len(visible) {
			chosen := visible[m.resultIdx]
			m.searcher.Cache().MarkUsed(chosen)
			m.selectedTarget = &chosen
			m.searchInput.Blur()
			m.viewState = ViewDelivery
			m.loadingCities = true
			return m, m.loadCities()
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	after := m.searchInput.Value()

	if after != before {
		// Each edit supersedes in-flight queries; the fetch fires only if
		// this sequence is still the latest when the debounce tick lands.
		seq := m.searcher.Issue()
		if after == "" {
			m.searchResults = nil
			m.resultIdx = 0
			return m, cmd
		}
		debounce := tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{seq: seq, query: after}
		})
		return m, tea.Batch(cmd, debounce)
	}
	return m, cmd
}

func (m Model) handleNewCustomerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.customerForm = nil
		m.formFired = false
		m.viewState = ViewCustomerSearch
		return m, nil
	}

	if m.customerForm != nil {
		form, cmd := m.customerForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.customerForm = f
			if m.customerForm.State == huh.StateCompleted && !m.formFired {
				m.formFired = true
				m.submitting = true
				return m, tea.Batch(cmd, m.createCustomer())
			}
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleDeliveryKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.viewState = ViewCustomerSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "up", "k":
		if m.cityIdx > 0 {
			m.cityIdx--
		}

	case "down", "j":
		if m.cityIdx < len(m.cities)-1 {
			m.cityIdx++
		}

	case "p":
		// Pickup order: no delivery line, no city.
		m.localCart.RemoveDeliveryDetails()
		if m.selectedTarget != nil {
			m.localCart.CustomerID = m.selectedTarget.ID
		}
		m.viewState = ViewCheckout

	case "enter":
		if m.selectedTarget != nil && m.cityIdx < len(m.cities) {
			city := m.cities[m.cityIdx]
			m.localCart.SetDeliveryDetails(cart.DeliveryDetails{
				Income:     city.DeliveryIncome,
				Expense:    city.DeliveryExpense,
				CustomerID: m.selectedTarget.ID,
				CityName:   city.CityName,
			})
			m.viewState = ViewCheckout
		}
	}
	return m, nil
}

func (m Model) handleCheckoutKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.viewState = ViewDelivery

	case "enter", "p":
		if !m.submitting && !m.localCart.IsEmpty() {
			m.submitting = true
			m.err = nil
			return m, m.submitInvoice(m.buildSubmission())
		}
	}
	return m, nil
}

func (m Model) handleBoardKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.viewState = ViewCatalog

	case "left", "h":
		if m.boardCol > 0 {
			m.boardCol--
			m.boardRow = 0
		}

	case "right", "l", "tab":
		if m.boardCol < len(board.Columns)-1 {
			m.boardCol++
			m.boardRow = 0
		}

	case "up", "k":
		if m.boardRow > 0 {
			m.boardRow--
		}

	case "down", "j":
		if m.boardRow < len(m.grouped[board.Columns[m.boardCol]])-1 {
			m.boardRow++
		}

	case "r":
		m.loadingBoard = true
		m.err = nil
		return m, m.loadInvoices()

	case "enter":
		if inv, next, ok := m.selectedBoardInvoice(); ok && !m.updatingStatus {
			m.updatingStatus = true
			return m, m.advanceInvoice(inv.Name, next)
		}
	}
	return m, nil
}

func (m Model) handleConfirmationKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "esc", "q":
		m.viewState = ViewCatalog
		m.confirmedName = ""
		m.queuedOffline = false
		m.selectedTarget = nil
		m.err = nil
	}
	return m, nil
}

// selectedCartItem returns the cart line under the cursor, or nil.
func (m *Model) selectedCartItem() *cart.LineItem {
	if m.cartIdx < 0 || m.cartIdx >= m.localCart.Len() {
		return nil
	}
	return &m.localCart.Items[m.cartIdx]
}

func (m *Model) clampCartCursor() {
	if m.cartIdx >= m.localCart.Len() {
		m.cartIdx = m.localCart.Len() - 1
	}
	if m.cartIdx < 0 {
		m.cartIdx = 0
	}
}

func (m *Model) clampBoardCursor() {
	col := m.grouped[board.Columns[m.boardCol]]
	if m.boardRow >= len(col) {
		m.boardRow = len(col) - 1
	}
	if m.boardRow < 0 {
		m.boardRow = 0
	}
}

func (m *Model) catalogLen() int {
	if m.catalogTab == TabProducts {
		return len(m.visibleProducts())
	}
	return len(m.visibleBundles())
}

// visibleProducts applies the catalog filter, case-insensitively, over
// product names and item groups.
func (m *Model) visibleProducts() []erp.Product {
	filter := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if filter == "" {
		return m.products
	}
	var out []erp.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), filter) ||
			strings.Contains(strings.ToLower(p.ItemGroup), filter) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) visibleBundles() []erp.Bundle {
	filter := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if filter == "" {
		return m.bundles
	}
	var out []erp.Bundle
	for _, b := range m.bundles {
		if strings.Contains(strings.ToLower(b.Name), filter) {
			out = append(out, b)
		}
	}
	return out
}

// visibleCustomers is the result list the search screen renders: live
// results when a query is active, the recency list otherwise.
func (m *Model) visibleCustomers() []erp.Customer {
	if m.searchInput.Value() == "" {
		return m.searcher.Cache().Recent(customer.RecentLimit)
	}
	return m.searchResults
}

// selectedBoardInvoice returns the invoice under the board cursor and the
// column it advances to. Completed invoices have nowhere to go.
func (m *Model) selectedBoardInvoice() (erp.Invoice, board.Column, bool) {
	col := board.Columns[m.boardCol]
	cards := m.grouped[col]
	if m.boardRow >= len(cards) || m.boardCol >= len(board.Columns)-1 {
		return erp.Invoice{}, "", false
	}
	return cards[m.boardRow], board.Columns[m.boardCol+1], true
}

// buildSubmission freezes the cart into the checkout payload.
func (m *Model) buildSubmission() erp.InvoiceSubmission {
	items := make([]erp.InvoiceItem, 0, m.localCart.Len())
	for _, line := range m.localCart.Items {
		item := erp.InvoiceItem{
			ID:         line.ID,
			Name:       line.Name,
			Price:      line.Price,
			Qty:        line.Qty,
			IsBundle:   line.IsBundle,
			IsDelivery: line.IsDelivery,
		}
		for _, sub := range line.SubItems {
			item.SubItemIDs = append(item.SubItemIDs, sub.ID)
		}
		items = append(items, item)
	}

	return erp.InvoiceSubmission{
		SubmissionID:    uuid.NewString(),
		CustomerID:      m.localCart.CustomerID,
		CityName:        m.localCart.CityName,
		DeliveryIncome:  m.localCart.DeliveryIncome,
		DeliveryExpense: m.localCart.DeliveryExpense,
		Items:           items,
	}
}

// initCustomerForm builds the quick-add form over the current newCustomer
// values, so a rejected submission reopens with the entered data intact.
func (m *Model) initCustomerForm() {
	m.customerForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Customer Name").
				Value(&m.newCustomer.Name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Phone").
				Value(&m.newCustomer.Phone).
				Validate(func(s string) error {
					if s != "" && !customer.IsPhoneQuery(s) {
						return fmt.Errorf("digits, spaces, +, -, ( ) only")
					}
					return nil
				}),
			huh.NewInput().
				Title("Address").
				Value(&m.newCustomer.Address),
			huh.NewInput().
				Title("Territory").
				Value(&m.newCustomer.Territory),
			huh.NewConfirm().
				Title("Create this customer?").
				Value(&m.newCustomer.Confirmed).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// Commands

func (m Model) loadProfiles() tea.Cmd {
	return func() tea.Msg {
		profiles, err := m.client.GetPOSProfiles(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return profilesLoadedMsg{profiles: profiles}
	}
}

func (m Model) loadCatalog() tea.Cmd {
	profile := m.activeProfile
	return func() tea.Msg {
		payload, err := m.catalogCache.GetOrLoad(profile, func() (CatalogPayload, error) {
			products, err := m.client.GetProfileProducts(context.Background(), profile)
			if err != nil {
				return CatalogPayload{}, err
			}
			bundles, err := m.client.GetProfileBundles(context.Background(), profile)
			if err != nil {
				return CatalogPayload{}, err
			}
			return CatalogPayload{Products: products, Bundles: bundles}, nil
		})
		if err != nil {
			return errMsg{err: err}
		}
		return catalogLoadedMsg{payload: payload}
	}
}

func (m Model) runSearch(seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		results := m.searcher.Search(context.Background(), query)
		return searchResultsMsg{seq: seq, results: results}
	}
}

func (m Model) createCustomer() tea.Cmd {
	req := erp.CreateCustomerRequest{
		CustomerName:   m.newCustomer.Name,
		MobileNo:       m.newCustomer.Phone,
		PrimaryAddress: m.newCustomer.Address,
		Territory:      m.newCustomer.Territory,
	}
	return func() tea.Msg {
		created, err := m.client.CreateCustomer(context.Background(), req)
		if err != nil {
			return errMsg{err: err}
		}
		return customerCreatedMsg{customer: created}
	}
}

func (m Model) loadCities() tea.Cmd {
	return func() tea.Msg {
		cities, err := m.client.GetCities(context.Background(), "")
		if err != nil {
			return errMsg{err: err}
		}
		return citiesLoadedMsg{cities: cities}
	}
}

// submitInvoice posts the payload, falling back to the offline queue when
// the backend is unreachable. Server rejections surface as errors instead.
func (m Model) submitInvoice(sub erp.InvoiceSubmission) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.CreateInvoice(context.Background(), sub)
		if err == nil {
			return invoiceCreatedMsg{name: result.Name}
		}
		if !erp.IsNoResponse(err) {
			return errMsg{err: err}
		}
		if qerr := m.queue.Enqueue(sub); qerr != nil {
			return errMsg{err: qerr}
		}
		pending, _ := m.queue.Len()
		return invoiceQueuedMsg{pending: pending}
	}
}

func (m Model) flushQueue() tea.Cmd {
	return func() tea.Msg {
		result, err := m.queue.Flush(context.Background(), func(ctx context.Context, sub erp.InvoiceSubmission) error {
			_, serr := m.client.CreateInvoice(ctx, sub)
			return serr
		})
		if err != nil {
			return errMsg{err: err}
		}
		return flushDoneMsg{result: result}
	}
}

func (m Model) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		invoices, err := m.client.GetInvoices(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return invoicesLoadedMsg{invoices: invoices}
	}
}

func (m Model) advanceInvoice(name string, next board.Column) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.UpdateInvoiceStatus(context.Background(), name, string(next)); err != nil {
			return errMsg{err: err}
		}
		return statusUpdatedMsg{}
	}
}

func (m Model) waitForPush() tea.Cmd {
	events := m.pushEvents
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return pushEventMsg{event: ev}
	}
}

// GetViewState returns the current view state (for testing).
func (m Model) GetViewState() ViewState {
	return m.viewState
}
