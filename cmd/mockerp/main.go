// Package main implements a mock ERPNext backend for local development. It
// serves the handful of REST and RPC endpoints the terminal uses plus a
// websocket push channel.
package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/websocket"

	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

//go:embed testdata/*
var testdataFS embed.FS

type server struct {
	mu        sync.Mutex
	customers []erp.Customer
	cities    []erp.City
	profiles  []string
	products  map[string][]erp.Product
	bundles   map[string][]erp.Bundle
	invoices  []erp.Invoice
	seen      map[string]string // submission id -> invoice name
	nextInv   int

	hub *hub
}

func main() {
	addr := getEnv("MOCKERP_ADDR", ":18080")

	s := &server{
		products: make(map[string][]erp.Product),
		bundles:  make(map[string][]erp.Bundle),
		seen:     make(map[string]string),
		nextInv:  1,
		hub:      newHub(),
	}
	s.loadTestdata()

	http.HandleFunc("/api/resource/Customer", s.handleCustomerSearch)
	http.HandleFunc("/api/method/jarz_pos.api.customer.get_cities", s.handleCities)
	http.HandleFunc("/api/method/jarz_pos.api.customer.create_customer", s.handleCreateCustomer)
	http.HandleFunc("/api/method/jarz_pos.api.pos.get_pos_profiles", s.handleProfiles)
	http.HandleFunc("/api/method/jarz_pos.api.pos.get_profile_products", s.handleProfileProducts)
	http.HandleFunc("/api/method/jarz_pos.api.pos.get_profile_bundles", s.handleProfileBundles)
	http.HandleFunc("/api/method/jarz_pos.api.invoices.create_sales_invoice", s.handleCreateInvoice)
	http.HandleFunc("/api/method/jarz_pos.api.invoices.get_invoices", s.handleInvoices)
	http.HandleFunc("/api/method/jarz_pos.api.invoices.update_invoice_status", s.handleUpdateStatus)
	http.Handle("/ws", websocket.Handler(s.hub.serve))

	log.Printf("Mock ERPNext server listening on %s", addr)
	log.Printf("Loaded %d customers, %d cities, %d profiles", len(s.customers), len(s.cities), len(s.profiles))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func (s *server) loadTestdata() {
	mustLoad(&s.customers, "testdata/customers.json")
	mustLoad(&s.cities, "testdata/cities.json")
	mustLoad(&s.profiles, "testdata/profiles.json")
	mustLoad(&s.products, "testdata/products.json")
	mustLoad(&s.bundles, "testdata/bundles.json")
	mustLoad(&s.invoices, "testdata/invoices.json")
	s.nextInv = len(s.invoices) + 1
}

func mustLoad(dst interface{}, path string) {
	data, err := testdataFS.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}
}

func (s *server) handleCustomerSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	field, term := parseLikeFilter(r.URL.Query().Get("filters"))

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []erp.Customer
	for _, c := range s.customers {
		haystack := c.CustomerName
		if field == "mobile_no" {
			haystack = c.MobileNo
		}
		if term == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(term)) {
			matched = append(matched, c)
		}
	}
	if len(matched) > 20 {
		matched = matched[:20]
	}

	writeJSON(w, map[string]interface{}{"data": matched})
}

// parseLikeFilter extracts field and term from a Frappe filters parameter
// of the form [["field","like","%term%"]].
func parseLikeFilter(raw string) (field, term string) {
	var filters [][]string
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return "", ""
	}
	if len(filters) == 0 || len(filters[0]) != 3 {
		return "", ""
	}
	return filters[0][0], strings.Trim(filters[0][2], "%")
}

func (s *server) handleCities(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []erp.City
	for _, c := range s.cities {
		if search == "" || strings.Contains(strings.ToLower(c.CityName), search) {
			matched = append(matched, c)
		}
	}
	writeJSON(w, map[string]interface{}{"message": matched})
}

func (s *server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req erp.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if req.CustomerName == "" {
		http.Error(w, "customer_name is required", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := erp.Customer{
		ID:             fmt.Sprintf("CUST-%04d", len(s.customers)+1),
		CustomerName:   req.CustomerName,
		MobileNo:       req.MobileNo,
		PrimaryAddress: req.PrimaryAddress,
		Territory:      req.Territory,
	}
	s.customers = append(s.customers, created)

	writeJSON(w, map[string]interface{}{"message": created})
}

func (s *server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]interface{}{"message": s.profiles})
}

func (s *server) handleProfileProducts(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")

	s.mu.Lock()
	defer s.mu.Unlock()

	products, ok := s.products[profile]
	if !ok {
		products = []erp.Product{}
	}
	writeJSON(w, map[string]interface{}{"message": products})
}

func (s *server) handleProfileBundles(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")

	s.mu.Lock()
	defer s.mu.Unlock()

	bundles, ok := s.bundles[profile]
	if !ok {
		bundles = []erp.Bundle{}
	}
	writeJSON(w, map[string]interface{}{"message": bundles})
}

func (s *server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sub erp.InvoiceSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if len(sub.Items) == 0 {
		http.Error(w, "cart_items is empty", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()

	// Offline flush may replay a submission the server already accepted.
	if name, dup := s.seen[sub.SubmissionID]; dup {
		s.mu.Unlock()
		writeJSON(w, map[string]interface{}{"message": erp.InvoiceResult{Name: name}})
		return
	}

	amount := sub.DeliveryIncome
	itemCount := 0
	for _, item := range sub.Items {
		if !item.IsDelivery {
			amount = amount.Add(item.Price.Mul(decimalFromInt(item.Qty)))
			itemCount += item.Qty
		}
	}

	name := fmt.Sprintf("ACC-SINV-%04d", s.nextInv)
	s.nextInv++
	s.invoices = append(s.invoices, erp.Invoice{
		Name:     name,
		Status:   "Submitted",
		Amount:   amount,
		Items:    itemCount,
		Creation: time.Now().UTC().Format(time.RFC3339),
	})
	if sub.SubmissionID != "" {
		s.seen[sub.SubmissionID] = name
	}
	s.mu.Unlock()

	s.hub.broadcast("jarz_pos_new_invoice", name)
	writeJSON(w, map[string]interface{}{"message": erp.InvoiceResult{Name: name}})
}

func (s *server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]interface{}{"message": s.invoices})
}

func (s *server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	found := false
	for i := range s.invoices {
		if s.invoices[i].Name == req.Name {
			s.invoices[i].SalesInvoiceState = req.Status
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}

	if req.Status == "Completed" || req.Status == "Paid" {
		s.hub.broadcast("jarz_pos_invoice_paid", req.Name)
	}
	writeJSON(w, map[string]interface{}{"message": "ok"})
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
