package erp

import (
	"context"
	"encoding/json"
	"net/url"
)

// GetPOSProfiles lists the POS profiles available to the session. The
// backend may answer with a list of names or a list of objects; both are
// normalized to []POSProfile.
func (c *Client) GetPOSProfiles(ctx context.Context) ([]POSProfile, error) {
	var raw json.RawMessage
	if err := c.doGet(ctx, "/api/method/jarz_pos.api.pos.get_pos_profiles", nil, &raw); err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		profiles := make([]POSProfile, len(names))
		for i, n := range names {
			profiles[i] = POSProfile{Name: n}
		}
		return profiles, nil
	}

	var profiles []POSProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfileProducts fetches the products sold under a POS profile.
func (c *Client) GetProfileProducts(ctx context.Context, profile string) ([]Product, error) {
	query := url.Values{}
	query.Set("profile", profile)

	var products []Product
	if err := c.doGet(ctx, "/api/method/jarz_pos.api.pos.get_profile_products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProfileBundles fetches the bundles sold under a POS profile.
func (c *Client) GetProfileBundles(ctx context.Context, profile string) ([]Bundle, error) {
	query := url.Values{}
	query.Set("profile", profile)

	var bundles []Bundle
	if err := c.doGet(ctx, "/api/method/jarz_pos.api.pos.get_profile_bundles", query, &bundles); err != nil {
		return nil, err
	}
	return bundles, nil
}

// CreateInvoice submits a sales invoice. This is the single submission path
// shared by online checkout and the offline queue flush.
func (c *Client) CreateInvoice(ctx context.Context, sub InvoiceSubmission) (*InvoiceResult, error) {
	var result InvoiceResult
	if err := c.doPost(ctx, "/api/method/jarz_pos.api.invoices.create_sales_invoice", sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetInvoices lists invoices for the order board.
func (c *Client) GetInvoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if err := c.doGet(ctx, "/api/method/jarz_pos.api.invoices.get_invoices", nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateInvoiceStatus moves an invoice to a new state on the backend.
func (c *Client) UpdateInvoiceStatus(ctx context.Context, name, status string) error {
	body := map[string]string{"name": name, "status": status}
	return c.doPost(ctx, "/api/method/jarz_pos.api.invoices.update_invoice_status", body, nil)
}
