package erp

import (
	"context"
	"fmt"
	"net/url"
)

const customerFields = `["name","customer_name","mobile_no","customer_primary_address","customer_primary_contact","territory","customer_group"]`

// searchPageLength bounds every customer search to the backend's page size.
const searchPageLength = 20

// SearchCustomersByName looks up customers whose name contains the query.
func (c *Client) SearchCustomersByName(ctx context.Context, name string) ([]Customer, error) {
	return c.searchCustomers(ctx, "customer_name", name)
}

// SearchCustomersByPhone looks up customers whose mobile number contains
// the query.
func (c *Client) SearchCustomersByPhone(ctx context.Context, phone string) ([]Customer, error) {
	return c.searchCustomers(ctx, "mobile_no", phone)
}

func (c *Client) searchCustomers(ctx context.Context, field, term string) ([]Customer, error) {
	query := url.Values{}
	query.Set("fields", customerFields)
	query.Set("filters", fmt.Sprintf(`[["%s","like","%%%s%%"]]`, field, term))
	query.Set("limit_page_length", fmt.Sprint(searchPageLength))

	var customers []Customer
	if err := c.doGet(ctx, "/api/resource/Customer", query, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetCities fetches the deliverable cities, optionally filtered by search.
func (c *Client) GetCities(ctx context.Context, search string) ([]City, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}

	var cities []City
	if err := c.doGet(ctx, "/api/method/jarz_pos.api.customer.get_cities", query, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// CreateCustomer registers a new customer from the quick-add form.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.doPost(ctx, "/api/method/jarz_pos.api.customer.create_customer", req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}
