// Package bigcommerce wraps the BigCommerce v2 store API endpoints the
// daily report pipeline consumes.
package bigcommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/pkg/httpretry"
)

// Client is a BigCommerce v2 store API client
type Client struct {
	baseURL     string
	accessToken string
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a new BigCommerce API client
func NewClient(cfg config.BigCommerceConfig) *Client {
	return &Client{
		baseURL:     cfg.APIBaseURL(),
		accessToken: cfg.AccessToken,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes an HTTP request to the BigCommerce API. The v2 API
// answers 204 with an empty body when a collection has no entries, so
// both 200 and 204 are success.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-Auth-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// OrdersQuery holds query options for the orders list endpoint
type OrdersQuery struct {
	Limit int
	Sort  string
}

// GetOrders fetches a single page of orders. The pipeline asks for the
// most recent orders sorted by creation date descending and never
// paginates past the first page.
func (c *Client) GetOrders(ctx context.Context, query OrdersQuery) ([]Order, error) {
	params := url.Values{}
	if query.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", query.Limit))
	}
	sort := query.Sort
	if sort == "" {
		sort = "date_created:desc"
	}
	params.Set("sort", sort)

	body, err := c.doRequest(ctx, http.MethodGet, "/orders", params)
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var orders []Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("parsing orders: %w", err)
	}

	return orders, nil
}

// GetShippingAddresses fetches the shipping_addresses sub-resource for
// an order. An empty list is a valid outcome, not an error.
func (c *Client) GetShippingAddresses(ctx context.Context, orderID int) ([]ShippingAddress, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/shipping_addresses", orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching shipping addresses for order %d: %w", orderID, err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var addresses []ShippingAddress
	if err := json.Unmarshal(body, &addresses); err != nil {
		return nil, fmt.Errorf("parsing shipping addresses for order %d: %w", orderID, err)
	}

	return addresses, nil
}

// GetOrderDetails fetches an order together with its line items,
// shipping addresses, and consignments. The four sub-resource calls run
// concurrently; the first error wins.
func (c *Client) GetOrderDetails(ctx context.Context, orderID int) (*OrderDetails, error) {
	var (
		details   OrderDetails
		addresses []ShippingAddress
		legacy    []Consignment

		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
		if err != nil {
			setErr(fmt.Errorf("fetching order %d: %w", orderID, err))
			return
		}
		if err := json.Unmarshal(body, &details.Order); err != nil {
			setErr(fmt.Errorf("parsing order %d: %w", orderID, err))
		}
	}()
	go func() {
		defer wg.Done()
		body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/products", orderID), nil)
		if err != nil {
			setErr(fmt.Errorf("fetching products for order %d: %w", orderID, err))
			return
		}
		if len(body) == 0 {
			return
		}
		if err := json.Unmarshal(body, &details.LineItems); err != nil {
			setErr(fmt.Errorf("parsing products for order %d: %w", orderID, err))
		}
	}()
	go func() {
		defer wg.Done()
		addrs, err := c.GetShippingAddresses(ctx, orderID)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		addresses = addrs
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/consignments", orderID), nil)
		if err != nil {
			setErr(fmt.Errorf("fetching consignments for order %d: %w", orderID, err))
			return
		}
		if len(body) == 0 {
			return
		}
		var cons []Consignment
		if err := json.Unmarshal(body, &cons); err != nil {
			setErr(fmt.Errorf("parsing consignments for order %d: %w", orderID, err))
			return
		}
		mu.Lock()
		legacy = cons
		mu.Unlock()
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	details.ShippingAddresses = addresses
	details.Consignments = legacy
	if len(addresses) > 0 {
		details.ShippingMethod = addresses[0].ShippingMethod
	}

	return &details, nil
}

// GetCustomer fetches a customer record. Lookup failures are logged by
// the caller and treated as "no customer data", so the error is
// returned alongside a nil customer rather than aborting anything.
func (c *Client) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/customers/%d", customerID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching customer %d: %w", customerID, err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var customer Customer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("parsing customer %d: %w", customerID, err)
	}

	return &customer, nil
}
