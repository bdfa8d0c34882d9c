package bigcommerce

import (
	"strconv"
	"strings"
	"time"
)

// Time wraps time.Time to handle the RFC1123 timestamps returned by the
// BigCommerce v2 API ("Tue, 20 Aug 2024 14:00:00 +0000").
type Time struct {
	time.Time
}

var timeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
}

// UnmarshalJSON parses a v2 API timestamp. Empty strings decode to the
// zero time.
func (t *Time) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		s = string(data)
	}
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	var lastErr error
	for _, format := range timeFormats {
		parsed, err := time.Parse(format, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON renders the timestamp in the same RFC1123Z format the API uses.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(t.Format(time.RFC1123Z))), nil
}

// Address is a v2 billing or shipping address block.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Street1   string `json:"street_1"`
	Street2   string `json:"street_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Name returns the trimmed full name of the contact, or "N/A" when both
// name fields are empty.
func (a Address) Name() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return "N/A"
	}
	return name
}

// ShippingAddress is the per-order shipping_addresses sub-resource. Its
// shipping_method carries the label the customer selected at checkout.
type ShippingAddress struct {
	Address
	ID             int    `json:"id"`
	OrderID        int    `json:"order_id"`
	ShippingMethod string `json:"shipping_method"`
}

// Consignment is one entry of the order consignments sub-resource.
type Consignment struct {
	ID             int    `json:"id"`
	ShippingMethod string `json:"shipping_method"`
}

// LegacyShippingMethod is the deprecated shipping_methods array still
// present on some older orders.
type LegacyShippingMethod struct {
	Method string `json:"method"`
}

// Order represents one commerce transaction as returned by the v2
// orders list. ShippingMethod and ShippingAddresses are empty until the
// enrichment pass attaches them.
type Order struct {
	ID                 int     `json:"id"`
	CustomerID         int     `json:"customer_id"`
	DateCreated        Time    `json:"date_created"`
	Status             string  `json:"status"`
	TotalIncTax        string  `json:"total_inc_tax"`
	ShippingCostIncTax string  `json:"shipping_cost_inc_tax"`
	PaymentMethod      string  `json:"payment_method"`
	StaffNotes         string  `json:"staff_notes"`
	CustomerMessage    string  `json:"customer_message"`
	BillingAddress     Address `json:"billing_address"`

	// Attached by enrichment, never returned by the list endpoint
	ShippingMethod    string                 `json:"shipping_method,omitempty"`
	ShippingAddresses []ShippingAddress      `json:"shipping_addresses,omitempty"`
	Consignments      []Consignment          `json:"consignments,omitempty"`
	ShippingMethods   []LegacyShippingMethod `json:"shipping_methods,omitempty"`
}

// CustomerName returns the billing contact's display name ("N/A" when absent).
func (o Order) CustomerName() string {
	return o.BillingAddress.Name()
}

// Product is one line item from the order products sub-resource.
type Product struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	PriceInc  string `json:"price_inc_tax"`
}

// OrderDetails is a fully hydrated order: the base record plus its
// line items, shipping addresses, and consignments.
type OrderDetails struct {
	Order
	LineItems []Product `json:"line_items"`
}

// Customer is the v2 customers resource.
type Customer struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}
