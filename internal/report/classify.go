package report

import (
	"strings"
	"time"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
)

// UnknownMethod is the label used when no shipping method can be resolved.
const UnknownMethod = "N/A"

// methodResolver extracts a shipping-method label from one place an
// order may carry it. Resolvers return "" when their source is absent.
type methodResolver func(bigcommerce.Order) string

// methodResolvers is the fallback chain, tried in order. The first
// non-empty label wins.
var methodResolvers = []methodResolver{
	func(o bigcommerce.Order) string { return o.ShippingMethod },
	func(o bigcommerce.Order) string {
		if len(o.ShippingAddresses) > 0 {
			return o.ShippingAddresses[0].ShippingMethod
		}
		return ""
	},
	func(o bigcommerce.Order) string {
		if len(o.Consignments) > 0 {
			return o.Consignments[0].ShippingMethod
		}
		return ""
	},
	func(o bigcommerce.Order) string {
		if len(o.ShippingMethods) > 0 {
			return o.ShippingMethods[0].Method
		}
		return ""
	},
}

// ResolveShippingMethod returns the order's shipping-method label,
// falling back through attached method, shipping addresses,
// consignments, and the legacy shipping_methods array.
func ResolveShippingMethod(order bigcommerce.Order) string {
	for _, resolve := range methodResolvers {
		if method := resolve(order); method != "" {
			return method
		}
	}
	return UnknownMethod
}

// isUrgentMethod reports whether a shipping-method label denotes 1-2 day
// air shipping.
func isUrgentMethod(method string) bool {
	lower := strings.ToLower(method)
	return strings.Contains(lower, "next day air") || strings.Contains(lower, "2nd day air")
}

// Classify partitions orders into the urgent list and per-method groups.
// Urgent orders keep encounter order; groups appear in first-seen order
// keyed by the exact (case-preserved) label, with members in encounter
// order. Every input order lands in exactly one bucket.
func Classify(orders []bigcommerce.Order, now time.Time) ClassifiedReport {
	report := ClassifiedReport{
		TotalCount:  len(orders),
		GeneratedAt: now,
	}

	groupIndex := make(map[string]int)
	for _, order := range orders {
		method := ResolveShippingMethod(order)
		if isUrgentMethod(method) {
			report.Urgent = append(report.Urgent, order)
			continue
		}

		idx, ok := groupIndex[method]
		if !ok {
			idx = len(report.Groups)
			groupIndex[method] = idx
			report.Groups = append(report.Groups, Group{Method: method})
		}
		report.Groups[idx].Orders = append(report.Groups[idx].Orders, order)
	}

	report.UrgentCount = len(report.Urgent)
	return report
}

// fastDeliveryKeywords is the broad expedite vocabulary scanned by the
// fast-delivery view. Deliberately wider than the urgent-bucket match
// used by the daily report; the two policies are independent.
var fastDeliveryKeywords = []string{
	"next day air",
	"2nd day air",
	"next day",
	"2nd day",
	"overnight",
	"express",
	"rush",
	"priority",
	"expedited",
	"same day",
}

// FastDelivery returns the orders that mention an expedite keyword in
// their attached shipping method, staff notes, or customer message.
func FastDelivery(orders []bigcommerce.Order) []bigcommerce.Order {
	var fast []bigcommerce.Order
	for _, order := range orders {
		haystacks := []string{
			strings.ToLower(order.ShippingMethod),
			strings.ToLower(order.StaffNotes),
			strings.ToLower(order.CustomerMessage),
		}

		for _, keyword := range fastDeliveryKeywords {
			matched := false
			for _, haystack := range haystacks {
				if strings.Contains(haystack, keyword) {
					matched = true
					break
				}
			}
			if matched {
				fast = append(fast, order)
				break
			}
		}
	}
	return fast
}
