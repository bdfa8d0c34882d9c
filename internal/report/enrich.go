package report

import (
	"context"
	"sync"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/pkg/logger"
)

// maxConcurrentEnrichments caps in-flight shipping lookups so a busy day
// does not turn into a request storm against the store API.
const maxConcurrentEnrichments = 10

// ShippingFetcher is the subset of the source client the enricher needs.
type ShippingFetcher interface {
	GetShippingAddresses(ctx context.Context, orderID int) ([]bigcommerce.ShippingAddress, error)
}

// Enrich attaches the shipping method to each order by fetching its
// shipping_addresses sub-resource. Lookups run concurrently but each
// goroutine writes only its own index, so the output sequence always
// matches the input sequence. A failed lookup leaves that order's
// shipping method empty and never fails the batch; Enrich returns once
// every lookup has settled.
func Enrich(ctx context.Context, client ShippingFetcher, orders []bigcommerce.Order) []bigcommerce.Order {
	if len(orders) == 0 {
		return nil
	}

	enriched := make([]bigcommerce.Order, len(orders))
	copy(enriched, orders)

	sem := make(chan struct{}, maxConcurrentEnrichments)
	var wg sync.WaitGroup
	for i := range enriched {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			order := &enriched[idx]
			addresses, err := client.GetShippingAddresses(ctx, order.ID)
			if err != nil {
				logger.Warn("shipping enrichment failed",
					"order_id", order.ID,
					"error", err)
				order.ShippingMethod = ""
				order.ShippingAddresses = nil
				return
			}

			order.ShippingAddresses = addresses
			if len(addresses) > 0 {
				order.ShippingMethod = addresses[0].ShippingMethod
			}
		}(i)
	}
	wg.Wait()

	return enriched
}
