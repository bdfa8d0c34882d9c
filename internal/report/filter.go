package report

import (
	"time"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
)

// FilterToday returns the orders whose creation timestamp falls within
// the calendar day containing now, evaluated in loc. The window is
// half-open: the start of day is included, the start of the next day is
// excluded. Relative order of the input is preserved.
func FilterToday(orders []bigcommerce.Order, now time.Time, loc *time.Location) []bigcommerce.Order {
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var today []bigcommerce.Order
	for _, order := range orders {
		created := order.DateCreated.Time
		if !created.Before(dayStart) && created.Before(dayEnd) {
			today = append(today, order)
		}
	}
	return today
}
