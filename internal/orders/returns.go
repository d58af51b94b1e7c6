package orders

import (
	"fmt"
	"time"

	"ecobazaar/internal/apperr"
)

// ReturnWindow is how long after delivery a buyer may open a return.
const ReturnWindow = 7 * 24 * time.Hour

// ValidateReturnRequest checks the preconditions for opening a return:
// the order is delivered, no return was requested before, and the
// request falls inside the return window.
func ValidateReturnRequest(o *Order, now time.Time) error {
	if o.Status != StatusDelivered {
		return fmt.Errorf("only delivered orders can be returned: %w", apperr.ErrInvalidState)
	}
	if o.ReturnStatus != ReturnNone {
		return fmt.Errorf("return already requested for this order: %w", apperr.ErrInvalidState)
	}
	if o.DeliveredDate == nil || o.DeliveredDate.Before(now.Add(-ReturnWindow)) {
		return fmt.Errorf("return window expired, returns are only allowed within 7 days of delivery: %w", apperr.ErrInvalidState)
	}
	return nil
}
