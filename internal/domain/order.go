package domain

// Order lifecycle. New orders always start pending; the status field is the
// only mutable part of a persisted order.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// PaymentMethodUnselected tags orders placed without an explicit method.
const PaymentMethodUnselected = "unselected"

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// SumSubtotals re-adds the persisted line subtotals. Used by tests to assert
// the total invariant; the stored Total is authoritative and never rewritten.
func (o *Order) SumSubtotals() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal
	}
	return sum
}
