package models

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

var validNext = map[string]map[string]bool{
	OrderStatusPending:   {OrderStatusPaid: true, OrderStatusCancelled: true},
	OrderStatusPaid:      {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:   {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func IsOrderStatus(s string) bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to string) bool {
	return validNext[from][to]
}
