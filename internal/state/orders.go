package state

import (
	"fmt"

	"duka/internal/core"
)

// OrdersKey is the KV key of the persisted orders state.
const OrdersKey = "orders"

// Orders is the persisted order book.
type Orders struct {
	Orders []core.Order `json:"orders"`
}

// OrderAction is implemented by every action the orders reducer accepts.
type OrderAction interface {
	orderAction()
}

// UpdateOrderStatus moves order ID to Status.
type UpdateOrderStatus struct {
	ID     string
	Status core.OrderStatus
}

func (UpdateOrderStatus) orderAction() {}

// CloneOrders deep-copies an order book.
func CloneOrders(s Orders) Orders {
	return Orders{Orders: append([]core.Order(nil), s.Orders...)}
}

// FindOrder returns the order with id.
func (s Orders) FindOrder(id string) (core.Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return core.Order{}, false
}

// ReduceOrders is the pure reducer of the order book.
func ReduceOrders(s Orders, action OrderAction) (Orders, error) {
	switch a := action.(type) {
	case UpdateOrderStatus:
		next := CloneOrders(s)
		for i, o := range next.Orders {
			if o.ID != a.ID {
				continue
			}
			if err := core.CheckOrderTransition(o.ID, o.Status, a.Status); err != nil {
				return s, err
			}
			next.Orders[i].Status = a.Status
			return next, nil
		}
		return s, fmt.Errorf("order %s: %w", a.ID, core.ErrNotFound)
	default:
		return s, fmt.Errorf("unsupported order action %T", action)
	}
}
