package domain

import (
	"fmt"
	"strings"
)

// OrderStatus is the stage of an order in the kitchen/delivery lifecycle
type OrderStatus string

const (
	StatusRecebido    OrderStatus = "recebido"
	StatusEmPreparo   OrderStatus = "em_preparo"
	StatusPronto      OrderStatus = "pronto"
	StatusSaiuEntrega OrderStatus = "saiu_entrega"
	StatusEntregue    OrderStatus = "entregue"
	StatusCancelado   OrderStatus = "cancelado"
)

// Statuses lists every status in lifecycle order
var Statuses = []OrderStatus{
	StatusRecebido,
	StatusEmPreparo,
	StatusPronto,
	StatusSaiuEntrega,
	StatusEntregue,
	StatusCancelado,
}

// allowedTransitions is the opt-in guard used by strict status updates
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusRecebido:    {StatusEmPreparo, StatusCancelado},
	StatusEmPreparo:   {StatusPronto, StatusCancelado},
	StatusPronto:      {StatusSaiuEntrega, StatusEntregue, StatusCancelado},
	StatusSaiuEntrega: {StatusEntregue, StatusCancelado},
	StatusEntregue:    {},
	StatusCancelado:   {},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed from s
func (s OrderStatus) IsTerminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// ParseOrderStatus converts a raw string into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// CanTransition reports whether the transition table allows moving from one
// status to another. Staying in the same status is always allowed.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func joinStatuses() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
