// Package policy decides who may mutate catalog entries and who may read and
// mutate orders. Page and API handlers reach it through the services, never
// directly. Catalog reads are open to everyone and need no decision.
package policy

import "storefront/internal/domain"

type Decision int

const (
	Allow Decision = iota
	Forbidden
	NotFound
	AuthRequired
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not-found"
	case AuthRequired:
		return "auth-required"
	}
	return "unknown"
}

// Err converts a decision to the matching domain error, nil for Allow.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case NotFound:
		return domain.ErrNotFound
	case AuthRequired:
		return domain.ErrAuthRequired
	}
	return domain.ErrForbidden
}

func WriteCatalog(a domain.Actor) Decision {
	return staffOnly(a)
}

// Checkout also covers order creation through the API.
func Checkout(a domain.Actor) Decision {
	if !a.Authenticated() {
		return AuthRequired
	}
	return Allow
}

func ListOrders(a domain.Actor) Decision {
	if !a.Authenticated() {
		return AuthRequired
	}
	return Allow
}

// OrderScope returns the user id listings must be restricted to, or 0 when
// the actor may see every order.
func OrderScope(a domain.Actor) uint64 {
	if a.IsStaff() {
		return 0
	}
	return a.UserID
}

// ViewOrder masks orders owned by someone else as missing.
func ViewOrder(a domain.Actor, o *domain.Order) Decision {
	if !a.Authenticated() {
		return AuthRequired
	}
	if a.IsStaff() || o.UserID == a.UserID {
		return Allow
	}
	return NotFound
}

// EditShipping lets owners and staff correct the shipping snapshot.
func EditShipping(a domain.Actor, o *domain.Order) Decision {
	return ViewOrder(a, o)
}

// ChangeOrderStatus, MarkPaid and DeleteOrder are staff-only regardless of
// ownership. They are evaluated before the order is loaded.
func ChangeOrderStatus(a domain.Actor) Decision { return staffOnly(a) }

func MarkPaid(a domain.Actor) Decision { return staffOnly(a) }

func DeleteOrder(a domain.Actor) Decision { return staffOnly(a) }

func staffOnly(a domain.Actor) Decision {
	if !a.Authenticated() {
		return AuthRequired
	}
	if !a.IsStaff() {
		return Forbidden
	}
	return Allow
}
