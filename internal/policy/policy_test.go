package policy

import (
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = domain.Actor{}
	alice     = domain.Actor{UserID: 1, Username: "alice"}
	bob       = domain.Actor{UserID: 2, Username: "bob"}
	staff     = domain.Actor{UserID: 3, Username: "staff", Staff: true}
)

func TestWriteCatalog(t *testing.T) {
	tests := []struct {
		name  string
		actor domain.Actor
		want  Decision
	}{
		{"anonymous", anonymous, AuthRequired},
		{"regular user", alice, Forbidden},
		{"staff", staff, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WriteCatalog(tt.actor))
		})
	}
}

func TestViewOrder(t *testing.T) {
	order := &domain.Order{ID: 10, UserID: alice.UserID}

	tests := []struct {
		name  string
		actor domain.Actor
		want  Decision
	}{
		{"anonymous", anonymous, AuthRequired},
		{"owner", alice, Allow},
		{"other user sees not-found", bob, NotFound},
		{"staff", staff, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewOrder(tt.actor, order))
			assert.Equal(t, tt.want, EditShipping(tt.actor, order))
		})
	}
}

func TestStaffOnlyOrderOperations(t *testing.T) {
	for _, fn := range []func(domain.Actor) Decision{MarkPaid, ChangeOrderStatus, DeleteOrder} {
		assert.Equal(t, AuthRequired, fn(anonymous))
		assert.Equal(t, Forbidden, fn(alice))
		assert.Equal(t, Allow, fn(staff))
	}
}

func TestOrderScope(t *testing.T) {
	assert.Equal(t, uint64(0), OrderScope(staff))
	assert.Equal(t, alice.UserID, OrderScope(alice))
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	assert.Equal(t, AuthRequired, Checkout(anonymous))
	assert.Equal(t, Allow, Checkout(alice))
	assert.Equal(t, AuthRequired, ListOrders(anonymous))
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Allow.Err())
	assert.ErrorIs(t, Forbidden.Err(), domain.ErrForbidden)
	assert.ErrorIs(t, NotFound.Err(), domain.ErrNotFound)
	assert.ErrorIs(t, AuthRequired.Err(), domain.ErrAuthRequired)
}
