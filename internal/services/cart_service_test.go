package services

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/mocks"
	"storefront/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_Add(t *testing.T) {
	tests := []struct {
		name      string
		start     domain.Cart
		productID uint64
		quantity  int
		setup     func(*mocks.MockProductRepository)
		want      domain.Cart
		wantErr   error
	}{
		{
			name:      "new entry",
			start:     domain.Cart{},
			productID: 1,
			quantity:  2,
			setup: func(p *mocks.MockProductRepository) {
				p.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Mug", "10.00", 5), nil)
			},
			want: domain.Cart{"1": 2},
		},
		{
			name:      "increments existing entry",
			start:     domain.Cart{"1": 2},
			productID: 1,
			quantity:  3,
			setup: func(p *mocks.MockProductRepository) {
				p.On("FindByID", mock.Anything, uint64(1)).Return(CreateMockProduct(1, "Mug", "10.00", 5), nil)
			},
			want: domain.Cart{"1": 5},
		},
		{
			name:      "unknown product",
			start:     domain.Cart{},
			productID: 9,
			quantity:  1,
			setup: func(p *mocks.MockProductRepository) {
				p.On("FindByID", mock.Anything, uint64(9)).Return(nil, nil)
			},
			want:    domain.Cart{},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			carts := memory.NewCartRepository()
			products := new(mocks.MockProductRepository)
			tt.setup(products)
			require.NoError(t, carts.Save(ctx, TestSessionID, tt.start))

			err := NewCartService(carts, products).Add(ctx, TestSessionID, tt.productID, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, _ := carts.Load(ctx, TestSessionID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCartService_Add_RejectsNonPositiveQuantity(t *testing.T) {
	products := new(mocks.MockProductRepository)
	svc := NewCartService(memory.NewCartRepository(), products)

	for _, q := range []int{0, -3} {
		err := svc.Add(context.Background(), TestSessionID, 1, q)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "quantity")
	}
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCartService_Adjust(t *testing.T) {
	tests := []struct {
		name    string
		start   domain.Cart
		key     string
		action  string
		want    domain.Cart
		wantErr bool
	}{
		{name: "increase", start: domain.Cart{"1": 2}, key: "1", action: "increase", want: domain.Cart{"1": 3}},
		{name: "decrease", start: domain.Cart{"1": 2}, key: "1", action: "decrease", want: domain.Cart{"1": 1}},
		{name: "decrease to zero removes", start: domain.Cart{"1": 1, "2": 1}, key: "1", action: "decrease", want: domain.Cart{"2": 1}},
		{name: "remove", start: domain.Cart{"1": 4, "2": 1}, key: "1", action: "remove", want: domain.Cart{"2": 1}},
		{name: "absent key is a no-op", start: domain.Cart{"2": 1}, key: "1", action: "increase", want: domain.Cart{"2": 1}},
		{name: "unknown action", start: domain.Cart{"1": 1}, key: "1", action: "double", want: domain.Cart{"1": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			carts := memory.NewCartRepository()
			require.NoError(t, carts.Save(ctx, TestSessionID, tt.start))

			err := NewCartService(carts, new(mocks.MockProductRepository)).Adjust(ctx, TestSessionID, tt.key, tt.action)
			if tt.wantErr {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}

			got, _ := carts.Load(ctx, TestSessionID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCartService_RemoveTwiceMatchesOnce(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartRepository()
	svc := NewCartService(carts, new(mocks.MockProductRepository))
	require.NoError(t, carts.Save(ctx, TestSessionID, domain.Cart{"1": 3, "2": 1}))

	require.NoError(t, svc.Adjust(ctx, TestSessionID, "1", "remove"))
	once, _ := carts.Load(ctx, TestSessionID)
	require.NoError(t, svc.Adjust(ctx, TestSessionID, "1", "remove"))
	twice, _ := carts.Load(ctx, TestSessionID)

	assert.Equal(t, once, twice)
}

func TestCartService_Resolve(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartRepository()
	products := new(mocks.MockProductRepository)
	require.NoError(t, carts.Save(ctx, TestSessionID, domain.Cart{"2": 3, "1": 1, "77": 1}))

	products.On("FindByIDs", mock.Anything, idsMatch(1, 2, 77)).Return([]domain.Product{
		*CreateMockProduct(1, "Mug", "10.00", 5),
		*CreateMockProduct(2, "Tea", "2.25", 5),
	}, nil)

	resolved, err := NewCartService(carts, products).Resolve(ctx, TestSessionID)
	require.NoError(t, err)
	require.Len(t, resolved.Items, 2)
	assert.Equal(t, uint64(1), resolved.Items[0].Product.ID)
	assert.Equal(t, uint64(2), resolved.Items[1].Product.ID)
	assert.True(t, resolved.Items[1].Subtotal.Equal(decimal.RequireFromString("6.75")))
	assert.True(t, resolved.Total.Equal(decimal.RequireFromString("16.75")))
}

func TestCartService_Resolve_EmptyCartSkipsLookup(t *testing.T) {
	products := new(mocks.MockProductRepository)
	resolved, err := NewCartService(memory.NewCartRepository(), products).Resolve(context.Background(), TestSessionID)
	require.NoError(t, err)
	assert.True(t, resolved.Empty())
	assert.True(t, resolved.Total.IsZero())
	products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestCartService_Resolve_PropagatesLookupError(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartRepository()
	products := new(mocks.MockProductRepository)
	require.NoError(t, carts.Save(ctx, TestSessionID, domain.Cart{"1": 1}))
	products.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := NewCartService(carts, products).Resolve(ctx, TestSessionID)
	assert.ErrorContains(t, err, "timeout")
}

func TestCartService_CountAndClear(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartRepository()
	svc := NewCartService(carts, new(mocks.MockProductRepository))
	require.NoError(t, carts.Save(ctx, TestSessionID, domain.Cart{"1": 2, "2": 3}))

	n, err := svc.Count(ctx, TestSessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, svc.Clear(ctx, TestSessionID))
	n, _ = svc.Count(ctx, TestSessionID)
	assert.Zero(t, n)
}

func TestCartService_Move(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartRepository()
	svc := NewCartService(carts, new(mocks.MockProductRepository))
	require.NoError(t, carts.Save(ctx, TestSessionID, domain.Cart{"1": 2}))

	require.NoError(t, svc.Move(ctx, TestSessionID, "session-2"))

	moved, err := carts.Load(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"1": 2}, moved)
	old, err := carts.Load(ctx, TestSessionID)
	require.NoError(t, err)
	assert.Empty(t, old)

	require.NoError(t, svc.Move(ctx, "", "session-3"))
	require.NoError(t, svc.Move(ctx, "session-2", "session-2"))
	n, _ := svc.Count(ctx, "session-2")
	assert.Equal(t, 2, n)
}
