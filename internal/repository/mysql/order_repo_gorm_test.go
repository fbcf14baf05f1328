package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError:       true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func newTestOrder() *domain.Order {
	return &domain.Order{
		UserID:  1,
		Name:    "Some Guy",
		Address: "123 Random Street",
		Phone:   "344-777-888",
		Total:   decimal.RequireFromString("35.00"),
		Status:  domain.StatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductID: 2, Quantity: 3, Price: decimal.RequireFromString("5.00")},
		},
	}
}

var (
	insertOrder = regexp.QuoteMeta("INSERT INTO `orders`")
	insertItem  = regexp.QuoteMeta("INSERT INTO `order_items`")
)

func TestOrderRepo_CreateWithItems_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	order := newTestOrder()
	require.NoError(t, repo.CreateWithItems(context.Background(), order))

	assert.Equal(t, uint64(7), order.ID)
	for _, it := range order.Items {
		assert.Equal(t, uint64(7), it.OrderID)
		assert.NotZero(t, it.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CreateWithItems_RollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertItem).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	order := newTestOrder()
	err := repo.CreateWithItems(context.Background(), order)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, order.ID)
	for _, it := range order.Items {
		assert.Zero(t, it.ID)
		assert.Zero(t, it.OrderID)
	}
	// The rollback expectation proves no commit ever happened.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CreateWithItems_RollsBackOnOrderFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateWithItems(context.Background(), newTestOrder())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `orders`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := repo.FindByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"row matched expected status", 1, true},
		{"status already moved on", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewOrderRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE `orders` SET `status`=?")).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			ok, err := repo.UpdateStatus(context.Background(), 3, domain.StatusPending, domain.StatusPlaced)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_UpdateStatusAndShipping_SingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `orders` SET `address`=\\?,`name`=\\?,`phone`=\\?,`status`=\\?.*status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ship := domain.ShippingInfo{Name: "Ada", Address: "1 Loop Lane", Phone: "555-0101"}
	ok, err := repo.UpdateStatusAndShipping(context.Background(), 3, domain.StatusPending, domain.StatusShipped, ship)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepo_DeleteCascadesToProducts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `products` WHERE category_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `categories`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, "category"), domain.ErrConflict)
	assert.ErrorIs(t, translate(gorm.ErrForeignKeyViolated, "product"), domain.ErrConflict)
	assert.NoError(t, translate(nil, "x"))

	other := errors.New("boom")
	assert.Equal(t, other, translate(other, "x"))
}
