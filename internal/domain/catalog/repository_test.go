package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

const mugID = "5f0c7c1e-3b1a-4d2e-9f6a-0b1c2d3e4f50"

var productColumns = []string{"id", "name", "description", "price", "image", "category", "rating", "stock", "created_at"}

func TestRepositoryListProducts_FiltersAndOrders(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE category = \$1 AND \(LOWER\(name\) LIKE \$2 OR LOWER\(description\) LIKE \$3\) ORDER BY created_at DESC`).
		WithArgs("shoes", "%run%", "%run%").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p2", "Trail Runner", "", "120.00", "", "shoes", 4.5, 3, now).
			AddRow("p1", "Road Runner", "", "99.50", "", "shoes", 4.0, 10, now.Add(-time.Hour)))

	products, err := repo.ListProducts(context.Background(), Filter{Category: "shoes", Search: "RUN"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p2", products[0].ID)
	assert.Equal(t, "99.5", products[1].Price.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListProducts_EmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(productColumns))

	products, err := repo.ListProducts(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestRepositoryGetProduct_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetProduct(context.Background(), "6a1d8d2f-4c2b-4e3f-8a7b-1c2d3e4f5061")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRepositoryGetProduct_DatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetProduct(context.Background(), mugID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
}

func TestRepositoryGetProduct_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(mugID, "Mug", "Ceramic", "12.00", "mug.png", "kitchen", 4.8, 50, time.Now()))

	p, err := repo.GetProduct(context.Background(), mugID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "12", p.Price.String())
}

func TestRepositoryGetProduct_MalformedIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	for _, id := range []string{"abc", "", "p1' OR 1=1 --"} {
		_, err := repo.GetProduct(context.Background(), id)
		assert.ErrorIs(t, err, ErrProductNotFound, id)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
