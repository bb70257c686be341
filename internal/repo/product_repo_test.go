package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/pkg/logger"
)

func setupTestDB(t *testing.T) *db.DB {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))
	require.NoError(t, db.SeedHierarchy(database))

	return database
}

func testProduct() *db.Product {
	return &db.Product{
		SKU:          "100001",
		Description:  "Speaker",
		DepartmentID: 1,
		ClassID:      1,
		FamilyID:     1,
		Stock:        10,
		Quantity:     5,
		DeletedDate:  db.NeverDiscontinued,
		Model:        "X1",
		Brand:        "Acme",
		CreatedDate:  "2026-09-01",
		Discontinued: false,
	}
}

func TestAddAndGet(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	err := repo.Add(ctx, testProduct())
	assert.NoError(t, err)

	detail, err := repo.Get(ctx, "100001")
	assert.NoError(t, err)
	assert.Equal(t, "Speaker", detail.Description)
	assert.Equal(t, "Acme", detail.Brand)
	assert.Equal(t, "X1", detail.Model)
	assert.Equal(t, int64(10), detail.Stock)
	assert.Equal(t, int64(5), detail.Quantity)
	assert.Equal(t, db.NeverDiscontinued, detail.DeletedDate)

	// Hierarchy names are resolved through the composite join.
	assert.Equal(t, "Electronics", detail.DepartmentName)
	assert.Equal(t, "Audio", detail.ClassName)
	assert.Equal(t, "Headphones", detail.FamilyName)
}

func TestAddDuplicateSKUIsIgnored(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, testProduct()))

	// A second insert with the same SKU succeeds without touching the row.
	second := testProduct()
	second.Description = "Other"
	second.Stock = 99
	assert.NoError(t, repo.Add(ctx, second))

	var count int64
	require.NoError(t, database.Model(&db.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	detail, err := repo.Get(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, "Speaker", detail.Description)
	assert.Equal(t, int64(10), detail.Stock)
}

func TestGetNotFound(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	_, err := repo.Get(context.Background(), "999999")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetWithStaleHierarchyIDs(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	// A row whose stored classification does not survive the composite
	// join resolves to nothing, the same as an absent SKU.
	stale := testProduct()
	stale.SKU = "100002"
	stale.FamilyID = 99
	require.NoError(t, database.Create(stale).Error)

	_, err := repo.Get(ctx, "100002")
	assert.ErrorIs(t, err, ErrProductNotFound)

	// A class that belongs to another department also breaks the join.
	crossed := testProduct()
	crossed.SKU = "100003"
	crossed.DepartmentID = 2
	require.NoError(t, database.Create(crossed).Error)

	_, err = repo.Get(ctx, "100003")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdate(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, testProduct()))

	updated := testProduct()
	updated.Description = "Earbuds"
	updated.Stock = 20
	updated.Quantity = 0
	updated.Discontinued = true
	updated.DeletedDate = "2026-09-01"
	assert.NoError(t, repo.Update(ctx, updated))

	detail, err := repo.Get(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, "Earbuds", detail.Description)
	assert.Equal(t, int64(20), detail.Stock)
	assert.Equal(t, int64(0), detail.Quantity)
	assert.True(t, detail.Discontinued)
	assert.Equal(t, "2026-09-01", detail.DeletedDate)
}

func TestUpdateUnknownSKUIsSilent(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	missing := testProduct()
	missing.SKU = "999999"
	assert.NoError(t, repo.Update(ctx, missing))

	var count int64
	require.NoError(t, database.Model(&db.Product{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDelete(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	repo := NewProductRepository(database, log)

	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, testProduct()))

	assert.NoError(t, repo.Delete(ctx, "100001"))

	_, err := repo.Get(ctx, "100001")
	assert.ErrorIs(t, err, ErrProductNotFound)

	// Deleting an absent SKU is a no-op.
	assert.NoError(t, repo.Delete(ctx, "100001"))
}
