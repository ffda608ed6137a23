package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory store with the full catalog schema and
// the registry's categories seeded. A single connection keeps every query on
// the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, MigrateCatalog(db))
	require.NoError(t, SeedCategories(db))
	return db
}

// newTestProduct is the minimal valid input for a category, extended per test.
func newTestProduct(category, title string, price float64) ProductInput {
	return ProductInput{
		Category:   category,
		Title:      title,
		Price:      decimal.NewFromFloat(price),
		Available:  true,
		Attributes: map[string]string{},
	}
}
