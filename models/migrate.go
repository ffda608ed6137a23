package models

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateCatalog creates every catalog table: entities first, then one
// normalization table per dictionary dimension, each with a case-insensitive
// unique index on name. That index is what turns a racing duplicate insert
// into a conflict the resolver can recover from.
func MigrateCatalog(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Category{},
		&Product{},
		&ProductDetail{},
		&WatchDetail{},
		&JewelryDetail{},
		&EyewearDetail{},
	); err != nil {
		return err
	}
	for _, table := range dictionaryTables {
		if err := db.Table(table).AutoMigrate(&DictionaryEntry{}); err != nil {
			return err
		}
		idx := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_name_ci ON %s (LOWER(name))",
			table, table)
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCategories inserts every category the schema registry knows about,
// leaving existing rows alone.
func SeedCategories(db *gorm.DB) error {
	names := make([]string, 0, len(familyByCategory)+1)
	for name := range familyByCategory {
		names = append(names, name)
	}
	names = append(names, CategoryOutlet)
	for _, name := range names {
		cat := Category{Name: name}
		if err := db.Where("category_name = ?", name).FirstOrCreate(&cat).Error; err != nil {
			return err
		}
	}
	return nil
}
