package models

import "gorm.io/gorm"

// Category represents a product category. The family classification it maps
// to lives in the schema registry, not in the table.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:category_name;uniqueIndex;not null" json:"category_name"`
}

func (c *Category) TableName() string {
	return "categories"
}

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("category_name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
