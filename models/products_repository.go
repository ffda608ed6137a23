package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product id has no matching row.
var ErrProductNotFound = errors.New("product not found")

// ErrNoFieldsToUpdate marks an update that produced zero effective changes.
// It is a distinct outcome, not a failure: nothing was written.
var ErrNoFieldsToUpdate = errors.New("no fields to update")

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// ProductInput carries a new product. Attributes holds the dictionary-backed
// values keyed by payload name (materiale, colore, ..., materiale_cassa,
// pietre, ...); keys outside the category's schema are ignored.
type ProductInput struct {
	Category    string
	Title       string
	Code        string
	EANCode     string
	Price       decimal.Decimal
	Discount    *float64
	Description string
	Image       string
	Stock       int
	Available   bool
	OnPromotion bool
	Featured    bool

	Brand            string
	Package          string
	Warranty         string
	ManufacturerCode string
	IsNew            bool
	Attributes       map[string]string
}

// CreateProduct inserts the product, its common detail row and, when the
// category's family has an extension table, the extension row, all in one
// transaction. Any failure rolls back everything.
func (r *ProductsRepository) CreateProduct(in ProductInput) (uint, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return 0, ErrCategoryNotFound
	}
	families, err := CategoryFamilies(category)
	if err != nil {
		return 0, err
	}

	var productID uint
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var cat Category
		if err := tx.Where("category_name = ?", category).Take(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		brandID, err := resolveDictionary(tx, brandDimension.Table, in.Brand)
		if err != nil {
			return err
		}

		product := Product{
			Title:       in.Title,
			Code:        nullable(in.Code),
			EANCode:     nullable(in.EANCode),
			Price:       in.Price,
			Discount:    in.Discount,
			Description: nullable(in.Description),
			Image:       nullable(in.Image),
			Stock:       in.Stock,
			Available:   in.Available,
			OnPromotion: in.OnPromotion,
			Featured:    in.Featured,
			BrandID:     brandID,
			CategoryID:  cat.ID,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		detail := map[string]any{
			"prodotto_id":       product.ID,
			"confezione":        nullable(in.Package),
			"garanzia":          nullable(in.Warranty),
			"codice_produttore": nullable(in.ManufacturerCode),
			"novita":            in.IsNew,
		}
		for _, dim := range commonDimensions {
			id, err := resolveDictionary(tx, dim.Table, in.Attributes[dim.PayloadKey])
			if err != nil {
				return err
			}
			detail[dim.Column] = id
		}
		if err := tx.Table("product_details").Create(detail).Error; err != nil {
			return err
		}

		dims := extensionDimensions(families)
		for _, table := range extensionTables(families) {
			row := map[string]any{"prodotto_id": product.ID}
			for _, dim := range dims {
				if dim.JoinTable != table {
					continue
				}
				id, err := resolveDictionary(tx, dim.Table, in.Attributes[dim.PayloadKey])
				if err != nil {
					return err
				}
				row[dim.Column] = id
			}
			if err := tx.Table(table).Create(row).Error; err != nil {
				return err
			}
		}

		productID = product.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return productID, nil
}

// productScalarColumns are the product-level columns a partial update may
// touch. The category is deliberately absent: it is write-once.
var productScalarColumns = []string{
	"title", "price", "discount", "available", "stock",
	"in_promozione", "in_evidenza", "codice", "codice_ean", "description", "image",
}

// UpdateProduct applies a partial update across the product, its common
// detail and its family extension. Attribute values may arrive as a direct
// id (<name>_id) or as a name to resolve; the id wins when both are present.
// A payload with zero recognized fields returns ErrNoFieldsToUpdate and
// performs no writes. On success the freshly joined view is returned.
func (r *ProductsRepository) UpdateProduct(id uint, fields map[string]any) (ProductView, error) {
	category, err := r.productCategory(id)
	if err != nil {
		return ProductView{}, err
	}
	// category is immutable after creation
	delete(fields, "categoria")
	delete(fields, "category_id")

	families, _ := CategoryFamilies(category)

	err = r.db.Transaction(func(tx *gorm.DB) error {
		productSet := map[string]any{}
		for _, col := range productScalarColumns {
			v, ok := fields[col]
			if !ok {
				continue
			}
			coerced, ok := coerceColumn(col, v)
			if !ok {
				continue // tolerated: invalid coercions are skipped, not fatal
			}
			productSet[col] = coerced
		}

		// brand: direct id beats name resolution
		if v, ok := fields["marca_id"]; ok {
			if n, ok := coerceInt(v); ok {
				productSet["marca_id"] = n
			}
		} else if v, ok := fields["brand"]; ok {
			if name, ok := v.(string); ok {
				brandID, err := resolveDictionary(tx, brandDimension.Table, name)
				if err != nil {
					return err
				}
				if brandID != nil {
					productSet["marca_id"] = *brandID
				}
			}
		}

		detailSet := map[string]any{}
		for _, col := range []string{"confezione", "garanzia", "codice_produttore"} {
			if v, ok := fields[col]; ok {
				if s, ok := v.(string); ok {
					detailSet[col] = nullable(s)
				} else if v == nil {
					detailSet[col] = nil
				}
			}
		}
		if v, ok := fields["novita"]; ok {
			if b, ok := coerceBool(v); ok {
				detailSet["novita"] = b
			}
		}
		for _, dim := range commonDimensions {
			if err := resolveDimensionField(tx, dim, fields, detailSet); err != nil {
				return err
			}
		}

		extSets := map[string]map[string]any{}
		for _, dim := range extensionDimensions(families) {
			set, ok := extSets[dim.JoinTable]
			if !ok {
				set = map[string]any{}
				extSets[dim.JoinTable] = set
			}
			if err := resolveDimensionField(tx, dim, fields, set); err != nil {
				return err
			}
		}

		changed := len(productSet) > 0 || len(detailSet) > 0
		for _, set := range extSets {
			changed = changed || len(set) > 0
		}
		if !changed {
			return ErrNoFieldsToUpdate
		}

		if len(productSet) > 0 {
			if err := tx.Model(&Product{}).Where("id = ?", id).Updates(productSet).Error; err != nil {
				return err
			}
		}
		if len(detailSet) > 0 {
			if err := upsertDetailRow(tx, "product_details", id, detailSet); err != nil {
				return err
			}
		}
		for table, set := range extSets {
			if len(set) == 0 {
				continue
			}
			if err := upsertDetailRow(tx, table, id, set); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ProductView{}, err
	}

	return r.GetProduct(id)
}

// DeleteProduct removes the product row. Detail and extension rows follow via
// the ON DELETE CASCADE constraints.
func (r *ProductsRepository) DeleteProduct(id uint) error {
	res := r.db.Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// productCategory reads the current category name for a product id.
func (r *ProductsRepository) productCategory(id uint) (string, error) {
	var row struct {
		CategoryName string
	}
	err := r.db.Table("products").
		Select("categories.category_name").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}
	return row.CategoryName, nil
}

// resolveDimensionField applies the id-or-name contract for one dimension:
// <payload>_id is used verbatim when present, otherwise a non-blank name is
// resolved (and created if missing) through the dictionary.
func resolveDimensionField(tx *gorm.DB, dim Dimension, fields map[string]any, set map[string]any) error {
	if v, ok := fields[dim.PayloadKey+"_id"]; ok {
		if v == nil {
			set[dim.Column] = nil
			return nil
		}
		if n, ok := coerceInt(v); ok {
			set[dim.Column] = n
		}
		return nil
	}
	v, ok := fields[dim.PayloadKey]
	if !ok {
		return nil
	}
	name, ok := v.(string)
	if !ok {
		return nil
	}
	id, err := resolveDictionary(tx, dim.Table, name)
	if err != nil {
		return err
	}
	if id != nil {
		set[dim.Column] = *id
	}
	return nil
}

// upsertDetailRow inserts a fresh 1:1 row when none exists for the product,
// otherwise updates only the touched columns. Never a second row.
func upsertDetailRow(tx *gorm.DB, table string, productID uint, set map[string]any) error {
	var n int64
	if err := tx.Table(table).Where("prodotto_id = ?", productID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		row := map[string]any{"prodotto_id": productID}
		for col, v := range set {
			row[col] = v
		}
		return tx.Table(table).Create(row).Error
	}
	return tx.Table(table).Where("prodotto_id = ?", productID).Updates(set).Error
}

func coerceColumn(col string, v any) (any, bool) {
	switch col {
	case "available", "in_promozione", "in_evidenza":
		if b, ok := coerceBool(v); ok {
			return b, true
		}
		return nil, false
	case "price", "discount":
		if v == nil {
			return nil, true
		}
		if f, ok := coerceFloat(v); ok {
			return f, true
		}
		return nil, false
	case "stock":
		if n, ok := coerceInt(v); ok {
			return n, true
		}
		return nil, false
	default:
		if v == nil {
			return nil, true
		}
		if s, ok := v.(string); ok {
			return s, true
		}
		return nil, false
	}
}

// coerceBool accepts the truthy encodings the API has always tolerated.
func coerceBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch x {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case float64:
		switch x {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case int:
		switch x {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceInt(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
