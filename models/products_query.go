package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPageSize bounds a listing when the caller sends no limit.
const DefaultPageSize = 40

// ProductFilters describes one listing request. Dimensions is keyed by
// filter key (brand, material, ..., materiale_cassa, pietre, ...); keys that
// do not apply to the active category are ignored.
type ProductFilters struct {
	Category string
	Search   string
	Sort     string
	Limit    int
	Offset   int

	Dimensions  map[string]string
	OnPromotion *bool
	IsNew       *bool
	Featured    *bool
}

// predicate is one parameterized WHERE clause. User values always travel as
// bind parameters; the SQL text only ever contains registry-owned names.
type predicate struct {
	expr string
	args []any
}

// ProductView is the flat denormalized record returned by reads: core fields,
// category name, resolved common attributes, and the family attributes that
// apply to the product's category. Booleans are real booleans, never 0/1.
type ProductView struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Code        string  `json:"codice,omitempty"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Available   bool    `json:"available"`
	Stock       int     `json:"stock"`
	OnPromotion bool    `json:"in_promozione"`
	Featured    bool    `json:"in_evidenza"`
	EANCode     string  `json:"codice_ean,omitempty"`
	Category    string  `json:"categoria"`

	Brand            string `json:"brand,omitempty"`
	Package          string `json:"confezione,omitempty"`
	Warranty         string `json:"garanzia,omitempty"`
	ManufacturerCode string `json:"codice_produttore,omitempty"`
	IsNew            bool   `json:"novita"`

	Material   string `json:"materiale,omitempty"`
	Finish     string `json:"finitura,omitempty"`
	Color      string `json:"colore,omitempty"`
	Type       string `json:"tipologia,omitempty"`
	Collection string `json:"collezione,omitempty"`
	Genre      string `json:"genere,omitempty"`

	CaseMaterial  *string `json:"materiale_cassa,omitempty"`
	StrapMaterial *string `json:"materiale_cinturino,omitempty"`
	MovementType  *string `json:"tipologia_movimento,omitempty"`
	StrapType     *string `json:"tipologia_cinturino,omitempty"`
	LugWidth      *string `json:"misura_ansa,omitempty"`
	Stones        *string `json:"pietre,omitempty"`
	RingSize      *string `json:"misura_anello,omitempty"`
	JewelryModel  *string `json:"modello_gioielleria,omitempty"`
	LensType      *string `json:"tipo_lenti,omitempty"`
}

// productRow is the scan target for the joined select.
type productRow struct {
	ID          uint
	Title       string
	Code        *string `gorm:"column:codice"`
	Price       decimal.Decimal
	Discount    *float64
	Description *string
	Image       *string
	Available   bool
	Stock       int
	OnPromotion bool    `gorm:"column:in_promozione"`
	Featured    bool    `gorm:"column:in_evidenza"`
	EANCode     *string `gorm:"column:codice_ean"`
	Category    string  `gorm:"column:categoria"`

	Brand            *string
	Package          *string `gorm:"column:confezione"`
	Warranty         *string `gorm:"column:garanzia"`
	ManufacturerCode *string `gorm:"column:codice_produttore"`
	IsNew            *bool   `gorm:"column:novita"`

	Material   *string `gorm:"column:materiale"`
	Finish     *string `gorm:"column:finitura"`
	Color      *string `gorm:"column:colore"`
	Type       *string `gorm:"column:tipologia"`
	Collection *string `gorm:"column:collezione"`
	Genre      *string `gorm:"column:genere"`

	CaseMaterial  *string `gorm:"column:materiale_cassa"`
	StrapMaterial *string `gorm:"column:materiale_cinturino"`
	MovementType  *string `gorm:"column:tipologia_movimento"`
	StrapType     *string `gorm:"column:tipologia_cinturino"`
	LugWidth      *string `gorm:"column:misura_ansa"`
	Stones        *string `gorm:"column:pietre"`
	RingSize      *string `gorm:"column:misura_anello"`
	JewelryModel  *string `gorm:"column:modello_gioielleria"`
	LensType      *string `gorm:"column:tipo_lenti"`
}

// ListProducts runs one filtered, sorted, paginated page plus a total count
// built from the identical predicate set. An empty page is a valid result.
func (r *ProductsRepository) ListProducts(f ProductFilters) ([]ProductView, int64, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var families []Family
	if f.Category != "" {
		var err error
		families, err = CategoryFamilies(f.Category)
		if err != nil {
			return nil, 0, err
		}
	}

	preds := buildPredicates(f, families)

	// Count and page share the same predicates; only pagination differs.
	var total int64
	if err := r.filteredQuery(families, preds).
		Distinct("products.id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filteredQuery(families, preds).
		Select(selectColumns(families))
	if order := orderClause(f.Sort); order != "" {
		query = query.Order(order)
	}

	var rows []productRow
	if err := query.Offset(offset).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]ProductView, len(rows))
	for i, row := range rows {
		views[i] = toView(row)
	}
	return views, total, nil
}

// GetProduct resolves the product's category first, then joins only that
// category's applicable extension fields into one flat view.
func (r *ProductsRepository) GetProduct(id uint) (ProductView, error) {
	category, err := r.productCategory(id)
	if err != nil {
		return ProductView{}, err
	}
	families, _ := CategoryFamilies(category)

	var row productRow
	err = r.filteredQuery(families, []predicate{{"products.id = ?", []any{id}}}).
		Select(selectColumns(families)).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductView{}, ErrProductNotFound
		}
		return ProductView{}, err
	}
	return toView(row), nil
}

// CategoryFacets enumerates, per dimension applicable to the category, the
// distinct non-empty values carried by that category's products, ascending.
// Dimensions with no values are omitted entirely.
func (r *ProductsRepository) CategoryFacets(category string) (map[string][]string, error) {
	families, err := CategoryFamilies(category)
	if err != nil {
		return nil, err
	}

	dims := append([]Dimension{brandDimension}, commonDimensions...)
	dims = append(dims, extensionDimensions(families)...)

	facets := make(map[string][]string)
	for _, dim := range dims {
		query := r.db.Table("products").
			Joins("JOIN categories ON categories.id = products.category_id").
			Joins("LEFT JOIN product_details ON product_details.prodotto_id = products.id")
		if dim.JoinTable != "products" && dim.JoinTable != "product_details" {
			query = query.Joins(fmt.Sprintf(
				"LEFT JOIN %s ON %s.prodotto_id = products.id", dim.JoinTable, dim.JoinTable))
		}
		query = query.Joins(fmt.Sprintf(
			"LEFT JOIN %s ON %s.id = %s.%s", dim.Table, dim.Table, dim.JoinTable, dim.Column))

		var values []string
		err := query.
			Where("categories.category_name = ?", category).
			Where(fmt.Sprintf("%s.name IS NOT NULL AND %s.name != ''", dim.Table, dim.Table)).
			Distinct().
			Order(dim.Table + ".name ASC").
			Pluck(dim.Table+".name", &values).Error
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			facets[dim.FilterKey] = values
		}
	}
	return facets, nil
}

// filteredQuery builds the joined base query for a family set and applies
// the predicates. Join fragments come from the static registry, never from
// request input.
func (r *ProductsRepository) filteredQuery(families []Family, preds []predicate) *gorm.DB {
	query := r.db.Table("products").
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN brands ON brands.id = products.marca_id").
		Joins("LEFT JOIN product_details ON product_details.prodotto_id = products.id")
	for _, dim := range commonDimensions {
		query = query.Joins(fmt.Sprintf(
			"LEFT JOIN %s ON %s.id = product_details.%s", dim.Table, dim.Table, dim.Column))
	}
	for _, table := range extensionTables(families) {
		query = query.Joins(fmt.Sprintf(
			"LEFT JOIN %s ON %s.prodotto_id = products.id", table, table))
	}
	for _, dim := range extensionDimensions(families) {
		query = query.Joins(fmt.Sprintf(
			"LEFT JOIN %s ON %s.id = %s.%s", dim.Table, dim.Table, dim.JoinTable, dim.Column))
	}
	for _, p := range preds {
		query = query.Where(p.expr, p.args...)
	}
	return query
}

// buildPredicates turns a filter spec into the ordered clause list shared by
// the page and count queries.
func buildPredicates(f ProductFilters, families []Family) []predicate {
	var preds []predicate

	if f.Category != "" {
		preds = append(preds, predicate{"categories.category_name = ?", []any{f.Category}})
	}

	dims := append([]Dimension{brandDimension}, commonDimensions...)
	dims = append(dims, extensionDimensions(families)...)
	for _, dim := range dims {
		if v := f.Dimensions[dim.FilterKey]; v != "" {
			preds = append(preds, predicate{
				fmt.Sprintf("LOWER(%s.name) = LOWER(?)", dim.Table), []any{v}})
		}
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		kw := "%" + strings.ToLower(s) + "%"
		preds = append(preds, predicate{
			"(LOWER(products.title) LIKE ? OR LOWER(brands.name) LIKE ? OR LOWER(categories.category_name) LIKE ?)",
			[]any{kw, kw, kw}})
	}

	if f.Category == "" {
		// Global search: requested flags combine with OR, a product matches
		// when any of them is set.
		var exprs []string
		var args []any
		if f.OnPromotion != nil && *f.OnPromotion {
			exprs = append(exprs, "products.in_promozione = ?")
			args = append(args, true)
		}
		if f.IsNew != nil && *f.IsNew {
			exprs = append(exprs, "product_details.novita = ?")
			args = append(args, true)
		}
		if f.Featured != nil && *f.Featured {
			exprs = append(exprs, "products.in_evidenza = ?")
			args = append(args, true)
		}
		if len(exprs) > 0 {
			preds = append(preds, predicate{"(" + strings.Join(exprs, " OR ") + ")", args})
		}
	} else {
		// Within a category each flag filters by its literal value.
		if f.OnPromotion != nil {
			preds = append(preds, predicate{"products.in_promozione = ?", []any{*f.OnPromotion}})
		}
		if f.IsNew != nil {
			preds = append(preds, predicate{"product_details.novita = ?", []any{*f.IsNew}})
		}
		if f.Featured != nil {
			preds = append(preds, predicate{"products.in_evidenza = ?", []any{*f.Featured}})
		}
	}

	return preds
}

// selectColumns assembles the projection: core fields, category and brand
// names, common detail, and the family dimensions for the active families.
func selectColumns(families []Family) []string {
	cols := []string{
		"products.id", "products.title", "products.codice", "products.price",
		"products.discount", "products.description", "products.image",
		"products.available", "products.stock", "products.in_promozione",
		"products.in_evidenza", "products.codice_ean",
		"categories.category_name AS categoria",
		"brands.name AS brand",
		"product_details.confezione", "product_details.garanzia",
		"product_details.codice_produttore", "product_details.novita",
	}
	for _, dim := range commonDimensions {
		cols = append(cols, fmt.Sprintf("%s.name AS %s", dim.Table, dim.PayloadKey))
	}
	for _, dim := range extensionDimensions(families) {
		cols = append(cols, fmt.Sprintf("%s.name AS %s", dim.Table, dim.PayloadKey))
	}
	return cols
}

// orderClause maps a sort key to its ORDER BY expression. Price sorts use the
// price net of discount, not the raw price.
func orderClause(sort string) string {
	switch sort {
	case "price-asc":
		return "(products.price * (1 - COALESCE(products.discount, 0) / 100.0)) ASC"
	case "price-desc":
		return "(products.price * (1 - COALESCE(products.discount, 0) / 100.0)) DESC"
	case "name-asc":
		return "products.title ASC"
	case "name-desc":
		return "products.title DESC"
	default:
		return ""
	}
}

func toView(row productRow) ProductView {
	return ProductView{
		ID:          row.ID,
		Title:       row.Title,
		Code:        strOrEmpty(row.Code),
		Price:       row.Price.InexactFloat64(),
		Discount:    floatOrZero(row.Discount),
		Description: strOrEmpty(row.Description),
		Image:       strOrEmpty(row.Image),
		Available:   row.Available,
		Stock:       row.Stock,
		OnPromotion: row.OnPromotion,
		Featured:    row.Featured,
		EANCode:     strOrEmpty(row.EANCode),
		Category:    row.Category,

		Brand:            strOrEmpty(row.Brand),
		Package:          strOrEmpty(row.Package),
		Warranty:         strOrEmpty(row.Warranty),
		ManufacturerCode: strOrEmpty(row.ManufacturerCode),
		IsNew:            row.IsNew != nil && *row.IsNew,

		Material:   strOrEmpty(row.Material),
		Finish:     strOrEmpty(row.Finish),
		Color:      strOrEmpty(row.Color),
		Type:       strOrEmpty(row.Type),
		Collection: strOrEmpty(row.Collection),
		Genre:      strOrEmpty(row.Genre),

		CaseMaterial:  row.CaseMaterial,
		StrapMaterial: row.StrapMaterial,
		MovementType:  row.MovementType,
		StrapType:     row.StrapType,
		LugWidth:      row.LugWidth,
		Stones:        row.Stones,
		RingSize:      row.RingSize,
		JewelryModel:  row.JewelryModel,
		LensType:      row.LensType,
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
