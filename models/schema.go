package models

import "errors"

// Family groups the categories that share one extension-attribute schema.
// A product's family decides which extension table and which dictionary
// dimensions apply to it; it is derived from the category and never stored.
type Family int

const (
	FamilyNone Family = iota
	FamilyWatch
	FamilyStrap
	FamilyJewelry
	FamilyEyewear
)

// CategoryOutlet is the cross-family bucket. It is the only category whose
// schema spans every extension table at once.
const CategoryOutlet = "outlet"

// ErrCategoryNotFound is returned for a category name the registry does not know.
var ErrCategoryNotFound = errors.New("category not found")

var familyByCategory = map[string]Family{
	"orologi":   FamilyWatch,
	"cinturini": FamilyStrap,

	"anelli":      FamilyJewelry,
	"bracciali":   FamilyJewelry,
	"cavigliere":  FamilyJewelry,
	"ciondoli":    FamilyJewelry,
	"collane":     FamilyJewelry,
	"orecchini":   FamilyJewelry,
	"portachiavi": FamilyJewelry,
	"preziosi":    FamilyJewelry,

	"occhiali_da_sole":   FamilyEyewear,
	"montature_da_vista": FamilyEyewear,

	// simple categories, no extension table
	"sveglie":           FamilyNone,
	"orologi_da_parete": FamilyNone,
}

// Dimension is one dictionary-backed attribute: where its values are
// normalized, which column references them, and the keys it is exposed under.
type Dimension struct {
	FilterKey  string // query-string key on the listing endpoint
	PayloadKey string // body key on create/update; the id variant is PayloadKey + "_id"
	Table      string // dictionary table holding the normalized values
	Column     string // referencing column on the owning row
	JoinTable  string // table owning the column
}

// brandDimension lives on the product row itself, unlike every other dimension.
var brandDimension = Dimension{
	FilterKey: "brand", PayloadKey: "brand",
	Table: "brands", Column: "marca_id", JoinTable: "products",
}

// commonDimensions apply to every category regardless of family.
var commonDimensions = []Dimension{
	{FilterKey: "material", PayloadKey: "materiale", Table: "materiale", Column: "materiale_id", JoinTable: "product_details"},
	{FilterKey: "finish", PayloadKey: "finitura", Table: "finitura", Column: "finitura_id", JoinTable: "product_details"},
	{FilterKey: "color", PayloadKey: "colore", Table: "colore", Column: "colore_id", JoinTable: "product_details"},
	{FilterKey: "type", PayloadKey: "tipologia", Table: "tipologia", Column: "tipologia_id", JoinTable: "product_details"},
	{FilterKey: "collection", PayloadKey: "collezione", Table: "collezione", Column: "collezione_id", JoinTable: "product_details"},
	{FilterKey: "genre", PayloadKey: "genere", Table: "genere", Column: "genere_id", JoinTable: "product_details"},
}

// familySchemas binds each family to its extension table and dimensions.
// Watch and Strap share one physical table with different exposed subsets.
var familySchemas = map[Family]struct {
	Table      string
	Dimensions []Dimension
}{
	FamilyWatch: {
		Table: "watch_details",
		Dimensions: []Dimension{
			famDim("materiale_cassa", "watch_details"),
			famDim("materiale_cinturino", "watch_details"),
			famDim("tipologia_movimento", "watch_details"),
			famDim("tipologia_cinturino", "watch_details"),
		},
	},
	FamilyStrap: {
		Table: "watch_details",
		Dimensions: []Dimension{
			famDim("materiale_cinturino", "watch_details"),
			famDim("tipologia_cinturino", "watch_details"),
			famDim("misura_ansa", "watch_details"),
		},
	},
	FamilyJewelry: {
		Table: "jewelry_details",
		Dimensions: []Dimension{
			famDim("pietre", "jewelry_details"),
			famDim("misura_anello", "jewelry_details"),
			famDim("modello_gioielleria", "jewelry_details"),
		},
	},
	FamilyEyewear: {
		Table: "eyewear_details",
		Dimensions: []Dimension{
			famDim("tipo_lenti", "eyewear_details"),
		},
	},
}

// famDim covers the family dimensions, whose filter key, payload key and
// dictionary table all carry the same name.
func famDim(name, joinTable string) Dimension {
	return Dimension{
		FilterKey:  name,
		PayloadKey: name,
		Table:      name,
		Column:     name + "_id",
		JoinTable:  joinTable,
	}
}

// CategoryFamilies resolves a category name to the families whose extension
// schema applies to it. Simple categories yield an empty set; only the outlet
// bucket yields more than one.
func CategoryFamilies(name string) ([]Family, error) {
	if name == CategoryOutlet {
		return []Family{FamilyWatch, FamilyStrap, FamilyJewelry, FamilyEyewear}, nil
	}
	fam, ok := familyByCategory[name]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	if fam == FamilyNone {
		return nil, nil
	}
	return []Family{fam}, nil
}

// extensionTables returns the distinct extension tables for a family set,
// in a stable order.
func extensionTables(families []Family) []string {
	var tables []string
	seen := make(map[string]bool)
	for _, fam := range families {
		schema := familySchemas[fam]
		if schema.Table == "" || seen[schema.Table] {
			continue
		}
		seen[schema.Table] = true
		tables = append(tables, schema.Table)
	}
	return tables
}

// extensionDimensions returns the distinct family dimensions for a family set,
// in a stable order. Dimensions shared between families (Watch and Strap both
// carry the strap columns) appear once.
func extensionDimensions(families []Family) []Dimension {
	var dims []Dimension
	seen := make(map[string]bool)
	for _, fam := range families {
		for _, dim := range familySchemas[fam].Dimensions {
			key := dim.JoinTable + "." + dim.Column
			if seen[key] {
				continue
			}
			seen[key] = true
			dims = append(dims, dim)
		}
	}
	return dims
}

// ProductFilterKeys lists every dimension filter the listing endpoint accepts,
// common first, then each family's keys. Filters irrelevant to the active
// category are ignored by the query assembler, not rejected.
func ProductFilterKeys() []string {
	keys := []string{brandDimension.FilterKey}
	for _, dim := range commonDimensions {
		keys = append(keys, dim.FilterKey)
	}
	for _, dim := range extensionDimensions([]Family{FamilyWatch, FamilyStrap, FamilyJewelry, FamilyEyewear}) {
		keys = append(keys, dim.FilterKey)
	}
	return keys
}

// AttributeKeys lists every dictionary-backed payload key accepted on create,
// brand excluded.
func AttributeKeys() []string {
	var keys []string
	for _, dim := range commonDimensions {
		keys = append(keys, dim.PayloadKey)
	}
	for _, dim := range extensionDimensions([]Family{FamilyWatch, FamilyStrap, FamilyJewelry, FamilyEyewear}) {
		keys = append(keys, dim.PayloadKey)
	}
	return keys
}
