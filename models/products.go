package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the core catalog record shared by every family.
// The category is fixed at creation time and drives which extension
// table and dictionary dimensions apply.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"not null"`
	Code        *string         `gorm:"column:codice"`
	EANCode     *string         `gorm:"column:codice_ean"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount    *float64
	Description *string
	Image       *string
	Stock       int
	Available   bool
	OnPromotion bool   `gorm:"column:in_promozione"`
	Featured    bool   `gorm:"column:in_evidenza"`
	BrandID     *int64 `gorm:"column:marca_id"`
	CategoryID  uint   `gorm:"not null"`
	Category    Category `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

// ProductDetail is the 1:1 extension holding the attributes shared across
// families. It may not exist until the first write that populates it.
type ProductDetail struct {
	ProductID        uint    `gorm:"column:prodotto_id;primaryKey"`
	Package          *string `gorm:"column:confezione"`
	Warranty         *string `gorm:"column:garanzia"`
	ManufacturerCode *string `gorm:"column:codice_produttore"`
	IsNew            bool    `gorm:"column:novita"`
	MaterialID       *int64  `gorm:"column:materiale_id"`
	FinishID         *int64  `gorm:"column:finitura_id"`
	ColorID          *int64  `gorm:"column:colore_id"`
	TypeID           *int64  `gorm:"column:tipologia_id"`
	CollectionID     *int64  `gorm:"column:collezione_id"`
	GenreID          *int64  `gorm:"column:genere_id"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *ProductDetail) TableName() string {
	return "product_details"
}

// WatchDetail backs both the watch and strap families.
type WatchDetail struct {
	ProductID       uint   `gorm:"column:prodotto_id;primaryKey"`
	CaseMaterialID  *int64 `gorm:"column:materiale_cassa_id"`
	StrapMaterialID *int64 `gorm:"column:materiale_cinturino_id"`
	MovementTypeID  *int64 `gorm:"column:tipologia_movimento_id"`
	StrapTypeID     *int64 `gorm:"column:tipologia_cinturino_id"`
	LugWidthID      *int64 `gorm:"column:misura_ansa_id"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *WatchDetail) TableName() string {
	return "watch_details"
}

type JewelryDetail struct {
	ProductID      uint   `gorm:"column:prodotto_id;primaryKey"`
	StonesID       *int64 `gorm:"column:pietre_id"`
	RingSizeID     *int64 `gorm:"column:misura_anello_id"`
	JewelryModelID *int64 `gorm:"column:modello_gioielleria_id"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *JewelryDetail) TableName() string {
	return "jewelry_details"
}

type EyewearDetail struct {
	ProductID  uint   `gorm:"column:prodotto_id;primaryKey"`
	LensTypeID *int64 `gorm:"column:tipo_lenti_id"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *EyewearDetail) TableName() string {
	return "eyewear_details"
}
