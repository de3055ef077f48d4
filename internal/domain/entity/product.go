package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit unidad usada cuando MoySklad no informa uom.
const DefaultUnit = "pcs"

// Product producto del escaparate sincronizado desde MoySklad.
type Product struct {
	ID            int64
	ExternalID    string
	Name          string
	Description   string
	Article       string
	Price         decimal.Decimal // unidades mayores (rublos, no kopeks)
	StockQuantity int64
	CategoryID    *int64
	CategoryName  *string // solo lectura, viene del JOIN en listados
	ImageURL      *string
	Unit          string
	Barcode       string
	IsActive      bool
	UpdatedAt     time.Time
}

// ProductFilter criterios del listado público de productos.
type ProductFilter struct {
	CategoryID *int64
	Search     string
	Limit      int
	Offset     int
}

// CatalogStatus agregados para el reporte de estado de la sincronización.
type CatalogStatus struct {
	Categories int
	Products   int
	LastSync   *time.Time
}
