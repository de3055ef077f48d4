package catalogsync

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// StockSource indica de qué campo salió el stock final.
type StockSource string

const (
	StockFromExpand   StockSource = "stock"
	StockFromQuantity StockSource = "quantity"
)

// Normalizer mapea registros de MoySklad al esquema local. No hace I/O.
type Normalizer struct {
	defaultUnit string
}

// NewNormalizer construye el normalizador. defaultUnit vacío usa entity.DefaultUnit.
func NewNormalizer(defaultUnit string) *Normalizer {
	if defaultUnit == "" {
		defaultUnit = entity.DefaultUnit
	}
	return &Normalizer{defaultUnit: defaultUnit}
}

// Category solo toma id externo y nombre.
func (n *Normalizer) Category(f dto.MSFolder) *entity.Category {
	return &entity.Category{ExternalID: f.ID, Name: f.Name}
}

// Product arma el producto local. categoryID e imageURL ya vienen resueltos por el llamador.
func (n *Normalizer) Product(p dto.MSProduct, categoryID *int64, imageURL *string) *entity.Product {
	stock, _ := Stock(p)
	return &entity.Product{
		ExternalID:    p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Article:       p.Article,
		Price:         Price(p),
		StockQuantity: stock,
		CategoryID:    categoryID,
		ImageURL:      imageURL,
		Unit:          n.Unit(p),
		Barcode:       Barcode(p),
		IsActive:      true,
	}
}

// Price primer precio de venta en kopeks / 100; 0 si no hay precios.
func Price(p dto.MSProduct) decimal.Decimal {
	if len(p.SalePrices) == 0 {
		return decimal.Zero
	}
	return p.SalePrices[0].Value.Div(hundred)
}

// Stock devuelve el stock expandido y, si vale cero o no viene, el campo quantity.
//
// Ambigüedad heredada: stock (expand) y quantity no son equivalentes en MoySklad
// (quantity descuenta reservas). Se conserva el orden original hasta confirmarlo
// con el dueño de los datos; no "corregir" eligiendo uno solo.
func Stock(p dto.MSProduct) (int64, StockSource) {
	if v := wholeUnits(p.Stock); v != 0 {
		return v, StockFromExpand
	}
	return wholeUnits(p.Quantity), StockFromQuantity
}

// wholeUnits trunca fracciones y recorta negativos a 0 (stock_quantity es entero no negativo).
func wholeUnits(v *float64) int64 {
	if v == nil || math.IsNaN(*v) || *v <= 0 {
		return 0
	}
	if *v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Trunc(*v))
}

// FolderExternalID último segmento del href de productFolder; "" si el producto no tiene carpeta.
func FolderExternalID(p dto.MSProduct) string {
	if p.ProductFolder == nil {
		return ""
	}
	href := p.ProductFolder.Meta.Href
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

// ImagesHref enlace a la colección de imágenes, "" si no tiene ninguna.
func ImagesHref(p dto.MSProduct) string {
	if p.Images == nil || p.Images.Meta.Size <= 0 {
		return ""
	}
	return p.Images.Meta.Href
}

// Unit nombre de la unidad de medida o la unidad por defecto.
func (n *Normalizer) Unit(p dto.MSProduct) string {
	if p.Uom != nil && strings.TrimSpace(p.Uom.Name) != "" {
		return p.Uom.Name
	}
	return n.defaultUnit
}

// Barcode EAN-13 del primer código de barras; "" si no hay códigos o el primero no es EAN-13.
func Barcode(p dto.MSProduct) string {
	if len(p.Barcodes) == 0 {
		return ""
	}
	return p.Barcodes[0].EAN13
}
