package dto

import "github.com/shopspring/decimal"

// ── Estructuras del protocolo JSON API 1.2 de MoySklad ─────────────────────────
// Solo se declaran los campos que consume la sincronización.

// MSMeta metadatos de entidad o colección. Size solo viene en colecciones.
type MSMeta struct {
	Href   string `json:"href"`
	Type   string `json:"type,omitempty"`
	Size   int    `json:"size,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// MSRef referencia a otra entidad ({"meta": {...}}).
type MSRef struct {
	Meta MSMeta `json:"meta"`
}

// MSFolder carpeta de productos (categoría).
type MSFolder struct {
	Meta MSMeta `json:"meta"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MSSalePrice precio de venta en unidades menores (kopeks).
type MSSalePrice struct {
	Value decimal.Decimal `json:"value"`
}

// MSBarcode un código de barras; solo uno de los campos viene informado.
type MSBarcode struct {
	EAN13   string `json:"ean13,omitempty"`
	EAN8    string `json:"ean8,omitempty"`
	Code128 string `json:"code128,omitempty"`
	GTIN    string `json:"gtin,omitempty"`
}

// MSUom unidad de medida; Name solo viene cuando la entidad está expandida.
type MSUom struct {
	Meta MSMeta `json:"meta"`
	Name string `json:"name,omitempty"`
}

// MSProduct producto tal como lo devuelve /entity/product?expand=stock.
// Stock y Quantity son punteros para distinguir ausente de cero.
type MSProduct struct {
	Meta          MSMeta        `json:"meta"`
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Article       string        `json:"article"`
	SalePrices    []MSSalePrice `json:"salePrices"`
	Stock         *float64      `json:"stock"`
	Quantity      *float64      `json:"quantity"`
	ProductFolder *MSRef        `json:"productFolder"`
	Images        *MSRef        `json:"images"`
	Uom           *MSUom        `json:"uom"`
	Barcodes      []MSBarcode   `json:"barcodes"`
}

// MSImage imagen adjunta a un producto.
type MSImage struct {
	Filename  string  `json:"filename"`
	Miniature MSHref  `json:"miniature"`
	Tiny      *MSHref `json:"tiny,omitempty"`
}

// MSHref objeto con enlace de descarga ({"href": "..."}).
type MSHref struct {
	Href string `json:"href"`
}

// MSList colección paginada genérica.
type MSList[T any] struct {
	Meta MSMeta `json:"meta"`
	Rows []T    `json:"rows"`
}

// MSError cuerpo de error de la API.
type MSError struct {
	Errors []struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	} `json:"errors"`
}

// MSProductPage página de productos ya decodificada.
type MSProductPage struct {
	Rows  []MSProduct
	Total int // meta.size; total de productos en MoySklad
}
