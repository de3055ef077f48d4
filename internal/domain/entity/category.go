package entity

import "time"

// Category categoría del escaparate (carpeta de productos en MoySklad).
// ExternalID es la clave de unión con el sistema remoto; ID nunca sale hacia MoySklad.
type Category struct {
	ID         int64
	ExternalID string
	Name       string
	ParentID   *int64 // nil si es raíz
	UpdatedAt  time.Time
}

// CategorySummary categoría con el número de productos activos (listado público).
type CategorySummary struct {
	Category
	ProductsCount int
}
