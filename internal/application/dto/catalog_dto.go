package dto

// CategoryResponse categoría en el listado público.
type CategoryResponse struct {
	ID            int64  `json:"id"`
	MoySkladID    string `json:"moysklad_id"`
	Name          string `json:"name"`
	ParentID      *int64 `json:"parent_id"`
	ProductsCount int    `json:"products_count"`
}

// CategoryListResponse salida de GET /api/categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ProductQuery parámetros de GET /api/products.
type ProductQuery struct {
	CategoryID *int64
	Search     string
	Limit      int
	Offset     int
}

// ProductResponse producto en el listado público. Price es número JSON (el escaparate hace aritmética).
type ProductResponse struct {
	ID            int64   `json:"id"`
	MoySkladID    string  `json:"moysklad_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Article       string  `json:"article"`
	Price         float64 `json:"price"`
	StockQuantity int64   `json:"stock_quantity"`
	CategoryID    *int64  `json:"category_id"`
	ImageURL      *string `json:"image_url"`
	Unit          string  `json:"unit"`
	Barcode       string  `json:"barcode"`
	CategoryName  *string `json:"category_name"`
}

// ProductListResponse lista paginada de productos; Total no depende de Limit/Offset.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
