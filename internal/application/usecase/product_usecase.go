package usecase

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// Límites de paginación del listado de productos.
const (
	DefaultProductLimit = 50
	MaxProductLimit     = 100
)

// ProductUseCase listado y búsqueda pública de productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// List aplica filtros y paginación. Total se calcula sin limit/offset.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductQuery) (*dto.ProductListResponse, error) {
	if in.Limit < 0 || in.Offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Limit == 0 {
		in.Limit = DefaultProductLimit
	}
	if in.Limit > MaxProductLimit {
		in.Limit = MaxProductLimit
	}
	filter := entity.ProductFilter{
		CategoryID: in.CategoryID,
		Search:     in.Search,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.CountFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Products: items,
		Total:    total,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		MoySkladID:    p.ExternalID,
		Name:          p.Name,
		Description:   p.Description,
		Article:       p.Article,
		Price:         p.Price.InexactFloat64(),
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		ImageURL:      p.ImageURL,
		Unit:          p.Unit,
		Barcode:       p.Barcode,
		CategoryName:  p.CategoryName,
	}
}
