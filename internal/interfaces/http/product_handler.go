package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
)

// ProductHandler maneja GET /api/products (público).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List filtra por category_id y search, y pagina con limit/offset.
// Un parámetro numérico que no es entero responde 400.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ProductQuery
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, msgInvalidParam+": category_id")
		}
		in.CategoryID = &id
	}
	in.Search = c.Query("search")

	var err error
	if in.Limit, err = queryInt(c, "limit", usecase.DefaultProductLimit); err != nil {
		return writeError(c, fiber.StatusBadRequest, msgInvalidParam+": limit")
	}
	if in.Offset, err = queryInt(c, "offset", 0); err != nil {
		return writeError(c, fiber.StatusBadRequest, msgInvalidParam+": offset")
	}

	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return failWith(c, msgProductsError, err)
	}
	return c.JSON(out)
}

// queryInt a diferencia de c.QueryInt, no oculta valores mal formados tras el default.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
