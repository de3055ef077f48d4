package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain"
)

// Mensajes de error expuestos al escaparate.
const (
	msgMethodNotAllowed = "Método no soportado"
	msgInvalidParam     = "Parámetro inválido"
	msgCategoriesError  = "Error al obtener categorías"
	msgProductsError    = "Error al obtener productos"
	msgSyncError        = "Error de sincronización"
	msgStatusError      = "Error al obtener estado de sincronización"
)

// writeError responde {"error": msg}. Toda falla del dominio, de MoySklad o de la base
// se reporta como 400; 405 solo para métodos no soportados.
func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}

// failWith antepone prefix al mensaje del error.
func failWith(c *fiber.Ctx, prefix string, err error) error {
	msg := prefix + ": " + err.Error()
	if errors.Is(err, domain.ErrInvalidInput) {
		msg = msgInvalidParam
	}
	return writeError(c, fiber.StatusBadRequest, msg)
}

// MethodNotAllowed handler de respaldo para métodos no registrados en una ruta.
func MethodNotAllowed(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// Preflight contesta 200 a un OPTIONS sin Access-Control-Request-Method; el preflight
// CORS real lo responde el middleware cors con 204.
func Preflight(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}
