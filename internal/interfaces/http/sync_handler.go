package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
)

// SyncHandler maneja /api/sync: POST dispara la sincronización y GET devuelve el estado.
type SyncHandler struct {
	uc *catalogsync.SyncUseCase
}

// NewSyncHandler construye el handler.
func NewSyncHandler(uc *catalogsync.SyncUseCase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// Sync ejecuta una sincronización completa y bloquea hasta que termina.
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	out, err := h.uc.Sync(c.UserContext())
	if err != nil {
		return failWith(c, msgSyncError, err)
	}
	return c.JSON(out)
}

// Status conteos actuales y fecha de la última actualización.
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.UserContext())
	if err != nil {
		return failWith(c, msgStatusError, err)
	}
	return c.JSON(out)
}
