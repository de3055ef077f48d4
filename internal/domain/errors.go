package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrSyncInProgress = errors.New("ya hay una sincronización en curso")
)
