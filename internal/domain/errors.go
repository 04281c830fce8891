package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicateSKU = errors.New("el SKU ya existe")
	ErrProtected    = errors.New("recurso protegido")
	ErrUnauthorized = errors.New("no autorizado")
	// ErrTransaction envuelve fallas de BEGIN/COMMIT; el estado del ledger queda sin cambios.
	ErrTransaction = errors.New("falla de transacción")
)
