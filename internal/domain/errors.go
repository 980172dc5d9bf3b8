package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound = errors.New("recurso no encontrado")

	// Validación previa a cualquier escritura.
	ErrInvalidGtin = errors.New("gtin inválido")

	// Violaciones de reglas de negocio: bloquean la escritura y no se reintentan.
	ErrLineUpdateForbidden  = errors.New("una línea de pedido no puede modificarse")
	ErrLineDeleteNotAllowed = errors.New("la línea no puede eliminarse con el estado actual del pedido")
	ErrLineNotFulfilled     = errors.New("la línea no puede reemplazarse porque no está cumplida")
	ErrOrderTransition      = errors.New("transición de estado de pedido inválida")
	ErrOrderDeleted         = errors.New("el pedido está eliminado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrInvalidInput         = errors.New("entrada inválida")

	// Contención transitoria (bloqueo de fila o escritura obsoleta);
	// el trabajo que la provoca se reencola, nunca llega al usuario.
	ErrConflict = errors.New("conflicto con el estado actual")
)
