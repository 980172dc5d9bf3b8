package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos de error PostgreSQL relevantes para el motor de reservas.
const (
	codeUniqueViolation   = "23505" // unique_violation
	codeLockNotAvailable  = "55P03" // lock_not_available (FOR UPDATE NOWAIT)
	codeSerializationFail = "40001" // serialization_failure
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == codeUniqueViolation
}

// isTransientConflict agrupa los fallos de contención que el llamador debe
// tratar como reintentables: fila bloqueada por otra transacción o lectura
// obsoleta detectada al commit.
func isTransientConflict(err error) bool {
	code := pgErrCode(err)
	return code == codeLockNotAvailable || code == codeSerializationFail || code == codeUniqueViolation
}
