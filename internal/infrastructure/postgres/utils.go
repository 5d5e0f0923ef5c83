package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/inventory-engine/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// Códigos de contención transitoria: el caso de uso reintenta acotado.
//   - 40001 serialization_failure
//   - 40P01 deadlock_detected
//   - 55P03 lock_not_available (lock_timeout)
func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// mapTxError traduce errores transitorios de PostgreSQL a ErrContention.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	if isContention(err) {
		return domain.ErrContention
	}
	return err
}
