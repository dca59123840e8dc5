package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
)

// mapPgError translates storage-layer failures into ServiceErrors with
// stable codes. Non-database errors pass through untouched.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, taxonomy.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return newServiceError(http.StatusNotFound, "TAXONOMY_NOT_FOUND", "not found", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		recordWriteConflict("unique")
		return newServiceError(http.StatusConflict, "TAXONOMY_CODE_CONFLICT", "code already exists", err)
	case "23503": // foreign_key_violation
		recordWriteConflict("foreign_key")
		return newServiceError(http.StatusUnprocessableEntity, "TAXONOMY_PARENT_NOT_FOUND", "referenced parent not found", err)
	case "40001", "40P01": // serialization_failure, deadlock_detected
		recordWriteConflict("serialization")
		return newServiceError(http.StatusConflict, "TAXONOMY_WRITE_CONFLICT", "concurrent write conflict, retry", err)
	default:
		return newServiceError(http.StatusInternalServerError, "TAXONOMY_INTERNAL", fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
