package repository

import (
	"errors"
	"fmt"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories care about.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// mapError translates pgx-level failures into domain error kinds: missing
// rows become NotFound, unique violations become Conflict, everything else
// is a store failure.
func mapError(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("%s not found", entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return domain.Conflictf("%s already exists", entity)
		case foreignKeyViolationCode:
			return domain.Conflictf("%s references a missing entity", entity)
		}
	}
	return domain.StoreFailure(fmt.Sprintf("%s %s failed", entity, op), err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
