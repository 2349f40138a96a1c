package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError("booking", "select", nil))
}

func TestMapError_NoRowsBecomesNotFound(t *testing.T) {
	err := mapError("booking", "select", pgx.ErrNoRows)

	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Contains(t, err.Error(), "booking not found")
}

func TestMapError_UniqueViolationBecomesConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "reviews_booking_id_key"}
	err := mapError("review", "insert", pgErr)

	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "review already exists")
}

func TestMapError_WrappedUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
	err := mapError("review", "insert", wrapped)

	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestMapError_ForeignKeyViolationBecomesConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	err := mapError("booking", "insert", pgErr)

	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestMapError_UnknownBecomesStoreFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := mapError("booking", "update", cause)

	assert.True(t, domain.IsKind(err, domain.KindStoreFailure))
	assert.True(t, errors.Is(err, cause))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("other")))
	assert.False(t, isUniqueViolation(nil))
}
