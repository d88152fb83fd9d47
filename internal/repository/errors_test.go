package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ereignis/ereignis-api/internal/domain"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), domain.ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, translate(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, translate(plain))
}

func TestRolesToStrings(t *testing.T) {
	assert.Equal(t, []string{"ADMIN", "REGULAR"}, rolesToStrings([]domain.Role{domain.RoleAdmin, domain.RoleRegular}))
	assert.Empty(t, rolesToStrings(nil))
}
