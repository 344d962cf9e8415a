package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

func TestPgCode(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	check := fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514"})
	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isCheckViolation(unique))
	assert.True(t, isCheckViolation(check))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(unique))
	assert.False(t, isUniqueViolation(fmt.Errorf("otro error")))
	assert.False(t, isUniqueViolation(nil))
}

func TestMetadataOrEmpty(t *testing.T) {
	assert.NotNil(t, metadataOrEmpty(nil))
	md := entity.Metadata{"a": 1}
	assert.Equal(t, md, metadataOrEmpty(md))
}

func TestFinanceQueryBuilder(t *testing.T) {
	sql, args, err := psql.Select("id").From("invoices").Where(map[string]any{"branch_id": "b1"}).ToSql()
	assert.NoError(t, err)
	assert.Equal(t, "SELECT id FROM invoices WHERE branch_id = $1", sql)
	assert.Equal(t, []any{"b1"}, args)
}
