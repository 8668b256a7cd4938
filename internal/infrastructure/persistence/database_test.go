package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// setupMockDB wires gorm onto a sqlmock connection so driver failures can
// be injected without a live Postgres.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestAccountRepositoryPropagatesDriverErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAccountRepository(db)

	driverErr := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).WillReturnError(driverErr)

	_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryMapsMissingRows(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name"}))

	_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionScopeRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	scope := NewGormTransactionScope(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := scope.Execute(context.Background(), func(repos appshared.Repositories) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
