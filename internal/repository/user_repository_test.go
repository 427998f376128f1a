package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	return db, mock
}

func TestUserRepository_Search_Query(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "is_active"}).
		AddRow(2, "Bob", "bob@example.com", true).
		AddRow(3, "Bobby", "bobby@example.com", true)

	// The query is lower-cased on both sides so "Bob" matches "bob".
	mock.ExpectQuery(`WHERE \(id <> \$1 AND is_active = \$2\) AND \(LOWER\(name\) LIKE \$3 OR LOWER\(email\) LIKE \$4\)`).
		WithArgs(uint64(7), true, "%bob%", "%bob%", 10).
		WillReturnRows(rows)

	users, err := repo.Search("Bob", 7, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "Bob", users[0].Name)
}

func TestUserRepository_FindByEmail_Query(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "is_active"}).
		AddRow(1, "Alice", "alice@example.com", true)

	mock.ExpectQuery(`WHERE email = \$1`).
		WithArgs("alice@example.com", 1).
		WillReturnRows(rows)

	user, err := repo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	require.Equal(t, uint64(1), user.ID)
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`WHERE email = \$1`).
		WithArgs("nobody@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail("nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
