package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWorkTypeRepository_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkTypeRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "name", "is_active"}).
		AddRow(1, "сбор на зарядку", true).
		AddRow(3, "деплой", true)
	mock.ExpectQuery(`SELECT id, name, is_active FROM work_types WHERE is_active = TRUE ORDER BY id`).
		WillReturnRows(rows)

	types, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "сбор на зарядку", types[0].Name)
	assert.Equal(t, int64(3), types[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkTypeRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkTypeRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT id, name, is_active FROM work_types WHERE id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active"}).AddRow(3, "деплой", true))

	wt, err := repo.GetByID(3)
	require.NoError(t, err)
	require.NotNil(t, wt)
	assert.Equal(t, "деплой", wt.Name)

	mock.ExpectQuery(`SELECT id, name, is_active FROM work_types WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active"}))

	wt, err = repo.GetByID(99)
	require.NoError(t, err)
	assert.Nil(t, wt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkTypeRepository_Deactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkTypeRepository(db, zap.NewNop())

	mock.ExpectExec(`UPDATE work_types SET is_active = FALSE WHERE id`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkTypeRepository_AddOrActivateNormalizesName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkTypeRepository(db, zap.NewNop())

	mock.ExpectQuery(`INSERT INTO work_types \(name, is_active\)`).
		WithArgs("мойка").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active"}).AddRow(6, "мойка", true))

	wt, err := repo.AddOrActivate("  Мойка ")
	require.NoError(t, err)
	assert.Equal(t, int64(6), wt.ID)
	assert.Equal(t, "мойка", wt.Name)
	assert.True(t, wt.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkTypeRepository_SeedDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkTypeRepository(db, zap.NewNop())

	for range [5]struct{}{} {
		mock.ExpectExec(`INSERT INTO work_types \(name, is_active\) VALUES \(\$1, TRUE\) ON CONFLICT \(name\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.SeedDefaults())
	assert.NoError(t, mock.ExpectationsWereMet())
}
