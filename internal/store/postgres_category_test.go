package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-service/internal/domain"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db, zap.NewNop())
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

func TestPostgresStore_CreateCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryToCreate := &domain.Category{Name: "Electronics"}
	expectedID := int64(1)

	query := regexp.QuoteMeta(`
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name;
	`)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(expectedID, categoryToCreate.Name)

	mock.ExpectQuery(query).WithArgs(categoryToCreate.Name).WillReturnRows(rows)

	created, err := store.CreateCategory(context.Background(), categoryToCreate)

	require.NoError(t, err, "CreateCategory should not return an error")
	require.NotNil(t, created, "Created category should not be nil")
	assert.Equal(t, expectedID, created.ID)
	assert.Equal(t, categoryToCreate.Name, created.Name)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_GetCategoryByID_Found(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := int64(1)
	query := regexp.QuoteMeta(`
		SELECT id, name
		FROM categories
		WHERE id = $1;
	`)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(categoryID, "Found Category")
	mock.ExpectQuery(query).WithArgs(categoryID).WillReturnRows(rows)

	category, err := store.GetCategoryByID(context.Background(), categoryID)

	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, categoryID, category.ID)
	assert.Equal(t, "Found Category", category.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCategoryByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := int64(99)
	query := regexp.QuoteMeta(`
		SELECT id, name
		FROM categories
		WHERE id = $1;
	`)

	mock.ExpectQuery(query).WithArgs(categoryID).WillReturnError(sql.ErrNoRows)

	category, err := store.GetCategoryByID(context.Background(), categoryID)

	require.Error(t, err, "Expected an error for not found category")
	assert.True(t, errors.Is(err, ErrCategoryNotFound), "Error should be ErrCategoryNotFound")
	assert.Nil(t, category, "Category should be nil when not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCategories(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	params := ListParams{Limit: 2, Offset: 0}
	expectedTotalCount := 5

	countQuery := regexp.QuoteMeta(`SELECT COUNT(*) FROM categories;`)
	listQuery := regexp.QuoteMeta(`
		SELECT id, name
		FROM categories
		ORDER BY name ASC
		LIMIT $1 OFFSET $2;
	`)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(expectedTotalCount)
	listRows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "Alpha Category").
		AddRow(int64(2), "Beta Category")

	mock.ExpectQuery(countQuery).WillReturnRows(countRows) // Count query first
	mock.ExpectQuery(listQuery).WithArgs(params.Limit, params.Offset).WillReturnRows(listRows)

	categories, totalCount, err := store.ListCategories(context.Background(), params)

	require.NoError(t, err)
	require.Len(t, categories, 2, "Expected 2 categories to be returned")
	assert.Equal(t, expectedTotalCount, totalCount, "Expected total count to match")
	assert.Equal(t, "Alpha Category", categories[0].Name)
	assert.Equal(t, "Beta Category", categories[1].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCategories_Empty(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	countQuery := regexp.QuoteMeta(`SELECT COUNT(*) FROM categories;`)
	mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	categories, totalCount, err := store.ListCategories(context.Background(), ListParams{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.Zero(t, totalCount)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CategoryExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1);`)

	mock.ExpectQuery(query).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := store.CategoryExists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.CategoryExists(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryToUpdate := &domain.Category{ID: int64(1), Name: "Updated Category Name"}

	query := regexp.QuoteMeta(`
		UPDATE categories
		SET name = $1
		WHERE id = $2
		RETURNING id, name;
	`)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(categoryToUpdate.ID, categoryToUpdate.Name)

	mock.ExpectQuery(query).
		WithArgs(categoryToUpdate.Name, categoryToUpdate.ID).
		WillReturnRows(rows)

	updated, err := store.UpdateCategory(context.Background(), categoryToUpdate)

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, categoryToUpdate.ID, updated.ID)
	assert.Equal(t, categoryToUpdate.Name, updated.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryToUpdate := &domain.Category{ID: int64(99), Name: "Non Existent"}
	query := regexp.QuoteMeta(`
		UPDATE categories
		SET name = $1
		WHERE id = $2
		RETURNING id, name;
	`)
	mock.ExpectQuery(query).
		WithArgs(categoryToUpdate.Name, categoryToUpdate.ID).
		WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateCategory(context.Background(), categoryToUpdate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCategoryNotFound), "Error should be ErrCategoryNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteCategory_Success(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := int64(1)
	query := regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1;`)

	mock.ExpectExec(query).WithArgs(categoryID).WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteCategory(context.Background(), categoryID)

	require.NoError(t, err, "DeleteCategory should not return an error on success")
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_DeleteCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := int64(99)
	query := regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1;`)

	mock.ExpectExec(query).WithArgs(categoryID).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteCategory(context.Background(), categoryID)

	require.Error(t, err, "DeleteCategory should return an error if no rows were affected")
	assert.True(t, errors.Is(err, ErrCategoryNotFound), "Error should be ErrCategoryNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteCategory_ReferencedByProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := int64(2)
	query := regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1;`)

	pqErr := &pq.Error{Code: "23503", Constraint: "product_categories_category_id_fkey"}
	mock.ExpectExec(query).WithArgs(categoryID).WillReturnError(pqErr)

	err := store.DeleteCategory(context.Background(), categoryID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrityViolation), "Error should be ErrIntegrityViolation")

	require.NoError(t, mock.ExpectationsWereMet())
}
