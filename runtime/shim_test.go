package runtime_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlgen/dialect"
	"github.com/syssam/sqlgen/runtime"
)

func TestExpandLimitOffsetOmitsOnNil(t *testing.T) {
	var sb strings.Builder
	d := dialect.MustLookup(dialect.Postgres)
	runtime.ExpandLimit(&sb, d, nil)
	assert.Empty(t, sb.String())

	five := 5
	runtime.ExpandLimit(&sb, d, &five)
	assert.Equal(t, "LIMIT 5", sb.String())
}

func TestExpandBool(t *testing.T) {
	var sb strings.Builder
	runtime.ExpandBool(&sb, dialect.MustLookup(dialect.SQLServer), true)
	assert.Equal(t, "1", sb.String())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, runtime.EscapeLike("100%"))
	assert.Equal(t, `a\_b`, runtime.EscapeLike("a_b"))
}

func TestExpandCollectionParameter(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	var args []any
	refs := runtime.ExpandCollectionParameter(d, &args, "ids", []int64{1, 2, 3})
	assert.Equal(t, "$1, $2, $3", refs)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, args)
}

func TestExpandCollectionParameterEmpty(t *testing.T) {
	d := dialect.MustLookup(dialect.Postgres)
	var args []any
	refs := runtime.ExpandCollectionParameter[int64](d, &args, "ids", nil)
	assert.Equal(t, "", refs)
	assert.Empty(t, args)
}

func TestMaterializeListWithSqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "alice").
		AddRow(int64(2), "bob")
	mock.ExpectQuery(`SELECT id, name FROM users`).WillReturnRows(rows)

	type user struct {
		ID   int64
		Name string
	}
	scan := func(r *sql.Rows) (user, error) {
		var u user
		err := r.Scan(&u.ID, &u.Name)
		return u, err
	}

	got, err := runtime.MaterializeList(context.Background(), db, "SELECT id, name FROM users", nil, scan)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterializeOptionalWarnsOnMultipleRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2))
	mock.ExpectQuery(`SELECT id FROM users`).WillReturnRows(rows)

	scan := func(r *sql.Rows) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}

	var warned int
	got, err := runtime.MaterializeOptional(context.Background(), db, "SELECT id FROM users", nil, scan, false, func(n int) { warned = n })
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), *got)
	assert.Equal(t, 2, warned)
}

func TestMaterializeOptionalZeroRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT id FROM users`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	scan := func(r *sql.Rows) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}
	got, err := runtime.MaterializeOptional(context.Background(), db, "SELECT id FROM users", nil, scan, false, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMaterializePageComputesTotalPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(16))
	mock.ExpectQuery(`SELECT id FROM users`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	scan := func(r *sql.Rows) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}
	page, err := runtime.MaterializePage(context.Background(), db, "SELECT COUNT(*) FROM users", nil, "SELECT id FROM users LIMIT 5", nil, scan, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 16, page.TotalCount)
	assert.Equal(t, 4, page.TotalPages)
}

func TestMaterializeGeneratedIDLastInsertRowID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := runtime.MaterializeGeneratedID[int64](context.Background(), db, dialect.MustLookup(dialect.SQLite), "INSERT INTO users ...", nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
