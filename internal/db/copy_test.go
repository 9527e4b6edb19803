package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "water_data", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"water_data"}, []string{"code", "year"}).WillReturnResult(3)

	rows := [][]any{{"E1", 2025}, {"E1", 2026}, {"E2", 2025}}
	n, err := CopyFrom(context.Background(), mock, "water_data", []string{"code", "year"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_ShortWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"water_data"}, []string{"code"}).WillReturnResult(1)

	_, err = CopyFrom(context.Background(), mock, "water_data", []string{"code"}, [][]any{{"E1"}, {"E2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrote 1 of 2 rows")
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"energy_data"}, []string{"code"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "energy_data", []string{"code"}, [][]any{{"E1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO energy_data")
	assert.NoError(t, mock.ExpectationsWereMet())
}
