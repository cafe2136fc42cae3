package main

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepo(db), mock
}

func TestRecordSignConsumesQuota(t *testing.T) {
	repo, mock := mockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sign_logs`).
		WithArgs("rid-1", "k1", int64(1233), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.RecordSign(context.Background(), "k1", "rid-1", 1233, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignQuotaExhausted(t *testing.T) {
	repo, mock := mockRepo(t)

	// 限额扣到0的key不再命中UPDATE的WHERE条件
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RecordSign(context.Background(), "k1", "rid-2", 1233, false)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignIgnoresReplay(t *testing.T) {
	repo, mock := mockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sign_logs`).
		WillReturnError(&mysqlDupErr{})
	mock.ExpectCommit()

	require.NoError(t, repo.RecordSign(context.Background(), "k1", "rid-3", 0, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type mysqlDupErr struct{}

func (*mysqlDupErr) Error() string {
	return "Error 1062 (23000): Duplicate entry 'rid-3' for key 'sign_logs.uk_request_id'"
}
