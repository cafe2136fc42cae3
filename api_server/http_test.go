package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer DB/Redis都不连，api key直接塞进缓存
func testServer(t *testing.T) *Server {
	t.Helper()
	cache := &APIKeyCache{ttl: time.Minute, data: map[string]cacheItem{}}
	cache.Set(context.Background(), &APIKeyRow{Key: "test-key", Name: "test", IsActive: true})
	cache.Set(context.Background(), &APIKeyRow{Key: "disabled-key", IsActive: false})
	return NewServer(Config{}, nil, cache, nil)
}

func doRequest(h http.Handler, method, path, apiKey string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(testServer(t).routes(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	h := testServer(t).routes()

	rec := doRequest(h, http.MethodPost, "/encrypt", "", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(h, http.MethodPost, "/encrypt", "disabled-key", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEncryptDecryptHandlers(t *testing.T) {
	h := testServer(t).routes()
	payload := []byte(`{"magic":1}`)

	rec := doRequest(h, http.MethodPost, "/encrypt", "test-key", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	var encResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &encResp))
	_, err := base64.StdEncoding.DecodeString(encResp["data"])
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"data": encResp["data"]})
	rec = doRequest(h, http.MethodPost, "/decrypt", "test-key", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var decResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decResp))
	assert.Equal(t, string(payload), decResp["data"])
}

func TestEncryptRejectsEmptyBody(t *testing.T) {
	rec := doRequest(testServer(t).routes(), http.MethodPost, "/encrypt", "test-key", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignSucceedsAndLogs(t *testing.T) {
	repo, mock := mockRepo(t)
	srv := testServer(t)
	srv.repo = repo

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs("test-key").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sign_logs`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM api_keys`).
		WithArgs("test-key").
		WillReturnRows(sqlmock.NewRows(
			[]string{"api_key", "name", "is_active", "quota", "used", "created_at", "updated_at"}).
			AddRow("test-key", "test", true, int64(9), int64(1), time.Now(), time.Now()))

	rec := doRequest(srv.routes(), http.MethodPost, "/sign", "test-key",
		[]byte(`{"params":"aid=1233","timestamp":1767424034}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
	assert.Contains(t, resp.Headers, "x-argus")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignQuotaExhausted(t *testing.T) {
	repo, mock := mockRepo(t)
	srv := testServer(t)
	srv.repo = repo

	// 额度耗尽时UPDATE命中0行，/sign必须401而不是继续放行
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs("test-key").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec := doRequest(srv.routes(), http.MethodPost, "/sign", "test-key",
		[]byte(`{"params":"aid=1233"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDevicesDisabled(t *testing.T) {
	rec := doRequest(testServer(t).routes(), http.MethodGet, "/devices", "test-key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAidForLog(t *testing.T) {
	assert.Equal(t, int64(1233), aidForLog(float64(1233)))
	assert.Equal(t, int64(1233), aidForLog("1233"))
	assert.Equal(t, int64(0), aidForLog(nil))
	assert.Equal(t, int64(0), aidForLog("abc"))
}
