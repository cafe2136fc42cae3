package main

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type Repo struct {
	db *sql.DB
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(5 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	// 内嵌建表，省掉单独执行schema.sql的步骤
	const ddlKeys = `
CREATE TABLE IF NOT EXISTS api_keys (
  api_key VARCHAR(128) NOT NULL COMMENT 'Client API key',
  name VARCHAR(128) NOT NULL DEFAULT '' COMMENT 'Client name',
  is_active TINYINT(1) NOT NULL DEFAULT 1 COMMENT '1=active,0=disabled',
  quota BIGINT NOT NULL DEFAULT -1 COMMENT 'Remaining sign quota, -1=unlimited',
  used BIGINT NOT NULL DEFAULT 0 COMMENT 'Total signs served',
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP COMMENT 'Create time',
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP COMMENT 'Update time',
  PRIMARY KEY (api_key),
  KEY idx_is_active (is_active)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='API keys + sign quota';`

	const ddlLogs = `
CREATE TABLE IF NOT EXISTS sign_logs (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  request_id CHAR(36) NOT NULL COMMENT 'UUID returned to client',
  api_key VARCHAR(128) NOT NULL,
  aid BIGINT NOT NULL DEFAULT 0,
  has_body TINYINT(1) NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_request_id (request_id),
  KEY idx_api_key (api_key),
  KEY idx_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='Sign audit log';`

	if _, err := r.db.ExecContext(ctx, ddlKeys); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, ddlLogs)
	return err
}

func (r *Repo) GetAPIKey(ctx context.Context, key string) (*APIKeyRow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT api_key, name, is_active, quota, used, created_at, updated_at
		   FROM api_keys WHERE api_key = ?`, key)
	var k APIKeyRow
	if err := row.Scan(&k.Key, &k.Name, &k.IsActive, &k.Quota, &k.Used, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

// RecordSign 写审计日志并消耗额度。quota<0表示不限额不扣减；
// 限额的key扣到0后UPDATE不再命中，返回sql.ErrNoRows。
func (r *Repo) RecordSign(ctx context.Context, apiKey, requestID string, aid int64, hasBody bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE api_keys SET used = used + 1,
		        quota = CASE WHEN quota > 0 THEN quota - 1 ELSE quota END
		  WHERE api_key = ? AND is_active = 1 AND (quota < 0 OR quota > 0)`, apiKey)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	hb := 0
	if hasBody {
		hb = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sign_logs (request_id, api_key, aid, has_body) VALUES (?, ?, ?, ?)`,
		requestID, apiKey, aid, hb); err != nil {
		// 重复request_id直接忽略（客户端重放）
		if !strings.Contains(err.Error(), "Duplicate entry") {
			return err
		}
	}
	return tx.Commit()
}
