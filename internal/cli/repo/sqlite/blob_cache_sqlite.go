package sqlite

import (
	"DocVault/internal/cli/model"
	"DocVault/internal/cli/repo"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

// BlobCacheSQLite — локальный кэш блобов (БД SQLite, по файлу на пользователя).
type BlobCacheSQLite struct {
	db    *sql.DB
	login string
}

var _ repo.BlobCache = (*BlobCacheSQLite)(nil)

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного логина
// и возвращает кэш. Вторым значением возвращается путь к БД.
func OpenForUser(login string) (*BlobCacheSQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "DocVault", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &BlobCacheSQLite{db: db, login: login}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *BlobCacheSQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *BlobCacheSQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

var blobIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateBlobID проверяет, что идентификатор блоба безопасен для CLI и путей.
func ValidateBlobID(blobID string) error {
	if blobID == "" {
		return errors.New("blob id is required")
	}
	if !blobIDRe.MatchString(blobID) {
		return fmt.Errorf("invalid blob id: %q (allowed: letters, digits, . _ -)", blobID)
	}
	return nil
}

// PutBlob сохраняет блоб, перезаписывая прежнее содержимое.
func (r *BlobCacheSQLite) PutBlob(blobID string, payload []byte) error {
	if err := ValidateBlobID(blobID); err != nil {
		return err
	}
	now := time.Now().Unix()
	_, err := r.db.Exec(`INSERT INTO blobs(blob_id, payload, created_at, updated_at)
        VALUES(?, ?, ?, ?)
        ON CONFLICT(blob_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		blobID, payload, now, now,
	)
	return err
}

// GetBlob возвращает блоб по id.
func (r *BlobCacheSQLite) GetBlob(blobID string) (*model.CachedBlob, error) {
	if err := ValidateBlobID(blobID); err != nil {
		return nil, err
	}
	var b model.CachedBlob
	err := r.db.QueryRow(`SELECT blob_id, payload, created_at, updated_at FROM blobs WHERE blob_id = ?`, blobID).
		Scan(&b.BlobID, &b.Payload, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("blob %q not found in local cache", blobID)
		}
		return nil, err
	}
	b.Size = int64(len(b.Payload))
	return &b, nil
}

// ListBlobs возвращает все блобы (payload не включается), отсортированные по updated_at DESC.
func (r *BlobCacheSQLite) ListBlobs() ([]model.CachedBlob, error) {
	rows, err := r.db.Query(`SELECT blob_id, LENGTH(payload), created_at, updated_at FROM blobs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.CachedBlob
	for rows.Next() {
		var b model.CachedBlob
		if err := rows.Scan(&b.BlobID, &b.Size, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

// DeleteBlob удаляет блоб из кэша.
func (r *BlobCacheSQLite) DeleteBlob(blobID string) error {
	if err := ValidateBlobID(blobID); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM blobs WHERE blob_id = ?`, blobID)
	return err
}
