package repo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Ошибки файлового хранилища блобов.
var (
	// ErrBlobExists — блоб с таким id уже записан; повторная запись запрещена.
	ErrBlobExists = errors.New("blob already exists")
	// ErrBlobNotFound — блоб отсутствует.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrQuotaExceeded — превышена квота хранилища пользователя.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// tagLength — длина хвоста зашифрованного объекта, отдаваемого как
// внеполосная подсказка целостности (заголовок Tag).
const tagLength = 16

// BlobsBackend — контракт хранилища блобов. Для сервера блоб — непрозрачный
// байтовый поток под ключом (user, blobID); содержимое не интерпретируется.
type BlobsBackend interface {
	// ReadBlob копирует содержимое блоба в w.
	ReadBlob(user, blobID string, w io.Writer) error

	// WriteBlob сохраняет блоб из r. Существующий id отклоняется с
	// ErrBlobExists ДО записи каких-либо байт; превышение квоты — ErrQuotaExceeded.
	WriteBlob(user, blobID string, r io.Reader) error

	// ListBlobs возвращает идентификаторы блобов пользователя.
	ListBlobs(user string) ([]string, error)

	// TagHeader возвращает последние tagLength байт объекта в base64url.
	TagHeader(user, blobID string) (string, error)

	// DeleteBlob удаляет блоб.
	DeleteBlob(user, blobID string) error

	// GetBlobSize возвращает размер блоба в байтах.
	GetBlobSize(user, blobID string) (int64, error)

	// GetTotalStorage возвращает суммарный размер блобов пользователя.
	GetTotalStorage(user string) (int64, error)
}

// FilesystemBlobsBackend хранит блобы в файлах с шардированием пути по
// префиксам идентификатора: user/b/blo/blob_i/blob_id.
type FilesystemBlobsBackend struct {
	path  string
	quota int64
}

var _ BlobsBackend = (*FilesystemBlobsBackend)(nil)

// NewFilesystemBlobsBackend создаёт хранилище в каталоге path с квотой
// quota байт на пользователя.
func NewFilesystemBlobsBackend(path string, quota int64) (*FilesystemBlobsBackend, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}
	return &FilesystemBlobsBackend{path: path, quota: quota}, nil
}

func (b *FilesystemBlobsBackend) ReadBlob(user, blobID string, w io.Writer) error {
	f, err := os.Open(b.blobPath(user, blobID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBlobNotFound
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func (b *FilesystemBlobsBackend) WriteBlob(user, blobID string, r io.Reader) error {
	path := b.blobPath(user, blobID)
	// проверка дубликата — до записи каких-либо байт
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrBlobExists, blobID)
	}
	used, err := b.GetTotalStorage(user)
	if err != nil {
		return err
	}
	if used > b.quota {
		return ErrQuotaExceeded
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrBlobExists, blobID)
		}
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		// незавершённая загрузка не должна оставлять частичный объект
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func (b *FilesystemBlobsBackend) ListBlobs(user string) ([]string, error) {
	ids := []string{}
	base := filepath.Join(b.path, user)
	err := filepath.WalkDir(base, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			ids = append(ids, d.Name())
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return ids, nil
}

func (b *FilesystemBlobsBackend) TagHeader(user, blobID string) (string, error) {
	f, err := os.Open(b.blobPath(user, blobID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrBlobNotFound
		}
		return "", err
	}
	defer f.Close()
	if _, err := f.Seek(-tagLength, io.SeekEnd); err != nil {
		return "", err
	}
	tag := make([]byte, tagLength)
	if _, err := io.ReadFull(f, tag); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tag), nil
}

func (b *FilesystemBlobsBackend) DeleteBlob(user, blobID string) error {
	err := os.Remove(b.blobPath(user, blobID))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}

func (b *FilesystemBlobsBackend) GetBlobSize(user, blobID string) (int64, error) {
	fi, err := os.Stat(b.blobPath(user, blobID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrBlobNotFound
		}
		return 0, err
	}
	return fi.Size(), nil
}

func (b *FilesystemBlobsBackend) GetTotalStorage(user string) (int64, error) {
	var total int64
	err := filepath.WalkDir(filepath.Join(b.path, user), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	return total, nil
}

func (b *FilesystemBlobsBackend) blobPath(user, blobID string) string {
	parts := []string{b.path, user}
	for _, n := range []int{1, 3, 6} {
		if len(blobID) < n {
			n = len(blobID)
		}
		parts = append(parts, blobID[:n])
	}
	parts = append(parts, blobID)
	return filepath.Join(parts...)
}
