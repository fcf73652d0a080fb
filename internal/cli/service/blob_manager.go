package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"DocVault/internal/cli/api"
	"DocVault/internal/cli/crypto"
	"DocVault/internal/cli/model"
	"DocVault/internal/cli/repo"
	fsrepo "DocVault/internal/cli/repo/fs"
)

// FixedRev — блобы иммутабельны, поэтому все они шифруются с одной
// фиксированной ревизией: повторная запись того же id запрещена сервером.
const FixedRev = "ImmutableRevision"

// BlobManager — юзкейс-уровень работы с блобами: локальный кэш,
// шифрование перед аплоадом и расшифровка после скачивания.
// На сервер уходит только шифртекст (unarmored: preamble‖ciphertext‖tag).
type BlobManager struct {
	cache   repo.BlobCache
	baseURL string
	login   string
	token   string
	secret  []byte
}

// NewBlobManager создаёт менеджер блобов для уже аутентифицированного пользователя.
func NewBlobManager(cache repo.BlobCache, baseURL, login, token string, secret []byte) *BlobManager {
	return &BlobManager{cache: cache, baseURL: baseURL, login: login, token: token, secret: secret}
}

func (m *BlobManager) markSynced() {
	_ = fsrepo.SaveLastSyncAt(m.login, time.Now().UTC().Format(time.RFC3339))
}

// Put сохраняет блоб в локальный кэш и загружает зашифрованную копию на сервер.
// Повторный Put того же id возвращает api.ErrBlobExists: содержимое на сервере
// не перезаписывается.
func (m *BlobManager) Put(ctx context.Context, blobID string, payload []byte) error {
	if err := m.cache.PutBlob(blobID, payload); err != nil {
		return err
	}

	enc, err := crypto.NewBlobEncryptor(
		crypto.DocInfo{DocID: blobID, Rev: FixedRev},
		bytes.NewReader(payload),
		m.secret,
		false,
	)
	if err != nil {
		return err
	}
	ciphertext, err := enc.Encrypt(ctx)
	if err != nil {
		return err
	}

	if err := api.PutBlob(m.baseURL, blobID, ciphertext, m.token); err != nil {
		return err
	}
	m.markSynced()
	return nil
}

// Get возвращает блоб: сначала локальный кэш, иначе скачивает с сервера,
// сверяет заголовок Tag с последними 16 байтами тела, расшифровывает и кэширует.
func (m *BlobManager) Get(ctx context.Context, blobID string) ([]byte, error) {
	if b, err := m.cache.GetBlob(blobID); err == nil {
		return b.Payload, nil
	}

	data, tagHeader, err := api.GetBlob(m.baseURL, blobID, m.token)
	if err != nil {
		return nil, err
	}
	if len(data) < crypto.TagLength {
		return nil, fmt.Errorf("server blob %q too short", blobID)
	}
	if tagHeader != "" {
		want := base64.URLEncoding.EncodeToString(data[len(data)-crypto.TagLength:])
		if tagHeader != want {
			return nil, fmt.Errorf("blob %q: server tag header does not match payload", blobID)
		}
	}

	dec, err := crypto.NewBlobDecryptor(
		crypto.DocInfo{DocID: blobID, Rev: FixedRev},
		bytes.NewReader(data),
		m.secret,
		false,
	)
	if err != nil {
		return nil, err
	}
	plain, _, err := dec.Decrypt(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.cache.PutBlob(blobID, plain.Bytes()); err != nil {
		return nil, err
	}
	m.markSynced()
	return plain.Bytes(), nil
}

// RemoteList возвращает id блобов, известных серверу.
func (m *BlobManager) RemoteList(ctx context.Context) ([]string, error) {
	return api.ListBlobs(m.baseURL, m.token)
}

// LocalList возвращает содержимое локального кэша (без payload).
func (m *BlobManager) LocalList() ([]model.CachedBlob, error) {
	return m.cache.ListBlobs()
}

// Delete удаляет блоб на сервере и в локальном кэше.
func (m *BlobManager) Delete(ctx context.Context, blobID string) error {
	if err := api.DeleteBlob(m.baseURL, blobID, m.token); err != nil {
		return err
	}
	if err := m.cache.DeleteBlob(blobID); err != nil {
		return err
	}
	m.markSynced()
	return nil
}
