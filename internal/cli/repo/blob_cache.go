package repo

import "DocVault/internal/cli/model"

// BlobCache определяет порт доступа к локальному кэшу блобов.
type BlobCache interface {
	// PutBlob сохраняет (или перезаписывает) расшифрованный блоб.
	PutBlob(blobID string, payload []byte) error

	// GetBlob возвращает блоб по id.
	GetBlob(blobID string) (*model.CachedBlob, error)

	// ListBlobs возвращает все закэшированные блобы без содержимого.
	ListBlobs() ([]model.CachedBlob, error)

	// DeleteBlob удаляет блоб из кэша. Отсутствие записи не является ошибкой.
	DeleteBlob(blobID string) error
}
