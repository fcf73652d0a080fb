package repo

import (
	"DocVault/internal/model"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository — доступ к зашифрованным документам и журналу
// синхронизации. Содержимое (Raw) для сервера непрозрачно.
type DocumentRepository interface {
	// UpsertDocument вставляет или обновляет документ пользователя по (user, doc_id),
	// инкрементируя версию, и пишет запись в журнал синхронизации.
	UpsertDocument(ctx context.Context, userID int64, docID, rev, raw string) (*model.Document, error)

	// GetDocument возвращает документ либо gorm.ErrRecordNotFound.
	GetDocument(ctx context.Context, userID int64, docID string) (*model.Document, error)

	// ListDocuments возвращает неудалённые документы пользователя.
	ListDocuments(ctx context.Context, userID int64) ([]model.Document, error)

	// GetUpdatedSince возвращает документы, изменённые после указанного времени.
	GetUpdatedSince(ctx context.Context, userID int64, since time.Time) ([]model.Document, error)

	// DeleteDocument помечает документ удалённым (soft delete) и логирует это.
	DeleteDocument(ctx context.Context, userID int64, docID string) error
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepository создаёт реализацию репозитория для Document.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) UpsertDocument(ctx context.Context, userID int64, docID, rev, raw string) (*model.Document, error) {
	doc := &model.Document{
		ID:     uuid.NewString(),
		UserID: userID,
		DocID:  docID,
		Rev:    rev,
		Raw:    raw,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "doc_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"rev":     rev,
				"raw":     raw,
				"deleted": false,
				"version": gorm.Expr("documents.version + 1"),
			}),
		}).Create(doc)
		if res.Error != nil {
			return res.Error
		}
		return tx.Create(&model.SyncLog{
			UserID: userID,
			DocID:  docID,
			Rev:    rev,
			Action: "put",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetDocument(ctx, userID, docID)
}

func (r *documentRepo) GetDocument(ctx context.Context, userID int64, docID string) (*model.Document, error) {
	var doc model.Document
	tx := r.db.WithContext(ctx).Where("user_id = ? AND doc_id = ?", userID, docID).First(&doc)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &doc, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context, userID int64) ([]model.Document, error) {
	var docs []model.Document
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("updated_at DESC").
		Find(&docs)
	return docs, tx.Error
}

func (r *documentRepo) GetUpdatedSince(ctx context.Context, userID int64, since time.Time) ([]model.Document, error) {
	var docs []model.Document
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND updated_at > ?", userID, since).
		Order("updated_at ASC").
		Find(&docs)
	return docs, tx.Error
}

func (r *documentRepo) DeleteDocument(ctx context.Context, userID int64, docID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Document{}).
			Where("user_id = ? AND doc_id = ?", userID, docID).
			Updates(map[string]any{"deleted": true, "version": gorm.Expr("version + 1")})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.SyncLog{UserID: userID, DocID: docID, Action: "delete"}).Error
	})
}
