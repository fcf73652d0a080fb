package service

import (
	"DocVault/internal/model"
	"DocVault/internal/repo"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrDocumentNotFound — документ отсутствует или удалён.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentService — серверная логика работы с зашифрованными документами.
// Содержимое raw для сервера непрозрачно; проверок криптографии здесь нет.
type DocumentService struct {
	repo repo.DocumentRepository
}

func NewDocumentService(r repo.DocumentRepository) *DocumentService {
	return &DocumentService{repo: r}
}

// Put принимает armored-блоб документа и сохраняет его (upsert).
func (s *DocumentService) Put(ctx context.Context, userID int64, docID, rev, raw string) (*model.Document, error) {
	return s.repo.UpsertDocument(ctx, userID, docID, rev, raw)
}

// Get возвращает документ пользователя.
func (s *DocumentService) Get(ctx context.Context, userID int64, docID string) (*model.Document, error) {
	doc, err := s.repo.GetDocument(ctx, userID, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.Deleted {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// List возвращает неудалённые документы пользователя.
func (s *DocumentService) List(ctx context.Context, userID int64) ([]model.Document, error) {
	return s.repo.ListDocuments(ctx, userID)
}

// UpdatedSince — выборка изменений для инкрементальной синхронизации.
func (s *DocumentService) UpdatedSince(ctx context.Context, userID int64, since time.Time) ([]model.Document, error) {
	return s.repo.GetUpdatedSince(ctx, userID, since)
}

// Delete помечает документ удалённым.
func (s *DocumentService) Delete(ctx context.Context, userID int64, docID string) error {
	err := s.repo.DeleteDocument(ctx, userID, docID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	return err
}
