package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDocumentRepository_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	// первая вставка — version=1
	doc, err := r.UpsertDocument(ctx, 1, "doc-a", "rev-1", "raw-payload-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, "raw-payload-1", doc.Raw)

	// повторный upsert того же doc_id — version растёт, raw обновляется
	doc, err = r.UpsertDocument(ctx, 1, "doc-a", "rev-2", "raw-payload-2")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.Equal(t, "rev-2", doc.Rev)
	assert.Equal(t, "raw-payload-2", doc.Raw)

	// другой пользователь того же doc_id — независимая запись
	other, err := r.UpsertDocument(ctx, 2, "doc-a", "rev-1", "other")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), other.Version)
}

func TestDocumentRepository_ListAndDelete(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	_, err := r.UpsertDocument(ctx, 7, "doc-x", "1", "x")
	assert.NoError(t, err)
	_, err = r.UpsertDocument(ctx, 7, "doc-y", "1", "y")
	assert.NoError(t, err)

	docs, err := r.ListDocuments(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, docs, 2)

	// soft delete: из списка пропадает, версия растёт
	assert.NoError(t, err)
	err = r.DeleteDocument(ctx, 7, "doc-x")
	assert.NoError(t, err)

	docs, err = r.ListDocuments(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "doc-y", docs[0].DocID)

	got, err := r.GetDocument(ctx, 7, "doc-x")
	assert.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, int64(2), got.Version)

	// удаление несуществующего — ErrRecordNotFound
	err = r.DeleteDocument(ctx, 7, "doc-z")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentRepository_UpdatedSince(t *testing.T) {
	db := newTestDB(t)
	r := NewDocumentRepository(db)
	ctx := context.Background()

	_, err := r.UpsertDocument(ctx, 3, "doc-old", "1", "o")
	assert.NoError(t, err)

	docs, err := r.GetUpdatedSince(ctx, 3, time.Now().Add(-time.Hour))
	assert.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = r.GetUpdatedSince(ctx, 3, time.Now().Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, docs, 0)
}
