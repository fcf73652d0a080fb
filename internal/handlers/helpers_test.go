package handlers_test

import (
	"DocVault/internal/config"
	"DocVault/internal/handlers"
	"DocVault/internal/middleware"
	"DocVault/internal/model"
	"DocVault/internal/repo"
	"DocVault/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Local light mocks
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

type mockDocRepo struct{ mock.Mock }

func (m *mockDocRepo) UpsertDocument(ctx context.Context, userID int64, docID, rev, raw string) (*model.Document, error) {
	args := m.Called(ctx, userID, docID, rev, raw)
	if d, ok := args.Get(0).(*model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocRepo) GetDocument(ctx context.Context, userID int64, docID string) (*model.Document, error) {
	args := m.Called(ctx, userID, docID)
	if d, ok := args.Get(0).(*model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocRepo) ListDocuments(ctx context.Context, userID int64) ([]model.Document, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.Document); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocRepo) GetUpdatedSince(ctx context.Context, userID int64, since time.Time) ([]model.Document, error) {
	args := m.Called(ctx, userID, since)
	if v, ok := args.Get(0).([]model.Document); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocRepo) DeleteDocument(ctx context.Context, userID int64, docID string) error {
	return m.Called(ctx, userID, docID).Error(0)
}

var _ repo.DocumentRepository = (*mockDocRepo)(nil)

// --- Helpers ---

// newTestRouter собирает роутер с мок-репозиториями и файловым блоб-бэкендом
// во временном каталоге.
func newTestRouter(t *testing.T, ur repo.UserRepository, dr repo.DocumentRepository) http.Handler {
	t.Helper()
	return newTestRouterQuota(t, ur, dr, 1<<20)
}

func newTestRouterQuota(t *testing.T, ur repo.UserRepository, dr repo.DocumentRepository, quota int64) http.Handler {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", BlobMaxSizeMB: 1}
	logger := zap.NewNop().Sugar()

	backend, err := repo.NewFilesystemBlobsBackend(t.TempDir(), quota)
	if err != nil {
		t.Fatalf("failed to create blobs backend: %v", err)
	}

	userSvc := service.NewUserService(ur)
	docSvc := service.NewDocumentService(dr)

	h := handlers.NewHandler(userSvc, docSvc, backend, logger, cfg)
	return h.Router
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}
