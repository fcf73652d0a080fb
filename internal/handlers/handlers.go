package handlers

import (
	"DocVault/internal/config"
	"DocVault/internal/middleware"
	"DocVault/internal/repo"
	"DocVault/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	documentService *service.DocumentService,
	blobs repo.BlobsBackend,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	blobHandler := NewBlobsHandler(blobs, logger, config)
	docHandler := NewDocumentHandler(documentService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)

	// Blob routes
	r.Get("/api/blobs/", blobHandler.List)
	r.Get("/api/blobs/{blobID}", blobHandler.Get)
	r.Put("/api/blobs/{blobID}", blobHandler.Put)
	r.Delete("/api/blobs/{blobID}", blobHandler.Delete)

	// Document routes
	r.Get("/api/docs/", docHandler.List)
	r.Get("/api/docs/{docID}", docHandler.Get)
	r.Put("/api/docs/{docID}", docHandler.Put)
	r.Delete("/api/docs/{docID}", docHandler.Delete)

	return &Handler{Router: r}
}
