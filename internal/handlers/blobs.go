package handlers

import (
	"DocVault/internal/config"
	"DocVault/internal/middleware"
	"DocVault/internal/repo"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlobsHandler отдаёт и принимает зашифрованные блобы как непрозрачные байты.
// Сервер никогда не расшифровывает содержимое.
type BlobsHandler struct {
	Backend repo.BlobsBackend
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewBlobsHandler создаёт хендлер blobs
func NewBlobsHandler(backend repo.BlobsBackend, logger *zap.SugaredLogger, cfg *config.Config) *BlobsHandler {
	return &BlobsHandler{Backend: backend, Logger: logger, Config: cfg}
}

func (h *BlobsHandler) userFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return strconv.FormatInt(uid, 10), true
}

// Get отдаёт тело блоба; заголовок Tag содержит base64url последних 16 байт.
func (h *BlobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromRequest(w, r)
	if !ok {
		return
	}
	blobID := chi.URLParam(r, "blobID")

	tag, err := h.Backend.TagHeader(user, blobID)
	if err != nil {
		if errors.Is(err, repo.ErrBlobNotFound) {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		h.Logger.Errorw("GetBlob: tag header failed", "user", user, "blob_id", blobID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Tag", tag)
	if err := h.Backend.ReadBlob(user, blobID, w); err != nil {
		// Заголовки уже ушли; остаётся только залогировать.
		h.Logger.Errorw("GetBlob: read failed", "user", user, "blob_id", blobID, "error", err)
	}
}

// Put принимает тело блоба. Повторная запись того же id отклоняется до того,
// как хоть один байт будет записан.
func (h *BlobsHandler) Put(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromRequest(w, r)
	if !ok {
		return
	}
	blobID := chi.URLParam(r, "blobID")
	if blobID == "" {
		http.Error(w, "missing blob id", http.StatusBadRequest)
		return
	}

	maxBody := int64(h.Config.BlobMaxSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := h.Backend.WriteBlob(user, blobID, r.Body); err != nil {
		switch {
		case errors.Is(err, repo.ErrBlobExists):
			http.Error(w, "blob already exists", http.StatusConflict)
		case errors.Is(err, repo.ErrQuotaExceeded):
			http.Error(w, "quota exceeded", http.StatusInsufficientStorage)
		default:
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			h.Logger.Errorw("PutBlob: write failed", "user", user, "blob_id", blobID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Delete удаляет блоб.
func (h *BlobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromRequest(w, r)
	if !ok {
		return
	}
	blobID := chi.URLParam(r, "blobID")

	if err := h.Backend.DeleteBlob(user, blobID); err != nil {
		if errors.Is(err, repo.ErrBlobNotFound) {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		h.Logger.Errorw("DeleteBlob: delete failed", "user", user, "blob_id", blobID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// List возвращает JSON-список id блобов пользователя.
func (h *BlobsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromRequest(w, r)
	if !ok {
		return
	}

	ids, err := h.Backend.ListBlobs(user)
	if err != nil {
		h.Logger.Errorw("ListBlobs: list failed", "user", user, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ids)
}
