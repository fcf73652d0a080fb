package handlers

import (
	"DocVault/internal/middleware"
	"DocVault/internal/model"
	"DocVault/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DocumentHandler хранит armored-документы как непрозрачные строки.
type DocumentHandler struct {
	DocumentService *service.DocumentService
	Logger          *zap.SugaredLogger
}

// NewDocumentHandler создаёт хендлер documents
func NewDocumentHandler(documentService *service.DocumentService, logger *zap.SugaredLogger) *DocumentHandler {
	return &DocumentHandler{DocumentService: documentService, Logger: logger}
}

type documentPutRequest struct {
	Rev string `json:"rev"`
	Raw string `json:"raw"`
}

// DocumentDTO форма документа в ответах API.
type DocumentDTO struct {
	DocID     string `json:"doc_id"`
	Rev       string `json:"rev"`
	Raw       string `json:"raw,omitempty"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

func documentDTO(d *model.Document, withRaw bool) DocumentDTO {
	dto := DocumentDTO{
		DocID:     d.DocID,
		Rev:       d.Rev,
		Version:   d.Version,
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if withRaw {
		dto.Raw = d.Raw
	}
	return dto
}

func (h *DocumentHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return uid, ok
}

// Put создаёт или обновляет документ (rev + armored raw).
func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")

	var req documentPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("PutDocument: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Raw == "" {
		http.Error(w, "raw required", http.StatusBadRequest)
		return
	}

	doc, err := h.DocumentService.Put(r.Context(), uid, docID, req.Rev, req.Raw)
	if err != nil {
		h.Logger.Errorw("PutDocument: service error", "user_id", uid, "doc_id", docID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(documentDTO(doc, false))
}

// Get возвращает документ вместе с raw.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")

	doc, err := h.DocumentService.Get(r.Context(), uid, docID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		h.Logger.Errorw("GetDocument: service error", "user_id", uid, "doc_id", docID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(documentDTO(doc, true))
}

// List возвращает документы пользователя без raw; ?since=RFC3339 сужает выборку.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}

	var (
		docs []model.Document
		err  error
	)
	if since := r.URL.Query().Get("since"); since != "" {
		t, perr := time.Parse(time.RFC3339, since)
		if perr != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		docs, err = h.DocumentService.UpdatedSince(r.Context(), uid, t)
	} else {
		docs, err = h.DocumentService.List(r.Context(), uid)
	}
	if err != nil {
		h.Logger.Errorw("ListDocuments: service error", "user_id", uid, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]DocumentDTO, 0, len(docs))
	for i := range docs {
		out = append(out, documentDTO(&docs[i], false))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// Delete мягко удаляет документ.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")

	if err := h.DocumentService.Delete(r.Context(), uid, docID); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		h.Logger.Errorw("DeleteDocument: service error", "user_id", uid, "doc_id", docID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
