package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"leke-chat/internal/middleware"
	"leke-chat/internal/models"
	"leke-chat/internal/services"
)

const multipartMemory = 32 << 20

type chatService interface {
	Chat(ctx context.Context, prompt string, doc *services.Document) (*models.Conversation, error)
	List(ctx context.Context) ([]models.Conversation, error)
	Clear(ctx context.Context) error
}

type documentExtractor interface {
	Extract(name string, data []byte) (*services.Document, error)
}

type ChatHandler struct {
	chat      chatService
	extractor documentExtractor
	maxUpload int64
	logger    *zap.Logger
	now       func() time.Time
}

func NewChatHandler(chat chatService, extractor documentExtractor, maxUpload int64, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chat:      chat,
		extractor: extractor,
		maxUpload: maxUpload,
		logger:    logger,
		now:       time.Now,
	}
}

// Chat handles POST /api/chat: a multipart form with a required prompt and
// an optional document.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("File too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid form data"))
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Prompt is required"))
		return
	}

	doc, status, msg := h.readDocument(r)
	if status != 0 {
		writeJSON(w, status, errorResp(msg))
		return
	}

	conv, err := h.chat.Chat(r.Context(), prompt, doc)
	if err != nil {
		h.logger.Error("chat failed",
			zap.String("request_id", r.Header.Get(middleware.RequestIDHeader)),
			zap.Error(err),
		)
		if errors.Is(err, services.ErrModelFailed) {
			writeJSON(w, http.StatusBadGateway, errorResp("Failed to get AI response"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to save conversation"))
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Success:        true,
		Response:       conv.Response,
		ConversationID: &conv.ID,
	})
}

// readDocument returns a nil document when none was uploaded. A non-zero
// status means the upload was rejected.
func (h *ChatHandler) readDocument(r *http.Request) (*services.Document, int, string) {
	file, header, err := r.FormFile("document")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, 0, ""
	}
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid document upload"
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, 0, ""
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid document upload"
	}

	doc, err := h.extractor.Extract(header.Filename, data)
	switch {
	case errors.Is(err, services.ErrUnsupportedDocument):
		return nil, http.StatusBadRequest, "Unsupported file format. Please upload PDF, image, or CSV files."
	case err != nil:
		h.logger.Warn("document extraction failed", zap.String("file", header.Filename), zap.Error(err))
		return nil, http.StatusUnprocessableEntity, "Could not read the uploaded document"
	}
	return doc, 0, ""
}

// ListConversations handles GET /api/conversations.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	all, err := h.chat.List(r.Context())
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load conversations"))
		return
	}
	if all == nil {
		all = []models.Conversation{}
	}
	writeJSON(w, http.StatusOK, all)
}

// ClearConversations handles DELETE /api/conversations.
func (h *ChatHandler) ClearConversations(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Clear(r.Context()); err != nil {
		h.logger.Error("clear conversations failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to clear conversations"))
		return
	}
	writeJSON(w, http.StatusOK, models.ClearResponse{Success: true, Message: "All conversations cleared"})
}

func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Timestamp: h.now()})
}
