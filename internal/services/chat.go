package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leke-chat/internal/llm"
	"leke-chat/internal/models"
	"leke-chat/internal/repository"
)

const (
	noDocumentText  = "No document provided."
	storedTextLimit = 500
	rateSlotTimeout = 5 * time.Minute
)

// ErrModelFailed wraps any provider failure so handlers can map it to 502.
var ErrModelFailed = errors.New("failed to get AI response")

type ChatService struct {
	provider llm.Provider
	repo     repository.ConversationRepository
	logger   *zap.Logger
	rateChan chan struct{} // Token bucket
	now      func() time.Time
}

func NewChatService(provider llm.Provider, repo repository.ConversationRepository, concurrentReqs int, logger *zap.Logger) *ChatService {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Token bucket bounding concurrent model calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &ChatService{
		provider: provider,
		repo:     repo,
		logger:   logger,
		rateChan: rateChan,
		now:      time.Now,
	}
}

// acquireRate blocks until a rate slot is available
func (s *ChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateSlotTimeout):
		return fmt.Errorf("timeout waiting for model rate slot")
	}
}

func (s *ChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Chat asks the model about doc (which may be nil) and stores the exchange.
func (s *ChatService) Chat(ctx context.Context, prompt string, doc *Document) (*models.Conversation, error) {
	documentText := noDocumentText
	var images []llm.Image
	if doc != nil {
		if doc.Text != "" {
			documentText = doc.Text
		}
		if doc.Image != nil {
			images = append(images, *doc.Image)
		}
	}

	answer, err := s.complete(ctx, BuildPrompt(prompt, documentText), images)
	if err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		ID:           uuid.New(),
		Timestamp:    s.now(),
		Prompt:       prompt,
		DocumentText: truncateDocumentText(documentText),
		Response:     answer,
		HasDocument:  documentText != noDocumentText,
	}
	if err := s.repo.Append(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	return conv, nil
}

func (s *ChatService) complete(ctx context.Context, prompt string, images []llm.Image) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelFailed, err)
	}
	defer s.releaseRate()

	start := time.Now()
	answer, err := s.provider.Complete(ctx, prompt, images)
	if err != nil {
		s.logger.Warn("model call failed",
			zap.String("provider", s.provider.Name()),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrModelFailed, err)
	}

	s.logger.Info("model call done",
		zap.String("provider", s.provider.Name()),
		zap.Int("images", len(images)),
		zap.Duration("took", time.Since(start)),
	)
	return answer, nil
}

func (s *ChatService) List(ctx context.Context) ([]models.Conversation, error) {
	return s.repo.List(ctx)
}

func (s *ChatService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// BuildPrompt combines the document text and the user's request into the
// single user message sent to the model.
func BuildPrompt(prompt, documentText string) string {
	return fmt.Sprintf(`
Document Content:
%s

User Request:
%s

Please analyze the document and respond to the user's request based on the document content.
`, documentText, prompt)
}

// truncateDocumentText keeps the first 500 characters, marking the cut
// with "...".
func truncateDocumentText(s string) string {
	if utf8.RuneCountInString(s) <= storedTextLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:storedTextLimit]) + "..."
}
