package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"leke-chat/internal/models"
)

// FileConversationRepo keeps the whole log in one JSON array on disk.
type FileConversationRepo struct {
	mu   sync.Mutex
	path string
}

func NewFileConversationRepo(path string) *FileConversationRepo {
	return &FileConversationRepo{path: path}
}

func (r *FileConversationRepo) Append(ctx context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return err
	}
	return r.save(append(all, *c))
}

func (r *FileConversationRepo) List(ctx context.Context) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *FileConversationRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save([]models.Conversation{})
}

// load treats a missing or corrupt file as an empty log.
func (r *FileConversationRepo) load() ([]models.Conversation, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	var all []models.Conversation
	if err := json.Unmarshal(data, &all); err != nil {
		return []models.Conversation{}, nil
	}
	if all == nil {
		all = []models.Conversation{}
	}
	return all, nil
}

// save writes to a temp file and renames it over the old one.
func (r *FileConversationRepo) save(all []models.Conversation) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".conversations-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write conversations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
