package chat

import (
	"context"
	"sync"
)

// DefaultHistoryLimit is how many entries LoadRecent keeps.
const DefaultHistoryLimit = 5

// Entry is one committed prompt/response pair.
type Entry struct {
	Prompt      string
	Response    string
	HasDocument bool
	// DocumentName is only known for entries created in this session.
	DocumentName string
}

// Remote is the API the client core talks to.
type Remote interface {
	Chat(ctx context.Context, prompt string, attachment *Attachment) (string, error)
	Conversations(ctx context.Context) ([]Entry, error)
	ClearConversations(ctx context.Context) error
}

// ConversationStore is the local, append-only log of the conversation.
type ConversationStore struct {
	mu      sync.RWMutex
	entries []Entry
	remote  Remote
	limit   int
}

func NewConversationStore(remote Remote, limit int) *ConversationStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ConversationStore{remote: remote, limit: limit}
}

// LoadRecent replaces the local log with the last entries of the remote
// history. On error the log is left empty.
func (s *ConversationStore) LoadRecent(ctx context.Context) ([]Entry, error) {
	all, err := s.remote.Conversations(ctx)
	if err != nil {
		s.mu.Lock()
		s.entries = nil
		s.mu.Unlock()
		return nil, &LoadError{Err: err}
	}

	if len(all) > s.limit {
		all = all[len(all)-s.limit:]
	}
	recent := append([]Entry(nil), all...)

	s.mu.Lock()
	s.entries = recent
	s.mu.Unlock()

	return append([]Entry(nil), recent...), nil
}

func (s *ConversationStore) Append(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// ClearAll deletes the remote history and, only if that succeeds, the
// local log.
func (s *ConversationStore) ClearAll(ctx context.Context) error {
	if err := s.remote.ClearConversations(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return nil
}

// reset drops the local log without touching the remote history.
func (s *ConversationStore) reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Entries returns a copy of the log in chronological order.
func (s *ConversationStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
