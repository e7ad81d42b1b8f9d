package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultTeardownTimeout bounds the best-effort remote clear on teardown.
const DefaultTeardownTimeout = 3 * time.Second

// IntentKind is a user action a front end can dispatch.
type IntentKind int

const (
	IntentSelectFile IntentKind = iota
	IntentRemoveFile
	IntentSubmit
	IntentClearHistory
)

func (k IntentKind) String() string {
	switch k {
	case IntentSelectFile:
		return "select_file"
	case IntentRemoveFile:
		return "remove_file"
	case IntentSubmit:
		return "submit"
	case IntentClearHistory:
		return "clear_history"
	default:
		return fmt.Sprintf("intent(%d)", int(k))
	}
}

// Intent carries the data for one user action.
type Intent struct {
	Kind   IntentKind
	Prompt string
	File   Candidate
}

// SessionOptions configures a Session.
type SessionOptions struct {
	HistoryLimit    int
	ClearOnTeardown bool
	TeardownTimeout time.Duration
	Observer        Observer
	Logger          *zap.Logger
	Now             func() time.Time
}

// Session owns the client state for one chat session: the pending
// attachment, the conversation log and the submission state.
type Session struct {
	remote      Remote
	attachments *AttachmentManager
	store       *ConversationStore
	controller  *Controller
	renderer    *Renderer
	logger      *zap.Logger

	clearOnTeardown bool
	teardownTimeout time.Duration

	handlers map[IntentKind]func(context.Context, Intent) error
}

func NewSession(remote Remote, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.TeardownTimeout
	if timeout <= 0 {
		timeout = DefaultTeardownTimeout
	}

	attachments := NewAttachmentManager()
	store := NewConversationStore(remote, opts.HistoryLimit)

	s := &Session{
		remote:          remote,
		attachments:     attachments,
		store:           store,
		controller:      NewController(remote, attachments, store, opts.Observer, logger),
		renderer:        NewRenderer(opts.Now),
		logger:          logger,
		clearOnTeardown: opts.ClearOnTeardown,
		teardownTimeout: timeout,
	}

	s.handlers = map[IntentKind]func(context.Context, Intent) error{
		IntentSelectFile:   s.selectFile,
		IntentRemoveFile:   s.removeFile,
		IntentSubmit:       s.submit,
		IntentClearHistory: s.clearHistory,
	}
	return s
}

// Start loads the recent history. A failed load is logged and otherwise
// ignored; the session starts empty.
func (s *Session) Start(ctx context.Context) {
	entries, err := s.store.LoadRecent(ctx)
	if err != nil {
		s.logger.Warn("history not loaded", zap.Error(err))
		return
	}
	s.logger.Debug("history loaded", zap.Int("entries", len(entries)))
}

// Dispatch routes an intent to the component that handles it.
func (s *Session) Dispatch(ctx context.Context, in Intent) error {
	h, ok := s.handlers[in.Kind]
	if !ok {
		return fmt.Errorf("unknown intent %s", in.Kind)
	}
	return h(ctx, in)
}

func (s *Session) selectFile(_ context.Context, in Intent) error {
	a, err := s.attachments.Select(in.File)
	if err != nil {
		return err
	}
	s.logger.Debug("attachment selected", zap.String("name", a.Name), zap.Int64("size", a.Size))
	return nil
}

func (s *Session) removeFile(context.Context, Intent) error {
	s.attachments.Clear()
	return nil
}

// submit resolves through the Observer; it never returns an error.
func (s *Session) submit(ctx context.Context, in Intent) error {
	s.controller.Submit(ctx, in.Prompt)
	return nil
}

func (s *Session) clearHistory(ctx context.Context, _ Intent) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}
	s.controller.reset()
	return nil
}

// Submit is Dispatch for IntentSubmit that also returns the outcome.
func (s *Session) Submit(ctx context.Context, prompt string) Outcome {
	return s.controller.Submit(ctx, prompt)
}

func (s *Session) Attachments() *AttachmentManager { return s.attachments }

func (s *Session) Store() *ConversationStore { return s.store }

func (s *Session) Controller() *Controller { return s.controller }

// View renders the session as it is now.
func (s *Session) View() View {
	state, echo, failure := s.controller.live()
	return s.renderer.Render(Snapshot{
		Entries: s.store.Entries(),
		State:   state,
		Echo:    echo,
		Failure: failure,
	})
}

// Teardown drops local state (the attachment, the conversation log and the
// live echo and failure) and, when configured, asks the server to clear
// its history without checking the result. The returned channel is closed
// once that request has finished.
func (s *Session) Teardown() <-chan struct{} {
	done := make(chan struct{})
	s.attachments.Clear()
	s.store.reset()
	s.controller.reset()

	if !s.clearOnTeardown {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), s.teardownTimeout)
		defer cancel()
		_ = s.remote.ClearConversations(ctx)
	}()
	return done
}
