package terminal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"leke-chat/internal/chat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubRemote struct {
	mu          sync.Mutex
	reply       string
	chatErr     error
	history     []chat.Entry
	prompts     []string
	attachments []string
	clears      int
}

func (s *stubRemote) Chat(_ context.Context, prompt string, att *chat.Attachment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	name := ""
	if att != nil {
		name = att.Name
	}
	s.attachments = append(s.attachments, name)
	return s.reply, s.chatErr
}

func (s *stubRemote) Conversations(context.Context) ([]chat.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Entry(nil), s.history...), nil
}

func (s *stubRemote) ClearConversations(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	return nil
}

func runREPL(t *testing.T, remote *stubRemote, clearOnExit bool, input string) string {
	t.Helper()

	var out bytes.Buffer
	printer := NewPrinter(&out, PrinterOptions{Plain: true})
	session := chat.NewSession(remote, chat.SessionOptions{
		ClearOnTeardown: clearOnExit,
		Observer:        printer,
		Now:             func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local) },
	})

	repl := NewREPL(session, printer, strings.NewReader(input), nil)
	require.NoError(t, repl.Run(context.Background()))
	return out.String()
}

func TestREPLShowsWelcomeAndAnswers(t *testing.T) {
	remote := &stubRemote{reply: "Hi **there**"}

	out := runREPL(t, remote, true, "hello\n/quit\nnever sent\n")

	assert.Contains(t, out, chat.WelcomeTitle)
	assert.Contains(t, out, "Thinking...")
	assert.Contains(t, out, "Hi **there**")
	assert.Equal(t, []string{"hello"}, remote.prompts)
	assert.Equal(t, 1, remote.clears)
}

func TestREPLPrintsLoadedHistory(t *testing.T) {
	remote := &stubRemote{history: []chat.Entry{
		{Prompt: "old question", Response: "old answer", HasDocument: true},
	}}

	out := runREPL(t, remote, false, "")

	assert.NotContains(t, out, chat.WelcomeTitle)
	assert.Contains(t, out, "You 09:30 📎 Document attached\nold question")
	assert.Contains(t, out, "LEKE 09:30\nold answer")
	assert.Zero(t, remote.clears)
}

func TestREPLMultilinePrompt(t *testing.T) {
	remote := &stubRemote{reply: "ok"}

	runREPL(t, remote, false, "line one\\\nline two\n")

	assert.Equal(t, []string{"line one\nline two"}, remote.prompts)
}

func TestREPLAttachSendsFileOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,score\nann,9\n"), 0o644))

	remote := &stubRemote{reply: "Ann scored 9."}
	input := strings.Join([]string{
		"/attach " + path,
		"who scored?",
		"and now?",
	}, "\n") + "\n"

	out := runREPL(t, remote, false, input)

	assert.Contains(t, out, "📎 scores.csv (17.00 Bytes)")
	assert.Contains(t, out, "Sending with scores.csv...")
	assert.Equal(t, []string{"scores.csv", ""}, remote.attachments)
}

func TestREPLRejectsUnsupportedAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0o644))

	remote := &stubRemote{}
	out := runREPL(t, remote, false, "/attach "+path+"\n/attach\n/attach "+path+".missing\n")

	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "usage: /attach <path>")
	assert.Contains(t, out, "failed to read")
	assert.NotContains(t, out, "📎 notes.txt")
}

func TestREPLRemoveAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o644))

	remote := &stubRemote{
		reply:   "fine",
		history: []chat.Entry{{Prompt: "q", Response: "a"}},
	}
	out := runREPL(t, remote, false, "/attach "+path+"\n/remove\nplain\n/clear\n")

	assert.Contains(t, out, "No file attached.")
	assert.Equal(t, []string{""}, remote.attachments)
	assert.Contains(t, out, "Conversation cleared.")
	assert.Equal(t, 1, remote.clears)
	afterClear := out[strings.LastIndex(out, "Conversation cleared."):]
	assert.Contains(t, afterClear, chat.WelcomeTitle)
	assert.NotContains(t, afterClear, "fine")
}

func TestREPLShowsFailures(t *testing.T) {
	remote := &stubRemote{chatErr: &chat.APIError{Status: 502, Message: "model unavailable"}}

	out := runREPL(t, remote, false, "hello\n/bogus\n/help\n")

	assert.Contains(t, out, "Error: model unavailable")
	assert.Contains(t, out, "unknown command /bogus")
	assert.Contains(t, out, "/attach <path>")
}

func TestREPLStopsWhenContextDone(t *testing.T) {
	remote := &stubRemote{}
	printer := NewPrinter(&bytes.Buffer{}, PrinterOptions{Plain: true})
	session := chat.NewSession(remote, chat.SessionOptions{Observer: printer})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewREPL(session, printer, strings.NewReader("hello\n"), nil).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, remote.prompts)
}

func TestPrinterErrorRecord(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, PrinterOptions{Plain: true})

	p.PrintView(chat.View{Records: []chat.Record{
		{Sender: chat.SenderUser, Text: "q", Timestamp: "10:00"},
		{Sender: chat.SenderAssistant, Text: "Error: boom", Timestamp: "10:00"},
	}})
	p.Error(errors.New("bad"))

	assert.Equal(t, "You 10:00\nq\n\nLEKE 10:00\nError: boom\n\nError: bad\n", out.String())
}
