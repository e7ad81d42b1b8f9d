package chat_test

import (
	"context"
	"sync"

	"leke-chat/internal/chat"
)

type chatCall struct {
	prompt     string
	attachment *chat.Attachment
}

// fakeRemote records calls and returns canned results. When block is set,
// Chat signals entered and then waits for block to be closed.
type fakeRemote struct {
	mu sync.Mutex

	reply   string
	chatErr error
	calls   []chatCall
	onChat  func()
	entered chan struct{}
	block   chan struct{}

	history    []chat.Entry
	historyErr error

	clearErr   error
	clearCalls int
}

func (f *fakeRemote) Chat(ctx context.Context, prompt string, att *chat.Attachment) (string, error) {
	f.mu.Lock()
	var copied *chat.Attachment
	if att != nil {
		a := *att
		copied = &a
	}
	f.calls = append(f.calls, chatCall{prompt: prompt, attachment: copied})
	onChat, entered, block := f.onChat, f.entered, f.block
	reply, err := f.reply, f.chatErr
	f.mu.Unlock()

	if onChat != nil {
		onChat()
	}
	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return reply, err
}

func (f *fakeRemote) Conversations(ctx context.Context) ([]chat.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Entry(nil), f.history...), f.historyErr
}

func (f *fakeRemote) ClearConversations(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return f.clearErr
}

func (f *fakeRemote) chatCalls() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chatCall(nil), f.calls...)
}

func (f *fakeRemote) clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearCalls
}

// recordingObserver keeps the order of observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	events   []string
	echoes   []chat.Echo
	outcomes []chat.Outcome
}

func (o *recordingObserver) SubmissionStarted(e chat.Echo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "started")
	o.echoes = append(o.echoes, e)
}

func (o *recordingObserver) SubmissionFinished(out chat.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "finished")
	o.outcomes = append(o.outcomes, out)
}

func (o *recordingObserver) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}

func pngCandidate() chat.Candidate {
	return chat.Candidate{Name: "chart.png", Size: 4, MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
}
