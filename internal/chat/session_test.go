package chat_test

import (
	"context"
	"errors"
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

func TestSession_StartLoadsRecentHistory(t *testing.T) {
	s := chat.NewSession(&fakeRemote{history: history(7)}, chat.SessionOptions{HistoryLimit: 5})
	s.Start(context.Background())

	assert.Equal(t, 5, s.Store().Len())
	v := s.View()
	require.Nil(t, v.Placeholder)
	assert.Len(t, v.Records, 10)
}

func TestSession_StartSurvivesLoadFailure(t *testing.T) {
	s := chat.NewSession(&fakeRemote{historyErr: errors.New("down")}, chat.SessionOptions{})
	s.Start(context.Background())

	assert.Equal(t, 0, s.Store().Len())
	assert.NotNil(t, s.View().Placeholder)
}

func TestSession_DispatchRoutesIntents(t *testing.T) {
	remote := &fakeRemote{reply: "answer"}
	obs := &recordingObserver{}
	s := chat.NewSession(remote, chat.SessionOptions{Observer: obs})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, chat.Intent{Kind: chat.IntentSelectFile, File: pngCandidate()}))
	_, ok := s.Attachments().Current()
	require.True(t, ok)

	require.NoError(t, s.Dispatch(ctx, chat.Intent{Kind: chat.IntentRemoveFile}))
	_, ok = s.Attachments().Current()
	require.False(t, ok)

	err := s.Dispatch(ctx, chat.Intent{Kind: chat.IntentSelectFile, File: chat.Candidate{Name: "a.zip", MIMEType: "application/zip"}})
	require.ErrorIs(t, err, chat.ErrUnsupportedType)

	require.NoError(t, s.Dispatch(ctx, chat.Intent{Kind: chat.IntentSubmit, Prompt: "question"}))
	assert.Equal(t, 1, s.Store().Len())
	assert.Equal(t, []string{"started", "finished"}, obs.snapshot())

	require.NoError(t, s.Dispatch(ctx, chat.Intent{Kind: chat.IntentClearHistory}))
	assert.Equal(t, 0, s.Store().Len())
	assert.NotNil(t, s.View().Placeholder)

	assert.Error(t, s.Dispatch(ctx, chat.Intent{Kind: chat.IntentKind(42)}))
}

func TestSession_ClearHistoryFailureKeepsEntries(t *testing.T) {
	remote := &fakeRemote{history: history(2), clearErr: &chat.APIError{Status: 503}}
	s := chat.NewSession(remote, chat.SessionOptions{})
	s.Start(context.Background())

	err := s.Dispatch(context.Background(), chat.Intent{Kind: chat.IntentClearHistory})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear conversations")
	assert.Equal(t, 2, s.Store().Len())
}

func TestSession_FailedSubmitIsRenderedAsError(t *testing.T) {
	remote := &fakeRemote{chatErr: &chat.APIError{Status: 502, Message: "Failed to get AI response"}}
	s := chat.NewSession(remote, chat.SessionOptions{})

	out := s.Submit(context.Background(), "why?")
	require.Equal(t, chat.OutcomeFailed, out.Kind)

	v := s.View()
	require.Len(t, v.Records, 2)
	assert.Equal(t, "why?", v.Records[0].Text)
	assert.Equal(t, "Error: Failed to get AI response", v.Records[1].Text)

	// A later success replaces the echo and error with the committed entry.
	remote.mu.Lock()
	remote.chatErr, remote.reply = nil, "because"
	remote.mu.Unlock()
	require.Equal(t, chat.OutcomeSucceeded, s.Submit(context.Background(), "why?").Kind)

	v = s.View()
	require.Len(t, v.Records, 2)
	assert.Equal(t, "because", v.Records[1].Text)
}

func TestSession_TeardownClearsRemote(t *testing.T) {
	remote := &fakeRemote{}
	s := chat.NewSession(remote, chat.SessionOptions{ClearOnTeardown: true})
	_, err := s.Attachments().Select(pngCandidate())
	require.NoError(t, err)

	select {
	case <-s.Teardown():
	case <-time.After(2 * time.Second):
		t.Fatal("teardown did not finish")
	}

	assert.Equal(t, 1, remote.clears())
	_, ok := s.Attachments().Current()
	assert.False(t, ok)
}

func TestSession_TeardownIgnoresRemoteFailure(t *testing.T) {
	remote := &fakeRemote{clearErr: errors.New("unreachable")}
	s := chat.NewSession(remote, chat.SessionOptions{ClearOnTeardown: true})

	<-s.Teardown()
	assert.Equal(t, 1, remote.clears())
}

func TestSession_TeardownWithoutClear(t *testing.T) {
	remote := &fakeRemote{}
	s := chat.NewSession(remote, chat.SessionOptions{})

	<-s.Teardown()
	assert.Equal(t, 0, remote.clears())
}

func TestSession_TeardownResetsLocalState(t *testing.T) {
	remote := &fakeRemote{
		history: []chat.Entry{{Prompt: "q", Response: "a"}},
		chatErr: errors.New("offline"),
	}
	s := chat.NewSession(remote, chat.SessionOptions{})
	s.Start(context.Background())
	s.Submit(context.Background(), "again")
	require.Len(t, s.View().Records, 4)

	<-s.Teardown()

	assert.Equal(t, 0, s.Store().Len())
	v := s.View()
	require.NotNil(t, v.Placeholder)
	assert.Empty(t, v.Records)
	assert.Equal(t, 0, remote.clears())
}

func TestIntentKindString(t *testing.T) {
	assert.Equal(t, "submit", chat.IntentSubmit.String())
	assert.Equal(t, "clear_history", chat.IntentClearHistory.String())
	assert.Equal(t, "intent(7)", chat.IntentKind(7).String())
}
