package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leke-chat/internal/config"
	"leke-chat/internal/models"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

// useServer points the globals at a test server for one test.
func useServer(t *testing.T, h http.Handler) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger = zap.NewNop()
	cfg = config.DefaultClientConfig()
	cfg.APIURL = srv.URL + "/api"
	cfg.PlainOutput = true
	cfg.Timeout = 5 * time.Second
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() { apiURL, timeout, plain, noClear = "", 0, false, false })

	cfg = config.DefaultClientConfig()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{"--api-url", "http://remote:9000/api", "--no-clear"}))

	applyFlags(cmd)

	assert.Equal(t, "http://remote:9000/api", cfg.APIURL)
	assert.False(t, cfg.ClearOnExit)
	assert.Equal(t, 2*time.Minute, cfg.Timeout, "unset flags keep the loaded value")
	assert.False(t, cfg.PlainOutput)
}

func TestRunHealth(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		json.NewEncoder(w).Encode(models.HealthResponse{Status: "healthy", Timestamp: time.Now()})
	}))

	require.NoError(t, runHealth(testCommand(), nil))
}

func TestRunSendFailureIsReportedOnce(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(models.ChatResponse{Success: false, Error: "model unavailable"})
	}))

	err := runSend(testCommand(), []string{"what", "is", "this?"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestRunSendWithFile(t *testing.T) {
	var gotPrompt, gotFile string
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotPrompt = r.FormValue("prompt")
		if _, fh, err := r.FormFile("document"); err == nil {
			gotFile = fh.Filename
		}
		json.NewEncoder(w).Encode(models.ChatResponse{Success: true, Response: "done"})
	}))

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	sendFile = path
	t.Cleanup(func() { sendFile = "" })

	require.NoError(t, runSend(testCommand(), []string{"sum", "b"}))
	assert.Equal(t, "sum b", gotPrompt)
	assert.Equal(t, "data.csv", gotFile)
}

func TestRunHistoryHTML(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Conversation{
			{Prompt: "q1", Response: "a1"},
			{Prompt: "q2", Response: "a2", HasDocument: true},
		})
	}))

	historyHTML = filepath.Join(t.TempDir(), "history.html")
	t.Cleanup(func() { historyHTML = "" })

	require.NoError(t, runHistory(testCommand(), nil))

	data, err := os.ReadFile(historyHTML)
	require.NoError(t, err)
	page := string(data)
	assert.Equal(t, 4, strings.Count(page, `<div class="message `))
	assert.Contains(t, page, "Document attached")
}

func TestRunClearError(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ChatResponse{Error: "Failed to clear conversations"})
	}))

	err := runClear(testCommand(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to clear conversations")
}

func TestRunHistoryKeepsRecentEntries(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "prompt": "first", "response": "a1"},
			{"id": 2, "prompt": "second", "response": "a2"},
			{"id": 3, "prompt": "third", "response": "a3"},
			{"id": 4, "prompt": "fourth", "response": "a4"}
		]`))
	}))
	cfg.HistoryLimit = 2

	historyHTML = filepath.Join(t.TempDir(), "recent.html")
	t.Cleanup(func() { historyHTML = "" })

	require.NoError(t, runHistory(testCommand(), nil))

	data, err := os.ReadFile(historyHTML)
	require.NoError(t, err)
	page := string(data)
	assert.Equal(t, 4, strings.Count(page, `<div class="message `))
	assert.NotContains(t, page, "second")
	assert.Contains(t, page, "third")
	assert.Contains(t, page, "fourth")
}
