// Package client talks to the LEKE API over HTTP. It implements chat.Remote.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"leke-chat/internal/chat"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 2 * time.Minute

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// chatReply is the body of any API response that reports success or an
// error. Fields the server adds beyond these, such as conversation_id, are
// ignored: their types differ between server versions.
type chatReply struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

// conversationRecord is one history item. id and timestamp are left out for
// the same reason.
type conversationRecord struct {
	Prompt      string `json:"prompt"`
	Response    string `json:"response"`
	HasDocument bool   `json:"has_document"`
}

// Health is the reply from GET /health. Timestamp is kept as sent; servers
// may omit the zone.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat posts the prompt, and the attachment if one is given, as multipart
// form data and returns the model's reply.
func (c *Client) Chat(ctx context.Context, prompt string, attachment *chat.Attachment) (string, error) {
	body, contentType, err := chatForm(prompt, attachment)
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", body)
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	status, raw, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp chatReply
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", malformed(status, err)
	}
	if !resp.Success || !isSuccess(status) {
		return "", &chat.APIError{Status: status, Message: resp.Error}
	}
	return resp.Response, nil
}

// Conversations returns the full server-side history, oldest first.
func (c *Client) Conversations(ctx context.Context) ([]chat.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations", nil)
	if err != nil {
		return nil, err
	}

	status, raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apiError(status, raw)
	}

	var records []conversationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, malformed(status, err)
	}

	entries := make([]chat.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, chat.Entry{
			Prompt:      r.Prompt,
			Response:    r.Response,
			HasDocument: r.HasDocument,
		})
	}
	return entries, nil
}

// ClearConversations deletes the server-side history.
func (c *Client) ClearConversations(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/conversations", nil)
	if err != nil {
		return err
	}

	status, raw, err := c.do(req)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return apiError(status, raw)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var health Health

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return health, err
	}

	status, raw, err := c.do(req)
	if err != nil {
		return health, err
	}
	if !isSuccess(status) {
		return health, apiError(status, raw)
	}
	if err := json.Unmarshal(raw, &health); err != nil {
		return health, malformed(status, err)
	}
	return health, nil
}

// do sends req and reads the body. Transport failures come back as
// *chat.NetworkError; the status is left for the caller to judge.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	op := req.Method + " " + req.URL.Path
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("op", op), zap.Error(err))
		return 0, nil, &chat.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &chat.NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("request done",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", resp.Header.Get("X-Request-ID")),
		zap.Duration("took", time.Since(start)),
	)
	return resp.StatusCode, raw, nil
}

func chatForm(prompt string, attachment *chat.Attachment) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, "", err
	}

	if attachment != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename="%s"`, escapeQuotes(attachment.Name)))
		contentType := attachment.MIMEType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(attachment.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// apiError builds an APIError from a non-2xx response, using the
// server's error message when the body carries one.
func apiError(status int, raw []byte) error {
	var resp chatReply
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Error != "" {
		return &chat.APIError{Status: status, Message: resp.Error}
	}
	return &chat.APIError{Status: status, Message: fmt.Sprintf("server returned %d %s", status, http.StatusText(status))}
}

func malformed(status int, err error) error {
	if !isSuccess(status) {
		return &chat.APIError{Status: status, Message: fmt.Sprintf("server returned %d %s", status, http.StatusText(status))}
	}
	return &chat.APIError{Status: status, Message: fmt.Sprintf("malformed response: %v", err)}
}
