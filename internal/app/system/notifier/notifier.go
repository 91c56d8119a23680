// Package notifier is the HTTP client for the chat/notification service.
//
// The service accepts {name, phone, message} on two endpoints:
//
//	POST /chat            fire-and-forget; the reply is drained and ignored
//	POST /register-toast  the reply's "reply" field is returned
//
// Every call is bounded by the configured timeout (10s by default) and
// carries an X-Request-ID header. The client never retries.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	chatPath          = "/chat"
	registerToastPath = "/register-toast"

	// maxErrorBody bounds how much of a non-2xx body is kept in StatusError.
	maxErrorBody = 512
)

// Message is the payload sent to both endpoints.
type Message struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type toastReply struct {
	Reply string `json:"reply"`
}

// StatusError is returned when the notifier answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("notifier returned status %d", e.Code)
	}
	return fmt.Sprintf("notifier returned status %d: %s", e.Code, e.Body)
}

// Client talks to the notifier service. It is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a Client for the service at baseURL (e.g. http://localhost:4000).
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// Chat posts msg to /chat. Any reply body is discarded.
func (c *Client) Chat(ctx context.Context, msg Message) error {
	resp, err := c.post(ctx, chatPath, msg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// RegisterToast posts msg to /register-toast and returns the reply text.
// An absent reply field yields "" with a nil error; a body that is not JSON
// is an error.
func (c *Client) RegisterToast(ctx context.Context, msg Message) (string, error) {
	resp, err := c.post(ctx, registerToastPath, msg)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out toastReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode notifier reply: %w", err)
	}
	return out.Reply, nil
}

// post sends msg and returns a 2xx response; the caller closes the body.
// The request context is cancelled only once the caller is done with the body.
func (c *Client) post(ctx context.Context, path string, msg Message) (*http.Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notifier message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build notifier request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("notifier %s: %w", path, err)
	}

	c.log.Debug("notifier call",
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		cancel()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
