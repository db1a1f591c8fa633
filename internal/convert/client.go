package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Client posts documents to a MinerU-style conversion service and returns
// the markdown it produces.
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
	backoff    func(attempt int) time.Duration

	Stats *Stats
}

func NewClient(url string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		backoff: Backoff,
		Stats:   NewStats(time.Hour),
	}
}

type requestIDKey struct{}

// WithRequestID attaches the caller's request ID, forwarded as the
// request_id form field.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id attached by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Convert sends data to the service, retrying transient failures.
func (c *Client) Convert(ctx context.Context, data []byte, filename string) (string, error) {
	var md string
	var lastErr error
	for attempt := range MaxRetries {
		md, lastErr = c.convertOnce(ctx, data, filename)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			break
		}
		c.log.Warn("retryable conversion error", "filename", filename, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return md, lastErr
}

func (c *Client) convertOnce(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.WriteField("request_id", RequestIDFrom(ctx)); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	if err := mw.WriteField("output_format", "markdown"); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.Stats.Record(time.Since(start).Milliseconds(), true)
		return "", fmt.Errorf("conversion service: %w", err)
	}
	defer resp.Body.Close()
	c.Stats.Record(time.Since(start).Milliseconds(), resp.StatusCode != http.StatusOK)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("conversion service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return decodeMarkdown(respBody)
}

// decodeMarkdown accepts either a bare JSON string or an object carrying
// the text under "markdown", "md_content" or "text".
func decodeMarkdown(body []byte) (string, error) {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s, nil
	}

	var obj struct {
		Markdown  *string `json:"markdown"`
		MDContent *string `json:"md_content"`
		Text      *string `json:"text"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", fmt.Errorf("decode response: %w (raw: %s)", err, truncate(string(body), 200))
	}
	switch {
	case obj.Markdown != nil:
		return *obj.Markdown, nil
	case obj.MDContent != nil:
		return *obj.MDContent, nil
	case obj.Text != nil:
		return *obj.Text, nil
	}
	return "", fmt.Errorf("decode response: no markdown in %s", truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
