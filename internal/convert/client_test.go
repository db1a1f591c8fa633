package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(url, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestConvert_Success(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare string", `"# 第一章\n正文"`, "# 第一章\n正文"},
		{"markdown field", `{"markdown":"第一条"}`, "第一条"},
		{"md_content field", `{"md_content":"第二条"}`, "第二条"},
		{"text field", `{"text":"plain"}`, "plain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			md, err := newTestClient(srv.URL).Convert(context.Background(), []byte("%PDF"), "a.pdf")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if md != tc.want {
				t.Errorf("expected %q, got %q", tc.want, md)
			}
		})
	}
}

func TestConvert_SendsMultipartForm(t *testing.T) {
	var gotName, gotData, gotID, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName = hdr.Filename
		gotData = string(data)
		gotID = r.FormValue("request_id")
		gotFormat = r.FormValue("output_format")
		io.WriteString(w, `"ok"`)
	}))
	defer srv.Close()

	ctx := WithRequestID(context.Background(), "req-42")
	if _, err := newTestClient(srv.URL).Convert(ctx, []byte("data"), "规章.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "规章.pdf" || gotData != "data" {
		t.Errorf("expected file 规章.pdf with data, got %q %q", gotName, gotData)
	}
	if gotID != "req-42" {
		t.Errorf("expected request_id %q, got %q", "req-42", gotID)
	}
	if gotFormat != "markdown" {
		t.Errorf("expected output_format markdown, got %q", gotFormat)
	}
}

func TestConvert_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"markdown":"done"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	md, err := c.Convert(context.Background(), []byte("x"), "a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md != "done" {
		t.Errorf("expected %q, got %q", "done", md)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
	snap := c.Stats.Snapshot()
	if snap.Calls != 3 || snap.Failures != 2 {
		t.Errorf("expected 3 calls with 2 failures, got %+v", snap)
	}
}

func TestConvert_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var waits int
	c.backoff = func(int) time.Duration {
		waits++
		return 0
	}
	_, err := c.Convert(context.Background(), []byte("x"), "a.pdf")
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if n := calls.Load(); n != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, n)
	}
	if waits != MaxRetries-1 {
		t.Errorf("expected %d backoff waits, got %d", MaxRetries-1, waits)
	}
}

func TestConvert_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad file", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Convert(context.Background(), []byte("x"), "a.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRetryable(err) {
		t.Errorf("expected non-retryable error, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestConvert_NoMarkdownInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Convert(context.Background(), []byte("x"), "a.pdf"); err == nil {
		t.Fatal("expected error for response without markdown")
	}
}

func TestIsRetryable(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &RetryableError{StatusCode: 502})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("expected plain error not to be retryable")
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := min(time.Duration(1<<attempt)*time.Second, 30*time.Second)
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: expected backoff in [%s, %s), got %s", attempt, base, base+base/2, d)
		}
	}
}
