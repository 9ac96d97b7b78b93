package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	vaulterrors "github.com/parthk/blockvault/pkg/errors"
)

func TestRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_RetriesRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_StopsOnTerminalError(t *testing.T) {
	terminal := errors.New("bad input")
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Retryable(errors.New("always failing"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Minute, func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	var out map[string]string
	if err := GetJSON(context.Background(), server.Client(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON error: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("unexpected response: %v", out)
	}
}

func TestDoJSON_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := GetJSON(context.Background(), server.Client(), server.URL, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Errorf("5xx should be retryable, got %v", err)
	}
}

func TestDoJSON_ClientErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "file not found",
			"code":  "FILE_NOT_FOUND",
		})
	}))
	defer server.Close()

	err := GetJSON(context.Background(), server.Client(), server.URL, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RetryableError
	if errors.As(err, &re) {
		t.Error("4xx should not be retryable")
	}
	if !vaulterrors.Is(err, vaulterrors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND code, got %v", err)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer server.Close()

	var out map[string]string
	err := PostJSON(context.Background(), server.Client(), server.URL, map[string]string{"msg": "hi"}, &out)
	if err != nil {
		t.Fatalf("PostJSON error: %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("unexpected response: %v", out)
	}
}
