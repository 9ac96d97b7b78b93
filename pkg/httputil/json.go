package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/parthk/blockvault/pkg/errors"
)

// apiError is the JSON error envelope returned by the vault API.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DoJSON performs req with client and decodes a JSON response into out
// (skipped when out is nil). Transport failures and 5xx responses come back
// wrapped as [RetryableError] so callers can pass the whole operation to
// [Retry]; 4xx responses are terminal and carry the server's error code.
func DoJSON(client *http.Client, req *http.Request, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", req.Method, req.URL.Path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Retryable(errors.New(errors.ErrCodeNetwork, "%s %s: server returned %d", req.Method, req.URL.Path, resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode response from %s", req.URL.Path)
	}
	return nil
}

// PostJSON marshals body and POSTs it to url, decoding the response into out.
func PostJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return DoJSON(client, req, out)
}

// GetJSON performs a GET against url and decodes the response into out.
func GetJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	return DoJSON(client, req, out)
}

// decodeAPIError turns a 4xx response into a structured error, preserving
// the server's machine-readable code when the body is a vault error envelope.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Code != "" {
		return errors.New(errors.Code(envelope.Code), "%s", envelope.Error)
	}

	code := errors.ErrCodeInvalidInput
	if resp.StatusCode == http.StatusNotFound {
		code = errors.ErrCodeNotFound
	}
	msg := string(bytes.TrimSpace(body))
	if msg == "" {
		msg = fmt.Sprintf("server returned %d", resp.StatusCode)
	}
	return errors.New(code, "%s", msg)
}
