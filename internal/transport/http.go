// Package transport sends HTTP requests and classifies how they fail.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vnykmshr/apiprobe/internal/domain"
	"github.com/vnykmshr/apiprobe/internal/util"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// HTTP is a domain.Transport backed by net/http.
type HTTP struct {
	client    *http.Client
	userAgent string
}

// NewHTTP creates a transport. Per-request timeouts come from domain.Request.Timeout.
func NewHTTP(userAgent string) *HTTP {
	return &HTTP{
		client:    &http.Client{},
		userAgent: userAgent,
	}
}

// Do performs the request. See domain.Transport for the error contract.
func (h *HTTP) Do(ctx context.Context, req domain.Request) (*domain.Response, error) {
	httpReq, cancel, err := h.build(ctx, req)
	if err != nil {
		return nil, &SetupError{Err: err}
	}
	defer cancel()

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, &NoResponseError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NoResponseError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	out := &domain.Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp.StatusCode),
		Header:     resp.Header,
		Body:       body,
		Data:       decodeBody(body),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &StatusError{Response: out}
	}

	return out, nil
}

// build turns a domain request into an *http.Request bound to its own timeout.
func (h *HTTP) build(ctx context.Context, req domain.Request) (*http.Request, context.CancelFunc, error) {
	if _, err := util.ParseRequestURL(req.URL); err != nil {
		return nil, nil, err
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = domain.DefaultMethod
	}

	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	if h.userAgent != "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, cancel, nil
}

// decodeBody returns parsed JSON when possible and the raw text otherwise.
func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return data
}
