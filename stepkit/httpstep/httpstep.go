// Package httpstep is a reference step procedure for calling an external
// HTTP endpoint from a flow. A flow calls Call directly, the same way it
// calls any other plain Go function; nothing about it is specific to this
// runtime beyond respecting ctx for cancellation.
package httpstep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request describes an HTTP call a flow wants made.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Response is what the caller gets back.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// DefaultClient is the client Call sends every request through. 30s covers
// the slow external services a flow is likely to hit without hanging a node
// forever.
var DefaultClient = &http.Client{Timeout: 30 * time.Second}

// Call performs req and returns the response, or an error if the request
// could not be made or ctx was cancelled first. Non-2xx responses are not
// treated as errors: the caller inspects StatusCode itself, the same way
// the underlying HTTP transport does.
func Call(ctx context.Context, req Request) (Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = bytes.NewBufferString(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("httpstep: building request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := DefaultClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("httpstep: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("httpstep: reading response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(respBody),
	}, nil
}
