package httpstep

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCall_GETSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	resp, err := Call(context.Background(), Request{Method: "GET", URL: server.URL})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	require.Equal(t, "ok", body["message"])
}

func TestCall_POSTSendsBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.Header.Get("X-Token"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, `{"hello":"world"}`, string(raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	resp, err := Call(context.Background(), Request{
		Method:  "POST",
		URL:     server.URL,
		Headers: map[string]string{"X-Token": "secret"},
		Body:    `{"hello":"world"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCall_DefaultsToGET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
	}))
	defer server.Close()

	_, err := Call(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)
}

func TestCall_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Call(ctx, Request{URL: "http://127.0.0.1:0"})
	require.Error(t, err)
}
