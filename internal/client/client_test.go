package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk_SendsToolCall(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mcp", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result":"Ankara'da kurulmuştur."}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/mcp/", 0)
	assert.Equal(t, srv.URL, c.BaseURL())

	answer, err := c.Ask(context.Background(), "Şirket nerede?", "izahname.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "Ankara'da kurulmuştur.", answer)

	assert.Equal(t, "document_qa", got["tool"])
	args := got["args"].(map[string]any)
	assert.Equal(t, "Şirket nerede?", args["question"])
	assert.Equal(t, "izahname.txt", args["doc_name"])
	assert.Equal(t, true, args["use_api"])
}

func TestAsk_OmitsOptionalArgs(t *testing.T) {
	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result":""}`))
	}))
	defer srv.Close()

	answer, err := New(srv.URL, 0).Ask(context.Background(), "Soru?", "", false)
	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.NotContains(t, got["args"], "doc_name")
	assert.NotContains(t, got["args"], "use_api")
}

func TestCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantAPI bool
		wantMsg string
	}{
		{"json error body", http.StatusBadRequest, `{"error":"unknown tool: \"x\""}`, true, `unknown tool: "x"`},
		{"plain error body", http.StatusBadGateway, "upstream down\n", true, "upstream down"},
		{"missing result", http.StatusOK, `{}`, false, "missing result"},
		{"not json", http.StatusOK, `<html>`, false, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, 0).ReadFile(context.Background(), "a.txt")
			require.Error(t, err)
			var apiErr *APIError
			assert.Equal(t, tt.wantAPI, errors.As(err, &apiErr))
			if tt.wantAPI {
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			} else {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	var unhealthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if unhealthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	assert.NoError(t, c.Health(context.Background()))
	unhealthy.Store(true)
	assert.Error(t, c.Health(context.Background()))
}

func TestServerURLFromConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"mcpServers":{"filesystem":{"url":"http://qa.example:8000/mcp"}}}`), 0o644))

	u, err := ServerURLFromConfig(good)
	require.NoError(t, err)
	assert.Equal(t, "http://qa.example:8000/mcp", u)
	assert.Equal(t, "http://qa.example:8000", New(u, 0).BaseURL())

	missing := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(missing, []byte(`{"mcpServers":{"git":{"url":"x"}}}`), 0o644))
	_, err = ServerURLFromConfig(missing)
	assert.ErrorContains(t, err, "mcpServers.filesystem.url")

	_, err = ServerURLFromConfig(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, DefaultServerURL, normalizeBaseURL(""))
	assert.Equal(t, "http://h:1", normalizeBaseURL(" http://h:1/ "))
	assert.Equal(t, "http://h:1/base", normalizeBaseURL("http://h:1/base/mcp"))
}
