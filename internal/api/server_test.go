package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/docstore"
	"github.com/dgallion1/docqa/internal/generate"
	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/qa"
)

const izahname = "BAŞLIK BİR\n\nAnkara'da 2020 yılında kurulmuştur.\n\nBAŞLIK İKİ\n\nİstanbul'da faaliyet göstermektedir.\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	dir    string
	server *Server
}

func newTestEnv(t *testing.T, claude *generate.ClaudeClient) *testEnv {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"izahname.txt":     izahname,
		"notes/sample.txt": "örnek içerik",
		"bad.docx":         "not a zip archive",
	}
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	cfg := config.Config{
		DocumentDir:     dir,
		DefaultDocument: "izahname.txt",
		IndexFile:       filepath.Join(dir, "index.html"),
		CORSOrigins:     []string{"*"},
	}
	log := discardLogger()
	engineOpts := []qa.EngineOption{qa.WithLogger(log)}
	if claude != nil {
		engineOpts = append(engineOpts, qa.WithGenerator(claude))
	}
	engine := qa.NewEngine(lang.Turkish(), engineOpts...)
	docs := docstore.New(dir, 1<<20, parser.Options{}, log)
	return &testEnv{dir: dir, server: NewServer(engine, docs, claude, log, cfg)}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Origin", "https://ui.example")
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp mcpResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Result
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder, code int) string {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp["error"]
}

func fakeClaude(t *testing.T, status int, body string) (*generate.ClaudeClient, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	c := generate.NewClaudeClient("test-key", "test-model",
		generate.WithBaseURL(srv.URL),
		generate.WithRetryWait(time.Millisecond),
		generate.WithLogger(discardLogger()),
	)
	t.Cleanup(c.Close)
	return c, &calls
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "tr", body["language"])
	assert.Equal(t, false, body["generator"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestDocumentQA_DefaultDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"Şirket nerede kurulmuştur?"}}`)
	assert.Equal(t, "BAŞLIK BİR\n\nAnkara'da 2020 yılında kurulmuştur.", decodeResult(t, w))
}

func TestDocumentQA_Replies(t *testing.T) {
	env := newTestEnv(t, nil)
	msgs := lang.Turkish().Messages

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not found", `{"tool":"document_qa","args":{"question":"Temettü politikası nedir?"}}`, msgs.NotFound},
		{"missing document", `{"tool":"document_qa","args":{"question":"Şirket nerede?","doc_name":"yok.txt"}}`, "Doküman bulunamadı: yok.txt"},
		{"traversal reduced to base", `{"tool":"document_qa","args":{"question":"Şirket nerede?","doc_name":"../../etc/passwd.txt"}}`, "Doküman bulunamadı: passwd.txt"},
		{"empty question", `{"tool":"document_qa","args":{"question":"   "}}`, msgs.EmptyQuestion},
		{"null args", `{"tool":"document_qa","args":null}`, msgs.EmptyQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeResult(t, env.do(t, http.MethodPost, "/mcp", tt.body)))
		})
	}
}

func TestDocumentQA_UseAPI(t *testing.T) {
	body := `{"content":[{"type":"text","text":"Şirket 2020 yılında Ankara'da kurulmuştur."}]}`
	claude, calls := fakeClaude(t, http.StatusOK, body)
	env := newTestEnv(t, claude)

	w := env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"Şirket nerede kurulmuştur?","use_api":true}}`)
	assert.Equal(t, "Şirket 2020 yılında Ankara'da kurulmuştur.", decodeResult(t, w))
	assert.EqualValues(t, 1, calls.Load())

	// Without use_api the generator stays idle.
	w = env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"Şirket nerede kurulmuştur?"}}`)
	assert.Equal(t, "BAŞLIK BİR\n\nAnkara'da 2020 yılında kurulmuştur.", decodeResult(t, w))
	assert.EqualValues(t, 1, calls.Load())

	stats := env.do(t, http.MethodGet, "/api/stats/llm", "")
	require.Equal(t, http.StatusOK, stats.Code)
	var payload struct {
		Model string                 `json:"model"`
		Stats generate.StatsSnapshot `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&payload))
	assert.Equal(t, "test-model", payload.Model)
	assert.Equal(t, 1, payload.Stats.Count)
}

func TestDocumentQA_GeneratorFailureFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{"server error retried once", http.StatusInternalServerError, `{"error":"boom"}`, 2},
		{"no answer marker", http.StatusOK, `{"content":[{"type":"text","text":"YANIT_YOK"}]}`, 1},
		{"bad request not retried", http.StatusBadRequest, `{"error":"bad"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claude, calls := fakeClaude(t, tt.status, tt.body)
			env := newTestEnv(t, claude)

			w := env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"Şirket nerede kurulmuştur?","use_api":true}}`)
			assert.Equal(t, "BAŞLIK BİR\n\nAnkara'da 2020 yılında kurulmuştur.", decodeResult(t, w))
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestReadFile(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/mcp", `{"tool":"read_file","args":{"path":"notes/sample.txt"}}`)
	assert.Equal(t, "örnek içerik", decodeResult(t, w))

	for _, p := range []string{"yok.txt", "../izahname.txt", "/etc/passwd"} {
		w := env.do(t, http.MethodPost, "/mcp", `{"tool":"read_file","args":{"path":"`+p+`"}}`)
		assert.Equal(t, "Dosya bulunamadı", decodeResult(t, w), "path %q", p)
	}
}

func TestMCP_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	msg := decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"tool":"delete_everything","args":{}}`), http.StatusBadRequest)
	assert.Contains(t, msg, "unknown tool")

	msg = decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"tool":`), http.StatusBadRequest)
	assert.Contains(t, msg, "invalid request body")

	decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"args":{}}`), http.StatusBadRequest)

	msg = decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":42}}`), http.StatusBadRequest)
	assert.Contains(t, msg, "invalid arguments")

	msg = decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"x","doc_name":"arsiv.zip"}}`), http.StatusBadRequest)
	assert.Contains(t, msg, "unsupported")

	msg = decodeError(t, env.do(t, http.MethodPost, "/mcp", `{"tool":"document_qa","args":{"question":"Şirket nerede?","doc_name":"bad.docx"}}`), http.StatusInternalServerError)
	assert.Equal(t, "tool failed: internal error", msg)

	w := env.do(t, http.MethodGet, "/mcp", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestLLMStats_WithoutGenerator(t *testing.T) {
	env := newTestEnv(t, nil)
	decodeError(t, env.do(t, http.MethodGet, "/api/stats/llm", ""), http.StatusServiceUnavailable)
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, nil)
	decodeError(t, env.do(t, http.MethodGet, "/", ""), http.StatusNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "index.html"), []byte("<h1>docqa</h1>"), 0o644))
	w := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>docqa</h1>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}
