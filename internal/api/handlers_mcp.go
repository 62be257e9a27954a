package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgallion1/docqa/internal/docstore"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/go-chi/chi/v5/middleware"
)

// Tool names a callable on POST /mcp.
type Tool string

const (
	ToolDocumentQA Tool = "document_qa"
	ToolReadFile   Tool = "read_file"
)

const maxMCPBodyBytes = 1 << 20

// errBadArgs marks caller mistakes; they map to 400.
var errBadArgs = errors.New("invalid arguments")

type toolHandler func(ctx context.Context, log *slog.Logger, args json.RawMessage) (string, error)

type mcpRequest struct {
	Tool Tool            `json:"tool"`
	Args json.RawMessage `json:"args"`
}

type mcpResponse struct {
	Result string `json:"result"`
}

type documentQAArgs struct {
	Question string `json:"question"`
	DocName  string `json:"doc_name"`
	UseAPI   bool   `json:"use_api"`
}

type readFileArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMCPBodyBytes)

	var req mcpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[req.Tool]
	if !ok {
		jsonError(w, fmt.Sprintf("unknown tool: %q", req.Tool), http.StatusBadRequest)
		return
	}

	log := s.log.With(
		"request_id", middleware.GetReqID(r.Context()),
		"tool", string(req.Tool),
	)

	result, err := handler(r.Context(), log, req.Args)
	if err != nil {
		if errors.Is(err, errBadArgs) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("tool failed", "error", err)
		jsonError(w, "tool failed: internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(mcpResponse{Result: result})
}

// decodeArgs treats absent or null args as an empty object.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return nil
}

func (s *Server) toolDocumentQA(ctx context.Context, log *slog.Logger, raw json.RawMessage) (string, error) {
	var args documentQAArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	name := strings.TrimSpace(args.DocName)
	if name == "" {
		name = s.cfg.DefaultDocument
	}
	log = log.With("doc", name)

	doc, err := s.docs.Load(name)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		log.Info("document not found")
		return fmt.Sprintf(s.engine.Pack().Messages.DocumentNotFound, docstore.SanitizeName(name)), nil
	case errors.Is(err, docstore.ErrUnsupported), errors.Is(err, docstore.ErrTooLarge):
		return "", fmt.Errorf("%w: %v", errBadArgs, err)
	case err != nil:
		return "", fmt.Errorf("load document: %w", err)
	}

	res := s.engine.Ask(ctx, qa.Request{
		Question:     args.Question,
		Document:     doc.Text,
		UseGenerator: args.UseAPI,
	})
	log.Info("question answered",
		"category", res.Category,
		"keywords", len(res.Keywords),
		"candidates", len(res.Candidates),
		"found", res.Found,
		"generated", res.Generated,
	)
	return res.Text, nil
}

func (s *Server) toolReadFile(_ context.Context, log *slog.Logger, raw json.RawMessage) (string, error) {
	var args readFileArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	content, err := s.docs.ReadFile(args.Path)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		log.Info("file not found", "path", args.Path)
		return s.engine.Pack().Messages.FileNotFound, nil
	case errors.Is(err, docstore.ErrTooLarge):
		return "", fmt.Errorf("%w: %v", errBadArgs, err)
	case err != nil:
		return "", fmt.Errorf("read file: %w", err)
	}
	return content, nil
}
