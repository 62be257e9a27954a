package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/docstore"
	"github.com/dgallion1/docqa/internal/generate"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server for docqa.
type Server struct {
	router chi.Router
	engine *qa.Engine
	docs   *docstore.Store
	claude *generate.ClaudeClient
	tools  map[Tool]toolHandler
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. claude may be nil when
// no generator is configured.
func NewServer(engine *qa.Engine, docs *docstore.Store, claude *generate.ClaudeClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		engine: engine,
		docs:   docs,
		claude: claude,
		log:    log,
		cfg:    cfg,
	}
	s.tools = map[Tool]toolHandler{
		ToolDocumentQA: s.toolDocumentQA,
		ToolReadFile:   s.toolReadFile,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/mcp", s.handleMCP)
	r.Get("/api/stats/llm", s.handleLLMStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"language":  s.engine.Pack().Language().String(),
		"generator": s.engine.HasGenerator(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(s.cfg.IndexFile)
	if err != nil || info.IsDir() {
		jsonError(w, "index page not available", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, s.cfg.IndexFile)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
