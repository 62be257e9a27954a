package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docqa/internal/api"
	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/docstore"
	"github.com/dgallion1/docqa/internal/generate"
	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/qa"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	pack := lang.Turkish()
	if cfg.LanguagePack != "" {
		p, err := lang.Load(cfg.LanguagePack)
		if err != nil {
			log.Error("failed to load language pack", "path", cfg.LanguagePack, "error", err)
			os.Exit(1)
		}
		pack = p
	}

	opts := qa.DefaultOptions()
	opts.AnswerBudget = cfg.AnswerBudget
	opts.GenerateTopK = cfg.GenerateTopK
	opts.ConfidenceNotes = cfg.ConfidenceNotes

	engineOpts := []qa.EngineOption{qa.WithOptions(opts), qa.WithLogger(log)}

	// The generator is optional; without a key every answer is local.
	var claude *generate.ClaudeClient
	if cfg.GeneratorEnabled() {
		claude = generate.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel,
			generate.WithBaseURL(cfg.AnthropicBaseURL),
			generate.WithTimeout(cfg.GenerateTimeout),
			generate.WithMaxConcurrent(cfg.MaxConcurrentGenerate),
			generate.WithMaxPromptTokens(cfg.MaxPromptTokens),
			generate.WithLogger(log.With("component", "generate")),
		)
		engineOpts = append(engineOpts, qa.WithGenerator(claude))
	}

	engine := qa.NewEngine(pack, engineOpts...)
	docs := docstore.New(cfg.DocumentDir, cfg.MaxDocumentBytes,
		parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		log.With("component", "docstore"),
	)

	srv := api.NewServer(engine, docs, claude, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if claude != nil {
			claude.Close()
		}
	}()

	log.Info("starting docqa",
		"port", cfg.Port,
		"document_dir", cfg.DocumentDir,
		"default_document", cfg.DefaultDocument,
		"language", pack.Language().String(),
		"generator", cfg.GeneratorEnabled(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
