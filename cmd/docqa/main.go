// Command docqa asks questions about a document, either through a running
// docqa server or offline against a local file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docqa/internal/client"
	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/docstore"
	"github.com/dgallion1/docqa/internal/generate"
	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/qa"
)

func main() {
	config.LoadDotEnv()
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "docqa",
		Short:        "Lexical question answering over a single document",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().Bool("verbose", false, "Log pipeline details to stderr")

	root.AddCommand(newAskCmd(), newLocalCmd(), newReadCmd())
	return root
}

type remoteFlags struct {
	server     string
	configPath string
	timeout    time.Duration
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "", "docqa server URL (default "+client.DefaultServerURL+")")
	cmd.Flags().StringVar(&f.configPath, "config", "", "JSON client config with mcpServers.filesystem.url")
	cmd.Flags().DurationVar(&f.timeout, "timeout", client.DefaultTimeout, "Request timeout")
}

func (f *remoteFlags) client() (*client.Client, error) {
	url := f.server
	if url == "" && f.configPath != "" {
		u, err := client.ServerURLFromConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		url = u
	}
	if url == "" {
		url = os.Getenv("DOCQA_SERVER")
	}
	return client.New(url, f.timeout), nil
}

func newAskCmd() *cobra.Command {
	var (
		remote remoteFlags
		doc    string
		useAPI bool
	)
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Ask a running docqa server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := remote.client()
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			answer, err := c.Ask(cmd.Context(), question, doc, useAPI)
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), question, answer)
			return nil
		},
	}
	remote.register(cmd)
	cmd.Flags().StringVar(&doc, "doc", "", "Document name inside the server's document directory")
	cmd.Flags().BoolVar(&useAPI, "api", false, "Let the server refine the answer with the generator")
	return cmd
}

func newReadCmd() *cobra.Command {
	var remote remoteFlags
	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print a file from the server's document directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := remote.client()
			if err != nil {
				return err
			}
			content, err := c.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
	remote.register(cmd)
	return cmd
}

func newLocalCmd() *cobra.Command {
	var (
		file     string
		packPath string
		budget   int
		notes    bool
		useAPI   bool
		showRank int
	)
	cmd := &cobra.Command{
		Use:   "local QUESTION",
		Short: "Answer offline from a local document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cliLogger(cmd)

			pack := lang.Turkish()
			if packPath != "" {
				p, err := lang.Load(packPath)
				if err != nil {
					return err
				}
				pack = p
			}

			docs := docstore.New(filepath.Dir(file), 0, parser.Options{PDFFallbackPdftotext: true}, log)
			doc, err := docs.Load(filepath.Base(file))
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}

			opts := qa.DefaultOptions()
			if budget > 0 {
				opts.AnswerBudget = budget
			}
			opts.ConfidenceNotes = notes

			engineOpts := []qa.EngineOption{qa.WithOptions(opts), qa.WithLogger(log)}
			if useAPI {
				key := os.Getenv("ANTHROPIC_API_KEY")
				if key == "" {
					return fmt.Errorf("--api needs ANTHROPIC_API_KEY")
				}
				cfg := config.Load()
				claude := generate.NewClaudeClient(key, cfg.AnthropicModel,
					generate.WithBaseURL(cfg.AnthropicBaseURL),
					generate.WithTimeout(cfg.GenerateTimeout),
					generate.WithMaxPromptTokens(cfg.MaxPromptTokens),
					generate.WithLogger(log),
				)
				defer claude.Close()
				engineOpts = append(engineOpts, qa.WithGenerator(claude))
			}
			engine := qa.NewEngine(pack, engineOpts...)

			question := strings.Join(args, " ")
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			res := engine.Ask(ctx, qa.Request{Question: question, Document: doc.Text, UseGenerator: useAPI})

			out := cmd.OutOrStdout()
			printAnswer(out, question, res.Text)
			if showRank > 0 {
				fmt.Fprintf(out, "\nKATEGORİ: %s  ANAHTAR KELİMELER: %s\n", res.Category, strings.Join(res.Keywords, ", "))
				for i, c := range res.Candidates[:min(showRank, len(res.Candidates))] {
					fmt.Fprintf(out, "%d. bölüm %d  puan %.1f  tam eşleşme %t\n", i+1, c.Index, c.Score, c.Exact)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "izahname.txt", "Document to answer from")
	cmd.Flags().StringVar(&packPath, "lang-pack", "", "YAML language pack replacing the built-in Turkish one")
	cmd.Flags().IntVar(&budget, "budget", 0, "Answer length budget in characters")
	cmd.Flags().BoolVar(&notes, "notes", false, "Prefix low-confidence answers with a note")
	cmd.Flags().BoolVar(&useAPI, "api", false, "Refine the answer with the generator (needs ANTHROPIC_API_KEY)")
	cmd.Flags().IntVar(&showRank, "show-ranking", 0, "Print the top N scored sections")
	return cmd
}

func printAnswer(w io.Writer, question, answer string) {
	fmt.Fprintf(w, "SORU: %s\n", question)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "CEVAP:\n%s\n", answer)
}

func cliLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
