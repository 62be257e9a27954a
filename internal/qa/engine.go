// Package qa answers questions against a single document using lexical
// retrieval: sections are scored against the question's keywords and the best
// ones are assembled into a bounded answer.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/dgallion1/docqa/internal/lang"
	"github.com/dgallion1/docqa/internal/segment"
	"github.com/dgallion1/docqa/internal/textnorm"
)

// Generator synthesizes an answer from the question and the best passages.
// Any error makes the engine fall back to the locally assembled answer.
type Generator interface {
	Generate(ctx context.Context, question string, passages []string) (string, error)
}

// Request is one question against one document text.
type Request struct {
	Question     string
	Document     string
	UseGenerator bool
}

// Result is the answer plus what led to it.
type Result struct {
	Text       string      `json:"text"`
	Category   Category    `json:"category"`
	Keywords   []string    `json:"keywords"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Generated  bool        `json:"generated"`
	Found      bool        `json:"found"`
}

// Engine is stateless between calls and safe for concurrent use.
type Engine struct {
	pack      *lang.Pack
	norm      *textnorm.Normalizer
	seg       *segment.Segmenter
	scorer    *Scorer
	assembler *Assembler
	opts      Options
	gen       Generator
	log       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithGenerator enables the generative path for requests that ask for it.
func WithGenerator(g Generator) EngineOption {
	return func(e *Engine) { e.gen = g }
}

func WithOptions(opts Options) EngineOption {
	return func(e *Engine) { e.opts = opts }
}

func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

func NewEngine(pack *lang.Pack, opts ...EngineOption) *Engine {
	if pack == nil {
		pack = lang.Turkish()
	}
	e := &Engine{
		pack: pack,
		opts: DefaultOptions(),
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	e.norm = textnorm.New(pack)
	e.seg = segment.New(pack)
	e.scorer = NewScorer(e.norm, e.opts)
	e.assembler = NewAssembler(e.norm, e.seg, e.scorer, e.opts)
	return e
}

// Pack returns the language pack the engine answers in.
func (e *Engine) Pack() *lang.Pack { return e.pack }

// HasGenerator reports whether a generator is configured.
func (e *Engine) HasGenerator() bool { return e.gen != nil }

// Answer returns the answer text for question against document. It never
// fails; every outcome is a string.
func (e *Engine) Answer(ctx context.Context, question, document string) string {
	return e.Ask(ctx, Request{Question: question, Document: document}).Text
}

// Ask runs the full pipeline: classify, extract keywords, segment, score,
// then either delegate to the generator or assemble locally.
func (e *Engine) Ask(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("qa panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res = Result{Text: e.pack.Messages.InternalError}
		}
	}()

	if strings.TrimSpace(req.Question) == "" {
		return Result{Text: e.pack.Messages.EmptyQuestion, Category: Generic}
	}

	q := ParseQuestion(e.norm, req.Question)
	res = Result{Category: q.Category, Keywords: q.Keywords}

	sections := e.seg.SplitSections(req.Document)
	ranked := e.scorer.ScoreSections(sections, q)
	res.Candidates = ranked

	e.log.Debug("qa scored",
		"category", q.Category,
		"keywords", len(q.Keywords),
		"sections", len(sections),
		"candidates", len(ranked),
	)

	if len(ranked) == 0 {
		res.Text = e.pack.Messages.NotFound
		return res
	}
	res.Found = true

	if req.UseGenerator && e.gen != nil {
		if text, ok := e.generate(ctx, q, ranked); ok {
			res.Text = text
			res.Generated = true
			return res
		}
	}

	res.Text = e.assembler.Assemble(q, ranked)
	return res
}

func (e *Engine) generate(ctx context.Context, q *Question, ranked []Candidate) (string, bool) {
	k := min(e.opts.GenerateTopK, len(ranked))
	if k <= 0 {
		return "", false
	}
	passages := make([]string, k)
	for i := range k {
		passages[i] = ranked[i].Text
	}

	text, err := e.gen.Generate(ctx, q.Raw, passages)
	if err != nil {
		e.log.Warn("generator failed, using local answer", "error", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.log.Warn("generator returned empty answer, using local answer")
		return "", false
	}
	return text, true
}
