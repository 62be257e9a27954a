// Package lang holds the language-specific data the question answering core
// depends on: stop words, suffixes, abbreviations, question triggers, category
// patterns and the user-facing reply strings.
package lang

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed turkish.yaml
var turkishYAML []byte

// Messages are the fixed replies returned to callers.
type Messages struct {
	NotFound         string `yaml:"not_found"`
	DocumentNotFound string `yaml:"document_not_found"` // printf format, one %s for the name
	FileNotFound     string `yaml:"file_not_found"`
	EmptyQuestion    string `yaml:"empty_question"`
	LowConfidence    string `yaml:"low_confidence"`
	PartialMatch     string `yaml:"partial_match"`
	InternalError    string `yaml:"internal_error"`
}

// Pack is an immutable language pack. Construct it with Parse, Load or
// Turkish; the exported fields mirror the YAML file and must not be mutated
// after construction.
type Pack struct {
	Name          string              `yaml:"name"`
	Tag           string              `yaml:"tag"`
	StopWords     []string            `yaml:"stop_words"`
	Suffixes      []string            `yaml:"suffixes"`
	MaxStemPasses int                 `yaml:"max_stem_passes"`
	MinStemLength int                 `yaml:"min_stem_length"`
	Abbreviations []string            `yaml:"abbreviations"`
	Triggers      map[string][]string `yaml:"triggers"`
	Patterns      map[string][]string `yaml:"patterns"`
	Messages      Messages            `yaml:"messages"`

	language language.Tag
	stop     map[string]struct{}
	compiled map[string][]*regexp.Regexp
}

var turkish = sync.OnceValue(func() *Pack {
	p, err := Parse(turkishYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded turkish language pack: %v", err))
	}
	return p
})

// Turkish returns the embedded default pack. The same instance is shared by
// all callers.
func Turkish() *Pack {
	return turkish()
}

// Load reads a pack from a YAML file.
func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language pack: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("language pack %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a pack from YAML.
func Parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := p.prepare(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pack) prepare() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	tag, err := language.Parse(p.Tag)
	if err != nil {
		return fmt.Errorf("invalid tag %q: %w", p.Tag, err)
	}
	p.language = tag

	if p.MaxStemPasses <= 0 {
		p.MaxStemPasses = 3
	}
	if p.MinStemLength <= 0 {
		p.MinStemLength = 3
	}

	p.stop = make(map[string]struct{}, len(p.StopWords))
	for _, w := range p.StopWords {
		w = strings.TrimSpace(w)
		if w != "" {
			p.stop[w] = struct{}{}
		}
	}

	suffixes := make([]string, 0, len(p.Suffixes))
	for _, s := range p.Suffixes {
		if s = strings.TrimSpace(s); s != "" {
			suffixes = append(suffixes, s)
		}
	}
	sort.SliceStable(suffixes, func(i, j int) bool {
		return utf8.RuneCountInString(suffixes[i]) > utf8.RuneCountInString(suffixes[j])
	})
	p.Suffixes = suffixes

	p.compiled = make(map[string][]*regexp.Regexp, len(p.Patterns))
	for category, exprs := range p.Patterns {
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return fmt.Errorf("pattern for %s: %w", category, err)
			}
			p.compiled[category] = append(p.compiled[category], re)
		}
	}

	if p.Messages.NotFound == "" {
		return fmt.Errorf("messages.not_found is required")
	}
	if p.Messages.DocumentNotFound == "" {
		p.Messages.DocumentNotFound = "document not found: %s"
	}
	if p.Messages.FileNotFound == "" {
		p.Messages.FileNotFound = "file not found"
	}
	if p.Messages.EmptyQuestion == "" {
		p.Messages.EmptyQuestion = p.Messages.NotFound
	}
	if p.Messages.InternalError == "" {
		p.Messages.InternalError = "internal error"
	}
	return nil
}

// Language returns the parsed BCP-47 tag used for case mapping.
func (p *Pack) Language() language.Tag { return p.language }

// IsStopWord reports whether w (already lowercased) is in the stop list.
func (p *Pack) IsStopWord(w string) bool {
	_, ok := p.stop[w]
	return ok
}

// PatternsFor returns the compiled candidate patterns for a category.
func (p *Pack) PatternsFor(category string) []*regexp.Regexp {
	return p.compiled[category]
}

// TriggersFor returns the question trigger phrases for a category.
func (p *Pack) TriggersFor(category string) []string {
	return p.Triggers[category]
}
