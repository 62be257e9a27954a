// Package docstore resolves document names inside a single directory and
// turns the files into plain text for the question answering core. Nothing
// is cached: every call reads the file again.
package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docqa/internal/parser"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrTooLarge    = errors.New("document too large")
	ErrUnsupported = errors.New("unsupported document type")
)

// Document is the flattened text of one file.
type Document struct {
	Name     string
	Title    string
	Text     string
	Headings []string // Parser headings in document order; empty for plain text
}

// Store reads documents from Dir.
type Store struct {
	dir      string
	maxBytes int64
	opts     parser.Options
	log      *slog.Logger
}

func New(dir string, maxBytes int64, opts parser.Options, log *slog.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{dir: dir, maxBytes: maxBytes, opts: opts, log: log}
}

// Dir returns the directory documents are resolved in.
func (s *Store) Dir() string { return s.dir }

// Load parses the named document. The name is reduced to its base name so it
// can never point outside Dir.
func (s *Store) Load(name string) (*Document, error) {
	name = SanitizeName(name)
	p, err := parser.ForFile(name, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	f, info, err := s.open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tree, err := p.Parse(f, info.Size(), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	doc := &Document{Name: name, Title: tree.Title, Text: tree.Render(), Headings: tree.Headings()}
	s.log.Debug("document loaded",
		"name", name,
		"bytes", info.Size(),
		"runes", len([]rune(doc.Text)),
		"headings", len(doc.Headings),
	)
	return doc, nil
}

// ReadFile returns the raw content of a file inside Dir. path may name
// subdirectories but is cleaned and rejected if it escapes Dir.
func (s *Store) ReadFile(path string) (string, error) {
	rel, ok := confine(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	f, info, err := s.open(rel)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, info.Size())
	if _, err := f.ReadAt(buf, 0); err != nil && info.Size() > 0 {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(buf), nil
}

func (s *Store) open(rel string) (*os.File, fs.FileInfo, error) {
	full := filepath.Join(s.dir, rel)
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, nil, fmt.Errorf("open %s: %w", rel, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, rel, info.Size(), s.maxBytes)
	}
	return f, info, nil
}

// SanitizeName keeps only the base name of a document reference.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// confine cleans path and reports whether it stays below the root.
func confine(path string) (string, bool) {
	path = strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
	if path == "" {
		return "", false
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}
