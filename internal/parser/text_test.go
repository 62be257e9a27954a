package parser

import (
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	tree := parseString(t, &TextParser{}, input, "notes.txt")

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 untitled child, got %d", len(tree.Children))
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got := tree.Render(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	tree := parseString(t, &TextParser{}, "", "empty.txt")
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
	if tree.Render() != "" {
		t.Errorf("expected empty render, got %q", tree.Render())
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	tree := parseString(t, &TextParser{}, "Hello world", "dir/single.txt")
	if tree.Title != "single" {
		t.Errorf("expected title %q, got %q", "single", tree.Title)
	}
	if got := tree.Render(); got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestTextParser_BlankLineVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"multiple blank lines", "Para one.\n\n\n\nPara two."},
		{"whitespace-only line", "Para one.\n   \nPara two."},
		{"crlf", "Para one.\r\n\r\nPara two.\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseString(t, &TextParser{}, tt.input, "gaps.txt")
			if got := tree.Render(); got != "Para one.\n\nPara two." {
				t.Errorf("expected normalized paragraphs, got %q", got)
			}
		})
	}
}
