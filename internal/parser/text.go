package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
)

// TextParser handles plain text files. Blank-line separated paragraphs are
// kept as they are; heading detection is left to the segmenter.
type TextParser struct{}

func (p *TextParser) Parse(r io.ReaderAt, size int64, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(sectionReader(r, size))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := doctree.NewBuilder(titleFromFilename(filename))
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				b.Paragraph(current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current.Len() > 0 {
		b.Paragraph(current.String())
	}

	return b.Tree(), nil
}
