package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
)

// csvBatchSize is the number of data rows per section.
const csvBatchSize = 20

// CSVParser handles CSV files. Each row becomes a "header: value" line so a
// question naming a column matches the row's values.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.ReaderAt, size int64, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(sectionReader(r, size))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return tree, nil
	}

	headers := records[0]
	dataRows := records[1:]
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var text strings.Builder
		for _, row := range dataRows[i:end] {
			var cells []string
			for j, cell := range row {
				if cell = strings.TrimSpace(cell); cell == "" {
					continue
				}
				if j < len(headers) && headers[j] != "" {
					cells = append(cells, headers[j]+": "+cell)
				} else {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				text.WriteString(strings.Join(cells, ", "))
				text.WriteString(".\n")
			}
		}

		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Satır %d-%d:", i+2, end+1), // 1-indexed, skip header
			Text:  strings.TrimSpace(text.String()),
		})
	}

	return tree, nil
}
