package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat means the file extension maps to no known loader.
var ErrUnsupportedFormat = errors.New("unsupported format")

var pdfColumnSplit = regexp.MustCompile(`\t|\s{2,}`)

// LoadGrid reads one input file into a raw 2-D grid of untyped cell
// strings: no header row, no coercion, original text preserved. The sheet
// name only applies to workbook formats.
func LoadGrid(path, sheet string) ([][]string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadGridBytes(blob, filepath.Ext(path), sheet)
}

// LoadGridBytes is the in-memory variant used for email attachments.
func LoadGridBytes(blob []byte, ext, sheet string) ([][]string, error) {
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm", ".xls":
		return loadWorkbookGrid(blob, sheet)
	case ".csv":
		return loadCSVGrid(blob)
	case ".html", ".htm":
		return loadHTMLGrid(blob)
	case ".pdf":
		return loadPDFGrid(blob)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadWorkbookGrid(blob []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func loadCSVGrid(blob []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(blob))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// loadHTMLGrid reads the first non-empty <table> of an HTML report body.
func loadHTMLGrid(blob []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}

	var out [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			out = append(out, cells)
		})
		return len(out) == 0
	})

	if len(out) == 0 {
		return nil, errors.New("no table found in html input")
	}
	return out, nil
}

// loadPDFGrid recovers a grid from PDF text, splitting each line on tabs
// or runs of two-plus spaces. Best effort: column alignment in PDFs is a
// typesetting artifact, not structure.
func loadPDFGrid(blob []byte) ([][]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, err
	}

	var out [][]string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			out = append(out, pdfColumnSplit.Split(strings.TrimSpace(line), -1))
		}
	}
	return out, nil
}
