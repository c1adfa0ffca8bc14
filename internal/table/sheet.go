// internal/table/sheet.go
//
// Non-text dataset sources: .xlsx workbooks and HTML pages with a <table>.
// Both produce the same rows-of-cells shape as ParseText and go through Clean.

package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// Parse dispatches on the file extension of name.
//   - .xlsx        → ParseXLSX (first worksheet)
//   - .html, .htm  → ParseHTML (first <table>)
//   - anything else → ParseText
func Parse(name string, body []byte) ([][]string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return ParseXLSX(bytes.NewReader(body))
	case ".html", ".htm":
		return ParseHTML(bytes.NewReader(body))
	default:
		return ParseText(string(body)), nil
	}
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return Clean(rows), nil
}

// ParseHTML reads the first <table> of a page; th and td both count as cells.
func ParseHTML(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, errors.New("no <table> element")
	}

	// Only the table's own rows; tables nested inside a cell are not rows.
	var rows [][]string
	tbl.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
		})
		rows = append(rows, cells)
	})
	return Clean(rows), nil
}
