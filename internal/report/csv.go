package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// csvHeader is the column layout for CSV reports, one row per crawled page.
var csvHeader = []string{
	"url", "status", "title", "meta_description", "first_heading",
	"outbound_links", "images", "issues",
}

// CSVWriter outputs one row per crawled page, for spreadsheet triage of
// large sites where the text and markdown formats get unwieldy.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's pages as CSV rows.
// The byte count is approximate: encoding/csv does not report how many
// bytes it wrote, so the count is reconstructed from the rows.
func (w *CSVWriter) Write(report *model.AuditReport) (int, error) {
	cw := csv.NewWriter(w.output)

	total := 0
	write := func(row []string) error {
		if err := cw.Write(row); err != nil {
			return err
		}
		for _, cell := range row {
			total += len(cell) + 1
		}
		return nil
	}

	if err := write(csvHeader); err != nil {
		return total, err
	}

	for _, page := range report.Pages {
		row := []string{
			page.URL,
			strconv.Itoa(page.Status),
			page.Title,
			page.MetaDescription,
			page.FirstHeading,
			strconv.Itoa(len(page.OutboundLinks)),
			strconv.Itoa(len(page.Images)),
			strings.Join(page.Issues, "; "),
		}
		if err := write(row); err != nil {
			return total, err
		}
	}

	cw.Flush()
	return total, cw.Error()
}
