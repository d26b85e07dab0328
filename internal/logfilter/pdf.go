package logfilter

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"hotel-console-backend/internal/model"
)

// column widths in mm, matching Header.
var pdfWidths = []float64{30, 16, 42, 16, 30, 30, 30, 30, 22, 18}

// ExportPDF writes records as a landscape A4 table followed by the summary.
func (e *Engine) ExportPDF(w io.Writer, records []model.VehicleActivity, summary Summary) ([]Warning, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	now := e.now()
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Parking Log", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generated "+e.FormatTimestamp(now), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range Header {
			pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	var warnings []Warning
	for _, r := range records {
		row, warn := e.row(r, now)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		for i, cell := range row {
			pdf.CellFormat(pdfWidths[i], 6, fitCell(pdf, tr(cell), pdfWidths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Entries: %d", summary.Count), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Revenue: %s %.2f", e.currency, summary.TotalRevenue), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Currently Parked: %d", summary.CurrentlyParked), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return warnings, fmt.Errorf("logfilter: render pdf: %w", err)
	}
	return warnings, nil
}

// fitCell shortens s with a trailing ellipsis until it fits a cell of width
// mm in the current font. s is already in the single-byte PDF encoding.
func fitCell(pdf *gofpdf.Fpdf, s string, width float64) string {
	avail := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= avail {
		return s
	}
	const ellipsis = "..."
	for n := len(s) - 1; n > 0; n-- {
		if cut := s[:n] + ellipsis; pdf.GetStringWidth(cut) <= avail {
			return cut
		}
	}
	return ""
}
