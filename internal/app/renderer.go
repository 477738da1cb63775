package app

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Table geometry in millimetres on A4 portrait
const (
	rowHeight      = 10.0
	lineHeight     = 5.0
	maxCellLines   = 12
	titleHeight    = 12.0
	fontFamily     = "Arial"
	headerFontSize = 12.0
	bodyFontSize   = 10.0
	titleFontSize  = 16.0
)

// ColumnWidths are the fixed widths of Day / Date, Goal and Milestone
var ColumnWidths = [3]float64{50, 80, 60}

// HeaderCells are the labels of the table header
var HeaderCells = [3]string{"Day / Date", "Goal", "Milestone"}

// RGB is a fill colour
type RGB struct {
	R, G, B int
}

var (
	headerFill = RGB{200, 200, 200}
	rowShades  = [2]RGB{{255, 255, 255}, {235, 242, 250}}
)

// Row is one laid out table row; cell text is already Latin-1 safe
type Row struct {
	Cells  [3]string
	Header bool
	Fill   RGB
}

// Layout is the table as it will be drawn: header first, then one row per record
type Layout struct {
	Rows []Row
}

// LayoutSchedule lays records into rows, alternating shades for readability
func LayoutSchedule(records []DayRecord) Layout {
	rows := make([]Row, 0, len(records)+1)
	rows = append(rows, Row{Cells: HeaderCells, Header: true, Fill: headerFill})

	for i, rec := range records {
		rows = append(rows, Row{
			Cells: [3]string{
				SanitizeLatin1(rec.Date),
				SanitizeLatin1(rec.Goal),
				SanitizeLatin1(rec.Milestone),
			},
			Fill: rowShades[i%2],
		})
	}
	return Layout{Rows: rows}
}

// Renderer draws a Layout into a PDF document
type Renderer struct {
	// Compress toggles stream compression; tests switch it off to inspect text
	Compress bool
}

// NewRenderer returns a Renderer with compressed output
func NewRenderer() *Renderer {
	return &Renderer{Compress: true}
}

// Render produces the finished document. Content longer than one page flows
// onto further pages through the library's automatic page break.
func (r *Renderer) Render(title string, layout Layout) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(title, true)
	pdf.SetCreator("AI Scheduler", true)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(fontFamily, "B", titleFontSize)
		pdf.CellFormat(0, titleHeight, EncodeLatin1(title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	for _, row := range layout.Rows {
		if row.Header {
			pdf.SetFont(fontFamily, "B", headerFontSize)
		} else {
			pdf.SetFont(fontFamily, "", bodyFontSize)
		}
		pdf.SetFillColor(row.Fill.R, row.Fill.G, row.Fill.B)
		drawRow(pdf, row)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRow draws one bordered, filled row. Cell text wraps inside its column
// and the row grows to the tallest cell; a row never straddles a page.
func drawRow(pdf *fpdf.Fpdf, row Row) {
	var lines [3][]string
	height := rowHeight
	for i, cell := range row.Cells {
		lines[i] = splitCell(pdf, cell, ColumnWidths[i])
		if h := float64(len(lines[i])) * lineHeight; h > height {
			height = h
		}
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+height > pageHeight-bottom {
		pdf.AddPage()
	}

	left, y := pdf.GetXY()
	x := left
	for i := range row.Cells {
		pdf.Rect(x, y, ColumnWidths[i], height, "FD")
		top := y + (height-float64(len(lines[i]))*lineHeight)/2
		for j, line := range lines[i] {
			pdf.SetXY(x, top+float64(j)*lineHeight)
			pdf.CellFormat(ColumnWidths[i], lineHeight, EncodeLatin1(line), "", 0, "L", false, 0, "")
		}
		x += ColumnWidths[i]
	}
	pdf.SetXY(left, y+height)
}

// splitCell wraps Latin-1 safe text to the column width in the current font.
// Text beyond maxCellLines is cut off.
func splitCell(pdf *fpdf.Fpdf, text string, width float64) []string {
	lines := pdf.SplitText(text, width)
	if len(lines) > maxCellLines {
		lines = lines[:maxCellLines]
	}
	return lines
}

// RenderSchedule lays out and renders records in one step
func (r *Renderer) RenderSchedule(title string, records []DayRecord) ([]byte, error) {
	return r.Render(title, LayoutSchedule(records))
}

// DocumentTitle is the heading printed above the table
func DocumentTitle(task string) string {
	if task == "" {
		return "Schedule"
	}
	return "Schedule: " + task
}
