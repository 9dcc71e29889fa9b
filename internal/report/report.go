// Package report renders focus summaries as PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/stats"
	"github.com/akyairhashvil/deepwork/internal/util"
)

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument() *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator(config.AppName, true)
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) heading(text string) {
	d.pdf.SetFont("Arial", "B", 16)
	d.pdf.Cell(0, 10, d.tr(text))
	d.pdf.Ln(12)
}

func (d *document) section(text string) {
	d.pdf.SetFont("Arial", "B", 13)
	d.pdf.Cell(0, 9, d.tr(text))
	d.pdf.Ln(9)
}

func (d *document) line(text string) {
	d.pdf.SetFont("Arial", "", 11)
	d.pdf.Cell(0, 7, d.tr(text))
	d.pdf.Ln(7)
}

// row prints a label with a right-aligned value and a proportional bar.
func (d *document) row(label, value string, share float64) {
	d.pdf.SetFont("Arial", "", 11)
	d.pdf.CellFormat(80, 7, d.tr(util.Truncate(label, 40, "...")), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(30, 7, value, "", 0, "R", false, 0, "")
	x, y := d.pdf.GetX(), d.pdf.GetY()
	width := 70 * util.ClampFloat(share, 0, 1)
	if width > 0 {
		d.pdf.SetFillColor(59, 130, 246)
		d.pdf.Rect(x+4, y+1.5, width, 4, "F")
	}
	d.pdf.Ln(7)
}

func (d *document) write(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// DailyPDF writes a one-day summary.
func DailyPDF(w io.Writer, s stats.Summary) error {
	doc := newDocument()
	daily(doc, s)
	return doc.write(w)
}

func daily(doc *document, s stats.Summary) {
	doc.heading(fmt.Sprintf("Focus Report: %s", s.Date))
	doc.line(fmt.Sprintf("Total focus: %s", util.FormatHuman(time.Duration(s.TotalSeconds)*time.Second)))
	doc.line(fmt.Sprintf("Sessions: %d", s.SessionCount))
	if s.TargetMinutes > 0 {
		status := "not reached"
		if s.TargetMet {
			status = "reached"
		}
		doc.line(fmt.Sprintf("Target: %s (%s, %.0f%%)",
			util.FormatHuman(time.Duration(s.TargetMinutes)*time.Minute), status, s.Progress()*100))
	} else {
		doc.line("Target: none set")
	}
	doc.pdf.Ln(4)

	doc.section("By task")
	if len(s.Tasks) == 0 {
		doc.line("  No sessions recorded.")
		return
	}
	for _, t := range s.Tasks {
		doc.row(t.TaskName, util.FormatHuman(time.Duration(t.Seconds)*time.Second), share(t.Seconds, s.TotalSeconds))
	}
}

// Period describes a multi-day report.
type Period struct {
	Filter string
	From   time.Time
	To     time.Time
	Days   []models.DayTotal
	Tasks  []models.TaskTotal
}

// PeriodPDF writes a report covering several days.
func PeriodPDF(w io.Writer, p Period) error {
	doc := newDocument()
	period(doc, p)
	return doc.write(w)
}

func period(doc *document, p Period) {
	last := p.To.AddDate(0, 0, -1)
	doc.heading(fmt.Sprintf("Focus Report: %s to %s", p.From.Format(stats.DateLayout), last.Format(stats.DateLayout)))

	total := 0
	active := 0
	peak := 0
	for _, d := range p.Days {
		total += d.Seconds
		if d.Seconds > 0 {
			active++
		}
		peak = max(peak, d.Seconds)
	}
	doc.line(fmt.Sprintf("Filter: %s", p.Filter))
	doc.line(fmt.Sprintf("Total focus: %s", util.FormatHuman(time.Duration(total)*time.Second)))
	doc.line(fmt.Sprintf("Active days: %d of %d", active, len(p.Days)))
	doc.pdf.Ln(4)

	doc.section("By day")
	for _, d := range p.Days {
		doc.row(d.Date, util.FormatHuman(time.Duration(d.Seconds)*time.Second), share(d.Seconds, peak))
	}
	doc.pdf.Ln(4)

	doc.section("By task")
	if len(p.Tasks) == 0 {
		doc.line("  No sessions recorded.")
		return
	}
	for _, t := range p.Tasks {
		doc.row(t.TaskName, util.FormatHuman(time.Duration(t.Seconds)*time.Second), share(t.Seconds, total))
	}
}

func share(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
