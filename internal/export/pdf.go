package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
)

var (
	rgbIndigo = [3]int{79, 70, 229}
	rgbSlate  = [3]int{51, 65, 85}
	rgbGroup  = [3]int{238, 242, 255}
)

const (
	pdfFont   = "Helvetica"
	pdfLineH  = 5.0
	pdfMargin = 14.0
)

// pdfDoc wraps fpdf with the latin-1 translator the core fonts need.
type pdfDoc struct {
	*fpdf.Fpdf
	tr    func(string) string
	width float64 // usable width between margins
}

func newPDFDoc() *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 35, pdfMargin)
	pdf.SetAutoPageBreak(true, 20)
	w, _ := pdf.GetPageSize()
	d := &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: w - 2*pdfMargin}

	pdf.SetHeaderFunc(func() {
		pw, _ := pdf.GetPageSize()
		pdf.SetFillColor(rgbIndigo[0], rgbIndigo[1], rgbIndigo[2])
		pdf.Rect(0, 0, pw, 25, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont(pdfFont, "B", 18)
		pdf.SetXY(0, 7)
		pdf.CellFormat(pw, 8, d.tr("Edital Verticalizado"), "", 1, "C", false, 0, "")
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetX(0)
		pdf.CellFormat(pw, 5, d.tr("Gerado por Edital Planner"), "", 1, "C", false, 0, "")
		pdf.SetY(35)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, d.tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	return d
}

type pdfTable struct {
	doc    *pdfDoc
	head   []string
	widths []float64
}

func (d *pdfDoc) table(head []string, ratios ...float64) *pdfTable {
	widths := make([]float64, len(ratios))
	for i, r := range ratios {
		widths[i] = d.width * r
	}
	t := &pdfTable{doc: d, head: head, widths: widths}
	t.header()
	return t
}

func (t *pdfTable) header() {
	d := t.doc
	d.SetFillColor(rgbIndigo[0], rgbIndigo[1], rgbIndigo[2])
	d.SetTextColor(255, 255, 255)
	d.SetDrawColor(200, 200, 200)
	d.SetFont(pdfFont, "B", 10)
	for i, h := range t.head {
		d.CellFormat(t.widths[i], 7, d.tr(h), "1", 0, "C", true, 0, "")
	}
	d.Ln(-1)
}

// row draws one row, wrapping each cell and breaking the page before the row
// when it would not fit.
func (t *pdfTable) row(fill *[3]int, bold bool, cells ...string) {
	d := t.doc
	style := ""
	if bold {
		style = "B"
	}
	d.SetFont(pdfFont, style, 10)

	lines := 1
	for i, c := range cells {
		if n := len(d.SplitLines([]byte(d.tr(c)), t.widths[i]-2)); n > lines {
			lines = n
		}
	}
	h := float64(lines)*pdfLineH + 2

	_, pageH := d.GetPageSize()
	_, _, _, bottom := d.GetMargins()
	if d.GetY()+h > pageH-bottom {
		d.AddPage()
		t.header()
		d.SetFont(pdfFont, style, 10)
	}

	x, y := d.GetX(), d.GetY()
	d.SetTextColor(rgbSlate[0], rgbSlate[1], rgbSlate[2])
	for i, c := range cells {
		w := t.widths[i]
		if fill != nil {
			d.SetFillColor(fill[0], fill[1], fill[2])
			d.Rect(x, y, w, h, "FD")
		} else {
			d.Rect(x, y, w, h, "D")
		}
		d.SetXY(x+1, y+1)
		d.MultiCell(w-2, pdfLineH, d.tr(c), "", "L", false)
		x += w
	}
	d.SetXY(pdfMargin, y+h)
}

// PDF renders the edital and the plan's progress as an A4 document.
func (x *Exporter) PDF(plan entity.StudyPlan) ([]byte, error) {
	start := time.Now()
	e := plan.Edital
	report := progress.ForPlan(plan)
	d := newPDFDoc()
	d.SetTitle(d.tr(e.DisplayTitle()), false)
	d.SetCreator("edital-planner", false)
	d.AddPage()

	title := e.Title
	if strings.TrimSpace(title) == "" {
		title = "Detalhes do Concurso"
	}
	d.SetTextColor(rgbSlate[0], rgbSlate[1], rgbSlate[2])
	d.SetFont(pdfFont, "B", 16)
	d.MultiCell(0, 8, d.tr(title), "", "L", false)
	d.SetFont(pdfFont, "", 12)
	d.CellFormat(0, 7, d.tr("Organização: "+orNA(e.Organization)), "", 1, "L", false, 0, "")
	d.CellFormat(0, 7, d.tr(fmt.Sprintf("Progresso geral: %.1f%% (%d de %d tópicos)",
		report.OverallProgress, report.CheckedTopics, report.TotalTopics)), "", 1, "L", false, 0, "")
	if report.ScoreCount > 0 {
		d.CellFormat(0, 7, d.tr(fmt.Sprintf("Média dos simulados: %.1f%%", report.OverallAverage)), "", 1, "L", false, 0, "")
	}
	d.Ln(4)

	if len(e.Positions) > 0 {
		t := d.table([]string{"Cargo", "Vagas", "Salário (R$)", "Requisitos"}, 0.3, 0.12, 0.18, 0.4)
		for _, p := range e.Positions {
			salary := ""
			if p.Salary != nil {
				salary = strconv.FormatFloat(*p.Salary, 'f', 2, 64)
			}
			t.row(nil, false, p.Name, p.Slots.String(), salary, strings.Join(p.Requirements, ", "))
		}
		d.Ln(6)
	}

	if len(e.Schedule) > 0 {
		t := d.table([]string{"Evento", "Data"}, 0.65, 0.35)
		for _, ev := range e.Schedule {
			t.row(nil, false, ev.Event, ev.Date)
		}
		d.Ln(6)
	}

	if len(e.Disciplines) > 0 {
		t := d.table([]string{"Disciplina / Tópico", "Estudado", "Progresso"}, 0.7, 0.14, 0.16)
		for i, disc := range e.Disciplines {
			m := report.Disciplines[i]
			t.row(&rgbGroup, true, disc.Name, fmt.Sprintf("%d/%d", m.Checked, m.Topics), fmt.Sprintf("%.0f%%", m.Progress))
			for _, tp := range disc.Topics {
				mark := ""
				if plan.CheckedTopics[tp.ID] {
					mark = "X"
				}
				t.row(nil, false, "   "+tp.Name, mark, "")
			}
		}
	}

	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}
	x.logger.Info("export.pdf.ok",
		zap.String("plan_id", plan.ID),
		zap.Int("pages", d.PageNo()),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}
