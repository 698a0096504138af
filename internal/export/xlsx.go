// Package export renders a study plan as a spreadsheet, a PDF document or
// Markdown. Discipline and topic order always follows the edital.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
)

const (
	colorHeader = "166534"
	colorBorder = "E2E8F0"
	colorAltRow = "F8FAFC"
	colorWhite  = "FFFFFF"
	notAvail    = "N/A"
)

// mock exam columns L..P on discipline sheets
const (
	firstMockCol = 12
	mockCols     = 5
)

var disciplineHeader = []any{
	"Tópico", "Estudo Concluído",
	"Seg", "Ter", "Qua", "Qui", "Sex", "Sab", "Dom",
	"Revisado", "Última Revisão",
	"Simulado 1 (%)", "Simulado 2 (%)", "Simulado 3 (%)", "Simulado 4 (%)", "Simulado 5 (%)",
}

// Exporter renders plans. The zero value is not usable; call New.
type Exporter struct {
	logger *zap.Logger
}

// New returns an Exporter; logger may be nil.
func New(logger *zap.Logger) *Exporter {
	return &Exporter{logger: common.OrNop(logger)}
}

type styles struct {
	header, cell, alt, bold, wrap, altWrap, pct, altPct int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: colorBorder, Style: 1},
		{Type: "top", Color: colorBorder, Style: 1},
		{Type: "right", Color: colorBorder, Style: 1},
		{Type: "bottom", Color: colorBorder, Style: 1},
	}
	pctFmt := `0.0"%"`
	altFill := excelize.Fill{Type: "pattern", Color: []string{colorAltRow}, Pattern: 1}

	var s styles
	specs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: colorWhite, Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{colorHeader}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		}},
		{&s.cell, &excelize.Style{Border: border, Alignment: &excelize.Alignment{Vertical: "top"}}},
		{&s.alt, &excelize.Style{Border: border, Fill: altFill, Alignment: &excelize.Alignment{Vertical: "top"}}},
		{&s.bold, &excelize.Style{Border: border, Font: &excelize.Font{Bold: true}}},
		{&s.wrap, &excelize.Style{Border: border, Alignment: &excelize.Alignment{Vertical: "top", WrapText: true}}},
		{&s.altWrap, &excelize.Style{Border: border, Fill: altFill, Alignment: &excelize.Alignment{Vertical: "top", WrapText: true}}},
		{&s.pct, &excelize.Style{Border: border, CustomNumFmt: &pctFmt, Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&s.altPct, &excelize.Style{Border: border, Fill: altFill, CustomNumFmt: &pctFmt, Alignment: &excelize.Alignment{Horizontal: "right"}}},
	}
	for _, spec := range specs {
		id, err := f.NewStyle(spec.style)
		if err != nil {
			return s, err
		}
		*spec.dst = id
	}
	return s, nil
}

func (s styles) row(r int, wrap, pct bool) int {
	alt := r%2 == 1
	switch {
	case pct && alt:
		return s.altPct
	case pct:
		return s.pct
	case wrap && alt:
		return s.altWrap
	case wrap:
		return s.wrap
	case alt:
		return s.alt
	}
	return s.cell
}

// sheetWriter accumulates rows on one sheet.
type sheetWriter struct {
	f     *excelize.File
	name  string
	st    styles
	rows  int
	width int
	err   error
}

func (w *sheetWriter) header(cols ...any) {
	w.width = len(cols)
	w.set(1, cols)
	w.style(1, 1, w.width, w.st.header)
	if w.err == nil {
		w.err = w.f.SetRowHeight(w.name, 1, 30)
	}
	w.rows = 1
}

// add appends a data row; wrapCols are 1-based columns with wrapped text.
func (w *sheetWriter) add(cols []any, wrapCols ...int) int {
	w.rows++
	r := w.rows
	w.set(r, cols)
	w.style(r, 1, w.width, w.st.row(r, false, false))
	for _, c := range wrapCols {
		w.style(r, c, c, w.st.row(r, true, false))
	}
	return r
}

func (w *sheetWriter) set(row int, cols []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.name, cell, &cols)
}

func (w *sheetWriter) style(row, fromCol, toCol, id int) {
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(fromCol, row)
	to, _ := excelize.CoordinatesToCellName(toCol, row)
	w.err = w.f.SetCellStyle(w.name, from, to, id)
}

func (w *sheetWriter) formula(col, row int, formula string) {
	if w.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)
	w.err = w.f.SetCellFormula(w.name, cell, formula)
}

func (w *sheetWriter) widths(widths ...float64) {
	for i, wd := range widths {
		if w.err != nil {
			return
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.err = w.f.SetColWidth(w.name, col, col, wd)
	}
}

func (w *sheetWriter) freezeHeader() {
	if w.err != nil {
		return
	}
	w.err = w.f.SetPanes(w.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *sheetWriter) autoFilter() {
	if w.err != nil || w.rows < 2 {
		return
	}
	last, _ := excelize.CoordinatesToCellName(w.width, w.rows)
	w.err = w.f.AutoFilter(w.name, "A1:"+last, nil)
}

func (w *sheetWriter) dropDown(sqref string, values ...string) {
	if w.err != nil {
		return
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = sqref
	if w.err = dv.SetDropList(values); w.err != nil {
		return
	}
	w.err = w.f.AddDataValidation(w.name, dv)
}

// XLSX renders plan as a workbook: Dashboard, Resumo, Infos Gerais, Cargos,
// Cronograma and one sheet per discipline with topics.
func (x *Exporter) XLSX(plan entity.StudyPlan) ([]byte, error) {
	start := time.Now()
	e := plan.Edital
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			x.logger.Warn("export.xlsx.close_failed", zap.Error(err))
		}
	}()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("xlsx styles: %w", err)
	}
	sheets := disciplineSheets(e)
	report := progress.ForPlan(plan)

	type page struct {
		name  string
		write func(*sheetWriter)
	}
	pages := []page{
		{SheetDashboard, func(w *sheetWriter) { writeDashboard(w, e, sheets) }},
		{SheetSummary, func(w *sheetWriter) { writeSummary(w, report) }},
		{SheetInfo, func(w *sheetWriter) { writeInfo(w, e) }},
	}
	if len(e.Positions) > 0 {
		pages = append(pages, page{SheetPositions, func(w *sheetWriter) { writePositions(w, e.Positions) }})
	}
	if len(e.Schedule) > 0 {
		pages = append(pages, page{SheetSchedule, func(w *sheetWriter) { writeSchedule(w, e.Schedule) }})
	}
	for i, d := range e.Disciplines {
		if name, ok := sheets[i]; ok {
			pages = append(pages, page{name, func(w *sheetWriter) { writeDiscipline(w, d, plan.CheckedTopics) }})
		}
	}

	for i, pg := range pages {
		var err error
		if i == 0 {
			err = f.SetSheetName("Sheet1", pg.name)
		} else {
			_, err = f.NewSheet(pg.name)
		}
		if err != nil {
			return nil, fmt.Errorf("xlsx sheet %q: %w", pg.name, err)
		}
	}
	for _, pg := range pages {
		w := &sheetWriter{f: f, name: pg.name, st: st}
		pg.write(w)
		if w.err != nil {
			return nil, fmt.Errorf("xlsx sheet %q: %w", w.name, w.err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	x.logger.Info("export.xlsx.ok",
		zap.String("plan_id", plan.ID),
		zap.Int("sheets", len(pages)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func writeDashboard(w *sheetWriter, e entity.Edital, sheets map[int]string) {
	w.header("Disciplina", "Média Sim. 1 (%)", "Média Sim. 2 (%)", "Média Sim. 3 (%)", "Média Sim. 4 (%)", "Média Sim. 5 (%)", "Média Geral (%)")
	for i, d := range e.Disciplines {
		name, ok := sheets[i]
		if !ok {
			continue
		}
		r := w.add([]any{d.Name})
		last := len(d.Topics) + 1
		for k := 0; k < mockCols; k++ {
			col, _ := excelize.ColumnNumberToName(firstMockCol + k)
			w.formula(2+k, r, fmt.Sprintf(`IFERROR(AVERAGE(%s!%s2:%s%d),"")`, quoteSheet(name), col, col, last))
		}
		w.formula(7, r, fmt.Sprintf(`IFERROR(AVERAGE(B%d:F%d),"")`, r, r))
		w.style(r, 2, 7, w.st.row(r, false, true))
	}
	w.widths(40, 18, 18, 18, 18, 18, 18)
	w.autoFilter()
}

func writeSummary(w *sheetWriter, r progress.Report) {
	w.header("Disciplina", "Tópicos", "Concluídos", "Progresso (%)", "Simulados", "Média (%)")
	for _, d := range r.Disciplines {
		row := w.add([]any{d.Name, d.Topics, d.Checked, round1(d.Progress), len(d.Scores), round1(d.Average)})
		w.style(row, 4, 4, w.st.row(row, false, true))
		w.style(row, 6, 6, w.st.row(row, false, true))
	}
	row := w.add([]any{"Total", r.TotalTopics, r.CheckedTopics, round1(r.OverallProgress), r.ScoreCount, round1(r.OverallAverage)})
	w.style(row, 1, 1, w.st.bold)
	w.style(row, 4, 4, w.st.row(row, false, true))
	w.style(row, 6, 6, w.st.row(row, false, true))
	w.widths(40, 10, 12, 14, 12, 12)
}

func writeInfo(w *sheetWriter, e entity.Edital) {
	fee := any(notAvail)
	if e.RegistrationFee != nil {
		fee = *e.RegistrationFee
	}
	rows := [][]any{
		{"Título do Concurso", orNA(e.Title)},
		{"Organização", orNA(e.Organization)},
		{"Resumo", orNA(e.Summary)},
		{"Taxa de Inscrição (R$)", fee},
	}
	for i, r := range rows {
		w.set(i+1, r)
		w.style(i+1, 1, 1, w.st.bold)
		w.style(i+1, 2, 2, w.st.wrap)
	}
	w.widths(25, 80)
}

func writePositions(w *sheetWriter, positions []entity.Position) {
	w.header("Nome do Cargo", "Vagas", "Salário (R$)", "Requisitos", "Jornada de Trabalho")
	for _, p := range positions {
		var slots, salary any = "", ""
		if p.Slots != nil {
			if p.Slots.Number != nil {
				slots = *p.Slots.Number
			} else {
				slots = p.Slots.Text
			}
		}
		if p.Salary != nil {
			salary = *p.Salary
		}
		w.add([]any{p.Name, slots, salary, strings.Join(p.Requirements, ", "), p.WorkSchedule}, 1, 4, 5)
	}
	w.widths(30, 10, 15, 50, 20)
	w.freezeHeader()
	w.autoFilter()
}

func writeSchedule(w *sheetWriter, events []entity.ScheduleEvent) {
	w.header("Evento", "Data")
	for _, ev := range events {
		w.add([]any{ev.Event, ev.Date}, 1)
	}
	w.widths(40, 20)
	w.freezeHeader()
	w.autoFilter()
}

func writeDiscipline(w *sheetWriter, d entity.Discipline, checked map[string]bool) {
	w.header(disciplineHeader...)
	for _, t := range d.Topics {
		done := "Não"
		if checked[t.ID] {
			done = "Sim"
		}
		r := w.add([]any{t.Name, done}, 1)
		w.style(r, firstMockCol, firstMockCol+mockCols-1, w.st.row(r, false, true))
	}
	w.widths(60, 18, 5, 5, 5, 5, 5, 5, 5, 12, 15, 15, 15, 15, 15, 15)
	w.freezeHeader()
	w.autoFilter()

	last := len(d.Topics) + 1
	w.dropDown(fmt.Sprintf("B2:B%d", last), "Sim", "Não")
	w.dropDown(fmt.Sprintf("C2:I%d", last), "X")
	w.dropDown(fmt.Sprintf("J2:J%d", last), "Sim", "Não")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvail
	}
	return s
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
