package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

func ptr[T any](v T) *T { return &v }

func samplePlan() entity.StudyPlan {
	e := entity.Edital{
		Title:           "Concurso TRF 3ª Região",
		Organization:    "FCC",
		Summary:         "Vagas para analista e técnico.",
		RegistrationFee: ptr(85.0),
		Positions: []entity.Position{
			{Name: "Analista", Slots: &entity.Slots{Number: ptr(12.0)}, Salary: ptr(13994.78), Requirements: []string{"Superior"}},
			{Name: "Técnico", Slots: &entity.Slots{Text: "CR"}},
		},
		Schedule: []entity.ScheduleEvent{{Event: "Prova objetiva", Date: "10/10/2025"}},
		Disciplines: []entity.Discipline{
			{Name: "Língua Portuguesa", Topics: []entity.Topic{{Name: "Crase"}, {Name: "Regência"}}},
			{Name: "Direito: Constitucional/Administrativo [Geral]", Topics: []entity.Topic{{Name: "Atos administrativos"}}},
			{Name: "Sem tópicos"},
			{Name: "Língua Portuguesa", Topics: []entity.Topic{{Name: "Redação"}}},
		},
	}
	entity.AssignIDs(&e)
	p := entity.NewStudyPlan(e, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	p.CheckedTopics[e.Disciplines[0].Topics[0].ID] = true
	p.MockScores[e.Disciplines[0].ID] = []float64{80, 90}
	p.SubTopics[e.Disciplines[0].Topics[0].ID] = []entity.SubTopic{{ID: "s1", Text: "Casos proibidos", Completed: true}}
	p.TopicLinks[e.Disciplines[0].Topics[1].ID] = []entity.Link{{ID: "l1", Title: "Aula", URL: "https://example.com/aula"}}
	return p
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "concurso_trf_3ª_região.xlsx", FileName("Concurso  TRF 3ª Região", "xlsx"))
	assert.Equal(t, "edital.pdf", FileName("  ", ".pdf"))
	assert.Equal(t, "a-b.md", FileName("A/B", "md"))
}

func TestSheetNames(t *testing.T) {
	assert.Equal(t, "Direito ConstitucionalAdministr", SheetName("Direito: Constitucional/Administrativo [Geral]"))
	assert.Len(t, []rune(SheetName(strings.Repeat("á", 40))), 31)

	names := disciplineSheets(samplePlan().Edital)
	assert.Equal(t, "Língua Portuguesa", names[0])
	assert.Equal(t, "Língua Portuguesa (2)", names[3])
	_, ok := names[2]
	assert.False(t, ok, "disciplines without topics get no sheet")

	clash := entity.Edital{Disciplines: []entity.Discipline{{Name: "resumo", Topics: []entity.Topic{{Name: "x"}}}}}
	assert.Equal(t, "resumo (2)", disciplineSheets(clash)[0])
}

func TestXLSX(t *testing.T) {
	plan := samplePlan()
	b, err := New(nil).XLSX(plan)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Dashboard", "Resumo", "Infos Gerais", "Cargos", "Cronograma",
		"Língua Portuguesa", "Direito ConstitucionalAdministr", "Língua Portuguesa (2)",
	}, f.GetSheetList())

	formula, err := f.GetCellFormula("Dashboard", "B2")
	require.NoError(t, err)
	assert.Equal(t, `IFERROR(AVERAGE('Língua Portuguesa'!L2:L3),"")`, formula)

	v, err := f.GetCellValue("Língua Portuguesa", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Sim", v)
	v, err = f.GetCellValue("Língua Portuguesa", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Não", v)
	v, err = f.GetCellValue("Língua Portuguesa", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Regência", v)

	v, err = f.GetCellValue("Infos Gerais", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Concurso TRF 3ª Região", v)

	rows, err := f.GetRows("Resumo", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Total", "4", "1", "25", "2", "85"}, rows[5])

	dvs, err := f.GetDataValidations("Língua Portuguesa")
	require.NoError(t, err)
	assert.Len(t, dvs, 3)
}

func TestXLSXEmptyEdital(t *testing.T) {
	plan := entity.NewStudyPlan(entity.Edital{}, time.Now())
	b, err := New(nil).XLSX(plan)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Dashboard", "Resumo", "Infos Gerais"}, f.GetSheetList())

	v, err := f.GetCellValue("Infos Gerais", "B4")
	require.NoError(t, err)
	assert.Equal(t, "N/A", v)
}

func TestPDF(t *testing.T) {
	plan := samplePlan()
	for i := 0; i < 80; i++ {
		plan.Edital.Disciplines[0].Topics = append(plan.Edital.Disciplines[0].Topics, entity.Topic{ID: "t", Name: "Tópico longo de interpretação de textos e tipologia textual"})
	}

	b, err := New(nil).PDF(plan)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	assert.True(t, bytes.Contains(b, []byte("%%EOF")))
}

func TestPDFWrapsAccentedCells(t *testing.T) {
	plan := samplePlan()
	long := strings.Repeat("Graduação em Administração, Ciências Contábeis ou Economia; ", 6)
	plan.Edital.Positions[0].Requirements = []string{long, "Experiência mínima → 2 anos 📚"}
	plan.Edital.Schedule = append(plan.Edital.Schedule, entity.ScheduleEvent{Event: strings.Repeat("Divulgação do resultado preliminar ", 5), Date: "até 15/12/2025"})
	plan.Edital.Disciplines[1].Topics[0].Name = strings.Repeat("Licitações e contratos administrativos (Lei nº 14.133/2021) ", 4)

	var b []byte
	require.NotPanics(t, func() {
		var err error
		b, err = New(nil).PDF(plan)
		require.NoError(t, err)
	})
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestMarkdown(t *testing.T) {
	md := New(nil).Markdown(samplePlan())

	assert.Contains(t, md, "# Concurso TRF 3ª Região")
	assert.Contains(t, md, "**Taxa de inscrição:** R$ 85,00")
	assert.Contains(t, md, "- [x] Crase")
	assert.Contains(t, md, "  - [x] Casos proibidos")
	assert.Contains(t, md, "- [ ] Regência")
	assert.Contains(t, md, "[Aula](https://example.com/aula)")
	assert.Contains(t, md, "| Analista | 12 | 13.994,78 |")
	assert.Contains(t, md, "Tópicos estudados: 1 de 4 (25.0%)")
	assert.Less(t, strings.Index(md, "### Língua Portuguesa"), strings.Index(md, "### Sem tópicos"))
}

func TestBRL(t *testing.T) {
	assert.Equal(t, "4.500,00", brl(4500))
	assert.Equal(t, "1.234.567,89", brl(1234567.891))
	assert.Equal(t, "95,50", brl(95.5))
	assert.Equal(t, "-1.000,00", brl(-1000))
}
