package export

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
)

// Markdown renders a plan summary: edital facts, progress and the syllabus
// as a checklist with sub-topics and links.
func (x *Exporter) Markdown(plan entity.StudyPlan) string {
	e := plan.Edital
	r := progress.ForPlan(plan)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", mdEscape(e.DisplayTitle()))
	if e.Organization != "" {
		fmt.Fprintf(&b, "**Organização:** %s\n\n", mdEscape(e.Organization))
	}
	if e.RegistrationFee != nil {
		fmt.Fprintf(&b, "**Taxa de inscrição:** R$ %s\n\n", brl(*e.RegistrationFee))
	}
	if e.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Summary)
	}

	b.WriteString("## Progresso\n\n")
	fmt.Fprintf(&b, "- Tópicos estudados: %d de %d (%.1f%%)\n", r.CheckedTopics, r.TotalTopics, r.OverallProgress)
	if r.ScoreCount > 0 {
		fmt.Fprintf(&b, "- Média geral dos simulados: %.1f%% (%d notas)\n", r.OverallAverage, r.ScoreCount)
	}
	b.WriteString("\n| Disciplina | Progresso | Média simulados |\n|---|---:|---:|\n")
	for _, d := range r.Disciplines {
		avg := "-"
		if d.HasScores() {
			avg = fmt.Sprintf("%.1f%%", d.Average)
		}
		fmt.Fprintf(&b, "| %s | %d/%d (%.0f%%) | %s |\n", mdCell(d.Name), d.Checked, d.Topics, d.Progress, avg)
	}
	b.WriteString("\n")

	if len(e.Positions) > 0 {
		b.WriteString("## Cargos\n\n| Cargo | Vagas | Salário (R$) | Jornada |\n|---|---|---:|---|\n")
		for _, p := range e.Positions {
			salary := ""
			if p.Salary != nil {
				salary = brl(*p.Salary)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", mdCell(p.Name), mdCell(p.Slots.String()), salary, mdCell(p.WorkSchedule))
		}
		b.WriteString("\n")
	}

	if len(e.Schedule) > 0 {
		b.WriteString("## Cronograma\n\n| Evento | Data |\n|---|---|\n")
		for _, ev := range e.Schedule {
			fmt.Fprintf(&b, "| %s | %s |\n", mdCell(ev.Event), mdCell(ev.Date))
		}
		b.WriteString("\n")
	}

	if len(e.Disciplines) > 0 {
		b.WriteString("## Conteúdo Programático\n")
	}
	for _, d := range e.Disciplines {
		fmt.Fprintf(&b, "\n### %s\n\n", mdEscape(d.Name))
		for _, l := range plan.DisciplineLinks[d.ID] {
			fmt.Fprintf(&b, "- 🔗 [%s](%s)\n", mdEscape(l.Title), l.URL)
		}
		for _, t := range d.Topics {
			mark := " "
			if plan.CheckedTopics[t.ID] {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, mdEscape(t.Name))
			for _, st := range plan.SubTopics[t.ID] {
				sub := " "
				if st.Completed {
					sub = "x"
				}
				fmt.Fprintf(&b, "  - [%s] %s\n", sub, mdEscape(st.Text))
			}
			for _, l := range plan.TopicLinks[t.ID] {
				fmt.Fprintf(&b, "  - 🔗 [%s](%s)\n", mdEscape(l.Title), l.URL)
			}
		}
	}
	return b.String()
}

var mdReplacer = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`)

func mdEscape(s string) string {
	return mdReplacer.Replace(strings.TrimSpace(s))
}

func mdCell(s string) string {
	return strings.ReplaceAll(mdEscape(s), "|", `\|`)
}

// brl formats v as 4.500,00.
func brl(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := strings.Join(groups, ".") + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
