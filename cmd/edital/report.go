package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/edital-planner/internal/export"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
)

// render prints markdown through glamour, or verbatim when raw is set.
func (a *app) render(doc string, raw bool) error {
	if raw {
		a.printf("%s", doc)
		return nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(doc)
	if err != nil {
		return err
	}
	a.printf("%s", out)
	return nil
}

func newProgressCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"progresso"},
		Short:   "Resumo do progresso do plano ativo",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := a.active()
			if err != nil {
				return err
			}
			r := progress.ForPlan(p)
			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", p.Name)
			fmt.Fprintf(&b, "**Progresso geral:** %.1f%% (%d de %d tópicos)\n\n", r.OverallProgress, r.CheckedTopics, r.TotalTopics)
			if r.ScoreCount > 0 {
				fmt.Fprintf(&b, "**Média dos simulados:** %.1f%%\n\n", r.OverallAverage)
			}
			b.WriteString("| Disciplina | Estudados | Progresso | Média |\n|---|---:|---:|---:|\n")
			for _, d := range r.Disciplines {
				avg := "-"
				if d.HasScores() {
					avg = fmt.Sprintf("%.1f%%", d.Average)
				}
				fmt.Fprintf(&b, "| %s | %d/%d | %.0f%% | %s |\n", strings.ReplaceAll(d.Name, "|", "/"), d.Checked, d.Topics, d.Progress, avg)
			}
			if ranked := r.Ranked(); len(ranked) > 0 {
				b.WriteString("\n## Desempenho nos simulados\n\n")
				for i, d := range ranked {
					fmt.Fprintf(&b, "%d. %s: %.1f%% (%d simulados)\n", i+1, d.Name, d.Average, len(d.Scores))
				}
			}
			return a.render(b.String(), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "imprimir o markdown sem formatação")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:       "export <xlsx|pdf|md>",
		Short:     "Exportar o plano ativo como planilha, PDF ou markdown",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"xlsx", "pdf", "md"},
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := a.active()
			if err != nil {
				return err
			}
			var data []byte
			format := strings.ToLower(args[0])
			switch format {
			case "xlsx":
				data, err = a.exporter.XLSX(p)
			case "pdf":
				data, err = a.exporter.PDF(p)
			case "md":
				data = []byte(a.exporter.Markdown(p))
			default:
				return fmt.Errorf("formato desconhecido %q (use xlsx, pdf ou md)", args[0])
			}
			if err != nil {
				return err
			}
			path := filepath.Join(dir, export.FileName(p.Edital.DisplayTitle(), format))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			a.printf("Arquivo salvo em %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "diretório de destino")
	return cmd
}
