package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
	"github.com/joseph-ayodele/edital-planner/internal/pipeline"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
	"github.com/joseph-ayodele/edital-planner/internal/session"
)

func newExtractCmd(a *app) *cobra.Command {
	var role, text, dir string
	cmd := &cobra.Command{
		Use:   "extract [arquivo]",
		Short: "Analisar um edital (texto, PDF ou imagem) e criar um plano",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				return extractDir(cmd, a, dir, role)
			}
			req := llm.ExtractRequest{Text: text, Role: role}
			if len(args) == 1 {
				var err error
				if req, err = pipeline.RequestFromFile(args[0], role); err != nil {
					return err
				}
			}
			proc, err := a.processor(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := common.WithTimeout(cmd.Context(), a.cfg.LLM.Timeout)
			defer cancel()

			a.printf("Analisando o edital...\n")
			plan, err := proc.Process(ctx, req)
			if err != nil {
				return err
			}
			a.printf("Plano %q criado (%s, %s).\nID: %s\n", plan.Name,
				plural(len(plan.Edital.Disciplines), "disciplina", "disciplinas"),
				plural(plan.Edital.TopicCount(), "tópico", "tópicos"),
				plan.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "cargo de interesse")
	cmd.Flags().StringVar(&text, "text", "", "texto do edital, quando não houver arquivo")
	cmd.Flags().StringVar(&dir, "dir", "", "analisar todos os editais de um diretório")
	cmd.MarkFlagsMutuallyExclusive("text", "dir")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// extractDir creates one plan per edital file under dir. In guest mode only
// the last plan survives, so the user is told.
func extractDir(cmd *cobra.Command, a *app, dir, role string) error {
	proc, err := a.processor(cmd.Context())
	if err != nil {
		return err
	}
	if _, guest := a.sess.State().(session.Anonymous); guest {
		a.printf("Modo convidado: apenas o último plano criado será mantido.\n")
	}
	results, stats, err := proc.ProcessDir(cmd.Context(), dir, role, true)
	for _, r := range results {
		switch {
		case r.Err != nil:
			a.printf("✗ %s: %s\n", r.Path, common.DisplayMessage(r.Err))
		case r.Deduplicated:
			a.printf("= %s (duplicado)\n", r.Path)
		default:
			a.printf("✓ %s → %s\n", r.Path, r.PlanName)
		}
	}
	if err != nil {
		return err
	}
	a.printf("%s, %d com falha, %d duplicado(s).\n", plural(stats.Succeeded, "plano criado", "planos criados"), stats.Failed, stats.Deduplicated)
	return nil
}

func newPlansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"planos"},
		Short:   "Listar e gerenciar planos de estudo",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Listar os planos, do mais recente ao mais antigo",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ps := a.plans.List()
			if len(ps) == 0 {
				a.printf("Nenhum plano salvo.\n")
				return nil
			}
			active := a.plans.ActiveID()
			for _, p := range ps {
				mark := " "
				if p.ID == active {
					mark = "*"
				}
				r := progress.ForPlan(p)
				a.printf("%s %s  %s  %s  %.0f%%\n", mark, p.ID, p.Created().Format("02/01/2006"), p.Name, r.OverallProgress)
			}
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Tornar um plano o plano ativo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.plans.SetActive(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Plano ativo: %s\n", args[0])
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Excluir um plano",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return common.InputError("Tem certeza que deseja excluir este plano? Esta ação não pode ser desfeita. Repita com --yes.")
			}
			if err := a.plans.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Plano excluído.\n")
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirmar a exclusão")

	var yesClear bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Apagar o progresso do plano ativo, mantendo o edital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yesClear {
				return common.InputError("Tem certeza que deseja limpar todo o progresso? Repita com --yes.")
			}
			if err := a.plans.Clear(cmd.Context()); err != nil {
				return err
			}
			a.printf("Progresso apagado.\n")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yesClear, "yes", false, "confirmar a limpeza")

	var ids, raw bool
	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Exibir um plano (o ativo, por padrão)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := a.active()
			if len(args) == 1 {
				p, err = a.plans.Get(args[0])
			}
			if err != nil {
				return err
			}
			doc := a.exporter.Markdown(p)
			if ids {
				doc = outline(p)
			}
			return a.render(doc, raw)
		},
	}
	show.Flags().BoolVar(&ids, "ids", false, "listar os IDs de disciplinas, tópicos, subtópicos e links")
	show.Flags().BoolVar(&raw, "raw", false, "imprimir o markdown sem formatação")

	cmd.AddCommand(list, use, del, clearCmd, show)
	return cmd
}

// outline lists every addressable id of the plan, for use with the tracking
// commands.
func outline(p entity.StudyPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n`%s` criado em %s\n", p.Name, p.ID, p.Created().Format(time.DateOnly))
	for _, d := range p.Edital.Disciplines {
		fmt.Fprintf(&b, "\n## %s\n\n`%s`", d.Name, d.ID)
		if s := p.MockScores[d.ID]; len(s) > 0 {
			fmt.Fprintf(&b, " · notas: %v", s)
		}
		b.WriteString("\n\n")
		for _, l := range p.DisciplineLinks[d.ID] {
			fmt.Fprintf(&b, "- link `%s` %s <%s>\n", l.ID, l.Title, l.URL)
		}
		for _, t := range d.Topics {
			mark := " "
			if p.CheckedTopics[t.ID] {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] `%s` %s\n", mark, t.ID, t.Name)
			for _, st := range p.SubTopics[t.ID] {
				sub := " "
				if st.Completed {
					sub = "x"
				}
				fmt.Fprintf(&b, "  - [%s] `%s` %s\n", sub, st.ID, st.Text)
			}
			for _, l := range p.TopicLinks[t.ID] {
				fmt.Fprintf(&b, "  - link `%s` %s <%s>\n", l.ID, l.Title, l.URL)
			}
		}
	}
	return b.String()
}
