package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
)

func newTopicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "topic", Aliases: []string{"topico"}, Short: "Marcar tópicos estudados"}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <topic-id>",
		Short: "Alternar a marcação de estudado de um tópico",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checked, err := a.plans.ToggleTopic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if checked {
				a.printf("Tópico marcado como estudado.\n")
			} else {
				a.printf("Marcação removida.\n")
			}
			return nil
		},
	})
	return cmd
}

func newScoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "score", Aliases: []string{"nota"}, Short: "Registrar notas de simulados"}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <discipline-id> <nota>",
		Short: "Adicionar uma nota (0 a 100) a uma disciplina",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(args[1]), ",", ".", 1), 64)
			if err != nil {
				return common.InputError("Por favor, insira uma nota válida entre 0 e 100.")
			}
			if err := a.plans.AddScore(cmd.Context(), args[0], v); err != nil {
				return err
			}
			a.printf("Nota %.1f registrada.\n", v)
			return nil
		},
	})
	return cmd
}

func newSubTopicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "subtopic", Aliases: []string{"subtopico"}, Short: "Gerenciar subtópicos de um tópico"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <topic-id> <texto>",
			Short: "Adicionar um subtópico",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.plans.AddSubTopic(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				if st.ID != "" {
					a.printf("Subtópico %s adicionado.\n", st.ID)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <topic-id> <subtopic-id>",
			Short: "Alternar a conclusão de um subtópico",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.plans.ToggleSubTopic(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "edit <topic-id> <subtopic-id> <texto>",
			Short: "Renomear um subtópico",
			Args:  cobra.MinimumNArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.plans.UpdateSubTopic(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			},
		},
		&cobra.Command{
			Use:   "rm <topic-id> <subtopic-id>",
			Short: "Remover um subtópico",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.plans.DeleteSubTopic(cmd.Context(), args[0], args[1])
			},
		},
	)
	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	var scopeName string
	scope := func() (constants.LinkScope, error) {
		s, ok := constants.ParseLinkScope(scopeName)
		if !ok {
			return "", common.InputError("Use --scope discipline ou --scope topic.")
		}
		return s, nil
	}
	cmd := &cobra.Command{Use: "link", Short: "Gerenciar links de referência de disciplinas e tópicos"}
	cmd.PersistentFlags().StringVar(&scopeName, "scope", string(constants.ScopeTopic), "discipline ou topic")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id> <título> <url>",
			Short: "Adicionar um link",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := scope()
				if err != nil {
					return err
				}
				l, err := a.plans.AddLink(cmd.Context(), s, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				a.printf("Link %s adicionado.\n", l.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit <id> <link-id> <título> <url>",
			Short: "Alterar título e URL de um link",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := scope()
				if err != nil {
					return err
				}
				return a.plans.UpdateLink(cmd.Context(), s, args[0], args[1], args[2], args[3])
			},
		},
		&cobra.Command{
			Use:   "rm <id> <link-id>",
			Short: "Remover um link",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := scope()
				if err != nil {
					return err
				}
				return a.plans.DeleteLink(cmd.Context(), s, args[0], args[1])
			},
		},
	)
	return cmd
}
