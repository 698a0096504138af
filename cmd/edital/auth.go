package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/edital-planner/internal/session"
)

type credentialFlags struct {
	email         string
	password      string
	passwordStdin bool
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "e-mail da conta")
	cmd.Flags().StringVar(&f.password, "password", "", "senha da conta")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "ler a senha da entrada padrão")
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) secret(in io.Reader) (string, error) {
	if !f.passwordStdin {
		return f.password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(a *app) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Entrar na conta e carregar os planos salvos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := f.secret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := a.sess.Login(cmd.Context(), f.email, pw); err != nil {
				return err
			}
			a.printf("Bem-vindo, %s! %d plano(s) carregado(s).\n", f.email, len(a.plans.List()))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Criar uma conta",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := f.secret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := a.sess.Register(cmd.Context(), f.email, pw); err != nil {
				return err
			}
			a.printf("Conta criada para %s.\n", f.email)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sair da conta e voltar ao modo convidado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.sess.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Sessão encerrada.\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar o modo da sessão atual",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			switch st := a.sess.State().(type) {
			case session.Authenticated:
				a.printf("%s (%d plano(s))\n", st.Profile.User.Email, len(st.Profile.Plans))
			default:
				a.printf("convidado\n")
			}
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
