package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, &app{newGen: defaultGenerator}))
}

// run executes one command line and returns the process exit code.
// Cancellation exits quietly with 130.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, a *app) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	a.out = stdout

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return 0
	}
	if common.IsCancelled(err) || ctx.Err() != nil {
		return 130
	}
	fmt.Fprintln(stderr, "erro:", common.DisplayMessage(err))
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "edital",
		Short:         "Transforme editais de concurso em planos de estudo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", common.DefaultClientConfigPath(), "arquivo de configuração YAML")
	root.PersistentFlags().BoolVar(&opts.guest, "guest", false, "usar o modo convidado mesmo com uma sessão salva")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "registrar logs de depuração no stderr")

	root.AddCommand(
		newExtractCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPlansCmd(a),
		newTopicCmd(a),
		newScoreCmd(a),
		newSubTopicCmd(a),
		newLinkCmd(a),
		newProgressCmd(a),
		newExportCmd(a),
	)
	return root
}
