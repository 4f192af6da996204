package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cad-exporter/internal/exporter/server"
)

// NewServeCommand создаёт команду serve: HTTP сервис экспорта.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				rootOpts.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, rootOpts.Config, rootOpts.Log)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")

	return cmd
}
