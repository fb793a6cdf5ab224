package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	apihttp "github.com/turtacn/Resonance-Intelligence/internal/interfaces/http"
)

// NewServeCmd creates the serve command, which runs the HTTP API in the
// foreground until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := SessionFrom(cmd)
			if err != nil {
				return err
			}
			// The server logs through the configured logger, not the
			// console one built for interactive commands.
			logger, err := app.NewLogger(s.Config.Log)
			if err != nil {
				return err
			}
			s.Logger = logger
			c, err := s.Container()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); cerr != nil {
					logger.Warn("failed to release connections", logging.Err(cerr))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := apihttp.NewServer(s.Config.Server, apihttp.NewAPIHandler(c, Version), logger)
			return srv.Run(ctx)
		},
	}
}

//Personal.AI order the ending
