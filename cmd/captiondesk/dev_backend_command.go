package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"captiondesk/internal/devbackend"
)

func newDevBackendCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var token string
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "dev-backend",
		Short: "Serve an in-memory development backend",
		Long: "Serve an in-memory backend that speaks the captioning API. It\n" +
			"returns placeholder captions and never transcribes or publishes.\n" +
			"State is lost when the process exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = cfg.DevBackend.Bind
			}
			if !cmd.Flags().Changed("token") {
				token = cfg.DevBackend.Token
			}
			server := devbackend.New(devbackend.Options{
				Token:  token,
				Seed:   cfg.DevBackend.Seed && !noSeed,
				Logger: logger,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Development backend on http://%s (Ctrl+C to stop)\n", addr)
			return server.ListenAndServe(commandCtx(cmd), addr)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default dev_backend.bind)")
	cmd.Flags().StringVar(&token, "token", "", "Require this bearer token (default dev_backend.token)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Start with an empty queue")
	return cmd
}
