package commands

import (
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			srv, err := wire.NewServer(cfg, log)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context(), cfg.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from CHAINDRIVE_HTTP_ADDR or :8080)")
	return cmd
}
