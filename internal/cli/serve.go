package cli

import (
	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Long: `Start the HTTP service exposing simulation and pipeline runs.

Examples:
  tennis-sim serve              # Start on PORT (default 8082)
  tennis-sim serve --port 9000  # Start on port 9000`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, cancel := signalContext()
	defer cancel()

	return server.Serve(ctx, cfg)
}
