package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vispana/apppackage-client/gateway"
)

var (
	serveArgs struct {
		endpoint string
		origins  []string
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the application package API service",
		Run:   serve,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveArgs.endpoint, "endpoint", "", "HTTP endpoint to listen on (env APPPKG_ENDPOINT)")
	serveCmd.Flags().StringSliceVar(&serveArgs.origins, "allowed-origins", nil, "CORS origins separated by comma, all origins if empty (env APPPKG_ALLOWED_ORIGINS)")

	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, _ []string) {
	if !cmd.Flags().Changed("endpoint") {
		serveArgs.endpoint = conf.Endpoint
	}

	if !cmd.Flags().Changed("allowed-origins") {
		serveArgs.origins = conf.AllowedOrigins
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway.MustServe(ctx, newService(), gateway.Config{
		Endpoint:          serveArgs.endpoint,
		DefaultConfigHost: configHost,
		OriginsAllowed:    serveArgs.origins,
	})
}
