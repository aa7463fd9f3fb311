package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mihaimyh/badgeapi/internal/config"
	"github.com/mihaimyh/badgeapi/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		envFile string
		port    string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the badge lookup HTTP API.

Configuration is read from the environment, optionally seeded from a .env file:
  BOT_TOKEN               Discord bot token (lookups fail with 500 without it)
  GUILD_ID, GUILD_IDS     Guilds scanned in order for a boost timestamp
  WEBHOOK_URL             Discord webhook that receives one embed per lookup
  PORT                    Listen port (default 3000)
  LOG_LEVEL, LOG_FORMAT   zerolog level and console|json output

The server shuts down gracefully on SIGINT or SIGTERM.

Example:
  badgeapi serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			logger := server.NewLogger(cfg.LogLevel, cfg.LogFormat)
			srv, err := server.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			return srv.Run(cmd.Context())
		},
	}

	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load before reading the environment")
	serveCmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")
	return serveCmd
}
