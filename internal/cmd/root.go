// Package cmd implements the badgeapi command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "badgeapi",
		Short: "Discord badge lookup proxy",
		Long: `badgeapi looks up Discord users with a bot token and derives their
profile badges, Nitro tenure tier and server booster level.

Run "badgeapi serve" to start the HTTP API, or use "decode" and "tier"
to evaluate flags and tenures offline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newDecodeCmd(),
		newTierCmd(),
	)
	return rootCmd
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
