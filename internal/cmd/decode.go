package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

type decodeOutput struct {
	Flags  uint64   `json:"raw_public_flags"`
	Badges []string `json:"badges"`
}

func newDecodeCmd() *cobra.Command {
	var asJSON bool

	decodeCmd := &cobra.Command{
		Use:   "decode <public_flags>",
		Short: "Decode a public_flags bitfield into badge labels",
		Long: `Decode a Discord public_flags value. Decimal, 0x hex and 0b binary are accepted.

Example:
  badgeapi decode 4194305
  badgeapi decode 0x4000000000000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := strconv.ParseUint(strings.TrimSpace(args[0]), 0, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", badges.ErrInvalidBitfield, args[0])
			}

			labels := badges.DecodeFlags(mask)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(decodeOutput{Flags: mask, Badges: labels})
			}
			if len(labels) == 0 {
				fmt.Fprintln(out, "(no badges)")
				return nil
			}
			for _, label := range labels {
				fmt.Fprintln(out, label)
			}
			return nil
		},
	}

	decodeCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of one label per line")
	return decodeCmd
}
