package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func newLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level <xp>",
		Short: "Show the level reached with a total XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xp, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("xp must be an integer: %w", err)
			}

			info := domain.LevelFor(xp)
			fmt.Fprintf(cmd.OutOrStdout(), "level %d (%d/%d XP, %d%%)\n",
				info.Level, info.CurrentXP, info.XPForNextLevel, info.Progress)
			return nil
		},
	}
}
