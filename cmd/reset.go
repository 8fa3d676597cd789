package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every swipe and reload users from the roster",
	Run: func(cmd *cobra.Command, _ []string) {
		e := setup()
		defer e.close()

		if quotaOnly, _ := cmd.Flags().GetBool("quota-only"); quotaOnly {
			e.store.ResetDailySwipes()
			e.logger.Info("daily swipe counters reset")
		} else {
			swipes := e.store.SwipeCount()
			e.store.Reset()
			if err := e.seed(); err != nil {
				e.fatal("reloading users", zap.Error(err))
			}
			e.logger.Info("state reset", zap.Int("forgotten_swipes", swipes), zap.Int("users", e.store.Len()))
		}

		if err := e.save(); err != nil {
			e.fatal("saving", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("quota-only", false, "only reset the daily swipe counters")
}
