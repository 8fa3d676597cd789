package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

var mutualCmd = &cobra.Command{
	Use:   "mutual <user-id> [other-user-id]",
	Short: "List a user's mutual matches or check one pair",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		user := e.user(args[0])

		if len(args) == 2 {
			other := e.user(args[1])
			matched := e.store.CheckMatch(user.ID, other.ID)
			e.logger.Info("pair checked",
				zap.String("user_id", user.ID),
				zap.String("target_id", other.ID),
				zap.Bool("mutual", matched),
			)
			fmt.Println(matched)
			return
		}

		var matches []profile.Profile
		for _, id := range e.store.UserMatches(user.ID) {
			// Users dropped from the roster keep their ledger entries.
			if p, ok := e.store.Profile(id); ok {
				matches = append(matches, p)
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			printJSON(e, matches)
			return
		}
		printProfiles(matches, false)
	},
}

func init() {
	rootCmd.AddCommand(mutualCmd)

	mutualCmd.Flags().Bool("output-json", false, "print matches as json")
}
