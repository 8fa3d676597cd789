package cmd

import (
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <user-id>",
	Short: "Pick random users with the same relationship goal to chat with",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = e.config.Matching.ChatCount
		}

		current := e.user(args[0])
		picked := e.store.RandomChatMatches(&current, count)

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			printJSON(e, picked)
			return
		}
		printProfiles(picked, false)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().IntP("count", "c", 0, "number of users to pick (default from matching.chat-count)")
	chatCmd.Flags().Bool("output-json", false, "print users as json")
}
