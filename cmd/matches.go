package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/matching"
)

var matchesCmd = &cobra.Command{
	Use:   "matches <user-id>",
	Short: "Rank the best candidates for a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		if limit, _ := cmd.Flags().GetInt("max"); limit > 0 {
			e.config.Matching.MaxResults = limit
		}
		includeSwiped, _ := cmd.Flags().GetBool("include-swiped")

		current := e.user(args[0])
		candidates, err := e.candidates(context.Background(), &current, includeSwiped)
		if err != nil {
			e.fatal("filtering candidates", zap.Error(err))
		}

		e.logger.Info("candidates found",
			zap.String("user_id", current.ID),
			zap.Int("count", candidates.Len()),
		)

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			printJSON(e, candidates.Values())
			return
		}
		printProfiles(candidates.Values(), true)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <user-id> <candidate-id>",
	Short: "Explain how well a candidate fits a user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		a, b := e.user(args[0]), e.user(args[1])
		breakdown := matching.Breakdown(&a, &b)

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			printJSON(e, breakdown)
			return
		}

		fmt.Printf("%s -> %s\n", a.Name, b.Name)
		fmt.Printf("  interests     %5.1f  %v\n", breakdown.Interests, breakdown.SharedInterests)
		fmt.Printf("  skills        %5.1f  %v\n", breakdown.Skills, breakdown.SharedSkills)
		fmt.Printf("  location      %5.1f\n", breakdown.Location)
		fmt.Printf("  goal          %5.1f\n", breakdown.Goal)
		fmt.Printf("  language      %5.1f\n", breakdown.Language)
		fmt.Printf("  activity      %5.1f\n", breakdown.Activity)
		fmt.Printf("  completeness  %5.1f\n", breakdown.Completeness)
		fmt.Printf("  total         %5.1f  (%s)\n", breakdown.Total, matching.QualityOf(breakdown.Total))
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(scoreCmd)

	matchesCmd.Flags().IntP("max", "n", 0, "maximum number of candidates (default from matching.max-results)")
	matchesCmd.Flags().BoolP("include-swiped", "a", false, "keep candidates the user already swiped")
	matchesCmd.Flags().Bool("output-json", false, "print candidates as json")
	scoreCmd.Flags().Bool("output-json", false, "print the breakdown as json")
}
