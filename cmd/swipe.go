package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/filtering"
	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/profile"
)

const (
	PromptLike   = "Like"
	PromptReject = "Reject"
	PromptBlock  = "Block and hide"
	PromptSkip   = "Skip"
	PromptQuit   = "Quit"
)

var errExit = errors.New("exit requested")

var recordCmd = &cobra.Command{
	Use:   "record <user-id> <target-id> <like|reject>",
	Short: "Record a single swipe",
	Args:  cobra.ExactArgs(3),
	Run: func(_ *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		action, err := profile.ParseAction(args[2])
		if err != nil {
			e.fatal("parsing action", zap.Error(err))
		}

		if err := e.swipe(args[0], args[1], action); err != nil {
			e.fatal("recording swipe", zap.Error(err))
		}
		if err := e.save(); err != nil {
			e.fatal("saving", zap.Error(err))
		}
	},
}

var swipeCmd = &cobra.Command{
	Use:   "swipe <user-id>",
	Short: "Swipe through ranked candidates interactively",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e := setup()
		defer e.close()

		current := e.user(args[0])
		candidates, err := e.candidates(context.Background(), &current, false)
		if err != nil {
			e.fatal("filtering candidates", zap.Error(err))
		}

		if candidates.Len() == 0 {
			e.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
			return
		}

		err = e.swipeSession(current.ID, candidates)
		// Swipes made before an error or quit are kept.
		if saveErr := e.save(); saveErr != nil {
			e.logger.Error("saving", zap.Error(saveErr))
		}
		if err != nil && !errors.Is(err, errExit) {
			e.fatal("exiting", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(swipeCmd)
}

func (e *engine) swipeSession(userID string, candidates *profile.Profiles) error {
	items := []string{PromptLike, PromptReject, PromptSkip}
	if e.config.Matching.ExcludeFile != "" {
		items = append(items, PromptBlock)
	}
	items = append(items, PromptQuit)

	for _, candidate := range candidates.Items {
		fmt.Printf("\n%s, %d, %s (%s)\n", candidate.Name, candidate.Age, candidate.Location, candidate.RelationshipGoal)
		fmt.Printf("  interests: %s\n", strings.Join(candidate.Interests, ", "))
		if candidate.Bio != "" {
			fmt.Printf("  %s\n", candidate.Bio)
		}
		fmt.Printf("  match score: %.1f (%s)\n", candidate.MatchScore, matching.QualityOf(candidate.MatchScore))

		prompt := promptui.Select{
			Label: "Swipe?",
			Items: items,
		}
		_, choice, err := prompt.Run()
		if err != nil {
			return err
		}

		switch choice {
		case PromptLike:
			err = e.swipe(userID, candidate.ID, profile.ActionLike)
		case PromptReject:
			err = e.swipe(userID, candidate.ID, profile.ActionReject)
		case PromptBlock:
			if err = filtering.AppendBlock(e.config.Matching.ExcludeFile, userID, candidate.ID); err == nil {
				e.logger.Info("appended to exclude file",
					zap.String("filename", e.config.Matching.ExcludeFile),
					zap.String("target_id", candidate.ID),
				)
			}
		case PromptSkip:
			continue
		case PromptQuit:
			return errExit
		default:
			return fmt.Errorf("invalid choice: %s", choice)
		}

		if errors.Is(err, matching.ErrSwipeLimit) {
			e.logger.Info("exiting", zap.String("reason", "daily swipe limit reached"))
			return errExit
		}
		if err != nil {
			return err
		}
	}

	e.logger.Info("no more candidates", zap.Int("count", candidates.Len()))
	return nil
}

func (e *engine) swipe(userID, targetID string, action profile.Action) error {
	swipe, mutual, err := e.store.Swipe(strings.TrimSpace(userID), strings.TrimSpace(targetID), action)
	if err != nil {
		return err
	}

	e.logger.Info("swipe recorded",
		zap.String("swipe_id", swipe.ID),
		zap.String("user_id", swipe.UserID),
		zap.String("target_id", swipe.TargetID),
		zap.String("action", string(swipe.Action)),
	)
	if mutual {
		fmt.Printf("It's a match! Try: %s icebreaker %s %s\n", app, swipe.UserID, swipe.TargetID)
	}
	return nil
}
