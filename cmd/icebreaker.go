package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/ai"
	"github.com/spigell/matchmaker/internal/ai/gemini"
	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/secrets"
)

const geminiKeyEnv = "GEMINI_API_KEY"

var icebreakerCmd = &cobra.Command{
	Use:   "icebreaker <user-id> <match-id>",
	Short: "Draft a first message to a mutual match with Gemini",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		e := setup()
		defer e.close()

		from, to := e.user(args[0]), e.user(args[1])
		if !e.store.CheckMatch(from.ID, to.ID) {
			e.fatal("users are not a mutual match",
				zap.String("user_id", from.ID),
				zap.String("target_id", to.ID),
			)
		}

		if !e.config.AI.Enabled {
			e.fatal("ai is disabled", zap.String("hint", "set ai.enabled to true"))
		}

		writer, err := newIcebreakerWriter(ctx, e.config.AI.Gemini, e.logger)
		if err != nil {
			e.fatal("building the icebreaker writer", zap.Error(err))
		}
		if tone, _ := cmd.Flags().GetString("tone"); tone != "" {
			writer.SetTone(tone)
		}

		icebreaker, err := writer.Icebreaker(ctx, &from, &to)
		if err != nil {
			e.fatal("drafting icebreaker", zap.Error(err))
		}

		printIcebreaker(icebreaker)
	},
}

func init() {
	rootCmd.AddCommand(icebreakerCmd)

	icebreakerCmd.Flags().String("tone", "", "tone of the message, e.g. playful or formal")
}

func newIcebreakerWriter(ctx context.Context, cfg *GeminiConfig, l *zap.Logger) (*gemini.Writer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   geminiKeyEnv,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.gemini.api-key-file)", err)
	}

	aiLogger := logger.WithAIFields(l, "gemini", cfg.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, aiLogger)
	if err != nil {
		return nil, err
	}

	writer := gemini.NewWriter(generator, cfg.MaxLogLength, aiLogger)
	if cfg.Tone != "" {
		writer.SetTone(cfg.Tone)
	}
	return writer, nil
}

func printIcebreaker(icebreaker *ai.Icebreaker) {
	fmt.Println(icebreaker.Opener)
	if len(icebreaker.Topics) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Follow-up topics:")
	for _, topic := range icebreaker.Topics {
		fmt.Printf("  - %s\n", topic)
	}
}
