package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldUserID is the structured log field key for the acting user.
	FieldUserID = "user_id"
	// FieldTargetID is the structured log field key for the user acted upon.
	FieldTargetID = "target_id"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PairFields describes a user acting on a target. Empty ids are skipped.
func PairFields(userID, targetID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldUserID, Value: userID},
		StringField{Key: FieldTargetID, Value: targetID},
	)
}

// WithPair attaches the pair fields to the logger.
func WithPair(logger *zap.Logger, userID, targetID string) *zap.Logger {
	return WithFields(logger, PairFields(userID, targetID)...)
}

// AIFields returns the fields describing the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAIFields attaches the AI fields to the logger.
func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}
