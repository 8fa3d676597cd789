package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/ai"
	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/profile"
	"github.com/spigell/matchmaker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultTone         = "Warm"
	maxToneRunes        = 60
)

var _ ai.Writer = (*Writer)(nil)

// Writer drafts icebreakers with a Gemini generator.
type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	tone      string
}

func NewWriter(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Writer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		tone:      defaultTone,
	}
}

// SetTone overrides the tone line of the prompt. It is flattened to one line.
func (w *Writer) SetTone(tone string) {
	tone = sanitizeLine(tone, maxToneRunes)
	if tone == "" {
		tone = defaultTone
	}
	w.tone = tone
}

type promptProfile struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Location  string   `json:"location,omitempty"`
	Goal      string   `json:"relationshipGoal,omitempty"`
	Language  string   `json:"language,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Bio       string   `json:"bio,omitempty"`
}

type promptPayload struct {
	Sender          promptProfile `json:"sender"`
	Recipient       promptProfile `json:"recipient"`
	SharedInterests []string      `json:"sharedInterests,omitempty"`
	SharedSkills    []string      `json:"sharedSkills,omitempty"`
	MatchScore      float64       `json:"matchScore"`
}

func (w *Writer) Icebreaker(ctx context.Context, from, to *profile.Profile) (*ai.Icebreaker, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("both profiles are required")
	}

	breakdown := matching.Breakdown(from, to)
	payload := promptPayload{
		Sender:          toPromptProfile(from),
		Recipient:       toPromptProfile(to),
		SharedInterests: breakdown.SharedInterests,
		SharedSkills:    breakdown.SharedSkills,
		MatchScore:      breakdown.Total,
	}

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal icebreaker payload: %w", err)
	}

	system := buildPrompt(from, to, w.tone)

	w.logger.Debug("icebreaker request",
		zap.String("user_id", from.ID),
		zap.String("target_id", to.ID),
		zap.Int("prompt_length", utf8.RuneCount(message)),
		zap.String("prompt_preview", utils.TruncateForLog(string(message), w.maxLogLen)),
	)

	raw, err := w.generator.GenerateContent(ctx, system, string(message))
	if err != nil {
		return nil, err
	}

	w.logger.Debug("icebreaker response",
		zap.String("user_id", from.ID),
		zap.String("target_id", to.ID),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	icebreaker, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	icebreaker.Raw = raw
	return icebreaker, nil
}

func toPromptProfile(p *profile.Profile) promptProfile {
	return promptProfile{
		Name:      firstName(p.Name),
		Age:       p.Age,
		Location:  p.Location,
		Goal:      p.RelationshipGoal,
		Language:  p.Language,
		Interests: p.Interests,
		Skills:    p.Skills,
		Bio:       p.Bio,
	}
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// buildPrompt writes in the recipient's language and falls back to the sender's.
func buildPrompt(from, to *profile.Profile, tone string) string {
	language := strings.TrimSpace(to.Language)
	if language == "" {
		language = strings.TrimSpace(from.Language)
	}
	if language == "" {
		language = "English"
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Write a short first message. Language: {{LANGUAGE}}. Tone: {{TONE}}. Reply as JSON {\"opener\": string, \"topics\": [string]}."
	}
	prompt := strings.ReplaceAll(template, "{{LANGUAGE}}", sanitizeLine(language, maxToneRunes))
	return strings.ReplaceAll(prompt, "{{TONE}}", tone)
}

func parseResponse(raw string) (*ai.Icebreaker, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	opener := coerceString(data["opener"])
	if opener == "" {
		return nil, fmt.Errorf("gemini response has no opener")
	}

	var topics []string
	if items, ok := data["topics"].([]any); ok {
		for _, item := range items {
			if topic := coerceString(item); topic != "" {
				topics = append(topics, topic)
			}
		}
	}

	return &ai.Icebreaker{Opener: opener, Topics: topics}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// sanitizeLine collapses whitespace, swaps square brackets so a value cannot
// open a prompt section, and caps the length in runes.
func sanitizeLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	runes := []rune(s)
	if len(runes) > limit {
		s = strings.TrimSpace(string(runes[:limit]))
	}
	return s
}
