package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/matchmaker/internal/profile"
)

type stubGenerator struct {
	system   string
	message  string
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.system = system
	s.message = message
	return s.response, s.err
}

func icebreakerPair() (*profile.Profile, *profile.Profile) {
	alice := &profile.Profile{
		ID:               "1",
		Name:             "Alice Smith",
		Age:              25,
		Location:         "New York",
		RelationshipGoal: profile.GoalDating,
		Language:         "English",
		Interests:        []string{"hiking", "coffee", "jazz"},
	}
	bob := &profile.Profile{
		ID:               "2",
		Name:             "Bob Jones",
		Age:              27,
		Location:         "New York",
		RelationshipGoal: profile.GoalDating,
		Language:         "Spanish",
		Interests:        []string{"coffee", "jazz"},
	}
	return alice, bob
}

func TestWriterIcebreaker(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: "```json\n{\"opener\": \" Hola Bob! \", \"topics\": [\"jazz\", \"\", \"coffee\"]}\n```"}
	core, observed := observer.New(zapcore.DebugLevel)
	w := NewWriter(gen, 0, zap.New(core))
	w.SetTone("  playful\n and [short] ")

	alice, bob := icebreakerPair()
	got, err := w.Icebreaker(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Opener != "Hola Bob!" {
		t.Fatalf("unexpected opener: %q", got.Opener)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "jazz" || got.Topics[1] != "coffee" {
		t.Fatalf("unexpected topics: %v", got.Topics)
	}
	if got.Raw != gen.response {
		t.Fatalf("expected raw response to be kept")
	}

	if !strings.Contains(gen.system, "Spanish") {
		t.Fatalf("expected recipient language in prompt, got %q", gen.system)
	}
	if !strings.Contains(gen.system, "playful and (short)") {
		t.Fatalf("expected sanitized tone in prompt, got %q", gen.system)
	}

	var payload promptPayload
	if err := json.Unmarshal([]byte(gen.message), &payload); err != nil {
		t.Fatalf("message is not json: %v", err)
	}
	if payload.Sender.Name != "Alice" || payload.Recipient.Name != "Bob" {
		t.Fatalf("expected first names only, got %q and %q", payload.Sender.Name, payload.Recipient.Name)
	}
	if len(payload.SharedInterests) != 2 {
		t.Fatalf("expected 2 shared interests, got %v", payload.SharedInterests)
	}
	if payload.MatchScore <= 0 {
		t.Fatalf("expected positive match score, got %v", payload.MatchScore)
	}

	if n := observed.FilterMessage("icebreaker request").Len(); n != 1 {
		t.Fatalf("expected 1 request log, got %d", n)
	}
}

func TestWriterIcebreakerErrors(t *testing.T) {
	t.Parallel()

	alice, bob := icebreakerPair()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		gen     *stubGenerator
		from    *profile.Profile
		to      *profile.Profile
		wantErr string
	}{
		{name: "missing profile", gen: &stubGenerator{}, from: alice, wantErr: "both profiles"},
		{name: "generator failure", gen: &stubGenerator{err: boom}, from: alice, to: bob, wantErr: "boom"},
		{name: "no opener", gen: &stubGenerator{response: `{"topics":["jazz"]}`}, from: alice, to: bob, wantErr: "no opener"},
		{name: "not json", gen: &stubGenerator{response: "hello there"}, from: alice, to: bob, wantErr: "parse gemini response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewWriter(tt.gen, 0, nil).Icebreaker(context.Background(), tt.from, tt.to)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildPromptLanguageFallback(t *testing.T) {
	t.Parallel()

	from := &profile.Profile{Language: "German"}
	if got := buildPrompt(from, &profile.Profile{}, "Warm"); !strings.Contains(got, "German") {
		t.Fatalf("expected sender language fallback, got %q", got)
	}
	if got := buildPrompt(&profile.Profile{}, &profile.Profile{}, "Warm"); !strings.Contains(got, "English") {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestSetToneDefaults(t *testing.T) {
	t.Parallel()

	w := NewWriter(&stubGenerator{}, 10, nil)
	w.SetTone("   ")
	if w.tone != defaultTone {
		t.Fatalf("expected default tone, got %q", w.tone)
	}

	w.SetTone(strings.Repeat("a", 100))
	if len(w.tone) != maxToneRunes {
		t.Fatalf("expected tone capped at %d, got %d", maxToneRunes, len(w.tone))
	}
}
