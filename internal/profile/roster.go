package profile

import (
	"fmt"
	"os"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed sample_users.yaml
var sampleUsers []byte

// roster files may be a plain list or wrapped under a "users" key.
type rosterFile struct {
	Users []map[string]any `yaml:"users"`
}

// LoadRoster reads profiles from a YAML or JSON file.
func LoadRoster(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %q: %w", path, err)
	}

	profiles, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("roster %q: %w", path, err)
	}
	return profiles, nil
}

// SampleUsers returns the built-in seed roster.
func SampleUsers() []Profile {
	profiles, err := ParseRoster(sampleUsers)
	if err != nil {
		panic(fmt.Sprintf("embedded sample users are broken: %v", err))
	}
	return profiles
}

func ParseRoster(data []byte) ([]Profile, error) {
	var items []map[string]any

	var list []map[string]any
	if err := yaml.Unmarshal(data, &list); err == nil {
		items = list
	} else {
		var wrapped rosterFile
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parse roster: %w", err)
		}
		items = wrapped.Users
	}

	profiles := make([]Profile, 0, len(items))
	for i, item := range items {
		p, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// Decode converts a loosely typed record, as produced by YAML or a table
// store, into a validated Profile.
func Decode(raw map[string]any) (*Profile, error) {
	var p Profile
	cfg := &mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	normalized := p.Normalized()
	return &normalized, nil
}
