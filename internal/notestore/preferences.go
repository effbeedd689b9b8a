package notestore

import (
	"context"
	"encoding/json"
	"fmt"

	"simple-notes-be/pkg/kvstore"
)

type PreferenceStore interface {
	// Load returns (nil, nil) when nothing has been saved under name.
	Load(ctx context.Context, name string) (*Preferences, error)
	Save(ctx context.Context, name string, prefs Preferences) error
}

// persistedPreferences matches the layout the web client keeps in local
// storage.
type persistedPreferences struct {
	State   Preferences `json:"state"`
	Version int         `json:"version"`
}

// KVPreferenceStore keeps preferences as JSON in a key-value engine.
type KVPreferenceStore struct {
	engine kvstore.Engine
}

func NewKVPreferenceStore(engine kvstore.Engine) *KVPreferenceStore {
	return &KVPreferenceStore{engine: engine}
}

func preferenceKey(name string) string {
	return "prefs_" + name
}

func (p *KVPreferenceStore) Load(ctx context.Context, name string) (*Preferences, error) {
	raw, ok, err := p.engine.Get(ctx, preferenceKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var stored persistedPreferences
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &stored.State, nil
}

func (p *KVPreferenceStore) Save(ctx context.Context, name string, prefs Preferences) error {
	raw, err := json.Marshal(persistedPreferences{State: prefs})
	if err != nil {
		return err
	}
	if err := p.engine.Set(ctx, preferenceKey(name), raw); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return p.engine.Flush(ctx)
}
