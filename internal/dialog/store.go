package dialog

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldops/internal/state"
)

// Store persists per-chat drafts in the KV backend. Drafts never
// expire on their own: a draft lives until it is committed, cancelled
// or replaced by a new flow.
type Store struct {
	kv state.KVStore
}

func NewStore(kv state.KVStore) *Store {
	return &Store{kv: kv}
}

func draftKey(chatID int64) string {
	return fmt.Sprintf("dialog:%d", chatID)
}

// Get returns the chat's draft, or nil when the chat is idle.
func (s *Store) Get(ctx context.Context, chatID int64) (*Draft, error) {
	raw, err := s.kv.Get(ctx, draftKey(chatID))
	if err != nil {
		if err == state.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

// Save replaces the chat's draft.
func (s *Store) Save(ctx context.Context, chatID int64, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.kv.Set(ctx, draftKey(chatID), string(raw), 0); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Clear drops the chat's draft, ending any conversation in progress.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	if err := s.kv.Del(ctx, draftKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
