package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"after3am/backend/internal/model"
	"after3am/backend/internal/prompt"
)

// Local store keys.
const (
	KeyHistory  = "conversationHistory"
	KeyLastMode = "lastMode"
	KeyDevMode  = "devMode"

	// Single-turn keys written by older clients.
	KeyLastQuestion = "lastQuestion"
	KeyLastResponse = "lastResponse"
)

// Load restores the history and mode from the store. Older single-turn
// entries are migrated into the history when no history exists yet.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(ctx, KeyHistory)
	if err != nil {
		return fmt.Errorf("could not load history: %w", err)
	}
	if ok {
		var history []model.Message
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			slog.Warn("Discarding unreadable conversation history", "error", err)
		} else {
			s.history = history
		}
	} else if err := s.migrateLegacyLocked(ctx); err != nil {
		return err
	}

	saved, ok, err := s.store.Get(ctx, KeyLastMode)
	if err != nil {
		return fmt.Errorf("could not load mode: %w", err)
	}
	if m, valid := prompt.Lookup(saved); ok && valid {
		s.mode = m
	}
	s.rotator.OnModeChange(s.mode)
	return nil
}

func (s *Session) migrateLegacyLocked(ctx context.Context) error {
	question, hasQuestion, err := s.store.Get(ctx, KeyLastQuestion)
	if err != nil {
		return fmt.Errorf("could not load legacy question: %w", err)
	}
	response, hasResponse, err := s.store.Get(ctx, KeyLastResponse)
	if err != nil {
		return fmt.Errorf("could not load legacy response: %w", err)
	}
	if !hasQuestion {
		return nil
	}

	now := s.now()
	s.history = []model.Message{model.NewMessage(model.RoleUser, question, now)}
	if hasResponse && response != "" {
		s.history = append(s.history, model.NewMessage(model.RoleAssistant, response, now))
	}
	s.persistHistoryLocked(ctx)

	for _, key := range []string{KeyLastQuestion, KeyLastResponse} {
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("Failed to remove legacy entry", "key", key, "error", err)
		}
	}
	slog.Info("Migrated single-turn conversation", "messages", len(s.history))
	return nil
}

// persistHistoryLocked writes the history. Failures are logged; the
// in-memory history stays authoritative.
func (s *Session) persistHistoryLocked(ctx context.Context) {
	data, err := json.Marshal(s.history)
	if err != nil {
		slog.Error("Failed to encode conversation history", "error", err)
		return
	}
	if err := s.store.Set(context.WithoutCancel(ctx), KeyHistory, string(data)); err != nil {
		slog.Warn("Failed to persist conversation history", "error", err)
	}
}

// DevMode reports the persisted developer override of the time gate.
func (s *Session) DevMode(ctx context.Context) bool {
	raw, ok, err := s.store.Get(ctx, KeyDevMode)
	if err != nil || !ok {
		return false
	}
	on, _ := strconv.ParseBool(raw)
	return on
}

func (s *Session) SetDevMode(ctx context.Context, on bool) error {
	return s.store.Set(ctx, KeyDevMode, strconv.FormatBool(on))
}
