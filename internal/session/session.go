// Package session keeps a client's conversation: the message history, the
// selected mode and the single in-flight reply stream.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"after3am/backend/internal/localstore"
	"after3am/backend/internal/model"
	"after3am/backend/internal/prompt"
)

// FallbackPhrase replaces a reply whose stream failed.
const FallbackPhrase = "The void is silent tonight. Try again when the stars align."

// ContextLimit is the number of history entries sent with a request.
const ContextLimit = 10

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrUnknownMode = errors.New("unknown mode")
)

// States and events of the stream state machine.
const (
	StateIdle      = "idle"
	StateStreaming = "streaming"

	eventSubmit = "submit"
	eventFinish = "finish"
	eventFail   = "fail"
	eventCancel = "cancel"
)

// Streamer sends a chat request and reports text fragments as they arrive.
type Streamer interface {
	Stream(ctx context.Context, req *model.ChatRequest, onText func(string)) error
}

// Update describes the assistant reply of a turn after every change.
type Update struct {
	TurnID    string
	Content   string
	Streaming bool
	Failed    bool
}

type Option func(*Session)

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRotator sets the 3AM prompt rotator.
func WithRotator(r *prompt.Rotator) Option {
	return func(s *Session) { s.rotator = r }
}

// WithListener registers fn for reply updates. fn runs while the session is
// locked and must not call back into it.
func WithListener(fn func(Update)) Option {
	return func(s *Session) { s.listener = fn }
}

type Session struct {
	mu       sync.Mutex
	store    localstore.Store
	client   Streamer
	state    *fsm.FSM
	rotator  *prompt.Rotator
	now      func() time.Time
	listener func(Update)

	history []model.Message
	mode    prompt.Mode

	// turn identifies the current stream; callbacks of older turns are ignored.
	turn   uint64
	cancel context.CancelFunc
}

func New(store localstore.Store, client Streamer, opts ...Option) *Session {
	s := &Session{
		store:  store,
		client: client,
		mode:   prompt.InitialMode,
		now:    time.Now,
		state: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: eventSubmit, Src: []string{StateIdle}, Dst: StateStreaming},
				{Name: eventFinish, Src: []string{StateStreaming}, Dst: StateIdle},
				{Name: eventFail, Src: []string{StateStreaming}, Dst: StateIdle},
				{Name: eventCancel, Src: []string{StateStreaming}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rotator == nil {
		s.rotator = prompt.NewRotator()
	}
	return s
}

// Submit sends text as the next user turn and blocks until its reply stream
// ends. A stream that is still running is cancelled first. Stream failures
// never surface as errors: the reply is replaced by FallbackPhrase instead.
// Cancellation leaves the partial reply untouched.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyPrompt
	}

	s.mu.Lock()
	s.abortLocked()
	s.turn++
	turn := s.turn
	turnID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.history = append(s.history, model.NewMessage(model.RoleUser, text, s.now()))
	s.persistHistoryLocked(ctx)

	mode := s.mode
	s.rotator.OnSubmit(mode)
	req := &model.ChatRequest{
		Prompt:              text,
		Mode:                string(mode),
		ConversationHistory: tail(s.history, ContextLimit),
	}
	s.event(eventSubmit)
	s.mu.Unlock()

	var acc strings.Builder
	assistant := -1
	err := s.client.Stream(runCtx, req, func(fragment string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.turn != turn {
			return
		}
		acc.WriteString(fragment)
		content := acc.String()
		if assistant < 0 {
			s.history = append(s.history, model.NewMessage(model.RoleAssistant, content, s.now()))
			assistant = len(s.history) - 1
		} else {
			s.history[assistant].Content = content
		}
		s.persistHistoryLocked(ctx)
		s.notifyLocked(Update{TurnID: turnID, Content: content, Streaming: true})
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn != turn {
		// Superseded by Submit, Cancel or Clear.
		return nil
	}
	cancel()
	s.cancel = nil

	switch {
	case err == nil:
		s.event(eventFinish)
		s.notifyLocked(Update{TurnID: turnID, Content: acc.String()})
	case errors.Is(err, context.Canceled):
		s.event(eventCancel)
		s.notifyLocked(Update{TurnID: turnID, Content: acc.String()})
	default:
		slog.Warn("Reply stream failed, showing fallback", "turn", turnID, "mode", mode, "error", err)
		if assistant < 0 {
			s.history = append(s.history, model.NewMessage(model.RoleAssistant, FallbackPhrase, s.now()))
		} else {
			s.history[assistant].Content = FallbackPhrase
		}
		s.persistHistoryLocked(ctx)
		s.event(eventFail)
		s.notifyLocked(Update{TurnID: turnID, Content: FallbackPhrase, Failed: true})
	}
	return nil
}

// Cancel aborts the in-flight stream, if any, without touching the history.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

// Clear cancels any stream, empties the history and deletes its persisted
// copy. The saved mode is kept.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
	s.history = nil
	return s.store.Delete(ctx, KeyHistory)
}

// SetMode selects the persona for the next requests. Stored messages are
// left untouched.
func (s *Session) SetMode(ctx context.Context, mode string) error {
	m, ok := prompt.Lookup(mode)
	if !ok {
		return ErrUnknownMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.rotator.OnModeChange(m)
	return s.store.Set(ctx, KeyLastMode, string(m))
}

func (s *Session) Mode() prompt.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Placeholder is the input hint for the current mode.
func (s *Session) Placeholder() string {
	return s.rotator.Placeholder(s.Mode())
}

// History returns a copy of the conversation.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.history...)
}

// State is StateIdle or StateStreaming.
func (s *Session) State() string {
	return s.state.Current()
}

// abortLocked cancels the in-flight stream and invalidates its callbacks.
func (s *Session) abortLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.turn++
	s.event(eventCancel)
}

func (s *Session) event(name string) {
	// The machine is internal bookkeeping, so it never sees caller contexts.
	if err := s.state.Event(context.Background(), name); err != nil {
		slog.Debug("Ignoring session state transition", "event", name, "state", s.state.Current(), "error", err)
	}
}

func (s *Session) notifyLocked(u Update) {
	if s.listener != nil {
		s.listener(u)
	}
}

func tail(history []model.Message, n int) []model.Message {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return append([]model.Message(nil), history...)
}
