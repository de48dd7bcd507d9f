// Package typewriter reveals text one rune at a time at a fixed pace.
package typewriter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the delay between two revealed runes.
const DefaultInterval = 40 * time.Millisecond

// Frame is handed to the render function for every revealed rune.
type Frame struct {
	ID       string
	Revealed string
	Delta    string
	// Reset marks the first frame after the revealed text was discarded,
	// either because the ID changed or the text was replaced.
	Reset bool
}

// Typewriter animates the latest text given to Update. At most one
// animation loop runs at a time.
type Typewriter struct {
	mu       sync.Mutex
	interval time.Duration
	render   func(Frame)
	ctx      context.Context
	stop     context.CancelFunc

	id      string
	target  []rune
	pos     int
	reset   bool
	running bool
	idle    chan struct{}
}

// New returns a Typewriter calling render for every revealed rune. render
// runs with the typewriter locked and must not call back into it.
func New(interval time.Duration, render func(Frame)) *Typewriter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Typewriter{interval: interval, render: render, ctx: ctx, stop: stop}
}

// Update sets the text to reveal. Growing text continues from the current
// position; a new id or text that no longer starts with what is already
// revealed starts over.
func (t *Typewriter) Update(id, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() != nil {
		return
	}

	runes := []rune(text)
	if id != t.id || !hasPrefix(runes, t.target[:t.pos]) {
		t.id = id
		t.pos = 0
		t.reset = true
	}
	t.target = runes

	if t.pos < len(t.target) && !t.running {
		t.running = true
		t.idle = make(chan struct{})
		go t.loop(t.idle)
	}
}

func (t *Typewriter) loop(idle chan struct{}) {
	limiter := rate.NewLimiter(rate.Every(t.interval), 1)
	for {
		err := limiter.Wait(t.ctx)

		t.mu.Lock()
		if err != nil || t.pos >= len(t.target) {
			t.running = false
			close(idle)
			t.mu.Unlock()
			return
		}
		t.pos++
		frame := Frame{
			ID:       t.id,
			Revealed: string(t.target[:t.pos]),
			Delta:    string(t.target[t.pos-1]),
			Reset:    t.reset,
		}
		t.reset = false
		t.render(frame)
		t.mu.Unlock()
	}
}

// Revealed returns the text shown so far.
func (t *Typewriter) Revealed() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.target[:t.pos])
}

// Wait blocks until all text is revealed, the typewriter is stopped or ctx
// is done.
func (t *Typewriter) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		running, idle := t.running, t.idle
		t.mu.Unlock()
		if !running {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop ends the animation. Later updates are ignored.
func (t *Typewriter) Stop() {
	t.stop()
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}
