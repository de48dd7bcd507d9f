package prompt

import (
	"math/rand/v2"
	"sync"
)

// LateNightPrompts are the questions offered in the 3AM prompt mode.
var LateNightPrompts = []string{
	"What's something you regret that rhymes with 'lasagna'?",
	"If your shadow could speak, what would it whisper when you're not listening?",
	"What color is the voice in your head when you're falling asleep?",
	"If you could rename the moon, what would you call it and why?",
	"What's the strangest thing you've ever done while everyone else was sleeping?",
	"If your reflection could step out of the mirror for one night, where would it go?",
	"What's a memory you're not sure is real or a dream?",
	"If you could taste a sound, which would be the most delicious?",
	"What's something you've never told anyone because it sounds too strange?",
	"If you could speak to your house when no one else is home, what would you ask it?",
}

// Rotator keeps the current 3AM prompt. It only changes on explicit events:
// entering the prompt mode, leaving it, or submitting while in it.
type Rotator struct {
	mu      sync.Mutex
	intn    func(n int) int
	current string
}

// NewRotator returns a Rotator drawing from the global random source.
func NewRotator() *Rotator {
	return NewRotatorWithSource(rand.IntN)
}

// NewRotatorWithSource returns a Rotator that picks indexes with intn.
func NewRotatorWithSource(intn func(n int) int) *Rotator {
	return &Rotator{intn: intn}
}

// OnModeChange draws a fresh prompt when switching into the prompt mode and
// clears it when switching to any other mode.
func (r *Rotator) OnModeChange(mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode == ModePrompt {
		r.draw()
		return
	}
	r.current = ""
}

// OnSubmit draws the next prompt after a submission in the prompt mode.
func (r *Rotator) OnSubmit(mode Mode) {
	if mode != ModePrompt {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw()
}

// Current returns the active prompt, or "" outside the prompt mode.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Placeholder returns the rotating prompt in prompt mode, otherwise the
// mode's static placeholder.
func (r *Rotator) Placeholder(mode Mode) string {
	if mode == ModePrompt {
		if current := r.Current(); current != "" {
			return current
		}
	}
	return PlaceholderFor(string(mode))
}

func (r *Rotator) draw() {
	r.current = LateNightPrompts[r.intn(len(LateNightPrompts))]
}
