// Package ambient owns the "ambient audio enabled" flag shared by every part
// of the client that shows or plays the background track.
package ambient

import (
	"sync"
	"sync/atomic"
)

// Track describes the looped background audio.
type Track struct {
	Source string
	Volume float64
	Loop   bool
}

// DefaultTrack is the late night ambience.
var DefaultTrack = Track{
	Source: "/3am-in-a-deserted-spaceport-17456.mp3",
	Volume: 0.2,
	Loop:   true,
}

// Switch is the single owner of the flag. Readers call Enabled or Subscribe;
// only the holder of the *Switch may change it.
type Switch struct {
	enabled atomic.Bool

	mu     sync.Mutex
	nextID int
	subs   map[int]chan bool
}

func NewSwitch() *Switch {
	return &Switch{subs: make(map[int]chan bool)}
}

// Enabled reports the current state.
func (s *Switch) Enabled() bool {
	return s.enabled.Load()
}

// Set changes the state and notifies subscribers when it changed.
func (s *Switch) Set(on bool) {
	if s.enabled.Swap(on) == on {
		return
	}
	s.publish(on)
}

// Toggle flips the state and returns the new value.
func (s *Switch) Toggle() bool {
	for {
		cur := s.enabled.Load()
		if s.enabled.CompareAndSwap(cur, !cur) {
			s.publish(!cur)
			return !cur
		}
	}
}

// Subscribe returns a channel receiving every state change and a func that
// ends the subscription. A slow reader only ever sees the latest state.
func (s *Switch) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Switch) publish(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// Replace a stale pending value with the newest one.
		select {
		case <-ch:
		default:
		}
		ch <- on
	}
}
