package ambient

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwitch(t *testing.T) {
	s := NewSwitch()
	assert.False(t, s.Enabled())

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Set(true)
	assert.True(t, s.Enabled())
	assert.True(t, <-ch)

	s.Set(true)
	select {
	case v := <-ch:
		t.Fatalf("unexpected notification %v for an unchanged state", v)
	default:
	}

	assert.False(t, s.Toggle())
	assert.False(t, <-ch)
}

func TestSwitch_SlowReaderSeesLatest(t *testing.T) {
	s := NewSwitch()
	ch, cancel := s.Subscribe()

	s.Set(true)
	s.Set(false)
	s.Set(true)

	assert.True(t, <-ch)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}

func TestSwitch_ConcurrentReaders(t *testing.T) {
	s := NewSwitch()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Enabled()
			}
		}()
	}
	for i := 0; i < 100; i++ {
		s.Toggle()
	}
	wg.Wait()
	assert.False(t, s.Enabled())
}
