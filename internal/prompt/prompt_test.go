package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionFor(t *testing.T) {
	testCases := []struct {
		name     string
		mode     string
		contains string
	}{
		{name: "Advice", mode: "advice", contains: "surreal, slightly unhinged advice"},
		{name: "Confession", mode: "confession", contains: "late-night confessions"},
		{name: "Tarot", mode: "tarot", contains: "tarot readings"},
		{name: "Prompt", mode: "prompt", contains: "asking strange questions"},
		{name: "Story", mode: "story", contains: "co-writing a strange story"},
		{name: "Dream", mode: "dream", contains: "Salvador Dali"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, InstructionFor(tc.mode), tc.contains)
		})
	}

	t.Run("Unknown modes resolve to the default instruction", func(t *testing.T) {
		def := InstructionFor("default")
		assert.Equal(t, def, InstructionFor("xyz"))
		assert.Equal(t, def, InstructionFor(""))
		assert.NotEqual(t, def, InstructionFor("advice"))
	})
}

func TestPlaceholderFor(t *testing.T) {
	assert.Equal(t, "Describe your ordinary day...", PlaceholderFor("dream"))
	assert.Equal(t, "Ask anything...", PlaceholderFor("nope"))
}

func TestLookup(t *testing.T) {
	m, ok := Lookup("tarot")
	assert.True(t, ok)
	assert.Equal(t, ModeTarot, m)

	_, ok = Lookup("default")
	assert.False(t, ok, "default is a fallback, not a selectable mode")

	_, ok = Lookup("Advice")
	assert.False(t, ok)
}

func TestModes(t *testing.T) {
	modes := Modes()
	assert.Len(t, modes, 6)
	assert.Equal(t, ModeAdvice, modes[0].ID)
	assert.Equal(t, "Surreal Advice", modes[0].Name)
	assert.Equal(t, ModeDream, modes[5].ID)
	for _, m := range modes {
		assert.NotEqual(t, ModeDefault, m.ID)
	}
}

func TestRotator(t *testing.T) {
	next := 0
	seq := func(n int) int {
		i := next % n
		next++
		return i
	}

	t.Run("Entering prompt mode draws a prompt", func(t *testing.T) {
		r := NewRotatorWithSource(seq)
		assert.Empty(t, r.Current())

		r.OnModeChange(ModePrompt)
		assert.Equal(t, LateNightPrompts[0], r.Current())
		assert.Equal(t, LateNightPrompts[0], r.Placeholder(ModePrompt))
	})

	t.Run("Submitting in prompt mode draws the next prompt", func(t *testing.T) {
		next = 0
		r := NewRotatorWithSource(seq)
		r.OnModeChange(ModePrompt)
		r.OnSubmit(ModePrompt)
		assert.Equal(t, LateNightPrompts[1], r.Current())
	})

	t.Run("Submitting in other modes leaves the prompt alone", func(t *testing.T) {
		next = 0
		r := NewRotatorWithSource(seq)
		r.OnSubmit(ModeAdvice)
		assert.Empty(t, r.Current())
		assert.Equal(t, 0, next)
	})

	t.Run("Leaving prompt mode clears the prompt", func(t *testing.T) {
		next = 0
		r := NewRotatorWithSource(seq)
		r.OnModeChange(ModePrompt)
		r.OnModeChange(ModeStory)
		assert.Empty(t, r.Current())
		assert.Equal(t, "Start a strange story...", r.Placeholder(ModeStory))
		assert.Equal(t, "Answer the 3AM prompt...", r.Placeholder(ModePrompt))
	})
}
