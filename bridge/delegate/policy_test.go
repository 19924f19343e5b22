package delegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldDelegate(t *testing.T) {
	p := NewHeuristicPolicy()

	ok, _ := p.ShouldDelegate("refactor the cache eviction logic")
	assert.True(t, ok)

	ok, reason := p.ShouldDelegate("")
	assert.False(t, ok)
	assert.Contains(t, reason, "empty")

	ok, reason = p.ShouldDelegate("   ")
	assert.False(t, ok)
	assert.Contains(t, reason, "empty")

	ok, reason = p.ShouldDelegate("fix")
	assert.False(t, ok)
	assert.Contains(t, reason, "vague")
}

func TestPreparePrompt(t *testing.T) {
	p := NewHeuristicPolicy()

	diff := p.PreparePrompt("rename the helper", string(FormatDiff))
	assert.Contains(t, diff, "rename the helper")
	assert.Contains(t, diff, "unified diff")

	full := p.PreparePrompt("rename the helper", string(FormatFullFile))
	assert.Contains(t, full, "complete contents")

	expl := p.PreparePrompt("rename the helper", string(FormatExplanation))
	assert.Contains(t, expl, "explanation")

	unknown := p.PreparePrompt("rename the helper", "mystery")
	assert.Equal(t, "rename the helper", unknown)
}
