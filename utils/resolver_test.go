package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch(t *testing.T) {
	doc := map[string]string{"h1": "", ".title": "ゴルフポロ", ".name": "unused"}
	var tried []string

	extract := func(d map[string]string, sel string) (string, bool) {
		tried = append(tried, sel)
		v := d[sel]
		return v, v != ""
	}

	got, ok := FirstMatch(doc, Chain([]string{"h1", ".title", ".name"}, extract)...)

	assert.True(t, ok)
	assert.Equal(t, "ゴルフポロ", got)
	assert.Equal(t, []string{"h1", ".title"}, tried)
}

func TestFirstMatch_NoHit(t *testing.T) {
	never := func(int) (string, bool) { return "", false }

	got, ok := FirstMatch[int, string](1, never, never)

	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
}
