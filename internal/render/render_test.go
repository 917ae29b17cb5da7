package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/gitacache/gita"
)

func TestChapters(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, 100)

	require.NoError(t, r.Chapters(gita.Chapters()[:2]))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Arjuna Vishada Yoga")
	assert.Contains(t, lines[0], "47 verses")
	assert.Contains(t, lines[1], "Sankhya Yoga")
	assert.NotContains(t, buf.String(), "\x1b[", "buffer output is plain")
}

func TestChaptersEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, 0).Chapters(nil))
	assert.Contains(t, buf.String(), "no chapters match")
}

func TestChapter(t *testing.T) {
	var buf bytes.Buffer
	ch := gita.Chapters()[11]

	require.NoError(t, New(&buf, 80).Chapter(ch, []int{1, 2, 3}))
	out := buf.String()
	assert.Contains(t, out, "Chapter 12: Bhakti Yoga")
	assert.Contains(t, out, "1 2 3")
	assert.Contains(t, out, "3 of 20 verses available")
}

func TestVerse(t *testing.T) {
	var v gita.Verse
	require.NoError(t, json.Unmarshal([]byte(`{
		"verse": 47,
		"text": "karmanye",
		"translation": "Action alone.",
		"commentaries": {"First": "one", "Second": "two"}
	}`), &v))

	var buf bytes.Buffer
	nav := Nav{
		Prev: gita.Position{Chapter: 2, Verse: 46}, HasPrev: true,
		Next: gita.Position{Chapter: 2, Verse: 48}, HasNext: true,
	}
	require.NoError(t, New(&buf, 80).Verse(gita.Chapters()[1], v, nav))

	out := buf.String()
	assert.Contains(t, out, "Verse 2.47")
	assert.Contains(t, out, "karmanye")
	assert.Contains(t, out, "Action alone.")
	assert.Contains(t, out, "one")
	assert.NotContains(t, out, "two")
	assert.NotContains(t, out, "Transliteration")
	assert.Contains(t, out, "← 2.46")
	assert.Contains(t, out, "2.48 →")
}

func TestFooterEnds(t *testing.T) {
	r := New(&bytes.Buffer{}, 40)

	first := r.footer(Nav{Next: gita.Position{Chapter: 1, Verse: 2}, HasNext: true})
	assert.NotContains(t, first, "←")
	assert.True(t, strings.HasSuffix(first, "1.2 →"))

	last := r.footer(Nav{Prev: gita.Position{Chapter: 18, Verse: 77}, HasPrev: true})
	assert.NotContains(t, last, "→")
	assert.True(t, strings.HasPrefix(last, "← 18.77"))
}
