package gita

import "fmt"

// Position addresses one verse.
type Position struct {
	Chapter int
	Verse   int
}

func (p Position) String() string { return fmt.Sprintf("%d.%d", p.Chapter, p.Verse) }

// HasPrevious reports whether a verse precedes p in reading order.
func (l *Library) HasPrevious(p Position) bool {
	return p.Verse > 1 || p.Chapter > 1
}

// HasNext reports whether a verse follows p in reading order. Verse counts
// come from the chapter table.
func (l *Library) HasNext(p Position) bool {
	return p.Verse < l.verseCount(p.Chapter) || p.Chapter < l.lastChapter()
}

// Next steps forward one verse, moving to the first verse of the following
// chapter at a chapter's end.
func (l *Library) Next(p Position) (Position, bool) {
	if !l.HasNext(p) {
		return p, false
	}
	if p.Verse < l.verseCount(p.Chapter) {
		return Position{Chapter: p.Chapter, Verse: p.Verse + 1}, true
	}
	return Position{Chapter: p.Chapter + 1, Verse: 1}, true
}

// Previous steps back one verse, moving to the last verse of the preceding
// chapter at a chapter's start.
func (l *Library) Previous(p Position) (Position, bool) {
	if !l.HasPrevious(p) {
		return p, false
	}
	if p.Verse > 1 {
		return Position{Chapter: p.Chapter, Verse: p.Verse - 1}, true
	}
	prev := p.Chapter - 1
	last := l.verseCount(prev)
	if last < 1 {
		last = 1
	}
	return Position{Chapter: prev, Verse: last}, true
}

func (l *Library) verseCount(chapter int) int {
	if ch, ok := l.GetChapterInfo(chapter); ok {
		return ch.VerseCount
	}
	return 0
}

func (l *Library) lastChapter() int {
	if len(l.chapters) == 0 {
		return 0
	}
	return l.chapters[len(l.chapters)-1].Number
}
