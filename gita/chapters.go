package gita

import (
	"strconv"
	"strings"
)

// ChapterCount is the number of chapters in the text.
const ChapterCount = 18

// ChapterInfo is the static description of one chapter.
type ChapterInfo struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	SanskritName string `json:"sanskrit"`
	VerseCount   int    `json:"verses"`
}

// chapters is read-only. Accessors return copies.
var chapters = [ChapterCount]ChapterInfo{
	{Number: 1, Name: "Arjuna Vishada Yoga", SanskritName: "अर्जुन विषाद योग", VerseCount: 47},
	{Number: 2, Name: "Sankhya Yoga", SanskritName: "सांख्य योग", VerseCount: 72},
	{Number: 3, Name: "Karma Yoga", SanskritName: "कर्म योग", VerseCount: 43},
	{Number: 4, Name: "Jnana Karma Sanyasa Yoga", SanskritName: "ज्ञान कर्म संन्यास योग", VerseCount: 42},
	{Number: 5, Name: "Karma Sanyasa Yoga", SanskritName: "कर्म संन्यास योग", VerseCount: 29},
	{Number: 6, Name: "Dhyana Yoga", SanskritName: "ध्यान योग", VerseCount: 47},
	{Number: 7, Name: "Jnana Vijnana Yoga", SanskritName: "ज्ञान विज्ञान योग", VerseCount: 30},
	{Number: 8, Name: "Aksara Brahma Yoga", SanskritName: "अक्षर ब्रह्म योग", VerseCount: 28},
	{Number: 9, Name: "Raja Vidya Raja Guhya Yoga", SanskritName: "राज विद्या राज गुह्य योग", VerseCount: 34},
	{Number: 10, Name: "Vibhuti Yoga", SanskritName: "विभूति योग", VerseCount: 42},
	{Number: 11, Name: "Vishvarupa Darshana Yoga", SanskritName: "विश्वरूप दर्शन योग", VerseCount: 55},
	{Number: 12, Name: "Bhakti Yoga", SanskritName: "भक्ति योग", VerseCount: 20},
	{Number: 13, Name: "Ksetra Ksetrajna Vibhaga Yoga", SanskritName: "क्षेत्र क्षेत्रज्ञ विभाग योग", VerseCount: 35},
	{Number: 14, Name: "Gunatraya Vibhaga Yoga", SanskritName: "गुणत्रय विभाग योग", VerseCount: 27},
	{Number: 15, Name: "Purushottama Yoga", SanskritName: "पुरुषोत्तम योग", VerseCount: 20},
	{Number: 16, Name: "Daivasura Sampad Vibhaga Yoga", SanskritName: "दैवासुर सम्पद् विभाग योग", VerseCount: 24},
	{Number: 17, Name: "Sraddhatraya Vibhaga Yoga", SanskritName: "श्रद्धात्रय विभाग योग", VerseCount: 28},
	{Number: 18, Name: "Moksha Sanyasa Yoga", SanskritName: "मोक्ष संन्यास योग", VerseCount: 78},
}

// Chapters returns a copy of the built-in chapter table, ordered by number.
func Chapters() []ChapterInfo {
	out := make([]ChapterInfo, len(chapters))
	copy(out, chapters[:])
	return out
}

// FilterChapters keeps the chapters whose name contains query
// (case-insensitive), whose Sanskrit name contains query verbatim, or whose
// number contains query as digits ("1" matches 1, 10-18). The query is used
// as given: whitespace is not trimmed, so " " matches every multi-word name.
// An empty query returns chapters unchanged.
func FilterChapters(chapters []ChapterInfo, query string) []ChapterInfo {
	if query == "" {
		return chapters
	}
	lower := strings.ToLower(query)
	out := make([]ChapterInfo, 0, len(chapters))
	for _, ch := range chapters {
		if strings.Contains(strings.ToLower(ch.Name), lower) ||
			strings.Contains(ch.SanskritName, query) ||
			strings.Contains(strconv.Itoa(ch.Number), query) {
			out = append(out, ch)
		}
	}
	return out
}
