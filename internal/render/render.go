// Package render formats chapters and verses for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/gitacache/gita"
)

var (
	saffron = lipgloss.Color("#FF9933")
	muted   = lipgloss.Color("#8A8F98")
	ink     = lipgloss.Color("#E8E6E3")
)

type styles struct {
	title    lipgloss.Style
	sanskrit lipgloss.Style
	label    lipgloss.Style
	body     lipgloss.Style
	dim      lipgloss.Style
	card     lipgloss.Style
}

// Renderer writes styled output to w. The color profile follows w, so a
// pipe or buffer gets plain text.
type Renderer struct {
	w     io.Writer
	width int
	st    styles
}

func New(w io.Writer, width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:     w,
		width: width,
		st: styles{
			title:    lr.NewStyle().Bold(true).Foreground(saffron),
			sanskrit: lr.NewStyle().Foreground(ink),
			label:    lr.NewStyle().Bold(true).Foreground(muted),
			body:     lr.NewStyle().Width(width - 4),
			dim:      lr.NewStyle().Foreground(muted),
			card:     lr.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		},
	}
}

// Chapters prints one line per chapter.
func (r *Renderer) Chapters(chs []gita.ChapterInfo) error {
	if len(chs) == 0 {
		_, err := fmt.Fprintln(r.w, r.st.dim.Render("no chapters match"))
		return err
	}
	var b strings.Builder
	for _, ch := range chs {
		num := r.st.title.Render(fmt.Sprintf("%2d", ch.Number))
		name := ch.Name + "  " + r.st.sanskrit.Render(ch.SanskritName)
		count := r.st.dim.Render(strconv.Itoa(ch.VerseCount) + " verses")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, num, "  ", name, "  ", count))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Chapter prints a chapter header and the verse numbers found in its payload.
func (r *Renderer) Chapter(ch gita.ChapterInfo, verses []int) error {
	head := r.header(ch)
	nums := make([]string, len(verses))
	for i, n := range verses {
		nums[i] = strconv.Itoa(n)
	}
	list := r.st.body.Render(strings.Join(nums, " "))
	summary := r.st.dim.Render(fmt.Sprintf("%d of %d verses available", len(verses), ch.VerseCount))
	_, err := fmt.Fprintln(r.w, r.st.card.Render(lipgloss.JoinVertical(lipgloss.Left, head, "", list, "", summary)))
	return err
}

// Nav describes the neighbors of the verse being shown.
type Nav struct {
	Prev, Next       gita.Position
	HasPrev, HasNext bool
}

// Verse prints a verse card followed by a navigation footer.
func (r *Renderer) Verse(ch gita.ChapterInfo, v gita.Verse, nav Nav) error {
	parts := []string{
		r.header(ch),
		r.st.label.Render(fmt.Sprintf("Verse %d.%d", ch.Number, v.Verse)),
		"",
		r.st.body.Render(v.Text),
	}
	add := func(label, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		parts = append(parts, "", r.st.label.Render(label), r.st.body.Render(text))
	}
	add("Transliteration", v.Transliteration)
	add("Translation", v.Translation)
	add("Commentary", v.Commentaries.Primary())

	card := r.st.card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	_, err := fmt.Fprintln(r.w, lipgloss.JoinVertical(lipgloss.Left, card, r.footer(nav)))
	return err
}

func (r *Renderer) header(ch gita.ChapterInfo) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		r.st.title.Render(fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Name)),
		r.st.sanskrit.Render(ch.SanskritName),
	)
}

func (r *Renderer) footer(nav Nav) string {
	prev, next := "", ""
	if nav.HasPrev {
		prev = "← " + nav.Prev.String()
	}
	if nav.HasNext {
		next = nav.Next.String() + " →"
	}
	gap := r.width - lipgloss.Width(prev) - lipgloss.Width(next)
	if gap < 1 {
		gap = 1
	}
	return r.st.dim.Render(prev + strings.Repeat(" ", gap) + next)
}
