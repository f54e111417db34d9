package emit

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type chunkKind uint8

const (
	chunkGuard chunkKind = iota + 1
	chunkInclude
	chunkPlatform
	chunkConst
	chunkForward
	chunkTypedef
	chunkBlock
	chunkVariable
	chunkFunction
	chunkAlias
)

type chunk struct {
	kind  chunkKind
	lines []string
	// block chunks span several lines and get blank lines on both sides
	block bool
}

// writer joins chunks, separating kinds and blocks with one blank line.
type writer struct {
	chunks []chunk
}

func (w *writer) line(kind chunkKind, s string) {
	w.chunks = append(w.chunks, chunk{kind: kind, lines: []string{s}})
}

func (w *writer) block(kind chunkKind, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.chunks = append(w.chunks, chunk{kind: kind, lines: lines, block: true})
}

func (w *writer) String() string {
	var sb strings.Builder
	for i, c := range w.chunks {
		if i > 0 {
			prev := w.chunks[i-1]
			if prev.kind != c.kind || prev.block || c.block {
				sb.WriteByte('\n')
			}
		}
		for _, l := range c.lines {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// member is one line inside a record body.
type member struct {
	head string
	body string
}

// columns renders members with the head column padded to the widest head
// by display width when aligned.
func columns(ms []member, style Style, indent string, suffix string) []string {
	width := 0
	if style == StyleAligned {
		for _, m := range ms {
			width = max(width, runewidth.StringWidth(m.head))
		}
	}
	out := make([]string, len(ms))
	for i, m := range ms {
		head := m.head
		if style == StyleAligned {
			head = runewidth.FillRight(head, width)
		}
		if m.body == "" {
			out[i] = indent + strings.TrimRight(head, " ") + suffix
			continue
		}
		out[i] = indent + head + " " + m.body + suffix
	}
	return out
}

// padLeft right-aligns s to width display columns.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
