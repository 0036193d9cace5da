// Package progress renders download progress to a terminal.
//
// A Bar draws a single line that is redrawn in place with a carriage
// return. An Indicator owns at most one Bar, creating it on the first
// sample that carries a known total, and only when its output is an
// interactive terminal.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

const (
	// BarWidth is the number of cells in the bar itself.
	BarWidth = 20
	// FullChar fills the completed part of the bar.
	FullChar = '|'
	// EmptyChar fills the remaining part of the bar.
	EmptyChar = ' '
)

// Bar is a single-line progress bar for a transfer of known size.
type Bar struct {
	out     io.Writer
	title   string
	total   int64
	current int64
	model   progress.Model
	last    string
}

// NewBar creates a bar for a transfer of total bytes. Nothing is drawn
// until the first Add.
func NewBar(out io.Writer, title string, total int64) *Bar {
	return &Bar{
		out:   out,
		title: title,
		total: total,
		model: progress.New(
			progress.WithWidth(BarWidth),
			progress.WithFillCharacters(FullChar, EmptyChar),
			progress.WithoutPercentage(),
			progress.WithColorProfile(termenv.Ascii),
		),
	}
}

// Add advances the bar by n bytes and redraws it if its text changed.
func (b *Bar) Add(n int64) {
	b.current += n
	if b.current > b.total {
		b.current = b.total
	}

	line := b.Line()
	if line == b.last {
		return
	}
	b.last = line
	fmt.Fprintf(b.out, "\r%s", line)
}

// Finish ends the bar's line.
func (b *Bar) Finish() {
	if b.last != "" {
		fmt.Fprintln(b.out)
	}
}

// Percent returns the completed fraction in [0, 1].
func (b *Bar) Percent() float64 {
	if b.total <= 0 {
		return 0
	}
	return float64(b.current) / float64(b.total)
}

// Line renders the bar's current state without a carriage return:
//
//	Downloading ffmpeg b6.0 [||||||||            ] 40% 28 MB/70 MB
func (b *Bar) Line() string {
	var sb strings.Builder
	sb.WriteString(b.title)
	sb.WriteString(" [")
	sb.WriteString(b.model.ViewAs(b.Percent()))
	fmt.Fprintf(&sb, "] %3.0f%% %s/%s",
		b.Percent()*100,
		humanize.Bytes(uint64(b.current)),
		humanize.Bytes(uint64(b.total)))
	return sb.String()
}
