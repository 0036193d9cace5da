package progress

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/transport"
)

// Indicator turns transport samples into a progress bar. The zero value is
// not usable; create one with NewIndicator.
type Indicator struct {
	out     io.Writer
	title   string
	enabled bool
	bar     *Bar
}

// NewIndicator creates an indicator that draws to out. The bar is only
// drawn when out is an interactive terminal.
func NewIndicator(out io.Writer, title string) *Indicator {
	return &Indicator{
		out:     out,
		title:   title,
		enabled: IsInteractive(out),
	}
}

// Observe records one sample. The bar is created on the first sample with
// a known total; samples without one leave the indicator idle.
func (i *Indicator) Observe(s transport.Sample) {
	if !i.enabled {
		return
	}
	if i.bar == nil {
		if s.Total <= 0 {
			return
		}
		i.bar = NewBar(i.out, i.title, s.Total)
	}
	i.bar.Add(s.Bytes)
}

// Done finishes the bar's line, if one was drawn.
func (i *Indicator) Done() {
	if i.bar != nil {
		i.bar.Finish()
	}
}

// IsInteractive reports whether w is a terminal.
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
