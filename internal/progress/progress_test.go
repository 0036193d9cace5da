package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/transport"
)

func TestBar_Line(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		current int64
		want    string
	}{
		{"empty", 1000, 0, "Downloading ffmpeg b6.0 [                    ]   0% 0 B/1.0 kB"},
		{"half", 1000, 500, "Downloading ffmpeg b6.0 [||||||||||          ]  50% 500 B/1.0 kB"},
		{"full", 1000, 1000, "Downloading ffmpeg b6.0 [||||||||||||||||||||] 100% 1.0 kB/1.0 kB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(&bytes.Buffer{}, "Downloading ffmpeg b6.0", tt.total)
			b.current = tt.current
			if got := b.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBar_AddClampsToTotal(t *testing.T) {
	b := NewBar(&bytes.Buffer{}, "x", 10)
	b.Add(7)
	b.Add(7)
	assert.Equal(t, int64(10), b.current)
	assert.Equal(t, 1.0, b.Percent())
}

func TestBar_RedrawsOnlyOnChange(t *testing.T) {
	var out bytes.Buffer
	b := NewBar(&out, "t", 1_000_000_000)

	b.Add(1000)
	b.Add(1) // same percentage and same humanized size
	draws := strings.Count(out.String(), "\r")
	assert.Equal(t, 1, draws)

	b.Add(500_000_000)
	assert.Equal(t, 2, strings.Count(out.String(), "\r"))
}

func TestBar_FinishEndsLine(t *testing.T) {
	var out bytes.Buffer
	b := NewBar(&out, "t", 4)
	b.Finish()
	assert.Empty(t, out.String(), "nothing drawn, nothing to finish")

	b.Add(4)
	b.Finish()
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

// forcedIndicator draws even though out is not a terminal.
func forcedIndicator(out io.Writer, title string) *Indicator {
	return &Indicator{out: out, title: title, enabled: true}
}

func TestIndicator_LazyCreation(t *testing.T) {
	var out bytes.Buffer
	ind := forcedIndicator(&out, "Downloading ffmpeg b6.0")

	ind.Observe(transport.Sample{Bytes: 10, Total: -1})
	assert.Nil(t, ind.bar, "unknown total keeps the indicator idle")
	assert.Empty(t, out.String())

	var observe transport.ProgressFunc = ind.Observe
	observe(transport.Sample{Bytes: 50, Total: 100})
	observe(transport.Sample{Bytes: 50, Total: 100})
	require.NotNil(t, ind.bar)
	ind.Done()

	assert.Contains(t, out.String(), "100%")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestIndicator_DisabledForNonTerminal(t *testing.T) {
	var out bytes.Buffer
	ind := NewIndicator(&out, "t")

	ind.Observe(transport.Sample{Bytes: 50, Total: 100})
	ind.Done()

	assert.Nil(t, ind.bar)
	assert.Empty(t, out.String())
}

func TestIsInteractive(t *testing.T) {
	assert.False(t, IsInteractive(&bytes.Buffer{}))
}
