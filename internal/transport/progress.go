package transport

import (
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Sample is one progress report: the bytes received by a single network
// read and the total announced by the server. Total is -1 when unknown.
type Sample struct {
	Bytes int64
	Total int64
}

// ProgressFunc observes transfer progress. It is called synchronously
// from the goroutine running Fetch.
type ProgressFunc func(Sample)

// progressReader reports every chunk read from the network.
type progressReader struct {
	r      io.Reader
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.report(Sample{Bytes: int64(n), Total: p.total})
	}
	return n, err
}

// wrapProgress attaches report to body when the response announces its
// length and was not served by an intermediate cache. Otherwise nothing is
// reported and observers stay in an indeterminate state.
func wrapProgress(body io.Reader, resp *http.Response, report ProgressFunc) io.Reader {
	if report == nil || fromCache(resp) || resp.ContentLength <= 0 {
		return body
	}
	return &progressReader{r: body, total: resp.ContentLength, report: report}
}

// fromCache reports whether a shared cache answered instead of the origin.
// An explicit X-Cache verdict wins; otherwise a positive Age means the
// response was stored before it reached us.
func fromCache(resp *http.Response) bool {
	xcache := strings.ToUpper(resp.Header.Get("X-Cache"))
	switch {
	case strings.Contains(xcache, "HIT"):
		return true
	case strings.Contains(xcache, "MISS"):
		return false
	}
	age, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Age")))
	return err == nil && age > 0
}
