package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/artifact"
)

const (
	// DefaultTimeout bounds a whole transfer attempt, body included.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the number of redirects a transfer may follow.
	DefaultMaxRedirects = 3
	// DefaultRetries is the number of retries after a transient failure.
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "ffstatic/1.0"
)

// Logger is the subset of structured logging the engine uses.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Engine performs HTTP transfers with retry, redirect, timeout and
// decompression semantics. An Engine is safe to reuse for sequential
// transfers.
type Engine struct {
	client       *http.Client
	timeout      time.Duration
	maxRedirects int
	retries      int
	userAgent    string
	newBackOff   func() backoff.BackOff
	logger       Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient uses a copy of client for requests. Its Timeout and
// CheckRedirect are replaced by the engine's own policy.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		if client != nil {
			c := *client
			e.client = &c
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxRedirects overrides DefaultMaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRedirects = n
		}
	}
}

// WithRetries overrides DefaultRetries. Zero disables retrying.
func WithRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.retries = n
		}
	}
}

// WithBackOff sets the factory for the delay policy between attempts.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(e *Engine) {
		if newBackOff != nil {
			e.newBackOff = newBackOff
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with the default transfer policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		client:       &http.Client{},
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		retries:      DefaultRetries,
		userAgent:    DefaultUserAgent,
		newBackOff:   defaultBackOff,
		logger:       noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}

	// The per-attempt context carries the deadline.
	e.client.Timeout = 0
	e.client.CheckRedirect = e.checkRedirect

	return e
}

// defaultBackOff waits 1s, 2s, 4s between attempts.
func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxInterval = 4 * time.Second
	return b
}

func (e *Engine) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > e.maxRedirects {
		return ErrRedirectLimit
	}
	return nil
}

// Fetch transfers d.URL into d.Dest. progress may be nil.
//
// Transient failures are retried up to the configured bound; the error of
// the last attempt is returned once retries are exhausted. Status, decode
// and filesystem failures are returned immediately.
func (e *Engine) Fetch(ctx context.Context, d artifact.Descriptor, progress ProgressFunc) error {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		err := e.fetchOnce(ctx, d, progress)
		if err != nil && (!IsTransient(err) || ctx.Err() != nil) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	notify := func(err error, next time.Duration) {
		e.logger.Warn("transfer failed, retrying",
			"url", d.URL, "attempt", attempt, "wait", next, "error", err)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(e.newBackOff()),
		backoff.WithMaxTries(uint(e.retries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		// The final attempt's error comes back still marked permanent.
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return err
	}

	e.logger.Debug("transfer complete", "url", d.URL, "dest", d.Dest, "attempts", attempt)
	return nil
}

// fetchOnce performs a single transfer attempt.
func (e *Engine) fetchOnce(parent context.Context, d artifact.Descriptor, progress ProgressFunc) error {
	ctx, cancel := context.WithTimeoutCause(parent, e.timeout, ErrTimeout)
	defer cancel()

	// classify marks a network-level failure as transient and names the
	// time budget when it was the attempt's own deadline that fired.
	classify := func(err error) error {
		if parent.Err() == nil && errors.Is(context.Cause(ctx), ErrTimeout) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, e.timeout, err)
		}
		return ErrTransient.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	e.logger.Debug("requesting artifact", "url", d.URL)

	resp, err := e.client.Do(req)
	if err != nil {
		return classify(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(d.Dest), 0o755); err != nil {
		return ErrFilesystem.Wrap(fmt.Errorf("create dest dir: %w", err))
	}

	file, err := os.Create(d.Dest)
	if err != nil {
		return ErrFilesystem.Wrap(fmt.Errorf("create dest file: %w", err))
	}

	in := &trackingReader{r: resp.Body}
	out := &trackingWriter{w: file}

	copyErr := e.copyBody(out, wrapProgress(in, resp, progress), d.Compressed)
	closeErr := file.Close()

	switch {
	case copyErr == nil && closeErr == nil:
		return nil
	case out.err != nil:
		return ErrFilesystem.Wrap(fmt.Errorf("write %s: %w", d.Dest, out.err))
	case in.err != nil:
		return classify(fmt.Errorf("read response body: %w", in.err))
	case copyErr != nil:
		return ErrDecode.Wrap(fmt.Errorf("decompress %s: %w", d.URL, copyErr))
	default:
		return ErrFilesystem.Wrap(fmt.Errorf("close %s: %w", d.Dest, closeErr))
	}
}

// copyBody streams body into w, gunzipping it first when compressed.
// A slow writer throttles reads from the network.
func (e *Engine) copyBody(w io.Writer, body io.Reader, compressed bool) error {
	if !compressed {
		_, err := io.Copy(w, body)
		return err
	}

	zr, err := gzip.NewReader(body)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, zr); err != nil {
		zr.Close()
		return err
	}
	return zr.Close()
}

// trackingReader remembers the first read error other than io.EOF, so a
// broken connection can be told apart from a corrupt payload.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// trackingWriter remembers the first write error.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
