// Package transport performs single HTTP artifact transfers to disk.
//
// An Engine fetches one URL into one destination file. Each transfer:
//   - follows at most DefaultMaxRedirects redirects
//   - is bounded as a whole (connect, headers and body) by DefaultTimeout
//   - is retried with exponential backoff on transient failures only
//   - succeeds only on HTTP 200
//   - gunzips the body on the fly when the descriptor is marked compressed
//   - reports per-chunk progress when the length is known and the response
//     did not come from a cache
//
// # Failure classes
//
// Every error returned by Fetch belongs to exactly one class:
//
//	ErrTransient   connection failures, timeouts, redirect limit (retried)
//	*StatusError   any non-200 response (never retried)
//	ErrFilesystem  creating directories or writing the destination
//	ErrDecode      a corrupt gzip stream
//
// A failed transfer may leave a partial file at the destination. Files are
// written in place, not through a temporary file.
package transport
