// Package fetch retrieves webcam stills over HTTP and decodes them into frames.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/deepsurf/framex/internal/imaging"
)

// DefaultTimeout bounds a single fetch, including reading the body.
const DefaultTimeout = 15 * time.Second

// DefaultMaxBodyBytes caps how much of a response is read before giving up.
const DefaultMaxBodyBytes = 32 << 20

// Kind classifies a FetchError.
type Kind int

const (
	// NetworkFailure covers connection errors, timeouts and non-2xx responses.
	NetworkFailure Kind = iota
	// DecodeFailure means the body arrived but is not a decodable image.
	DecodeFailure
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case DecodeFailure:
		return "decode failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FetchError is returned by Fetcher.Fetch.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int // zero unless the server answered
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s: HTTP %d", e.URL, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsKind reports whether err is a FetchError of kind k.
func IsKind(err error, k Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == k
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxBodyBytes caps the response size.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBody = n }
}

// Fetcher downloads and decodes webcam frames. It holds no per-frame state and
// is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: "framex/1.0",
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET on url, reads the whole body and decodes it as an image.
// There is no retry: the caller's next cycle is the retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: NetworkFailure, URL: url, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: NetworkFailure, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &FetchError{
			Kind:       NetworkFailure,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &FetchError{Kind: NetworkFailure, URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &FetchError{Kind: NetworkFailure, URL: url, Err: fmt.Errorf("body exceeds %d bytes", f.maxBody)}
	}

	frame, err := imaging.DecodeBytes(body)
	if err != nil {
		return nil, &FetchError{Kind: DecodeFailure, URL: url, Err: err}
	}
	return frame, nil
}
