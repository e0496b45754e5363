// Package fetch downloads notice PDFs over HTTP. A URL that serves an HTML
// notice page is followed to the first PDF the page links to.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; NoticeExtractor/1.0)"

// DefaultMaxBytes caps a downloaded body.
const DefaultMaxBytes = 20 << 20

// Document is a downloaded PDF.
type Document struct {
	// URL is the final location after redirects and page links
	URL         string
	ContentType string
	Data        []byte
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	// Client overrides the HTTP client; Timeout is ignored when set
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		return out
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		out.UserAgent = o.UserAgent
	}
	if o.MaxBytes > 0 {
		out.MaxBytes = o.MaxBytes
	}
	out.Headers = o.Headers
	out.Client = o.Client
	return out
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// PDF downloads the notice at rawURL. When the URL serves an HTML page,
// the first PDF it links to is downloaded instead. Only one such hop is
// followed.
func PDF(ctx context.Context, rawURL string, opts *Options) (*Document, error) {
	opts = opts.withDefaults()

	doc, err := get(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	if isPDF(doc) {
		return doc, nil
	}
	if !isHTML(doc.ContentType) {
		return nil, &Error{URL: doc.URL, Message: fmt.Sprintf("response is not a PDF (content type %q)", doc.ContentType)}
	}

	link, err := FindPDFLink(doc.URL, doc.Data)
	if err != nil {
		return nil, &Error{URL: doc.URL, Message: "page does not link a PDF", Cause: err}
	}

	linked, err := get(ctx, link, opts)
	if err != nil {
		return nil, err
	}
	if !isPDF(linked) {
		return nil, &Error{URL: linked.URL, Message: "linked document is not a PDF"}
	}
	return linked, nil
}

func get(ctx context.Context, urlStr string, opts *Options) (*Document, error) {
	if !IsURL(urlStr) {
		return nil, &Error{URL: urlStr, Message: "invalid URL"}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > opts.MaxBytes {
		return nil, &Error{URL: urlStr, Message: fmt.Sprintf("document exceeds %d bytes", opts.MaxBytes)}
	}

	final := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Document{URL: final, ContentType: resp.Header.Get("Content-Type"), Data: body}, nil
}

func isPDF(doc *Document) bool {
	head := doc.Data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
