package client

import (
	"net/http"
	"strings"
	"time"
)

// Options configures a single timed request.
type Options struct {
	URL    string
	Method string // default: GET
	Data   string // request body, attached when non-empty

	// Headers holds extra request headers in "Name: value" form.
	Headers []string

	// FollowRedirects follows 3xx responses; the reported timings always
	// describe the final leg of the chain.
	FollowRedirects bool
	MaxRedirects    int // default: 10

	ConnectTimeout time.Duration // dial timeout (default: 30s)

	// TLS options
	Insecure bool // skip TLS certificate verification

	// MaxResponseSize caps the response body in bytes (default: 4MB).
	MaxResponseSize int64

	ForceHTTP1 bool // disable ALPN negotiation of HTTP/2
}

// SetDefaults sets default values for unspecified options.
func (o *Options) SetDefaults() {
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	if o.MaxRedirects == 0 {
		o.MaxRedirects = 10
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 30 * time.Second
	}
	if o.MaxResponseSize == 0 {
		o.MaxResponseSize = 4 * 1024 * 1024 // 4MB
	}
}

// ParseHeader splits a "Name: value" header argument.
func ParseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", NewRequestError(nil, "invalid header %q", s)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}
