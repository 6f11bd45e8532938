package client

import (
	"net/http"
	"net/url"
	"sort"

	"github.com/netdiag/httpstat/pkg/phases"
)

// Result holds the outcome of a timed request: the final response of the
// redirect chain plus the cumulative clocks captured for that leg.
type Result struct {
	Proto      string // e.g. "HTTP/1.1" or "HTTP/2.0"
	StatusCode int
	Status     string // e.g. "200 OK"
	Headers    http.Header
	Body       []byte

	Timings phases.RawTimings

	FinalURL   *url.URL // URL of the final leg after redirects
	Secure     bool     // final leg used TLS
	RemoteAddr string   // address actually connected to

	// Redirects lists the intermediate locations that were followed.
	Redirects []string
}

// HeaderNames returns the response header names in a stable order.
func (r *Result) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSuccessful returns true if the response has a 2xx status code
func (r *Result) IsSuccessful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
