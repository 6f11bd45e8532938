// Package client issues a single timed HTTP(S) request and reports the
// cumulative phase clocks observed for the final leg of the redirect
// chain.
package client

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"golang.org/x/net/http2"

	"github.com/netdiag/httpstat/pkg/compression"
	"github.com/netdiag/httpstat/pkg/phases"
	"github.com/netdiag/httpstat/pkg/version"
)

// Client performs timed HTTP requests
type Client struct {
	opts Options
}

// New creates a new Client with the given options
func New(opts Options) *Client {
	opts.SetDefaults()
	return &Client{opts: opts}
}

// Do performs the request. Redirects are followed manually, one leg at a
// time on a fresh connection, so the reported timings always describe
// the final leg and never a reused connection.
func (c *Client) Do(ctx context.Context) (*Result, error) {
	target := normalizeURL(c.opts.URL)
	var redirects []string

	for {
		res, err := c.roundTrip(ctx, target)
		if err != nil {
			return nil, err
		}
		if !c.opts.FollowRedirects || !isRedirect(res.StatusCode) {
			res.Redirects = redirects
			return res, nil
		}
		loc := res.Headers.Get("Location")
		if loc == "" {
			res.Redirects = redirects
			return res, nil
		}
		next, err := res.FinalURL.Parse(loc)
		if err != nil {
			return nil, NewRequestError(err, "invalid redirect location %q", loc)
		}
		if len(redirects) >= c.opts.MaxRedirects {
			return nil, NewRedirectError("stopped after %d redirects", c.opts.MaxRedirects)
		}
		redirects = append(redirects, next.String())
		log.WithField("location", next.String()).Debug("following redirect")
		target = next.String()
	}
}

// roundTrip performs one leg of the chain and captures its timings.
func (c *Client) roundTrip(ctx context.Context, target string) (*Result, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, NewRequestError(err, "invalid URL %q", target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewRequestError(nil, "unsupported scheme %q", u.Scheme)
	}

	var body io.Reader
	if c.opts.Data != "" {
		body = strings.NewReader(c.opts.Data)
	}
	req, err := http.NewRequestWithContext(ctx, c.opts.Method, target, body)
	if err != nil {
		return nil, NewRequestError(err, "building request failed")
	}
	for _, h := range c.opts.Headers {
		name, value, err := ParseHeader(h)
		if err != nil {
			return nil, err
		}
		req.Header.Add(name, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "httpstat/"+version.Version)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", compression.AcceptEncoding())
	}

	rec := newRecorder()
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), rec.trace()))

	tr, err := c.transport(u.Hostname())
	if err != nil {
		return nil, err
	}
	defer tr.CloseIdleConnections()
	httpClient := &http.Client{
		Transport: tr,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	payload, err := readBody(resp.Body, c.opts.MaxResponseSize)
	if err != nil {
		return nil, err
	}
	raw := rec.rawTimings(time.Since(rec.start))

	if enc := compression.Detect(resp.Header.Get("Content-Encoding")); enc != compression.None {
		decoded, derr := compression.Decompress(payload, enc)
		if derr != nil {
			// keep the raw bytes, the exchange itself succeeded
			log.WithError(derr).Debug("body decode failed")
		} else {
			payload = decoded
		}
	}

	return &Result{
		Proto:      resp.Proto,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       payload,
		Timings:    raw,
		FinalURL:   u,
		Secure:     u.Scheme == "https",
		RemoteAddr: rec.remoteAddr,
	}, nil
}

// transport builds a fresh, non-reusing transport for one leg.
func (c *Client) transport(serverName string) (*http.Transport, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.opts.Insecure,
		ServerName:         serverName,
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: c.opts.ConnectTimeout,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: c.opts.ConnectTimeout,
		DisableKeepAlives:   true,
		DisableCompression:  true, // decoded by pkg/compression instead
	}
	if !c.opts.ForceHTTP1 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, NewRequestError(err, "HTTP/2 setup failed")
		}
	} else {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}
	return tr, nil
}

// readBody drains the response up to the configured cap.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(data)) > limit {
		return nil, NewBodyError()
	}
	return data, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// normalizeURL defaults the scheme to http when none is given, matching
// curl's behavior for bare hostnames.
func normalizeURL(target string) string {
	if !strings.Contains(target, "://") {
		return "http://" + target
	}
	return target
}

// Timings is a convenience wrapper: it performs the request and computes
// the phase breakdown for the final leg in one call.
func (c *Client) Timings(ctx context.Context) (*Result, phases.Breakdown, error) {
	res, err := c.Do(ctx)
	if err != nil {
		return nil, phases.Breakdown{}, err
	}
	b, err := phases.Compute(res.Timings, res.Secure)
	if err != nil {
		return res, phases.Breakdown{}, err
	}
	return res, b, nil
}
