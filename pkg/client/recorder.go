package client

import (
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/netdiag/httpstat/pkg/phases"
)

// recorder accumulates httptrace milestones as cumulative offsets from
// the start of a single request leg.
type recorder struct {
	mu    sync.Mutex
	start time.Time

	nameLookup    time.Duration
	connect       time.Duration
	appConnect    time.Duration
	preTransfer   time.Duration
	startTransfer time.Duration

	remoteAddr string
}

func newRecorder() *recorder {
	return &recorder{start: time.Now()}
}

// trace builds the httptrace hooks feeding this recorder.
func (r *recorder) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSDone: func(info httptrace.DNSDoneInfo) {
			r.mark(&r.nameLookup)
			log.WithField("addrs", len(info.Addrs)).Debug("dns lookup complete")
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			r.mu.Lock()
			r.remoteAddr = addr
			r.mu.Unlock()
			r.mark(&r.connect)
			log.WithField("addr", addr).Debug("connection established")
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			r.mark(&r.appConnect)
			log.WithField("protocol", state.NegotiatedProtocol).Debug("tls handshake complete")
		},
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				// keep-alives are disabled, a reused connection would
				// produce zero-width connect phases
				log.Debug("connection reused")
			}
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			r.mark(&r.preTransfer)
			log.Debug("request sent")
		},
		GotFirstResponseByte: func() {
			r.mark(&r.startTransfer)
			log.Debug("first response byte received")
		},
	}
}

func (r *recorder) mark(field *time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*field = time.Since(r.start)
}

// rawTimings assembles the cumulative clocks observed so far. Milestones
// that never fired (cached DNS for an IP literal, no handshake on plain
// HTTP) inherit the preceding clock so they read as zero-width phases.
func (r *recorder) rawTimings(total time.Duration) phases.RawTimings {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw := phases.RawTimings{
		NameLookup:    r.nameLookup,
		Connect:       r.connect,
		AppConnect:    r.appConnect,
		PreTransfer:   r.preTransfer,
		StartTransfer: r.startTransfer,
		Total:         total,
	}
	if raw.Connect == 0 {
		raw.Connect = raw.NameLookup
	}
	if raw.AppConnect == 0 {
		raw.AppConnect = raw.Connect
	}
	return raw
}
