// Package phases converts the cumulative clocks reported by the transfer
// layer into named, non-overlapping phase durations.
package phases

import "time"

// RawTimings holds the cumulative clocks captured for a single request.
// Each field measures from request start to the completion of a milestone,
// so the values must be monotonically increasing. A milestone that did not
// occur (AppConnect on plain HTTP, NameLookup for an IP literal) reports
// the same clock as the preceding one.
type RawTimings struct {
	NameLookup    time.Duration // DNS resolution complete
	Connect       time.Duration // TCP connection established
	AppConnect    time.Duration // TLS handshake complete
	PreTransfer   time.Duration // request about to be sent
	StartTransfer time.Duration // first response byte received
	Total         time.Duration // full completion
}

// Breakdown holds the derived duration of each phase. It is a value type:
// constructed once by Compute and never mutated. The five phase fields are
// non-negative and sum exactly to Total.
type Breakdown struct {
	DNSLookup        time.Duration
	TCPConnection    time.Duration
	TLSHandshake     time.Duration
	ServerProcessing time.Duration
	ContentTransfer  time.Duration
	Total            time.Duration
}

// milestone pairs a cumulative clock with its name for error reporting.
type milestone struct {
	name string
	at   time.Duration
}

// Compute derives a Breakdown from cumulative timings. secure reports
// whether the final request of the chain used TLS: for plain HTTP the
// handshake phase is zeroed by policy and its interval counted as TCP
// connection time, regardless of what the transport reported for the
// AppConnect clock.
//
// The handshake segment spans connect to pretransfer so that the five
// phases tile Total exactly. Any out-of-order pair of clocks yields an
// *InconsistencyError naming the offending milestones; deltas are never
// clamped, since a negative delta means the transfer layer misreported.
func Compute(raw RawTimings, secure bool) (Breakdown, error) {
	chain := []milestone{
		{"namelookup", raw.NameLookup},
		{"connect", raw.Connect},
	}
	if secure {
		chain = append(chain, milestone{"appconnect", raw.AppConnect})
	}
	chain = append(chain,
		milestone{"pretransfer", raw.PreTransfer},
		milestone{"starttransfer", raw.StartTransfer},
		milestone{"total", raw.Total},
	)

	prev := milestone{"start", 0}
	for _, m := range chain {
		if m.at < prev.at {
			return Breakdown{}, &InconsistencyError{Earlier: prev.name, Later: m.name}
		}
		prev = m
	}

	b := Breakdown{
		DNSLookup:        raw.NameLookup,
		ServerProcessing: raw.StartTransfer - raw.PreTransfer,
		ContentTransfer:  raw.Total - raw.StartTransfer,
		Total:            raw.Total,
	}
	if secure {
		b.TCPConnection = raw.Connect - raw.NameLookup
		b.TLSHandshake = raw.PreTransfer - raw.Connect
	} else {
		b.TCPConnection = raw.PreTransfer - raw.NameLookup
	}
	return b, nil
}

// Duration returns the duration of a single phase.
func (b Breakdown) Duration(p Phase) time.Duration {
	switch p {
	case PhaseDNSLookup:
		return b.DNSLookup
	case PhaseTCPConnection:
		return b.TCPConnection
	case PhaseTLSHandshake:
		return b.TLSHandshake
	case PhaseServerProcessing:
		return b.ServerProcessing
	case PhaseContentTransfer:
		return b.ContentTransfer
	}
	return 0
}
