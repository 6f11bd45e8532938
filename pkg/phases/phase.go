package phases

// Phase identifies one segment of the request timeline. Each phase carries
// a fixed display label, ANSI color and fill rune so the association stays
// stable across runs even if phases are reordered.
type Phase int

const (
	PhaseDNSLookup Phase = iota
	PhaseTCPConnection
	PhaseTLSHandshake
	PhaseServerProcessing
	PhaseContentTransfer
)

// Phases returns the phases shown for a request, in temporal order. The
// TLS handshake is omitted entirely for plain HTTP rather than shown as
// zero.
func Phases(secure bool) []Phase {
	if secure {
		return []Phase{
			PhaseDNSLookup,
			PhaseTCPConnection,
			PhaseTLSHandshake,
			PhaseServerProcessing,
			PhaseContentTransfer,
		}
	}
	return []Phase{
		PhaseDNSLookup,
		PhaseTCPConnection,
		PhaseServerProcessing,
		PhaseContentTransfer,
	}
}

// Label returns the display name of the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseDNSLookup:
		return "DNS Lookup"
	case PhaseTCPConnection:
		return "TCP Connection"
	case PhaseTLSHandshake:
		return "TLS Handshake"
	case PhaseServerProcessing:
		return "Server Processing"
	case PhaseContentTransfer:
		return "Content Transfer"
	}
	return "Unknown"
}

// Color returns the ANSI SGR code used to draw the phase.
func (p Phase) Color() string {
	switch p {
	case PhaseDNSLookup:
		return "36" // cyan
	case PhaseTCPConnection:
		return "33" // yellow
	case PhaseTLSHandshake:
		return "35" // magenta
	case PhaseServerProcessing:
		return "32" // green
	case PhaseContentTransfer:
		return "34" // blue
	}
	return "37"
}

// Fill returns the rune used to draw the phase segment when color is
// disabled, so proportions stay visible without color support.
func (p Phase) Fill() rune {
	switch p {
	case PhaseDNSLookup:
		return '#'
	case PhaseTCPConnection:
		return '='
	case PhaseTLSHandshake:
		return '%'
	case PhaseServerProcessing:
		return '*'
	case PhaseContentTransfer:
		return '-'
	}
	return '?'
}
