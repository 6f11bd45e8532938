// Package render lays a phase breakdown out as a tabular listing plus a
// proportional single-line timeline bar. Both renderings are pure: the
// same breakdown and options always produce byte-identical output.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/netdiag/httpstat/pkg/phases"
)

// Options controls how a breakdown is rendered.
type Options struct {
	Secure        bool // show the TLS handshake row and bar segment
	TerminalWidth int  // total columns available to the caller
	ColorEnabled  bool
}

const (
	// barOverhead is the fixed number of cells taken by the bar frame.
	barOverhead = 2 // "[" and "]"

	// labelWidth fits the widest phase label ("Server Processing").
	labelWidth = 17
)

// Timeline renders the full visualization: the proportional bar followed
// by the per-phase listing and the total.
func Timeline(b phases.Breakdown, opts Options) (string, error) {
	bar, err := Bar(b, opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(bar)
	sb.WriteString("\n\n")
	sb.WriteString(Table(b, opts))
	return sb.String(), nil
}

// Table renders one row per visible phase: label, the phase's own
// duration and the cumulative elapsed time at the end of the phase.
// Durations are milliseconds with one decimal so columns line up.
func Table(b phases.Breakdown, opts Options) string {
	var sb strings.Builder
	var cum time.Duration
	for _, p := range phases.Phases(opts.Secure) {
		d := b.Duration(p)
		cum += d
		label := fmt.Sprintf("%-*s", labelWidth, p.Label())
		if opts.ColorEnabled {
			label = paint(p.Color(), label)
		}
		fmt.Fprintf(&sb, "%s  %10s  %10s\n", label, formatMillis(d), formatMillis(cum))
	}
	fmt.Fprintf(&sb, "%-*s  %10s\n", labelWidth, "Total", formatMillis(b.Total))
	return sb.String()
}

// Bar renders the proportional timeline bar. Segment widths are
// apportioned so that the bar body spans exactly the width remaining
// after the frame, regardless of rounding noise. A zero total yields an
// empty bar; a zero-duration phase contributes no cells.
func Bar(b phases.Breakdown, opts Options) (string, error) {
	visible := phases.Phases(opts.Secure)
	avail := opts.TerminalWidth - barOverhead
	if avail < len(visible) {
		return "", &ConfigError{
			Reason: fmt.Sprintf("terminal width %d cannot fit %d phase segments", opts.TerminalWidth, len(visible)),
		}
	}

	durations := make([]time.Duration, len(visible))
	for i, p := range visible {
		durations[i] = b.Duration(p)
	}
	widths := segmentWidths(durations, b.Total, avail)

	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range visible {
		if widths[i] == 0 {
			continue
		}
		seg := strings.Repeat(string(p.Fill()), widths[i])
		if opts.ColorEnabled {
			seg = paint(p.Color(), seg)
		}
		sb.WriteString(seg)
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

// segmentWidths apportions width cells to phases in proportion to their
// durations using the largest-remainder method: floor widths first, then
// leftover cells to the largest fractional remainders, ties broken by
// temporal order so the result is deterministic. The returned widths sum
// exactly to width whenever total is positive.
func segmentWidths(durations []time.Duration, total time.Duration, width int) []int {
	widths := make([]int, len(durations))
	if total <= 0 || width <= 0 {
		return widths
	}

	type remainder struct {
		idx  int
		frac float64
	}
	used := 0
	fracs := make([]remainder, len(durations))
	for i, d := range durations {
		exact := float64(d) / float64(total) * float64(width)
		floor := int(exact)
		widths[i] = floor
		used += floor
		fracs[i] = remainder{idx: i, frac: exact - float64(floor)}
	}
	sort.SliceStable(fracs, func(a, b int) bool {
		return fracs[a].frac > fracs[b].frac
	})

	// Distribute the leftover, at most one cell per phase. Zero-duration
	// phases never gain a cell so instantaneous phases stay invisible.
	for i := 0; used < width && i < len(fracs); i++ {
		if durations[fracs[i].idx] > 0 {
			widths[fracs[i].idx]++
			used++
		}
	}
	// Float error can push the floor sum past the target; take cells back
	// from the smallest remainders.
	for i := len(fracs) - 1; used > width && i >= 0; i-- {
		if widths[fracs[i].idx] > 0 {
			widths[fracs[i].idx]--
			used--
		}
	}
	return widths
}

// formatMillis formats a duration as milliseconds with one decimal.
func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

func paint(color, s string) string {
	return "\x1b[" + color + "m" + s + "\x1b[0m"
}
