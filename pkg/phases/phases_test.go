package phases

import (
	"errors"
	"testing"
	"time"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func sum(b Breakdown) time.Duration {
	return b.DNSLookup + b.TCPConnection + b.TLSHandshake + b.ServerProcessing + b.ContentTransfer
}

func TestCompute_Secure(t *testing.T) {
	raw := RawTimings{
		NameLookup:    ms(5),
		Connect:       ms(20),
		AppConnect:    ms(45),
		PreTransfer:   ms(45),
		StartTransfer: ms(120),
		Total:         ms(125),
	}

	b, err := Compute(raw, true)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if b.DNSLookup != ms(5) {
		t.Errorf("DNSLookup = %v, want 5ms", b.DNSLookup)
	}
	if b.TCPConnection != ms(15) {
		t.Errorf("TCPConnection = %v, want 15ms", b.TCPConnection)
	}
	if b.TLSHandshake != ms(25) {
		t.Errorf("TLSHandshake = %v, want 25ms", b.TLSHandshake)
	}
	if b.ServerProcessing != ms(75) {
		t.Errorf("ServerProcessing = %v, want 75ms", b.ServerProcessing)
	}
	if b.ContentTransfer != ms(5) {
		t.Errorf("ContentTransfer = %v, want 5ms", b.ContentTransfer)
	}
	if sum(b) != raw.Total {
		t.Errorf("phase sum = %v, want total %v", sum(b), raw.Total)
	}
}

func TestCompute_InsecureZeroesTLS(t *testing.T) {
	raw := RawTimings{
		NameLookup:    ms(5),
		Connect:       ms(20),
		AppConnect:    ms(40), // transport noise, must be ignored for plain HTTP
		PreTransfer:   ms(40),
		StartTransfer: ms(100),
		Total:         ms(110),
	}

	b, err := Compute(raw, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if b.TLSHandshake != 0 {
		t.Errorf("TLSHandshake = %v, want 0 for plain HTTP", b.TLSHandshake)
	}
	// The connect..pretransfer interval folds into the TCP connection.
	if b.TCPConnection != ms(35) {
		t.Errorf("TCPConnection = %v, want 35ms", b.TCPConnection)
	}
	if sum(b) != raw.Total {
		t.Errorf("phase sum = %v, want total %v", sum(b), raw.Total)
	}
}

func TestCompute_InsecureIgnoresAppConnect(t *testing.T) {
	// Some transports report a nonsense AppConnect clock for plain HTTP.
	// The calculator gates on the scheme, not on the reported value.
	raw := RawTimings{
		NameLookup:    ms(5),
		Connect:       ms(20),
		AppConnect:    ms(500),
		PreTransfer:   ms(21),
		StartTransfer: ms(80),
		Total:         ms(90),
	}

	b, err := Compute(raw, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if b.TLSHandshake != 0 {
		t.Errorf("TLSHandshake = %v, want 0", b.TLSHandshake)
	}
	if sum(b) != raw.Total {
		t.Errorf("phase sum = %v, want total %v", sum(b), raw.Total)
	}
}

func TestCompute_SumAndNonNegative(t *testing.T) {
	fixtures := []struct {
		name   string
		raw    RawTimings
		secure bool
	}{
		{"typical https", RawTimings{ms(3), ms(10), ms(40), ms(40), ms(90), ms(95)}, true},
		{"typical http", RawTimings{ms(3), ms(10), ms(10), ms(10), ms(90), ms(95)}, false},
		{"ip literal, no dns", RawTimings{0, ms(7), ms(30), ms(30), ms(55), ms(60)}, true},
		{"instant phases", RawTimings{0, 0, 0, 0, 0, 0}, true},
		{"slow transfer", RawTimings{ms(1), ms(2), ms(3), ms(3), ms(4), ms(1000)}, true},
	}

	for _, f := range fixtures {
		b, err := Compute(f.raw, f.secure)
		if err != nil {
			t.Errorf("%s: Compute failed: %v", f.name, err)
			continue
		}
		if sum(b) != f.raw.Total {
			t.Errorf("%s: phase sum = %v, want total %v", f.name, sum(b), f.raw.Total)
		}
		for _, p := range Phases(true) {
			if b.Duration(p) < 0 {
				t.Errorf("%s: %s = %v, want >= 0", f.name, p.Label(), b.Duration(p))
			}
		}
		if b.Total != f.raw.Total {
			t.Errorf("%s: Total = %v, want %v", f.name, b.Total, f.raw.Total)
		}
	}
}

func TestCompute_Inconsistency(t *testing.T) {
	cases := []struct {
		name    string
		raw     RawTimings
		secure  bool
		earlier string
		later   string
	}{
		{
			"connect before namelookup",
			RawTimings{ms(20), ms(5), ms(30), ms(30), ms(50), ms(60)},
			true, "namelookup", "connect",
		},
		{
			"appconnect before connect",
			RawTimings{ms(5), ms(30), ms(10), ms(40), ms(50), ms(60)},
			true, "connect", "appconnect",
		},
		{
			"total before starttransfer",
			RawTimings{ms(5), ms(10), ms(20), ms(20), ms(90), ms(70)},
			true, "starttransfer", "total",
		},
		{
			"negative namelookup",
			RawTimings{-ms(1), ms(10), ms(20), ms(20), ms(30), ms(40)},
			true, "start", "namelookup",
		},
		{
			"http skips appconnect check",
			RawTimings{ms(5), ms(30), ms(1), ms(20), ms(50), ms(60)},
			false, "connect", "pretransfer",
		},
	}

	for _, c := range cases {
		_, err := Compute(c.raw, c.secure)
		if err == nil {
			t.Errorf("%s: expected error, got none", c.name)
			continue
		}
		var inc *InconsistencyError
		if !errors.As(err, &inc) {
			t.Errorf("%s: error type = %T, want *InconsistencyError", c.name, err)
			continue
		}
		if inc.Earlier != c.earlier || inc.Later != c.later {
			t.Errorf("%s: got %s/%s, want %s/%s", c.name, inc.Earlier, inc.Later, c.earlier, c.later)
		}
	}
}

func TestCompute_Pure(t *testing.T) {
	raw := RawTimings{ms(5), ms(20), ms(45), ms(45), ms(120), ms(125)}

	first, err := Compute(raw, true)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	second, err := Compute(raw, true)
	if err != nil {
		t.Fatalf("Compute failed on second call: %v", err)
	}
	if first != second {
		t.Errorf("Compute is not deterministic: %+v vs %+v", first, second)
	}
}

func TestPhases_Order(t *testing.T) {
	secure := Phases(true)
	if len(secure) != 5 {
		t.Fatalf("Phases(true) has %d entries, want 5", len(secure))
	}
	if secure[2] != PhaseTLSHandshake {
		t.Errorf("third secure phase = %v, want TLS handshake", secure[2])
	}

	insecure := Phases(false)
	if len(insecure) != 4 {
		t.Fatalf("Phases(false) has %d entries, want 4", len(insecure))
	}
	for _, p := range insecure {
		if p == PhaseTLSHandshake {
			t.Error("Phases(false) must not include the TLS handshake")
		}
	}
}

func TestPhase_FixedAttributes(t *testing.T) {
	seenColors := map[string]Phase{}
	seenFills := map[rune]Phase{}
	for _, p := range Phases(true) {
		if p.Label() == "Unknown" {
			t.Errorf("phase %d has no label", p)
		}
		if prev, dup := seenColors[p.Color()]; dup {
			t.Errorf("phases %s and %s share color %s", prev.Label(), p.Label(), p.Color())
		}
		seenColors[p.Color()] = p
		if prev, dup := seenFills[p.Fill()]; dup {
			t.Errorf("phases %s and %s share fill %q", prev.Label(), p.Label(), p.Fill())
		}
		seenFills[p.Fill()] = p
	}
}
