// Command httpstat measures a single HTTP(S) exchange and visualizes
// where the time went: DNS lookup, TCP connect, TLS handshake, server
// processing and content transfer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/netdiag/httpstat/pkg/client"
	"github.com/netdiag/httpstat/pkg/phases"
	"github.com/netdiag/httpstat/pkg/render"
	"github.com/netdiag/httpstat/pkg/version"
)

// ANSI color codes for the status line, matching the phase palette.
const (
	colorGreen  = "32"
	colorYellow = "33"
	colorCyan   = "36"
	colorGray   = "90"
)

func main() {
	var (
		location       bool
		connectTimeout uint64
		request        string
		data           string
		headers        []string
		insecure       bool
		saveBody       bool
		verbose        bool
		maxRespSize    int64
		forceHTTP1     bool
		noColor        bool
		showVersion    bool
	)

	pflag.BoolVarP(&location, "location", "L", false, "Follow redirects")
	pflag.Uint64Var(&connectTimeout, "connect-timeout", 0, "Maximum time allowed for connection, in milliseconds")
	pflag.StringVarP(&request, "request", "X", "GET", "Specify request command to use")
	pflag.StringVarP(&data, "data", "d", "", "HTTP POST data")
	pflag.StringArrayVarP(&headers, "header", "H", nil, "Pass custom header(s) to server")
	pflag.BoolVarP(&insecure, "insecure", "k", false, "Allow insecure server connections when using SSL")
	pflag.BoolVarP(&saveBody, "save-body", "o", false, "Save response body to a temporary file")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	pflag.Int64VarP(&maxRespSize, "max-response-size", "s", 0, "Maximum response size in bytes")
	pflag.BoolVar(&forceHTTP1, "http1", false, "Force HTTP/1.1")
	pflag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("httpstat version %s\n", version.GetVersion())
		os.Exit(0)
	}

	log.SetHandler(clihandler.New(os.Stderr))
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: httpstat [options] <url>")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	colorEnabled := !noColor && isatty.IsTerminal(os.Stdout.Fd())

	opts := client.Options{
		URL:             args[0],
		Method:          request,
		Data:            data,
		Headers:         headers,
		FollowRedirects: location,
		ConnectTimeout:  time.Duration(connectTimeout) * time.Millisecond,
		Insecure:        insecure,
		MaxResponseSize: maxRespSize,
		ForceHTTP1:      forceHTTP1,
	}
	if err := run(opts, saveBody, colorEnabled); err != nil {
		fmt.Fprintln(os.Stderr, paint(colorYellow, err.Error(), colorEnabled))
		os.Exit(1)
	}
}

func run(opts client.Options, saveBody, colorEnabled bool) error {
	result, err := client.New(opts).Do(context.Background())
	if err != nil {
		return err
	}

	printStatusLine(result, colorEnabled)
	for _, name := range result.HeaderNames() {
		for _, value := range result.Headers[name] {
			fmt.Printf("%s%s\n",
				paint(colorGray, name+": ", colorEnabled),
				paint(colorCyan, value, colorEnabled))
		}
	}

	if saveBody {
		path, err := writeBody(result.Body)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s stored in %s\n", paint(colorGreen, "Body", colorEnabled), path)
	}

	breakdown, err := phases.Compute(result.Timings, result.Secure)
	if err != nil {
		// surface the raw clocks so the measurement bug can be debugged
		return fmt.Errorf("%w (namelookup=%v connect=%v appconnect=%v pretransfer=%v starttransfer=%v total=%v)",
			err,
			result.Timings.NameLookup, result.Timings.Connect, result.Timings.AppConnect,
			result.Timings.PreTransfer, result.Timings.StartTransfer, result.Timings.Total)
	}

	ropts := render.Options{
		Secure:        result.Secure,
		TerminalWidth: terminalWidth(),
		ColorEnabled:  colorEnabled,
	}
	out, err := render.Timeline(breakdown, ropts)
	if err != nil {
		var cfgErr *render.ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		// terminal too narrow for the bar, the listing alone still fits
		out = render.Table(breakdown, ropts)
	}
	fmt.Println()
	fmt.Print(out)
	return nil
}

// printStatusLine prints e.g. "HTTP/1.1 200 OK" with the protocol name in
// green and the version and status in cyan.
func printStatusLine(result *client.Result, colorEnabled bool) {
	proto, rest, _ := strings.Cut(result.Proto, "/")
	fmt.Printf("%s%s%s\n",
		paint(colorGreen, proto, colorEnabled),
		paint(colorGray, "/", colorEnabled),
		paint(colorCyan, fmt.Sprintf("%s %s", rest, result.Status), colorEnabled))
}

// writeBody stores the body in a temp file and returns its path.
func writeBody(body []byte) (string, error) {
	f, err := os.CreateTemp("", "httpstat-*")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(body); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// terminalWidth reports the controlling terminal's column count, with a
// conservative fallback for pipes and files.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func paint(color, s string, enabled bool) string {
	if !enabled {
		return s
	}
	return "\x1b[" + color + "m" + s + "\x1b[0m"
}
