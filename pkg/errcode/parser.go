// Package errcode extracts error-code tokens from raw UART console
// output and resolves them to descriptions via the knowledge base.
package errcode

import (
	"regexp"
	"strings"
)

// Code is one error code as it appeared on the wire. Context carries any
// key=value pairs the console printed on the same line.
type Code struct {
	Raw     string
	Context map[string]string
}

// The console prefixes error report lines with ERR: or ERROR:; anything
// else on the wire is diagnostic chatter and gets skipped, not errored.
var errorLine = regexp.MustCompile(`^\s*ERR(?:OR)?:\s*(.*)$`)

// The console emits two code shapes: the raw 8-hex-digit register value
// and the dashed retail shape (e.g. CE-10005-6).
var (
	hexCode    = regexp.MustCompile(`^[0-9A-F]{8}$`)
	dashedCode = regexp.MustCompile(`^[A-Z]{2}-[0-9]{5}-[0-9]$`)
)

// IsValid reports whether tok matches either code grammar.
func IsValid(tok string) bool {
	return hexCode.MatchString(tok) || dashedCode.MatchString(tok)
}

// Parse scans raw console text line by line and returns every error
// code in wire order. It is total: malformed input yields fewer records,
// never an error.
func Parse(raw string) []Code {
	var codes []Code
	for _, line := range strings.Split(raw, "\n") {
		m := errorLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}

		// The payload is a comma-separated token list (whitespace
		// around the commas varies by firmware revision), optionally
		// followed by key=value context pairs.
		words := strings.Fields(m[1])
		ctxStart := len(words)
		for ctxStart > 0 && strings.Contains(words[ctxStart-1], "=") {
			ctxStart--
		}
		context := parseContext(words[ctxStart:])
		for _, tok := range strings.Split(strings.Join(words[:ctxStart], " "), ",") {
			tok = strings.TrimSpace(tok)
			if !IsValid(tok) {
				continue
			}
			codes = append(codes, Code{Raw: tok, Context: cloneContext(context)})
		}
	}
	return codes
}

func parseContext(fields []string) map[string]string {
	var ctx map[string]string
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			continue
		}
		if ctx == nil {
			ctx = make(map[string]string)
		}
		ctx[k] = v
	}
	return ctx
}

func cloneContext(ctx map[string]string) map[string]string {
	if ctx == nil {
		return nil
	}
	out := make(map[string]string, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
