package feed

import "strings"

// SSE wire helpers shared by the HTTP event-stream handlers and the CLI
// stream parser.

// Keepalive is the comment line sent periodically to hold idle
// event-stream connections open.
var Keepalive = []byte(": keepalive\n\n")

// FormatSSE renders a named server-sent event. Multi-line payloads get a
// "data: " prefix per line, as the SSE framing requires.
func FormatSSE(eventName, data string) []byte {
	var sb strings.Builder
	sb.WriteString("event: ")
	sb.WriteString(eventName)
	sb.WriteByte('\n')
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
