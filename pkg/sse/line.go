// Package sse provides a minimal line decoder for the server-sent-event style
// framing used by OpenAI-compatible chat-completion streams. Each record sits
// on its own line, optionally prefixed by "data: ", and the stream ends with
// a literal "[DONE]" sentinel.
//
// The decoder can tee the raw bytes it consumes to a second writer so callers
// may keep a verbatim copy of the wire stream while inspecting records.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

const (
	// DataPrefix is stripped from the start of a line when present. The space
	// after the colon is optional.
	DataPrefix = "data: "

	dataField = "data:"

	// DoneSentinel marks the normal end of a stream.
	DoneSentinel = "[DONE]"
)

// Line is a single record-bearing line read from the stream.
type Line struct {
	// Raw is the line exactly as received, without the trailing newline.
	Raw string

	// Data is Raw with DataPrefix removed and surrounding whitespace trimmed.
	// It is never empty and never equal to DoneSentinel.
	Data string
}
