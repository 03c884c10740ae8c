package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Event is one decoded record of a chat-completion stream. No schema is
// enforced beyond "a JSON object"; numbers are kept as json.Number so
// integer values are not rounded through float64.
type Event map[string]any

var (
	errNotObject    = errors.New("stream record is not a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object in stream record")
)

// DecodeEvent parses data as a JSON object.
func DecodeEvent(data []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return ev, nil
}

// ErrorValue returns the embedded "error" field and whether it is set to a
// meaningful value. null, false, "", 0 and empty containers count as unset.
func (e Event) ErrorValue() (any, bool) {
	v, ok := e["error"]
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case nil:
		return nil, false
	case bool:
		return val, val
	case string:
		return val, val != ""
	case json.Number:
		f, err := val.Float64()
		return val, err != nil || f != 0
	case map[string]any:
		return val, len(val) > 0
	case []any:
		return val, len(val) > 0
	default:
		return val, true
	}
}

// ErrorMessage renders an embedded error value as a message. Strings are used
// as-is, objects contribute their "message" member when present, anything
// else is JSON encoded.
func ErrorMessage(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if msg, ok := val["message"].(string); ok && msg != "" {
			return msg
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "unknown stream error"
	}
	return string(b)
}

// Content returns the text carried by the event: the concatenation of
// choices[].delta.content for chat chunks, falling back to choices[].text for
// completion-style chunks.
func (e Event) Content() string {
	choices, ok := e["choices"].([]any)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, c := range choices {
		choice, ok := c.(map[string]any)
		if !ok {
			continue
		}

		if delta, ok := choice["delta"].(map[string]any); ok {
			if s, ok := delta["content"].(string); ok {
				b.WriteString(s)
				continue
			}
		}

		if s, ok := choice["text"].(string); ok {
			b.WriteString(s)
		}
	}

	return b.String()
}

// FinishReason returns the first non-empty choices[].finish_reason.
func (e Event) FinishReason() string {
	choices, _ := e["choices"].([]any)
	for _, c := range choices {
		choice, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := choice["finish_reason"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
