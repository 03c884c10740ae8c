// Package backend resolves a backend selector into the base URL and bearer
// credential used to reach an OpenAI-compatible chat-completion service.
package backend

import (
	"slices"
	"strings"

	"github.com/papercomputeco/aviary/pkg/llm"
)

// Selector chooses which downstream service variant receives a request.
type Selector string

// Supported selectors.
const (
	Primary   Selector = "primary"
	Alternate Selector = "alternate"
)

// selectorAliases maps historical names onto selectors.
var selectorAliases = map[string]Selector{
	"primary":   Primary,
	"aviary":    Primary,
	"alternate": Alternate,
	"endpoints": Alternate,
}

// Selectors returns the canonical selector values.
func Selectors() []Selector {
	return []Selector{Primary, Alternate}
}

// Valid reports whether s is one of the canonical selectors.
func (s Selector) Valid() bool {
	return slices.Contains(Selectors(), s)
}

func (s Selector) String() string {
	return string(s)
}

// ParseSelector maps name (case-insensitive, aliases accepted) onto a
// Selector. Any other value is a configuration error.
func ParseSelector(name string) (Selector, error) {
	if s, ok := selectorAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return "", unknownSelector(name)
}

func unknownSelector(name string) error {
	return &llm.ConfigurationError{
		Field:  "backend",
		Value:  name,
		Reason: "expected one of 'primary' or 'alternate'",
	}
}

// Backend is the resolved target of a streaming request.
type Backend struct {
	Name   Selector
	URL    string
	Bearer string
}

// ChatCompletionsURL returns the endpoint that accepts chat-completion requests.
func (b Backend) ChatCompletionsURL() string {
	return strings.TrimRight(b.URL, "/") + "/chat/completions"
}

// BearerFromToken renders the Authorization header value for token. An empty
// token yields an empty value so no header is sent.
func BearerFromToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return "Bearer " + token
}

// Resolver turns a selector into a Backend.
type Resolver interface {
	Resolve(sel Selector) (Backend, error)
}
