package llm

// Message is a single chat message in the OpenAI-compatible wire format.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // plain text content
}

// NewUserMessage creates a user message carrying text verbatim.
func NewUserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}
