package llm

// ChatCompletionRequest is the JSON body POSTed to a backend's
// /chat/completions endpoint.
type ChatCompletionRequest struct {
	// Model name as understood by the backend (e.g. "meta-llama/Llama-2-7b-chat-hf")
	Model string `json:"model"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// Whether to stream the response. Always true for this client.
	Stream bool `json:"stream"`
}

// NewStreamingRequest builds a single-turn streaming request where prompt is
// the sole user message.
func NewStreamingRequest(model, prompt string) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model:    model,
		Messages: []Message{NewUserMessage(prompt)},
		Stream:   true,
	}
}
