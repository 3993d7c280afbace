package llm

// ChatRequest represents a chat completion request (OpenAI-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`    // Model name (e.g., "qwen/qwen-2.5-32b-instruct")
	Messages []Message `json:"messages"` // Conversation history

	// ResponseFormat constrains the reply, e.g. {"type": "json_object"}
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Sampling parameters
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// ResponseFormat selects the output mode of the completion.
type ResponseFormat struct {
	Type string `json:"type"`
}

// JSONObject asks the model for a single JSON object reply.
func JSONObject() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}
