package dto

// OpenAIChatRequest is the request payload for the chat completions API.
type OpenAIChatRequest struct {
	Model          string               `json:"model"`
	Temperature    float64              `json:"temperature"`
	Messages       []OpenAIChatMessage  `json:"messages"`
	ResponseFormat OpenAIResponseFormat `json:"response_format"`
}

// OpenAIChatMessage is a single chat message.
type OpenAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponseFormat requests JSON-object output.
type OpenAIResponseFormat struct {
	Type string `json:"type"`
}

// OpenAIChatResponse is the subset of the chat completions response we read.
type OpenAIChatResponse struct {
	Choices []struct {
		Message OpenAIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
