package mistral

// Request is the Bedrock instruction-prompt body for Mistral models.
type Request struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// Response mirrors the Mistral response body; only the first output's
// trimmed text is relayed.
type Response struct {
	Outputs []Output `json:"outputs"`
}

type Output struct {
	Text       string `json:"text"`
	StopReason string `json:"stop_reason"`
}
