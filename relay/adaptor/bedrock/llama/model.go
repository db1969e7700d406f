package llama

// Request is the Bedrock body for Meta Llama instruction models.
type Request struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxGenLen   int     `json:"max_gen_len"`
}

// Response mirrors the documented Llama response body. Older runtime
// revisions used different field names, so parsing goes through a
// precedence chain instead of this struct alone.
type Response struct {
	Generation           string `json:"generation"`
	PromptTokenCount     int    `json:"prompt_token_count"`
	GenerationTokenCount int    `json:"generation_token_count"`
	StopReason           string `json:"stop_reason"`
}
