package titan

// Request is the Bedrock body for Amazon Titan text models: a single
// generation input plus a generation config.
type Request struct {
	InputText            string               `json:"inputText"`
	TextGenerationConfig TextGenerationConfig `json:"textGenerationConfig"`
}

type TextGenerationConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

// Response mirrors the Titan response body; only the first result's output
// text is relayed.
type Response struct {
	Results []Result `json:"results"`
}

type Result struct {
	OutputText string `json:"outputText"`
}
