package titan

import (
	"testing"

	"github.com/stretchr/testify/require"

	relaymodel "bedrock-relay/relay/model"
)

func f64(v float64) *float64 { return &v }

func TestConvertRequestUsesFinalMessage(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model: "amazon.titan-text-express-v1",
		Messages: []relaymodel.Message{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "reply"},
			{Role: "user", Content: "  final  "},
		},
	}

	converted := ConvertRequest(request)
	require.Equal(t, "final", converted.InputText)
	require.Equal(t, 2048, converted.TextGenerationConfig.MaxTokenCount)
	require.Equal(t, defaultTemperature, converted.TextGenerationConfig.Temperature)
	require.Equal(t, defaultTopP, converted.TextGenerationConfig.TopP)
}

func TestConvertRequestHonorsOverrides(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model:       "amazon.titan-text-lite-v1",
		Messages:    []relaymodel.Message{{Role: "user", Content: "hi"}},
		Temperature: f64(0.1),
		TopP:        f64(0.5),
		MaxTokens:   64,
	}

	converted := ConvertRequest(request)
	require.Equal(t, 64, converted.TextGenerationConfig.MaxTokenCount)
	require.Equal(t, 0.1, converted.TextGenerationConfig.Temperature)
	require.Equal(t, 0.5, converted.TextGenerationConfig.TopP)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "first result output text",
			body:     `{"results":[{"outputText":"generated"}]}`,
			expected: "generated",
		},
		{
			name:     "unknown shape passes through",
			body:     `{"other":"field"}`,
			expected: `{"other":"field"}`,
		},
		{
			name:     "non-JSON passes through",
			body:     "plain",
			expected: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseResponse([]byte(tt.body)))
		})
	}
}

func TestParseChunk(t *testing.T) {
	require.Equal(t, "frag", ParseChunk([]byte(`{"outputText":"frag"}`)))
	require.Equal(t, "", ParseChunk([]byte(`{"done":true}`)))
	require.Equal(t, "", ParseChunk([]byte("not json")))
}
