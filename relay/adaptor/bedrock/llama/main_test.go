package llama

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

func f64(v float64) *float64 { return &v }

func TestConvertRequestDefaults(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model: "meta.llama3-8b-instruct-v1:0",
		Messages: []relaymodel.Message{
			{Role: "user", Content: "ignored"},
			{Role: "user", Content: "prompt text"},
		},
	}

	converted := ConvertRequest(request)
	require.Equal(t, "prompt text", converted.Prompt)
	require.Equal(t, defaultTemperature, converted.Temperature)
	require.Equal(t, defaultTopP, converted.TopP)
	require.Equal(t, 2048, converted.MaxGenLen)
}

func TestConvertRequestHonorsOverrides(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model:       "meta.llama3-70b-instruct-v1:0",
		Messages:    []relaymodel.Message{{Role: "user", Content: "hi"}},
		Temperature: f64(0.9),
		TopP:        f64(0.2),
		MaxTokens:   32,
	}

	converted := ConvertRequest(request)
	require.Equal(t, 0.9, converted.Temperature)
	require.Equal(t, 0.2, converted.TopP)
	require.Equal(t, 32, converted.MaxGenLen)
}

func TestResolveModelIDFailsWithoutProfile(t *testing.T) {
	// Default policy expects a forwarded profile identifier; no network call
	// happens, the resolution fails locally.
	m := &meta.Meta{
		Region:       "us-east-1",
		RequestModel: "meta.llama3-8b-instruct-v1:0",
	}

	_, err := ResolveModelID(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "inference profile")
}

func TestResolveModelIDAcceptsForwardedProfile(t *testing.T) {
	m := &meta.Meta{
		Region:           "us-east-1",
		RequestModel:     "meta.llama3-8b-instruct-v1:0",
		InferenceProfile: "us.inference-profile/meta.llama3-8b-instruct-v1:0",
	}

	modelID, err := ResolveModelID(m)
	require.NoError(t, err)
	require.Equal(t, m.InferenceProfile, modelID)
}

func TestCleanupRepeatedContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"duplicated halves trimmed", "hello worldhello world", "hello world"},
		{"distinct halves kept", "hello worldgoodbye moon", "hello worldgoodbye moon"},
		{"odd length kept", "abcab", "abcab"},
		{"whitespace trimmed", "  text  ", "text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, cleanupRepeatedContent(tt.input))
		})
	}
}

func TestParseResponsePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"generation field", `{"generation":"text a"}`, "text a"},
		{"generations list", `{"generations":[{"text":"text b"}]}`, "text b"},
		{"output field", `{"output":"text c"}`, "text c"},
		{"completion field", `{"completion":"text d"}`, "text d"},
		{"generation wins over output", `{"generation":"win","output":"lose"}`, "win"},
		{"unknown shape passes through", `{"other":1}`, `{"other":1}`},
		{"non-JSON passes through", "raw", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseResponse([]byte(tt.body)))
		})
	}
}

func TestParseResponseDeduplicatesEcho(t *testing.T) {
	body := `{"generation":"echoecho"}`
	require.Equal(t, "echo", ParseResponse([]byte(body)))
}

func TestParseChunk(t *testing.T) {
	require.Equal(t, "frag", ParseChunk([]byte(`{"generation":"frag"}`)))
	require.Equal(t, "", ParseChunk([]byte(`{"stop_reason":"stop"}`)))
}
