package claude

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	relaymodel "bedrock-relay/relay/model"
)

func f64(v float64) *float64 { return &v }

func TestNormalizeMessagesInsertsSyntheticAssistantTurn(t *testing.T) {
	messages := []relaymodel.Message{
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
	}

	normalized := normalizeMessages(messages)
	require.Len(t, normalized, 3)
	require.Equal(t, "user", normalized[0].Role)
	require.Equal(t, "a", normalized[0].Content)
	require.Equal(t, "assistant", normalized[1].Role)
	require.Equal(t, alternationPlaceholder, normalized[1].Content)
	require.Equal(t, "user", normalized[2].Role)
	require.Equal(t, "b", normalized[2].Content)
}

func TestNormalizeMessagesRemapsRolesAndTrims(t *testing.T) {
	messages := []relaymodel.Message{
		{Role: "system", Content: "  be terse  "},
		{Role: "assistant", Content: "ok"},
		{Role: "user", Content: "hello"},
	}

	normalized := normalizeMessages(messages)
	require.Len(t, normalized, 3)
	require.Equal(t, "user", normalized[0].Role)
	require.Equal(t, "be terse", normalized[0].Content)
	require.Equal(t, "assistant", normalized[1].Role)
	require.Equal(t, "user", normalized[2].Role)
}

func TestNormalizeMessagesFirstMessageAcceptedAsIs(t *testing.T) {
	messages := []relaymodel.Message{
		{Role: "assistant", Content: "greetings"},
	}

	normalized := normalizeMessages(messages)
	require.Len(t, normalized, 1)
	require.Equal(t, "assistant", normalized[0].Role)
}

func TestBuildLegacyPrompt(t *testing.T) {
	messages := []relaymodel.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
	}

	prompt := BuildLegacyPrompt(messages)
	require.True(t, strings.HasSuffix(prompt, "\n\nAssistant:"))
	require.Contains(t, prompt, "\n\nHuman: first")
	require.Contains(t, prompt, "\n\nAssistant: reply")
	require.Contains(t, prompt, "\n\nHuman: second")
}

func TestBuildLegacyPromptNeverHasConsecutiveHumanTurns(t *testing.T) {
	messages := []relaymodel.Message{
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "user", Content: "c"},
	}

	prompt := BuildLegacyPrompt(messages)
	require.True(t, strings.HasSuffix(prompt, "\n\nAssistant:"))

	// Every Human: turn must be followed by an Assistant: turn before the
	// next Human: turn appears.
	rest := prompt
	for {
		humanIdx := strings.Index(rest, "Human:")
		if humanIdx == -1 {
			break
		}
		rest = rest[humanIdx+len("Human:"):]
		nextHuman := strings.Index(rest, "Human:")
		nextAssistant := strings.Index(rest, "Assistant:")
		require.NotEqual(t, -1, nextAssistant)
		if nextHuman != -1 {
			require.Less(t, nextAssistant, nextHuman)
		}
	}
}

func TestConvertRequestMessagesVariant(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model: "anthropic.claude-3-sonnet-20240229-v1:0",
		Messages: []relaymodel.Message{
			{Role: "user", Content: "hi"},
		},
	}

	converted := ConvertRequest(request)
	claudeReq, ok := converted.(*Request)
	require.True(t, ok)
	require.Equal(t, anthropicVersion, claudeReq.AnthropicVersion)
	require.Equal(t, 2048, claudeReq.MaxTokens)
	require.Equal(t, 0.7, claudeReq.Temperature)
	require.Equal(t, 0.9, claudeReq.TopP)
	require.Len(t, claudeReq.Messages, 1)
}

func TestConvertRequestLegacyVariant(t *testing.T) {
	request := relaymodel.GeneralChatRequest{
		Model: "anthropic.claude-v2:1",
		Messages: []relaymodel.Message{
			{Role: "user", Content: "hi"},
		},
		Temperature: f64(0.2),
		MaxTokens:   100,
	}

	converted := ConvertRequest(request)
	legacyReq, ok := converted.(*LegacyRequest)
	require.True(t, ok)
	require.True(t, strings.HasSuffix(legacyReq.Prompt, "\n\nAssistant:"))
	require.Equal(t, 100, legacyReq.MaxTokensToSample)
	require.Equal(t, 0.2, legacyReq.Temperature)
	require.Equal(t, []string{humanStop}, legacyReq.StopSequences)
}

func TestParseResponsePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "messages API content",
			body:     `{"content":[{"type":"text","text":"nested"}]}`,
			expected: "nested",
		},
		{
			name:     "plain content string",
			body:     `{"content":"flat"}`,
			expected: "flat",
		},
		{
			name:     "legacy completion",
			body:     `{"completion":"legacy"}`,
			expected: "legacy",
		},
		{
			name:     "non-JSON body passes through",
			body:     "plain text response",
			expected: "plain text response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseResponse([]byte(tt.body)))
		})
	}
}

func TestParseResponseRoundTrip(t *testing.T) {
	original := "the quick brown fox"
	body, err := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": original}},
	})
	require.NoError(t, err)
	require.Equal(t, original, ParseResponse(body))
}

func TestParseChunk(t *testing.T) {
	require.Equal(t, "frag", ParseChunk([]byte(`{"type":"content_block_delta","delta":{"text":"frag"}}`)))
	require.Equal(t, "old", ParseChunk([]byte(`{"completion":"old"}`)))
	require.Equal(t, "", ParseChunk([]byte(`{"type":"message_stop"}`)))
	require.Equal(t, "", ParseChunk([]byte("not json")))
}
