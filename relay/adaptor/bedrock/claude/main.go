// Package claude translates the generic chat envelope into the Bedrock
// request dialects of the Anthropic Claude family and back.
package claude

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"bedrock-relay/common"
	"bedrock-relay/common/config"
	"bedrock-relay/common/ctxkey"
	"bedrock-relay/relay/adaptor/bedrock/utils"
	relaymodel "bedrock-relay/relay/model"
)

const (
	anthropicVersion = "bedrock-2023-05-31"
	humanStop        = "\n\nHuman:"

	// alternationPlaceholder is the synthetic assistant turn inserted between
	// two consecutive user turns; Claude rejects non-alternating transcripts.
	alternationPlaceholder = "I understand. Please continue."

	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// isMessagesVariant reports whether the model speaks the messages API.
// Claude 3.x and later do; 2.x and instant take the transcript body.
func isMessagesVariant(model string) bool {
	return strings.Contains(model, "claude-3")
}

// normalizeMessages remaps roles onto user/assistant, trims content, and
// enforces strict alternation by inserting a synthetic assistant turn
// between two consecutive user turns. The first message is accepted as-is.
func normalizeMessages(messages []relaymodel.Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		content := msg.StringContent()
		if content == "" {
			continue
		}
		role := msg.Role
		if role != "assistant" {
			role = "user"
		}
		if len(out) > 0 && out[len(out)-1].Role == "user" && role == "user" {
			out = append(out, Message{Role: "assistant", Content: alternationPlaceholder})
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}

// BuildLegacyPrompt renders the normalized conversation as a Human:/Assistant:
// transcript ending in an open assistant turn.
func BuildLegacyPrompt(messages []relaymodel.Message) string {
	var b strings.Builder
	for _, msg := range normalizeMessages(messages) {
		if msg.Role == "assistant" {
			b.WriteString("\n\nAssistant: ")
		} else {
			b.WriteString("\n\nHuman: ")
		}
		b.WriteString(msg.Content)
	}
	b.WriteString("\n\nAssistant:")
	return b.String()
}

// ConvertRequest builds the family-specific request body. The returned value
// is either *Request (messages API) or *LegacyRequest (transcript API).
func ConvertRequest(textRequest relaymodel.GeneralChatRequest) any {
	maxTokens := textRequest.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.DefaultMaxToken
	}
	temperature := defaultTemperature
	if textRequest.Temperature != nil {
		temperature = *textRequest.Temperature
	}
	topP := defaultTopP
	if textRequest.TopP != nil {
		topP = *textRequest.TopP
	}

	if isMessagesVariant(textRequest.Model) {
		return &Request{
			AnthropicVersion: anthropicVersion,
			MaxTokens:        maxTokens,
			Temperature:      temperature,
			TopP:             topP,
			Messages:         normalizeMessages(textRequest.Messages),
		}
	}

	return &LegacyRequest{
		Prompt:            BuildLegacyPrompt(textRequest.Messages),
		MaxTokensToSample: maxTokens,
		Temperature:       temperature,
		TopP:              topP,
		StopSequences:     []string{humanStop},
	}
}

// ParseResponse extracts the generated text from a raw Claude response body.
// Field precedence: messages-API content text, then a plain content string,
// then the legacy completion field. Non-JSON bodies pass through unchanged.
func ParseResponse(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}
	root := gjson.ParseBytes(raw)
	if v := root.Get("content.0.text"); v.Exists() {
		return v.String()
	}
	if v := root.Get("content"); v.Exists() && v.Type == gjson.String {
		return v.String()
	}
	if v := root.Get("completion"); v.Exists() {
		return v.String()
	}
	return string(raw)
}

// ParseChunk extracts the text fragment carried by one streaming event.
func ParseChunk(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	root := gjson.ParseBytes(raw)
	if v := root.Get("delta.text"); v.Exists() {
		return v.String()
	}
	if v := root.Get("completion"); v.Exists() {
		return v.String()
	}
	return ""
}

func Handler(c *gin.Context, awsCli *bedrockruntime.Client) *relaymodel.ErrorWithStatusCode {
	claudeReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(claudeReq)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "marshal request"))
	}

	awsResp, err := awsCli.InvokeModel(gmw.Ctx(c), &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.GetString(ctxkey.RequestModel)),
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "InvokeModel"))
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ParseResponse(awsResp.Body)))
	return nil
}

func StreamHandler(c *gin.Context, awsCli *bedrockruntime.Client) *relaymodel.ErrorWithStatusCode {
	claudeReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(claudeReq)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "marshal request"))
	}

	awsResp, err := awsCli.InvokeModelWithResponseStream(gmw.Ctx(c), &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(c.GetString(ctxkey.RequestModel)),
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "InvokeModelWithResponseStream"))
	}
	stream := awsResp.GetStream()
	defer stream.Close()

	common.SetEventStreamHeaders(c)

	c.Stream(func(w io.Writer) bool {
		event, ok := <-stream.Events()
		if !ok {
			c.Render(-1, common.CustomEvent{Data: "data: [DONE]"})
			return false
		}

		switch v := event.(type) {
		case *types.ResponseStreamMemberChunk:
			if text := ParseChunk(v.Value.Bytes); text != "" {
				// JSON-encode the fragment so newlines survive the SSE framing.
				payload, err := json.Marshal(text)
				if err != nil {
					return true
				}
				c.Render(-1, common.CustomEvent{Data: "data: " + string(payload)})
			}
			return true
		default:
			return true
		}
	})

	return nil
}
