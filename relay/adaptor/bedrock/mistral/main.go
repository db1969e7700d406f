// Package mistral translates the generic chat envelope into the Bedrock
// instruction-prompt dialect of the Mistral family and back.
package mistral

import (
	"encoding/json"
	"fmt"
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
	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// looksLikeErrorPayload reports whether a message body is a relayed JSON
// error object rather than user text. Conversations accumulate these when a
// previous call failed, and feeding them back confuses the model.
func looksLikeErrorPayload(content string) bool {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return false
	}
	return gjson.Get(trimmed, "error").Exists()
}

// lastValidUserMessage walks the history backwards and returns the most
// recent user message that is not a relayed error payload.
func lastValidUserMessage(messages []relaymodel.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != "user" {
			continue
		}
		content := msg.StringContent()
		if content == "" || looksLikeErrorPayload(content) {
			continue
		}
		return content
	}
	return ""
}

// ConvertRequest wraps the last valid user message in an instruction-tag
// prompt with fixed sampling params.
func ConvertRequest(textRequest relaymodel.GeneralChatRequest) *Request {
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

	return &Request{
		Prompt:      fmt.Sprintf("<s>[INST] %s [/INST]", lastValidUserMessage(textRequest.Messages)),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
}

// ParseResponse extracts the first output's trimmed text. Non-JSON bodies
// pass through unchanged.
func ParseResponse(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}
	if v := gjson.GetBytes(raw, "outputs.0.text"); v.Exists() {
		return strings.TrimSpace(v.String())
	}
	return string(raw)
}

// ParseChunk extracts the text fragment carried by one streaming event.
func ParseChunk(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	if v := gjson.GetBytes(raw, "outputs.0.text"); v.Exists() {
		return v.String()
	}
	return ""
}

func Handler(c *gin.Context, awsCli *bedrockruntime.Client) *relaymodel.ErrorWithStatusCode {
	mistralReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(mistralReq)
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
	mistralReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(mistralReq)
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
