// Package llama translates the generic chat envelope into the Bedrock
// request dialect of the Meta Llama family and back. Llama models are only
// reachable through an inference profile, resolved before any upstream call.
package llama

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
	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

const (
	defaultTemperature = 0.5
	defaultTopP        = 0.9
)

// responseTextFields is the precedence chain of candidate fields the
// generated text has appeared under across Llama runtime revisions.
var responseTextFields = []string{
	"generation",
	"generations.0.text",
	"output",
	"completion",
}

// ConvertRequest builds the Llama body from the final message's text.
func ConvertRequest(textRequest relaymodel.GeneralChatRequest) *Request {
	var prompt string
	if n := len(textRequest.Messages); n > 0 {
		prompt = textRequest.Messages[n-1].StringContent()
	}

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
		Prompt:      prompt,
		Temperature: temperature,
		TopP:        topP,
		MaxGenLen:   maxTokens,
	}
}

// ResolveModelID returns the identifier the model is invoked with. Llama
// models require an inference profile, so the envelope's model id is
// replaced by the resolved profile identifier.
func ResolveModelID(m *meta.Meta) (string, error) {
	return utils.ResolveInferenceProfile(
		config.LlamaProfileMode,
		m.InferenceProfile,
		m.Region,
		config.LlamaProfileAccountID,
		m.RequestModel,
	)
}

// cleanupRepeatedContent trims the duplicated half some Llama revisions
// emit when the generation is echoed twice back to back.
func cleanupRepeatedContent(text string) string {
	trimmed := strings.TrimSpace(text)
	if n := len(trimmed); n >= 2 && n%2 == 0 {
		half := n / 2
		if trimmed[:half] == trimmed[half:] {
			return strings.TrimSpace(trimmed[:half])
		}
	}
	return trimmed
}

// ParseResponse extracts the generated text via the field precedence chain,
// then removes duplicated content. Non-JSON bodies pass through unchanged.
func ParseResponse(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}
	root := gjson.ParseBytes(raw)
	for _, field := range responseTextFields {
		if v := root.Get(field); v.Exists() {
			return cleanupRepeatedContent(v.String())
		}
	}
	return string(raw)
}

// ParseChunk extracts the text fragment carried by one streaming event.
func ParseChunk(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	if v := gjson.GetBytes(raw, "generation"); v.Exists() {
		return v.String()
	}
	return ""
}

func Handler(c *gin.Context, awsCli *bedrockruntime.Client, m *meta.Meta) *relaymodel.ErrorWithStatusCode {
	modelID, err := ResolveModelID(m)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "resolve inference profile"))
	}

	llamaReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(llamaReq)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "marshal request"))
	}

	awsResp, err := awsCli.InvokeModel(gmw.Ctx(c), &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
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

func StreamHandler(c *gin.Context, awsCli *bedrockruntime.Client, m *meta.Meta) *relaymodel.ErrorWithStatusCode {
	modelID, err := ResolveModelID(m)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "resolve inference profile"))
	}

	llamaReq, ok := c.Get(ctxkey.ConvertedRequest)
	if !ok {
		return utils.WrapErr(errors.New("request not found"))
	}

	body, err := json.Marshal(llamaReq)
	if err != nil {
		return utils.WrapErr(errors.Wrap(err, "marshal request"))
	}

	awsResp, err := awsCli.InvokeModelWithResponseStream(gmw.Ctx(c), &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(modelID),
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
