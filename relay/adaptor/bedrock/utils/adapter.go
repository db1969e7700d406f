package utils

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/gin-gonic/gin"

	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

// BedrockAdapter is implemented once per model family. ConvertRequest is a
// pure translation from the generic envelope into the family's JSON dialect;
// DoResponse invokes Bedrock and writes the translated response (full or
// streamed) to the client.
type BedrockAdapter interface {
	ConvertRequest(c *gin.Context, request *relaymodel.GeneralChatRequest) (any, error)
	DoResponse(c *gin.Context, awsCli *bedrockruntime.Client, meta *meta.Meta) *relaymodel.ErrorWithStatusCode
}

func WrapErr(err error) *relaymodel.ErrorWithStatusCode {
	return &relaymodel.ErrorWithStatusCode{
		StatusCode: http.StatusInternalServerError,
		Error: relaymodel.Error{
			Message:  err.Error(),
			Type:     "bedrock_relay_error",
			RawError: err,
		},
	}
}
