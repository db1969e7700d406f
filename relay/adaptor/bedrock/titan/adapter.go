package titan

import (
	"github.com/Laisky/errors/v2"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/gin-gonic/gin"

	"bedrock-relay/common/ctxkey"
	"bedrock-relay/relay/adaptor/bedrock/utils"
	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

var _ utils.BedrockAdapter = new(Adaptor)

type Adaptor struct {
}

func (a *Adaptor) ConvertRequest(c *gin.Context, request *relaymodel.GeneralChatRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	titanReq := ConvertRequest(*request)
	c.Set(ctxkey.RequestModel, request.Model)
	c.Set(ctxkey.ConvertedRequest, titanReq)
	return titanReq, nil
}

func (a *Adaptor) DoResponse(c *gin.Context, awsCli *bedrockruntime.Client, meta *meta.Meta) *relaymodel.ErrorWithStatusCode {
	if meta.IsStream {
		return StreamHandler(c, awsCli)
	}
	return Handler(c, awsCli)
}
