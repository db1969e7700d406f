// Package bedrock dispatches generic chat requests to per-model-family
// adapters and owns the Bedrock Runtime client built from per-request
// credentials.
package bedrock

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/gin-gonic/gin"

	"bedrock-relay/relay/adaptor/bedrock/utils"
	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

var ErrUnsupportedModel = errors.New("unsupported model")

type Adaptor struct {
	familyAdapter utils.BedrockAdapter
	Meta          *meta.Meta
	AwsClient     *bedrockruntime.Client
}

// Init builds a Bedrock Runtime client scoped to the request's region and
// static credential triple. Credentials live only for this request.
func (a *Adaptor) Init(ctx context.Context, m *meta.Meta) error {
	a.Meta = m
	defaultConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(m.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			m.AccessKey, m.SecretKey, m.SessionToken)))
	if err != nil {
		return errors.Wrap(err, "load aws config")
	}
	a.AwsClient = bedrockruntime.NewFromConfig(defaultConfig)
	return nil
}

func (a *Adaptor) ConvertRequest(c *gin.Context, request *relaymodel.GeneralChatRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	adapter := GetAdaptor(request.Model)
	if adapter == nil {
		return nil, errors.Wrap(ErrUnsupportedModel, request.Model)
	}

	a.familyAdapter = adapter
	return adapter.ConvertRequest(c, request)
}

func (a *Adaptor) DoResponse(c *gin.Context) *relaymodel.ErrorWithStatusCode {
	if a.familyAdapter == nil {
		return utils.WrapErr(errors.New("family adapter is nil"))
	}
	return a.familyAdapter.DoResponse(c, a.AwsClient, a.Meta)
}
