package meta

import (
	"time"

	"github.com/gin-gonic/gin"

	"bedrock-relay/common/config"
	"bedrock-relay/common/ctxkey"
	relaymodel "bedrock-relay/relay/model"
)

// Header names the client forwards AWS credentials with. The relay forwards
// these to Bedrock, it never persists them.
const (
	HeaderRegion           = "X-Region"
	HeaderAccessKey        = "X-Access-Key"
	HeaderSecretKey        = "X-Secret-Key"
	HeaderSessionToken     = "X-Session-Token"
	HeaderInferenceProfile = "X-Inference-Profile"
)

type Meta struct {
	Region           string
	AccessKey        string
	SecretKey        string
	SessionToken     string
	InferenceProfile string
	IsStream         bool
	// RequestModel is the model identifier from the inbound envelope.
	RequestModel string
	StartTime    time.Time
}

// GetByContext builds the request metadata from headers and the parsed
// envelope, caching it on the context so it is only assembled once.
func GetByContext(c *gin.Context, request *relaymodel.GeneralChatRequest) *Meta {
	if v, ok := c.Get(ctxkey.Meta); ok {
		return v.(*Meta)
	}

	m := &Meta{
		Region:           c.GetHeader(HeaderRegion),
		AccessKey:        c.GetHeader(HeaderAccessKey),
		SecretKey:        c.GetHeader(HeaderSecretKey),
		SessionToken:     c.GetHeader(HeaderSessionToken),
		InferenceProfile: c.GetHeader(HeaderInferenceProfile),
		StartTime:        time.Now(),
	}
	if m.Region == "" {
		m.Region = config.DefaultRegion
	}
	if request != nil {
		m.RequestModel = request.Model
		m.IsStream = request.Stream
	}

	c.Set(ctxkey.Meta, m)
	return m
}

// HasCredentials reports whether the mandatory credential triple is present.
// The region always is, because it falls back to the configured default.
func (m *Meta) HasCredentials() bool {
	return m.AccessKey != "" && m.SecretKey != ""
}
