package bedrock

import (
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bedrock-relay/common/ctxkey"
	relaymodel "bedrock-relay/relay/model"
)

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		model    string
		expected ModelFamily
	}{
		{"anthropic.claude-3-sonnet-20240229-v1:0", FamilyClaude},
		{"anthropic.claude-v2:1", FamilyClaude},
		{"amazon.titan-text-express-v1", FamilyTitan},
		{"meta.llama3-8b-instruct-v1:0", FamilyLlama},
		{"us.inference-profile/meta.llama3-70b", FamilyLlama},
		{"mistral.mistral-7b-instruct-v0:2", FamilyMistral},
		{"mistral.mixtral-8x7b-instruct-v0:1", FamilyMistral},
		{"MISTRAL.MIXTRAL-8X7B", FamilyMistral},
		{"cohere.command-text-v14", ModelFamily(0)},
		{"", ModelFamily(0)},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			require.Equal(t, tt.expected, FamilyOf(tt.model))
		})
	}
}

func TestGetAdaptor(t *testing.T) {
	require.NotNil(t, GetAdaptor("anthropic.claude-3-haiku-20240307-v1:0"))
	require.NotNil(t, GetAdaptor("amazon.titan-text-lite-v1"))
	require.NotNil(t, GetAdaptor("meta.llama3-8b-instruct-v1:0"))
	require.NotNil(t, GetAdaptor("mistral.mistral-large-2402-v1:0"))
	require.Nil(t, GetAdaptor("ai21.j2-ultra-v1"))
}

func TestAdaptorConvertRequestUnsupportedModel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	adaptor := &Adaptor{}
	_, err := adaptor.ConvertRequest(c, &relaymodel.GeneralChatRequest{
		Model:    "cohere.command-text-v14",
		Messages: []relaymodel.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedModel))
	require.Contains(t, err.Error(), "cohere.command-text-v14")
}

func TestAdaptorConvertRequestStoresConvertedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	adaptor := &Adaptor{}
	converted, err := adaptor.ConvertRequest(c, &relaymodel.GeneralChatRequest{
		Model:    "amazon.titan-text-express-v1",
		Messages: []relaymodel.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.NotNil(t, converted)

	stored, ok := c.Get(ctxkey.ConvertedRequest)
	require.True(t, ok)
	require.Equal(t, converted, stored)
	require.Equal(t, "amazon.titan-text-express-v1", c.GetString(ctxkey.RequestModel))
}

func TestAdaptorConvertRequestNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	adaptor := &Adaptor{}
	_, err := adaptor.ConvertRequest(c, nil)
	require.Error(t, err)
}
