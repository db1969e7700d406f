package common

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newBodyContext(t *testing.T, body, contentType string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	return c
}

func TestGetRequestBodyCaches(t *testing.T) {
	c := newBodyContext(t, `{"model":"m"}`, "application/json")

	first, err := GetRequestBody(c)
	require.NoError(t, err)
	require.Equal(t, `{"model":"m"}`, string(first))

	// The body reader is consumed; the second call must come from the cache.
	second, err := GetRequestBody(c)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUnmarshalBodyReusable(t *testing.T) {
	c := newBodyContext(t, `{"model":"amazon.titan-text-lite-v1"}`, "application/json")

	var parsed struct {
		Model string `json:"model"`
	}
	require.NoError(t, UnmarshalBodyReusable(c, &parsed))
	require.Equal(t, "amazon.titan-text-lite-v1", parsed.Model)

	// The body must be readable again after unmarshalling.
	restored, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	require.Equal(t, `{"model":"amazon.titan-text-lite-v1"}`, string(restored))
}

func TestUnmarshalBodyReusableRejectsNonJSONContentType(t *testing.T) {
	c := newBodyContext(t, "model=m", "application/x-www-form-urlencoded")

	var parsed map[string]any
	err := UnmarshalBodyReusable(c, &parsed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported content type")
}

func TestCustomEventWritesVerbatimData(t *testing.T) {
	w := httptest.NewRecorder()
	event := CustomEvent{Data: `data: "hello"`}
	require.NoError(t, event.Render(w))

	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	require.Equal(t, "data: \"hello\"\n\n", w.Body.String())
}

func TestCustomEventEscapesNewlines(t *testing.T) {
	w := httptest.NewRecorder()
	event := CustomEvent{Data: "data: a\nb"}
	require.NoError(t, event.Render(w))

	// Payload newlines become continuation data lines instead of breaking
	// the event framing.
	require.Equal(t, "data: a\ndata:b\n\n", w.Body.String())
}
