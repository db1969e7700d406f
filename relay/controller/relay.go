// Package controller hosts the relay route: path allow-listing, credential
// extraction, envelope translation, and the Bedrock invocation itself.
package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"bedrock-relay/common"
	"bedrock-relay/common/config"
	"bedrock-relay/common/helper"
	"bedrock-relay/middleware"
	"bedrock-relay/relay/adaptor/bedrock"
	"bedrock-relay/relay/meta"
	relaymodel "bedrock-relay/relay/model"
)

// invokeSubpath is the only subpath the relay serves.
const invokeSubpath = "invoke"

// Preflight acknowledges CORS preflight requests without touching auth or
// credentials.
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// RelayBedrock handles POST /api/bedrock/:subpath.
func RelayBedrock(c *gin.Context) {
	if c.Param("subpath") != invokeSubpath {
		c.JSON(http.StatusForbidden, relaymodel.ErrorResponse{
			Error:   true,
			Message: "only the invoke subpath is supported by this relay",
		})
		return
	}

	var request relaymodel.GeneralChatRequest
	if err := common.UnmarshalBodyReusable(c, &request); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}

	m := meta.GetByContext(c, &request)
	if !m.HasCredentials() {
		// Reject before any AWS client is constructed.
		middleware.AbortWithError(c, http.StatusUnauthorized,
			errors.New("missing AWS credentials: access key and secret key headers are required"))
		return
	}

	// One cancellation scope per call; the deadline aborts the in-flight
	// Bedrock invocation.
	ctx, cancel := context.WithTimeout(c.Request.Context(),
		time.Duration(config.RelayTimeout)*time.Second)
	defer cancel()
	c.Request = c.Request.WithContext(ctx)

	adaptor := &bedrock.Adaptor{}
	if _, err := adaptor.ConvertRequest(c, &request); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}

	if err := adaptor.Init(ctx, m); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}

	if bizErr := adaptor.DoResponse(c); bizErr != nil {
		lg := gmw.GetLogger(c)
		message := bizErr.Message
		if errors.Is(bizErr.RawError, context.DeadlineExceeded) {
			message = "upstream request timed out: " + message
		}
		lg.Error("bedrock relay failed",
			zap.String("model", m.RequestModel),
			zap.Int("status_code", bizErr.StatusCode),
			zap.Int64("elapsed_ms", helper.CalcElapsedTime(m.StartTime)),
			zap.Error(bizErr.RawError))
		c.JSON(bizErr.StatusCode, relaymodel.ErrorResponse{
			Error:   true,
			Message: message,
		})
		return
	}

	gmw.GetLogger(c).Debug("bedrock relay completed",
		zap.String("model", m.RequestModel),
		zap.Bool("stream", m.IsStream),
		zap.Int64("elapsed_ms", helper.CalcElapsedTime(m.StartTime)))
}
