package router

import (
	"github.com/gin-gonic/gin"

	"bedrock-relay/common/config"
	"bedrock-relay/middleware"
	"bedrock-relay/relay/controller"
)

// SetRelayRouter registers the relay endpoints. Preflight requests bypass
// authentication; the invoke route sits behind the token authorizer.
func SetRelayRouter(server *gin.Engine) {
	server.GET("/api/status", controller.Status)

	relayRouter := server.Group("/api/bedrock")
	relayRouter.OPTIONS("/:subpath", controller.Preflight)
	relayRouter.POST("/:subpath",
		middleware.TokenAuth(middleware.StaticKeyAuthorizer(config.RelayTokens)),
		controller.RelayBedrock)
}
