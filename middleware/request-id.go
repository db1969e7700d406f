package middleware

import (
	"github.com/gin-gonic/gin"

	"bedrock-relay/common/helper"
)

func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		// Honor a caller-provided correlation id so client and relay logs
		// can be joined.
		id := c.GetHeader(helper.RequestIdKey)
		if id == "" {
			id = helper.GenRequestID()
		}
		c.Set(helper.RequestIdKey, id)
		c.Header(helper.RequestIdKey, id)
		c.Next()
	}
}
