package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bedrock-relay/common/helper"
)

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": helper.GetTimestamp(),
	})
}
